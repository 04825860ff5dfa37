package vnc

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	stdruntime "runtime"
	"testing"

	"github.com/duo/sessiond/internal/session"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if stdruntime.GOOS == "windows" {
		t.Skip("vnc tests exercise unix tooling")
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T) session.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := session.Defaults()
	cfg.ConfigDir = filepath.Join(dir, "state")
	cfg.PasswordFile = filepath.Join(dir, "state", "passwd")
	cfg.VncPasswdPath = writeScript(t, dir, "vncpasswd", "#!/bin/sh\ncat\n")
	cfg.CleanupCommand = []string{"rm", "-f"}
	cfg.LockDir = dir
	return cfg
}

func TestEnsureConfigDirIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	if err := EnsureConfigDir(dir); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := EnsureConfigDir(dir); err != nil {
		t.Fatalf("second ensure on existing dir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", dir)
	}
}

func TestProvisionPasswordWritesHashedFile(t *testing.T) {
	skipOnWindows(t)

	cfg := testConfig(t)
	if err := EnsureConfigDir(cfg.ConfigDir); err != nil {
		t.Fatalf("ensure config dir: %v", err)
	}

	if err := ProvisionPassword(context.Background(), cfg, "secret"); err != nil {
		t.Fatalf("provision: %v", err)
	}

	data, err := os.ReadFile(cfg.PasswordFile)
	if err != nil {
		t.Fatalf("read password file: %v", err)
	}
	// The stub hasher echoes stdin, so the file holds the plaintext.
	if string(data) != "secret" {
		t.Fatalf("password file = %q, want secret", data)
	}

	info, err := os.Stat(cfg.PasswordFile)
	if err != nil {
		t.Fatalf("stat password file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Fatalf("password file mode = %o, want 700", perm)
	}
}

func TestProvisionPasswordRejectsEmptyPassword(t *testing.T) {
	cfg := testConfig(t)
	if err := ProvisionPassword(context.Background(), cfg, ""); err == nil {
		t.Fatalf("expected error for empty password")
	}
	if _, err := os.Stat(cfg.PasswordFile); !os.IsNotExist(err) {
		t.Fatalf("password file should not exist, stat err = %v", err)
	}
}

func TestProvisionPasswordPropagatesHasherFailure(t *testing.T) {
	skipOnWindows(t)

	cfg := testConfig(t)
	cfg.VncPasswdPath = filepath.Join(t.TempDir(), "missing-vncpasswd")

	if err := ProvisionPassword(context.Background(), cfg, "secret"); err == nil {
		t.Fatalf("expected error for missing hasher")
	}
}

func TestServerArgs(t *testing.T) {
	cfg := session.Defaults()
	want := []string{
		"/usr/bin/vncserver",
		"-localhost", "no",
		"-xstartup", "/usr/bin/openbox",
		":5",
	}
	if got := ServerArgs(cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("server args = %v, want %v", got, want)
	}
}

func TestLockPaths(t *testing.T) {
	cfg := session.Defaults()
	lock, socket := LockPaths(cfg)
	if lock != "/tmp/.X5-lock" {
		t.Fatalf("lock = %q", lock)
	}
	if socket != "/tmp/.X11-unix/X5" {
		t.Fatalf("socket = %q", socket)
	}
}

func TestCleanupRemovesLockFiles(t *testing.T) {
	skipOnWindows(t)

	cfg := testConfig(t)
	lock, socket := LockPaths(cfg)
	if err := os.MkdirAll(filepath.Dir(socket), 0o755); err != nil {
		t.Fatalf("mkdir socket dir: %v", err)
	}
	for _, path := range []string{lock, socket} {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("create %s: %v", path, err)
		}
	}

	if errs := Cleanup(context.Background(), cfg); len(errs) != 0 {
		t.Fatalf("cleanup errors: %v", errs)
	}

	for _, path := range []string{lock, socket} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("%s still present, stat err = %v", path, err)
		}
	}
}

func TestCleanupCollectsPerPathFailures(t *testing.T) {
	skipOnWindows(t)

	cfg := testConfig(t)
	cfg.CleanupCommand = []string{"/bin/false"}

	errs := Cleanup(context.Background(), cfg)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want one per path: %v", len(errs), errs)
	}
}
