package cli

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/duo/sessiond/internal/session"
)

func TestConfigFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SESSIOND_DISPLAY", "7")
	t.Setenv("SESSIOND_CONFIG_DIR", "/var/lib/session")
	t.Setenv("SESSIOND_AGENT", "wine app.exe")
	t.Setenv("SESSIOND_CLEANUP_CMD", "rm -f")
	t.Setenv("SESSIOND_LOCK_DIR", "/run/session")

	cfg := configFromEnv()

	if cfg.DisplayIndex != 7 {
		t.Fatalf("display index = %d, want 7", cfg.DisplayIndex)
	}
	if cfg.ConfigDir != "/var/lib/session" {
		t.Fatalf("config dir = %q", cfg.ConfigDir)
	}
	if cfg.PasswordFile != filepath.Join("/var/lib/session", "passwd") {
		t.Fatalf("password file = %q", cfg.PasswordFile)
	}
	if want := []string{"wine", "app.exe"}; !reflect.DeepEqual(cfg.AgentCommand, want) {
		t.Fatalf("agent command = %v, want %v", cfg.AgentCommand, want)
	}
	if want := []string{"rm", "-f"}; !reflect.DeepEqual(cfg.CleanupCommand, want) {
		t.Fatalf("cleanup command = %v, want %v", cfg.CleanupCommand, want)
	}
	if cfg.LockDir != "/run/session" {
		t.Fatalf("lock dir = %q", cfg.LockDir)
	}
}

func TestConfigFromEnvIgnoresInvalidDisplay(t *testing.T) {
	t.Setenv("SESSIOND_DISPLAY", "-3")
	if cfg := configFromEnv(); cfg.DisplayIndex != session.Defaults().DisplayIndex {
		t.Fatalf("display index = %d, want default", cfg.DisplayIndex)
	}

	t.Setenv("SESSIOND_DISPLAY", "nope")
	if cfg := configFromEnv(); cfg.DisplayIndex != session.Defaults().DisplayIndex {
		t.Fatalf("display index = %d, want default", cfg.DisplayIndex)
	}
}

func TestOptionsConfigSplitsCommandFlags(t *testing.T) {
	opts := &options{
		cfg:            session.Defaults(),
		agentCommand:   "/bin/sh -c true",
		cleanupCommand: "rm -f",
	}
	cfg := opts.config()

	if want := []string{"/bin/sh", "-c", "true"}; !reflect.DeepEqual(cfg.AgentCommand, want) {
		t.Fatalf("agent command = %v, want %v", cfg.AgentCommand, want)
	}
	if want := []string{"rm", "-f"}; !reflect.DeepEqual(cfg.CleanupCommand, want) {
		t.Fatalf("cleanup command = %v, want %v", cfg.CleanupCommand, want)
	}
}

func TestOptionsConfigDerivesPasswordFile(t *testing.T) {
	opts := &options{cfg: session.Defaults()}
	opts.cfg.ConfigDir = "/srv/vnc"
	if cfg := opts.config(); cfg.PasswordFile != filepath.Join("/srv/vnc", "passwd") {
		t.Fatalf("password file = %q", cfg.PasswordFile)
	}
}

func TestOptionsLoggerRejectsBadLevel(t *testing.T) {
	opts := &options{logLevel: "chatty"}
	if _, err := opts.logger(); err == nil {
		t.Fatalf("expected error for unknown level")
	}

	opts.logLevel = "debug"
	if _, err := opts.logger(); err != nil {
		t.Fatalf("parse debug level: %v", err)
	}
}
