// Package vnc wraps the external display-server tooling: credential
// provisioning through vncpasswd, launcher argument construction, and
// removal of the stale lock and socket files a dead server leaves behind.
package vnc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/duo/sessiond/internal/proc"
	"github.com/duo/sessiond/internal/session"
)

// EnsureConfigDir creates the display-server state directory if it does not
// exist. Calling it on an existing directory is a no-op.
func EnsureConfigDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}
	return nil
}

// ProvisionPassword hashes the session password with the configured utility
// and writes the result to the password file with owner-only permissions. The
// plaintext never touches the filesystem; it is piped to the hasher's stdin.
func ProvisionPassword(ctx context.Context, cfg session.Config, password string) error {
	if password == "" {
		return fmt.Errorf("session password is empty")
	}

	hashed, err := proc.Run(ctx, []string{cfg.VncPasswdPath, "-f"}, strings.NewReader(password))
	if err != nil {
		return fmt.Errorf("hash session password: %w", err)
	}

	if err := os.WriteFile(cfg.PasswordFile, hashed, 0o700); err != nil {
		return fmt.Errorf("write password file %s: %w", cfg.PasswordFile, err)
	}
	// WriteFile only applies the mode on creation; re-provisioning over an
	// existing file must still end up owner-only.
	if err := os.Chmod(cfg.PasswordFile, 0o700); err != nil {
		return fmt.Errorf("chmod password file %s: %w", cfg.PasswordFile, err)
	}
	return nil
}

// ServerArgs returns the launcher argv for the configured session: remote
// connections permitted, the configured window manager as the xstartup
// command, bound to the configured display index.
func ServerArgs(cfg session.Config) []string {
	return []string{
		cfg.VncServerPath,
		"-localhost", "no",
		"-xstartup", cfg.XStartupPath,
		cfg.Display(),
	}
}

// LockPaths returns the lock file and display socket representing an in-use
// display index. Both must be removed before the index can be bound again.
func LockPaths(cfg session.Config) (lock string, socket string) {
	lock = filepath.Join(cfg.LockDir, fmt.Sprintf(".X%d-lock", cfg.DisplayIndex))
	socket = filepath.Join(cfg.LockDir, ".X11-unix", fmt.Sprintf("X%d", cfg.DisplayIndex))
	return lock, socket
}

// Cleanup removes the display's lock and socket files through the configured
// removal command, one invocation per path. Each failure is reported against
// its path; the remaining paths are still attempted.
func Cleanup(ctx context.Context, cfg session.Config) []error {
	lock, socket := LockPaths(cfg)

	var errs []error
	for _, path := range []string{lock, socket} {
		argv := append(append([]string(nil), cfg.CleanupCommand...), path)
		if _, err := proc.Run(ctx, argv, nil); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errs
}
