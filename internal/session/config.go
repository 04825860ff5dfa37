package session

import (
	"fmt"
	"path/filepath"
)

// Config describes a supervised desktop session: the VNC display server, the
// application launched under it, and the external commands used to provision
// credentials and clear stale display state. Binary paths and command argv
// are plain fields so tests can substitute harmless stand-ins; the zero
// configuration is not usable, start from Defaults.
type Config struct {
	// DisplayIndex is the X display number the VNC server binds.
	DisplayIndex int

	// ConfigDir holds display-server state and is created if absent.
	ConfigDir string

	// PasswordFile receives the hashed session password, written owner-only.
	PasswordFile string

	// PasswordEnv names the environment variable carrying the session
	// password. The variable is required; there is no default password.
	PasswordEnv string

	// VncPasswdPath is the password hashing utility. It reads the plaintext
	// password on stdin and writes the hashed form on stdout.
	VncPasswdPath string

	// VncServerPath is the display-server launcher.
	VncServerPath string

	// XStartupPath is the window manager handed to the launcher.
	XStartupPath string

	// AgentCommand is the full argv of the foreground application, including
	// the compatibility-layer runtime that hosts it.
	AgentCommand []string

	// CleanupCommand is the argv prefix used to remove stale lock files. Each
	// lock path is appended as the final argument of a separate invocation.
	CleanupCommand []string

	// LockDir is the directory holding the display lock file. The display
	// socket lives under LockDir/.X11-unix.
	LockDir string
}

// Defaults returns the fixed session contract: display :5, openbox under a
// TigerVNC server, and the agent executable hosted by wine.
func Defaults() Config {
	configDir := "/home/user/.vnc"
	return Config{
		DisplayIndex:  5,
		ConfigDir:     configDir,
		PasswordFile:  filepath.Join(configDir, "passwd"),
		PasswordEnv:   "VNCPASS",
		VncPasswdPath: "/usr/bin/vncpasswd",
		VncServerPath: "/usr/bin/vncserver",
		XStartupPath:  "/usr/bin/openbox",
		AgentCommand: []string{
			"wine", "cmd", "/k",
			"/home/user/matrix-wechat-agent/matrix-wechat-agent.exe",
		},
		CleanupCommand: []string{"sudo", "rm", "-f"},
		LockDir:        "/tmp",
	}
}

// Display returns the ":N" display argument for the configured index.
func (c Config) Display() string {
	return fmt.Sprintf(":%d", c.DisplayIndex)
}

// Validate reports configuration that cannot describe a runnable session.
func (c Config) Validate() error {
	if c.DisplayIndex < 0 {
		return fmt.Errorf("display index %d is negative", c.DisplayIndex)
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("config dir is required")
	}
	if c.PasswordFile == "" {
		return fmt.Errorf("password file is required")
	}
	if c.PasswordEnv == "" {
		return fmt.Errorf("password environment variable name is required")
	}
	if c.VncPasswdPath == "" {
		return fmt.Errorf("vncpasswd path is required")
	}
	if c.VncServerPath == "" {
		return fmt.Errorf("vncserver path is required")
	}
	if len(c.AgentCommand) == 0 {
		return fmt.Errorf("agent command is required")
	}
	if len(c.CleanupCommand) == 0 {
		return fmt.Errorf("cleanup command is required")
	}
	if c.LockDir == "" {
		return fmt.Errorf("lock dir is required")
	}
	return nil
}
