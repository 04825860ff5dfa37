package cli

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/duo/sessiond/internal/session"
)

// NewRootCmd builds the sessiond command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{cfg: configFromEnv(), logLevel: logLevelFromEnv()}

	root := &cobra.Command{
		Use:   "sessiond",
		Short: "Supervisor for a VNC desktop session and its application",
	}

	root.PersistentFlags().IntVar(&opts.cfg.DisplayIndex, "display", opts.cfg.DisplayIndex, "X display index the VNC server binds")
	root.PersistentFlags().StringVar(&opts.cfg.ConfigDir, "config-dir", opts.cfg.ConfigDir, "Directory holding display-server state")
	root.PersistentFlags().StringVar(&opts.cfg.PasswordEnv, "password-env", opts.cfg.PasswordEnv, "Environment variable carrying the session password")
	root.PersistentFlags().StringVar(&opts.cfg.VncPasswdPath, "vncpasswd", opts.cfg.VncPasswdPath, "Path to the password hashing utility")
	root.PersistentFlags().StringVar(&opts.cfg.VncServerPath, "vncserver", opts.cfg.VncServerPath, "Path to the display-server launcher")
	root.PersistentFlags().StringVar(&opts.cfg.XStartupPath, "xstartup", opts.cfg.XStartupPath, "Window manager handed to the launcher")
	root.PersistentFlags().StringVar(&opts.agentCommand, "agent", opts.agentCommand, "Application command line")
	root.PersistentFlags().StringVar(&opts.cleanupCommand, "cleanup-cmd", opts.cleanupCommand, "Command prefix used to remove stale lock files")
	root.PersistentFlags().StringVar(&opts.cfg.LockDir, "lock-dir", opts.cfg.LockDir, "Directory holding the display lock file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newCleanupCmd(opts))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root
}

// Execute runs the CLI entrypoint. A termination signal cancels the command
// context; the run command reacts by tearing the session down.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), shutdownSignals...)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	cfg      session.Config
	logLevel string

	// Command lines are flat flag strings split on whitespace; argv with
	// embedded spaces needs the env/defaults path instead.
	agentCommand   string
	cleanupCommand string
}

// config resolves the effective session configuration from defaults, env and
// flags. The password file always lives under the configured state directory.
func (o *options) config() session.Config {
	cfg := o.cfg
	if o.agentCommand != "" {
		cfg.AgentCommand = strings.Fields(o.agentCommand)
	}
	if o.cleanupCommand != "" {
		cfg.CleanupCommand = strings.Fields(o.cleanupCommand)
	}
	cfg.PasswordFile = filepath.Join(cfg.ConfigDir, "passwd")
	return cfg
}

func (o *options) logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", o.logLevel, err)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	return logger, nil
}

func configFromEnv() session.Config {
	cfg := session.Defaults()
	if value := os.Getenv("SESSIOND_DISPLAY"); value != "" {
		if index, err := strconv.Atoi(value); err == nil && index >= 0 {
			cfg.DisplayIndex = index
		}
	}
	if value := os.Getenv("SESSIOND_CONFIG_DIR"); value != "" {
		cfg.ConfigDir = value
		cfg.PasswordFile = filepath.Join(value, "passwd")
	}
	if value := os.Getenv("SESSIOND_PASSWORD_ENV"); value != "" {
		cfg.PasswordEnv = value
	}
	if value := os.Getenv("SESSIOND_VNCPASSWD"); value != "" {
		cfg.VncPasswdPath = value
	}
	if value := os.Getenv("SESSIOND_VNCSERVER"); value != "" {
		cfg.VncServerPath = value
	}
	if value := os.Getenv("SESSIOND_XSTARTUP"); value != "" {
		cfg.XStartupPath = value
	}
	if value := os.Getenv("SESSIOND_AGENT"); value != "" {
		cfg.AgentCommand = strings.Fields(value)
	}
	if value := os.Getenv("SESSIOND_CLEANUP_CMD"); value != "" {
		cfg.CleanupCommand = strings.Fields(value)
	}
	if value := os.Getenv("SESSIOND_LOCK_DIR"); value != "" {
		cfg.LockDir = value
	}
	return cfg
}

func logLevelFromEnv() string {
	if value := os.Getenv("SESSIOND_LOG_LEVEL"); value != "" {
		return value
	}
	return "info"
}
