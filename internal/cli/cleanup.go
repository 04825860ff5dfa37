package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/duo/sessiond/internal/vnc"
)

func newCleanupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the display's stale lock and socket files",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			logger.SetOutput(cmd.ErrOrStderr())
			cfg := opts.config()

			lock, socket := vnc.LockPaths(cfg)
			logger.WithField("lock", lock).WithField("socket", socket).Info("removing stale display files")

			errs := vnc.Cleanup(cmd.Context(), cfg)
			for _, err := range errs {
				logger.WithError(err).Error("cleanup failed")
			}
			return errors.Join(errs...)
		},
	}
}
