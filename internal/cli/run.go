package cli

import (
	"github.com/spf13/cobra"

	"github.com/duo/sessiond/internal/supervise"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the display server and the supervised application",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			logger.SetOutput(cmd.ErrOrStderr())
			cfg := opts.config()

			sup, err := supervise.New(cfg)
			if err != nil {
				return err
			}

			rendered := make(chan struct{})
			go func() {
				defer close(rendered)
				for evt := range sup.Events() {
					renderEvent(logger, evt)
				}
			}()

			logger.WithField("display", cfg.Display()).Info("starting session supervisor")
			err = sup.Run(cmd.Context())

			// The event stream closes once teardown finishes; wait for the
			// renderer so the final shutdown lines are printed before exit.
			<-rendered
			return err
		},
	}
}
