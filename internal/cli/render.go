package cli

import (
	"github.com/sirupsen/logrus"

	"github.com/duo/sessiond/internal/supervise"
)

// renderEvent writes a supervisor event through the shared logger. Child
// output keeps its origin stream in the source field; lifecycle events carry
// the step that produced them in the reason field.
func renderEvent(logger *logrus.Logger, evt supervise.Event) {
	entry := logger.WithFields(logrus.Fields{
		"proc":   evt.Proc,
		"source": evt.Source,
	})
	if evt.Reason != "" {
		entry = entry.WithField("reason", evt.Reason)
	}
	if evt.Err != nil {
		entry = entry.WithError(evt.Err)
	}

	switch evt.Level {
	case "error":
		entry.Error(evt.Message)
	case "warn":
		entry.Warn(evt.Message)
	default:
		entry.Info(evt.Message)
	}
}
