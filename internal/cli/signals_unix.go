//go:build !windows

package cli

import (
	"os"
	"syscall"
)

// shutdownSignals are the termination-class signals that trigger session
// teardown. All three behave identically.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGHUP, syscall.SIGTERM}
