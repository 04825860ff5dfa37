//go:build windows

package cli

import (
	"os"
	"syscall"
)

// shutdownSignals are the termination-class signals that trigger session
// teardown. SIGHUP does not exist on Windows.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
