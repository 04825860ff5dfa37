//go:build windows

package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func configureSysProcAttr(cmd *exec.Cmd) {}

// Signal delivers sig to the child process. Without job objects there is no
// process-group delivery on Windows, so grandchildren are not covered.
func (h *Handle) Signal(sig syscall.Signal) error {
	if h.cmd.Process == nil {
		return ErrProcessGone
	}
	if err := h.cmd.Process.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return ErrProcessGone
		}
		return fmt.Errorf("signal process %s: %w", h.name, err)
	}
	return nil
}
