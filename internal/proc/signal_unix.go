//go:build !windows

package proc

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// Signal delivers sig to the child's process group. Signalling a child that
// has already exited reports ErrProcessGone rather than a raw ESRCH.
func (h *Handle) Signal(sig syscall.Signal) error {
	if h.cmd.Process == nil {
		return ErrProcessGone
	}
	if err := syscall.Kill(-h.cmd.Process.Pid, sig); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return ErrProcessGone
		}
		return fmt.Errorf("signal process group %s: %w", h.name, err)
	}
	return nil
}
