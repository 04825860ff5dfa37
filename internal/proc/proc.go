package proc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

const (
	LogSourceStdout = "stdout"
	LogSourceStderr = "stderr"
)

// ErrProcessGone reports that a signal targeted a process that has already
// exited.
var ErrProcessGone = errors.New("process already gone")

// LogLine is a single line captured from a child process stream.
type LogLine struct {
	Message string
	Source  string
}

// Handle supervises one spawned child process. The child runs in its own
// process group so that termination signals reach any grandchildren it forks.
type Handle struct {
	name string
	cmd  *exec.Cmd

	logs chan LogLine
	done chan struct{}

	mu      sync.Mutex
	waitErr error
}

// Start spawns argv as a child process and begins streaming its stdout and
// stderr line by line. The child inherits the supervisor's environment. The
// returned handle's Done channel closes once the child has been reaped.
func Start(name string, argv []string) (*Handle, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("process %s requires a command", name)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("process %s stdout: %w", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("process %s stderr: %w", name, err)
	}

	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start process %s: %w", name, err)
	}

	h := &Handle{
		name: name,
		cmd:  cmd,
		logs: make(chan LogLine, 64),
		done: make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go h.streamLogs(stdout, LogSourceStdout, &wg)
	go h.streamLogs(stderr, LogSourceStderr, &wg)
	go func() {
		wg.Wait()
		close(h.logs)
	}()

	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		h.waitErr = err
		h.mu.Unlock()
		close(h.done)
	}()

	return h, nil
}

// Name returns the identifier the handle was started with.
func (h *Handle) Name() string {
	return h.name
}

// Pid returns the child's process id.
func (h *Handle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Done is closed once the child has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the child's wait error. It is only meaningful after Done has
// closed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waitErr
}

// Logs returns the child's captured output lines. The channel is closed once
// both streams reach EOF.
func (h *Handle) Logs() <-chan LogLine {
	return h.logs
}

// Wait blocks until the child exits or the context is cancelled. The child's
// exit status is not inspected; a non-zero exit is still a normal return.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) streamLogs(r io.Reader, source string, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		h.logs <- LogLine{Message: line, Source: source}
	}
}

// Run executes argv to completion with the provided stdin, returning its
// stdout. Used for one-shot helper utilities rather than supervised children.
func Run(ctx context.Context, argv []string, stdin io.Reader) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("run requires a command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("run %s: %w: %s", argv[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("run %s: %w", argv[0], err)
	}
	return out, nil
}
