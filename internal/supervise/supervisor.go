package supervise

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/duo/sessiond/internal/metrics"
	"github.com/duo/sessiond/internal/proc"
	"github.com/duo/sessiond/internal/session"
	"github.com/duo/sessiond/internal/vnc"
)

const eventBuffer = 128

// Supervisor owns the session's two child processes: the display server and
// the application running under it. Startup is strictly sequential; shutdown
// signals the application first, then the display server, then clears the
// display's stale lock files. Both handles live behind the mutex so that a
// shutdown triggered between the two spawns sees a consistent view and
// treats an unset handle as nothing to terminate.
type Supervisor struct {
	cfg session.Config

	sink *eventSink
	mux  *logMux

	lookupEnv func(string) (string, bool)

	mu      sync.Mutex
	display *proc.Handle
	agent   *proc.Handle

	shutdownOnce sync.Once
}

// New constructs a supervisor for the provided session configuration.
func New(cfg session.Config) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	sink := newEventSink(eventBuffer)
	return &Supervisor{
		cfg:       cfg,
		sink:      sink,
		mux:       newLogMux(sink),
		lookupEnv: os.LookupEnv,
	}, nil
}

// Events returns the supervisor's notification stream: lifecycle transitions
// plus captured child output. The channel is closed once Run has finished
// tearing the session down, after the last teardown event; consumers that
// drain until the close see every shutdown step.
func (s *Supervisor) Events() <-chan Event {
	return s.sink.events()
}

// Run starts the display server, then the application, and blocks until the
// application exits or ctx is cancelled. Either way the session is torn down
// before Run returns. Teardown failures are reported as events, never as a
// return value; only startup can fail.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.sink.close()

	password, ok := s.lookupEnv(s.cfg.PasswordEnv)
	if !ok || password == "" {
		return fmt.Errorf("environment variable %s is not set", s.cfg.PasswordEnv)
	}

	if err := s.startDisplayServer(ctx, password); err != nil {
		return err
	}

	agent, err := s.startApplication()
	if err != nil {
		return err
	}

	select {
	case <-agent.Done():
		s.sendEvent(ProcApplication, EventTypeStopped, "application exited", ReasonExit, nil)
	case <-ctx.Done():
	}

	// Cancellation must not cut teardown short.
	s.Shutdown(context.WithoutCancel(ctx))
	return nil
}

func (s *Supervisor) startDisplayServer(ctx context.Context, password string) error {
	s.sendEvent(ProcDisplayServer, EventTypeStarting, "starting display server", ReasonStart, nil)

	if err := vnc.EnsureConfigDir(s.cfg.ConfigDir); err != nil {
		return err
	}
	if err := vnc.ProvisionPassword(ctx, s.cfg, password); err != nil {
		return err
	}
	s.sendEvent(ProcDisplayServer, EventTypeStarting, "credentials provisioned", ReasonCredentials, nil)

	handle, err := proc.Start(ProcDisplayServer, vnc.ServerArgs(s.cfg))
	if err != nil {
		return err
	}
	metrics.IncProcessStart(ProcDisplayServer)
	s.mux.Add(ProcDisplayServer, handle.Logs())

	s.mu.Lock()
	s.display = handle
	s.mu.Unlock()

	s.sendEvent(ProcDisplayServer, EventTypeStarted,
		fmt.Sprintf("display server on %s (pid %d)", s.cfg.Display(), handle.Pid()), ReasonStart, nil)
	return nil
}

func (s *Supervisor) startApplication() (*proc.Handle, error) {
	s.sendEvent(ProcApplication, EventTypeStarting, "starting application", ReasonStart, nil)

	handle, err := proc.Start(ProcApplication, s.cfg.AgentCommand)
	if err != nil {
		return nil, err
	}
	metrics.IncProcessStart(ProcApplication)
	s.mux.Add(ProcApplication, handle.Logs())

	s.mu.Lock()
	s.agent = handle
	s.mu.Unlock()

	s.sendEvent(ProcApplication, EventTypeStarted,
		fmt.Sprintf("application running (pid %d)", handle.Pid()), ReasonStart, nil)
	return handle, nil
}

// Shutdown signals the application, then the display server, then removes the
// display's lock and socket files. Every step is best effort: failures are
// reported as events and never propagated. Only handles that are actually set
// are acted on, so Shutdown is safe to invoke at any point after
// construction. Repeat invocations are no-ops.
func (s *Supervisor) Shutdown(ctx context.Context) {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		agent := s.agent
		display := s.display
		s.mu.Unlock()

		s.stopProcess(ProcApplication, agent)
		s.stopProcess(ProcDisplayServer, display)
		s.cleanup(ctx)
	})
}

func (s *Supervisor) stopProcess(name string, handle *proc.Handle) {
	s.sendEvent(name, EventTypeStopping, "stopping "+name, ReasonShutdown, nil)
	if handle == nil {
		s.sendEvent(name, EventTypeStopped, name+" was never started", ReasonNotStarted, nil)
		return
	}

	select {
	case <-handle.Done():
		// Reaped already; signalling the freed process group could hit an
		// unrelated process.
		s.sendEvent(name, EventTypeStopped, name+" already exited", ReasonAlreadyExited, nil)
		return
	default:
	}

	err := handle.Signal(syscall.SIGTERM)
	switch {
	case errors.Is(err, proc.ErrProcessGone):
		s.sendEvent(name, EventTypeStopped, name+" already exited", ReasonAlreadyExited, nil)
	case err != nil:
		s.sendEvent(name, EventTypeError, "stop "+name, ReasonShutdown, err)
	default:
		metrics.IncShutdownSignal(name)
		s.sendEvent(name, EventTypeStopped,
			fmt.Sprintf("sent SIGTERM to %s (pid %d)", name, handle.Pid()), ReasonSignal, nil)
	}
}

func (s *Supervisor) cleanup(ctx context.Context) {
	lock, socket := vnc.LockPaths(s.cfg)
	s.sendEvent(ProcSupervisor, EventTypeStopping,
		fmt.Sprintf("removing %s and %s", lock, socket), ReasonCleanup, nil)
	for _, err := range vnc.Cleanup(ctx, s.cfg) {
		metrics.IncCleanupFailure()
		s.sendEvent(ProcSupervisor, EventTypeError, "cleanup", ReasonCleanupFailure, err)
	}
	s.sendEvent(ProcSupervisor, EventTypeStopped, "cleanup finished", ReasonCleanup, nil)
}
