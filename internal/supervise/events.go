package supervise

import (
	"time"
)

// EventType captures high level lifecycle notifications emitted by the
// supervisor.
type EventType string

const (
	EventTypeStarting EventType = "starting"
	EventTypeStarted  EventType = "started"
	EventTypeStopping EventType = "stopping"
	EventTypeStopped  EventType = "stopped"
	EventTypeLog      EventType = "log"
	EventTypeError    EventType = "error"
)

// Process identifiers used in events.
const (
	ProcDisplayServer = "display-server"
	ProcApplication   = "application"
	ProcSupervisor    = "supervisor"
)

// Event represents a single lifecycle or log notification.
type Event struct {
	Timestamp time.Time
	Proc      string
	Type      EventType
	Message   string
	Level     string
	Source    string
	Err       error
	Reason    string
}

const (
	ReasonStart          = "start"
	ReasonCredentials    = "credentials"
	ReasonExit           = "exit"
	ReasonShutdown       = "shutdown"
	ReasonSignal         = "signal"
	ReasonAlreadyExited  = "already_exited"
	ReasonNotStarted     = "not_started"
	ReasonCleanup        = "cleanup"
	ReasonCleanupFailure = "cleanup_failure"
	ReasonLogOverflow    = "log_overflow"
)

func (s *Supervisor) sendEvent(proc string, t EventType, message string, reason string, err error) {
	level := "info"
	if err != nil {
		level = "error"
	}
	s.sink.send(Event{
		Timestamp: time.Now(),
		Proc:      proc,
		Type:      t,
		Message:   message,
		Level:     level,
		Source:    "system",
		Err:       err,
		Reason:    reason,
	})
}
