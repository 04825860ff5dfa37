package supervise

import (
	"sync"
)

// eventSink guards the supervisor's event channel so that producers on other
// goroutines (the log mux) can race the close without panicking. Sends after
// close are dropped.
type eventSink struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func newEventSink(size int) *eventSink {
	if size <= 0 {
		size = 1
	}
	return &eventSink{ch: make(chan Event, size)}
}

func (s *eventSink) events() <-chan Event {
	return s.ch
}

// send delivers evt, blocking while the buffer is full. Closed sinks drop
// the event.
func (s *eventSink) send(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- evt
}

// trySend delivers evt only if buffer space is available.
func (s *eventSink) trySend(evt Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- evt:
		return true
	default:
		return false
	}
}

// close closes the channel once; consumers see every event sent before the
// close.
func (s *eventSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
