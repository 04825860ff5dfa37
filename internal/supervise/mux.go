package supervise

import (
	"fmt"
	"sync"
	"time"

	"github.com/duo/sessiond/internal/proc"
)

// logMux fans captured child output into the supervisor's bounded event
// channel. When the consumer cannot keep up, log lines are dropped and a
// synthesized warning surfaces the number of discarded entries once room is
// available again.
type logMux struct {
	out *eventSink

	mu    sync.Mutex
	drops map[string]int
}

func newLogMux(out *eventSink) *logMux {
	return &logMux{
		out:   out,
		drops: make(map[string]int),
	}
}

// Add consumes lines from a child's log stream until the stream is closed.
func (m *logMux) Add(procName string, lines <-chan proc.LogLine) {
	if lines == nil {
		return
	}
	go func() {
		for line := range lines {
			m.deliver(logEvent(procName, line))
		}
		m.flushPending(procName, true)
	}()
}

func (m *logMux) deliver(evt Event) {
	if !m.flushPending(evt.Proc, false) {
		m.recordDrop(evt.Proc)
		return
	}
	if m.trySend(evt) {
		return
	}
	m.recordDrop(evt.Proc)
}

// flushPending attempts to emit a drop notice for the named process. It
// returns false when the notice itself cannot be delivered, in which case the
// count is restored. A final flush blocks instead of re-queueing.
func (m *logMux) flushPending(procName string, block bool) bool {
	m.mu.Lock()
	count := m.drops[procName]
	if count != 0 {
		delete(m.drops, procName)
	}
	m.mu.Unlock()

	if count == 0 {
		return true
	}
	notice := dropEvent(procName, count)
	if block {
		m.out.send(notice)
		return true
	}
	if m.trySend(notice) {
		return true
	}
	m.recordDropCount(procName, count)
	return false
}

func (m *logMux) recordDrop(procName string) {
	m.recordDropCount(procName, 1)
}

func (m *logMux) recordDropCount(procName string, count int) {
	m.mu.Lock()
	m.drops[procName] += count
	m.mu.Unlock()
}

func (m *logMux) trySend(evt Event) bool {
	return m.out.trySend(evt)
}

func logEvent(procName string, line proc.LogLine) Event {
	level := "info"
	if line.Source == proc.LogSourceStderr {
		level = "warn"
	}
	return Event{
		Timestamp: time.Now(),
		Proc:      procName,
		Type:      EventTypeLog,
		Message:   line.Message,
		Level:     level,
		Source:    line.Source,
	}
}

func dropEvent(procName string, count int) Event {
	return Event{
		Timestamp: time.Now(),
		Proc:      procName,
		Type:      EventTypeLog,
		Message:   fmt.Sprintf("dropped=%d", count),
		Level:     "warn",
		Source:    "system",
		Reason:    ReasonLogOverflow,
	}
}
