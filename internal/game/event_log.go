package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"
)

const (
	auditChannelSize   = 1024
	auditFlushInterval = 250 * time.Millisecond

	// Narration is commentary, not state. The audit stream caps it so a
	// chatty match cannot bloat the file; state events are never limited.
	narrationPerSec = 20
	narrationBurst  = 40
)

// EventLog accumulates delta events between snapshots. Emission and
// draining happen inside the engine's tick lock, so the pending list
// is deterministic for a given seed; the optional audit sink mirrors
// every event to a gzip NDJSON file on its own goroutine and never
// feeds back into the simulation.
type EventLog struct {
	mu      sync.Mutex
	seq     uint64
	pending []Event

	sink *auditSink
}

// NewEventLog creates an empty log with no audit sink.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// StartAudit opens a gzip NDJSON audit file and begins mirroring
// events to it asynchronously.
func (l *EventLog) StartAudit(path string) error {
	s, err := newAuditSink(path)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.sink = s
	l.mu.Unlock()
	return nil
}

// Stop flushes and closes the audit sink, if any. The in-memory log
// keeps working.
func (l *EventLog) Stop() {
	l.mu.Lock()
	s := l.sink
	l.sink = nil
	l.mu.Unlock()
	if s != nil {
		s.stop()
	}
}

// Emit appends an event with the next sequence number and mirrors it
// to the audit sink.
func (l *EventLog) Emit(t EventType, tick int64, payload interface{}) Event {
	l.mu.Lock()
	l.seq++
	ev := Event{
		Version:  EventVersion,
		Type:     t,
		Sequence: l.seq,
		Tick:     tick,
		Payload:  EncodePayload(payload),
	}
	l.pending = append(l.pending, ev)
	s := l.sink
	l.mu.Unlock()

	if s != nil {
		s.offer(ev)
	}
	return ev
}

// Drain returns all pending events and clears them. Each event is
// returned exactly once.
func (l *EventLog) Drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Pending reports the number of undrained events.
func (l *EventLog) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Dropped reports how many events the audit sink discarded under
// backpressure or narration limiting. Zero without a sink.
func (l *EventLog) Dropped() uint64 {
	l.mu.Lock()
	s := l.sink
	l.mu.Unlock()
	if s == nil {
		return 0
	}
	return atomic.LoadUint64(&s.dropped)
}

// auditSink writes events to an append-only gzip NDJSON file.
type auditSink struct {
	ch       chan Event
	file     *os.File
	zw       *gzip.Writer
	narr     *rate.Limiter
	dropped  uint64 // atomic
	done     chan struct{}
	stopOnce sync.Once
}

func newAuditSink(path string) (*auditSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	s := &auditSink{
		ch:   make(chan Event, auditChannelSize),
		file: file,
		zw:   gzip.NewWriter(file),
		narr: rate.NewLimiter(narrationPerSec, narrationBurst),
		done: make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

// offer enqueues without blocking; the simulation never waits on disk.
func (s *auditSink) offer(ev Event) {
	if ev.Type == EventNarration && !s.narr.Allow() {
		atomic.AddUint64(&s.dropped, 1)
		return
	}
	select {
	case s.ch <- ev:
	default:
		atomic.AddUint64(&s.dropped, 1)
	}
}

func (s *auditSink) loop() {
	defer close(s.done)
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-s.ch:
			if !ok {
				s.zw.Close()
				s.file.Close()
				return
			}
			s.write(ev)
		case <-ticker.C:
			s.zw.Flush()
		}
	}
}

func (s *auditSink) write(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.zw.Write(data)
	s.zw.Write([]byte("\n"))
}

func (s *auditSink) stop() {
	s.stopOnce.Do(func() {
		close(s.ch)
		<-s.done
	})
}
