package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestEventLogSequencesAndDrain(t *testing.T) {
	l := NewEventLog()
	for i := 0; i < 5; i++ {
		l.Emit(EventPickupConsumed, int64(i), nil)
	}
	if l.Pending() != 5 {
		t.Fatalf("pending = %d, want 5", l.Pending())
	}

	evs := l.Drain()
	if len(evs) != 5 {
		t.Fatalf("drained %d, want 5", len(evs))
	}
	for i, ev := range evs {
		if ev.Sequence != uint64(i+1) {
			t.Errorf("event %d sequence = %d, want %d", i, ev.Sequence, i+1)
		}
	}
	if got := l.Drain(); len(got) != 0 {
		t.Errorf("second drain returned %d events", len(got))
	}
}

func TestAuditSinkWritesGzipNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.ndjson.gz")
	l := NewEventLog()
	if err := l.StartAudit(path); err != nil {
		t.Fatalf("StartAudit: %v", err)
	}

	l.Emit(EventSectorCaptured, 10, SectorPayload{SectorID: 2, Progress: 0.5})
	l.Emit(EventParticipantDown, 11, DownPayload{ParticipantID: "ada"})
	l.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer zr.Close()

	var lines int
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("line %d not valid JSON: %v", lines, err)
		}
		if ev.Version != EventVersion {
			t.Errorf("line %d version = %d, want %d", lines, ev.Version, EventVersion)
		}
		lines++
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if lines != 2 {
		t.Errorf("audit lines = %d, want 2", lines)
	}
}

func TestAuditSinkLimitsNarrationOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.ndjson.gz")
	l := NewEventLog()
	if err := l.StartAudit(path); err != nil {
		t.Fatalf("StartAudit: %v", err)
	}

	for i := 0; i < 200; i++ {
		l.Emit(EventNarration, int64(i), NarrationPayload{Text: "chatter"})
	}
	if l.Dropped() == 0 {
		t.Error("narration flood should trip the sink limiter")
	}
	// The in-memory log never drops; determinism depends on it.
	if l.Pending() != 200 {
		t.Errorf("pending = %d, want all 200", l.Pending())
	}
	l.Stop()
}

func TestEventTypeWireNames(t *testing.T) {
	raw, err := json.Marshal(EventSectorCaptured)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"sector_captured"` {
		t.Errorf("marshaled type = %s, want \"sector_captured\"", raw)
	}
	if EventType(200).String() != "unknown" {
		t.Error("out-of-range type should stringify as unknown")
	}
}
