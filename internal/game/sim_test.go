package game

import (
	"encoding/json"
	"testing"
	"time"

	"sectorclash/internal/config"
	"sectorclash/internal/game/nav"
)

func testRoster(n int) []RosterEntry {
	names := []string{"ada", "brin", "curt", "dana"}
	var roster []RosterEntry
	for i := 0; i < n; i++ {
		roster = append(roster, RosterEntry{
			ID:   names[i],
			Name: names[i],
		})
	}
	return roster
}

func newTestEngine(t *testing.T, seed int64, roster []RosterEntry) *Engine {
	t.Helper()
	e, err := NewEngine(Options{
		Roster:     roster,
		Difficulty: config.Casual(),
		Seed:       seed,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(Options{}); err == nil {
		t.Error("empty roster should fail")
	}
	if _, err := NewEngine(Options{Roster: []RosterEntry{{Name: "x"}}}); err == nil {
		t.Error("missing id should fail")
	}
	if _, err := NewEngine(Options{Roster: []RosterEntry{
		{ID: "a", Name: "a"}, {ID: "a", Name: "b"},
	}}); err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestMatchIDDerivedFromSeed(t *testing.T) {
	a := newTestEngine(t, 7, testRoster(2))
	b := newTestEngine(t, 7, testRoster(2))
	c := newTestEngine(t, 8, testRoster(2))
	if a.MatchID() != b.MatchID() {
		t.Error("same seed should yield the same match id")
	}
	if a.MatchID() == c.MatchID() {
		t.Error("different seeds should yield different match ids")
	}
}

func TestAdvanceAccumulator(t *testing.T) {
	e := newTestEngine(t, 1, testRoster(2))

	// 20 Hz: one tick per 50ms. 75ms runs one tick and banks 25ms.
	if got := e.Advance(75 * time.Millisecond); got != 1 {
		t.Errorf("Advance(75ms) ran %d ticks, want 1", got)
	}
	if got := e.Advance(25 * time.Millisecond); got != 1 {
		t.Errorf("Advance(25ms) with 25ms banked ran %d ticks, want 1", got)
	}
	if got := e.Advance(10 * time.Millisecond); got != 0 {
		t.Errorf("Advance(10ms) ran %d ticks, want 0", got)
	}
	if got := e.Advance(200 * time.Millisecond); got != 4 {
		t.Errorf("Advance(200ms) ran %d ticks, want 4", got)
	}
}

func TestDeterminism(t *testing.T) {
	// Two engines, same seed, all-AI roster, advanced identically,
	// must serialize to byte-identical snapshots including the event
	// stream.
	a := newTestEngine(t, 424242, testRoster(2))
	b := newTestEngine(t, 424242, testRoster(2))

	for i := 0; i < 12; i++ {
		a.AdvanceTicks(50)
		b.AdvanceTicks(50)
		sa, err := json.Marshal(a.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		sb, err := json.Marshal(b.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		if string(sa) != string(sb) {
			t.Fatalf("snapshots diverged after %d ticks", (i+1)*50)
		}
	}
}

func TestSubmitInputIgnoresUnknownAndAI(t *testing.T) {
	e := newTestEngine(t, 3, testRoster(2))

	e.SubmitInput("ghost", Input{Dir: nav.Up}) // must not panic
	e.SubmitInput("ada", Input{Dir: nav.Up})   // ada is AI (not connected)
	if len(e.pending) != 0 {
		t.Errorf("pending = %d, want 0", len(e.pending))
	}

	e.SetConnected("ada", true)
	e.SubmitInput("ada", Input{Dir: nav.Up})
	if len(e.pending) != 1 {
		t.Errorf("pending = %d, want 1 after connect", len(e.pending))
	}
}

func TestSubmitInputLastWriterWinsKeepsAbility(t *testing.T) {
	e := newTestEngine(t, 3, testRoster(2))
	e.SetConnected("ada", true)

	e.SubmitInput("ada", Input{Dir: nav.Up, Ability: true})
	e.SubmitInput("ada", Input{Dir: nav.Left})
	in := e.pending["ada"]
	if in.Dir != nav.Left {
		t.Errorf("dir = %v, want Left", in.Dir)
	}
	if !in.Ability {
		t.Error("ability press should survive a later direction-only input")
	}
}

func TestSetConnectedUnknownIgnored(t *testing.T) {
	e := newTestEngine(t, 3, testRoster(2))
	e.SetConnected("ghost", true) // must not panic
}

func TestGaugeConvertsToCharges(t *testing.T) {
	e := newTestEngine(t, 5, testRoster(1))
	p := e.participants[0]

	e.addGauge(p, 95)
	if p.Charges != 0 || p.Gauge != 95 {
		t.Errorf("charges=%d gauge=%d, want 0/95", p.Charges, p.Gauge)
	}
	e.addGauge(p, 10)
	if p.Charges != 1 || p.Gauge != 5 {
		t.Errorf("charges=%d gauge=%d, want 1/5", p.Charges, p.Gauge)
	}

	// Cap: gauge never converts past max charges.
	e.addGauge(p, 1000)
	if p.Charges != e.cfg.MaxCharges {
		t.Errorf("charges=%d, want cap %d", p.Charges, e.cfg.MaxCharges)
	}
	if p.Gauge > e.cfg.GaugeMax {
		t.Errorf("gauge=%d exceeds max %d", p.Gauge, e.cfg.GaugeMax)
	}
}

func TestAbilityRequiresCharge(t *testing.T) {
	e := newTestEngine(t, 5, testRoster(1))
	p := e.participants[0]

	e.activateAbility(p)
	if e.isEmpowered(p) {
		t.Error("ability with no charges should be a no-op")
	}

	p.Charges = 2
	e.activateAbility(p)
	if !e.isEmpowered(p) {
		t.Error("ability should empower")
	}
	if p.Charges != 1 {
		t.Errorf("charges=%d, want 1", p.Charges)
	}
}

func TestEventsDrainExactlyOnce(t *testing.T) {
	e := newTestEngine(t, 9, testRoster(2))
	e.AdvanceTicks(100)

	first := e.Snapshot()
	second := e.Snapshot()
	if len(first.Events) == 0 {
		t.Fatal("expected events after 100 ticks")
	}
	if len(second.Events) != 0 {
		t.Errorf("second drain returned %d events, want 0", len(second.Events))
	}

	// View never steals events.
	e.AdvanceTicks(100)
	_ = e.View()
	third := e.Snapshot()
	if len(third.Events) == 0 {
		t.Error("View must not drain the event log")
	}
}

func TestEventSequenceMonotonic(t *testing.T) {
	e := newTestEngine(t, 9, testRoster(2))
	e.AdvanceTicks(200)
	evs := e.Snapshot().Events
	for i := 1; i < len(evs); i++ {
		if evs[i].Sequence <= evs[i-1].Sequence {
			t.Fatalf("sequence not monotonic at %d: %d then %d",
				i, evs[i-1].Sequence, evs[i].Sequence)
		}
		if evs[i].Tick < evs[i-1].Tick {
			t.Fatalf("events out of tick order at %d", i)
		}
	}
}

func TestOutcomeFreezesEngine(t *testing.T) {
	e := newTestEngine(t, 11, testRoster(2))
	e.outcome = &Outcome{Reason: ReasonTimeout, EndTick: e.tick}

	if got := e.Advance(time.Second); got != 0 {
		t.Errorf("Advance after outcome ran %d ticks, want 0", got)
	}
	if got := e.AdvanceTicks(10); got != 0 {
		t.Errorf("AdvanceTicks after outcome ran %d ticks, want 0", got)
	}
}
