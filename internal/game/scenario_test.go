package game

import (
	"testing"

	"sectorclash/internal/config"
)

// TestFullMatchAIOnly runs an unattended match end to end: two AI
// participants, casual difficulty, three-minute limit, fixed seed.
// The match must terminate and every invariant must hold throughout.
func TestFullMatchAIOnly(t *testing.T) {
	e, err := NewEngine(Options{
		Roster:       testRoster(2),
		Difficulty:   config.Casual(),
		Seed:         424242,
		TimeLimitSec: 180,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	maxTicks := int(e.timeLimitTicks) + 10
	for ran := 0; ran < maxTicks; ran += 20 {
		if e.AdvanceTicks(20) == 0 {
			break
		}
		assertInvariants(t, e)
		if t.Failed() {
			t.Fatalf("invariant breach at tick %d", e.tick)
		}
	}

	out := e.Outcome()
	if out == nil {
		t.Fatal("match did not terminate within the time limit")
	}
	switch out.Reason {
	case ReasonVictory, ReasonTimeout, ReasonAllDown, ReasonCollapse:
	default:
		t.Fatalf("unknown outcome reason %q", out.Reason)
	}
	if out.DurationMs <= 0 || out.DurationMs > 181_000 {
		t.Errorf("duration = %dms, want within the limit", out.DurationMs)
	}

	sum, ok := e.Summary()
	if !ok {
		t.Fatal("summary should be available after termination")
	}
	if sum.Reason != string(out.Reason) {
		t.Errorf("summary reason %q != outcome %q", sum.Reason, out.Reason)
	}
	if len(sum.Ranking) != 2 {
		t.Errorf("ranking rows = %d, want 2", len(sum.Ranking))
	}
}

// assertInvariants checks the structural invariants that must hold at
// every tick boundary.
func assertInvariants(t *testing.T, e *Engine) {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.participants {
		if p.Charges < 0 || p.Charges > e.cfg.MaxCharges {
			t.Errorf("%s charges out of range: %d", p.ID, p.Charges)
		}
		if p.Gauge < 0 || p.Gauge > e.cfg.GaugeMax {
			t.Errorf("%s gauge out of range: %d", p.ID, p.Gauge)
		}
		if p.Down != (p.DownSince >= 0) {
			t.Errorf("%s down=%v but DownSince=%d", p.ID, p.Down, p.DownSince)
		}
		if !e.layout.Open(p.Pos) {
			t.Errorf("%s standing in a wall at %v", p.ID, p.Pos)
		}
		if p.Score < 0 {
			t.Errorf("%s negative score %d", p.ID, p.Score)
		}
	}

	for _, a := range e.adversaries {
		if !e.layout.Open(a.Pos) {
			t.Errorf("adversary %d in a wall at %v", a.ID, a.Pos)
		}
		if a.HP < 1 {
			t.Errorf("adversary %d alive with HP %d", a.ID, a.HP)
		}
		if a.Variant != VariantElite && a.HP != 1 {
			t.Errorf("non-elite %d has HP %d", a.ID, a.HP)
		}
	}

	elites := 0
	for _, a := range e.adversaries {
		if a.Variant == VariantElite {
			elites++
		}
	}
	if elites > 1 {
		t.Errorf("%d elites alive, max is 1", elites)
	}

	for _, s := range e.sectors {
		if s.CurrentPickups < 0 {
			t.Errorf("sector %d negative pickups", s.Def.ID)
		}
	}

	// Dot ledger: per-sector counts must match the dot set.
	perSector := make(map[int]int)
	for c := range e.dots {
		if id := e.layout.SectorAt(c); id >= 0 {
			perSector[id]++
		}
	}
	for _, s := range e.sectors {
		if perSector[s.Def.ID] != s.CurrentPickups {
			t.Errorf("sector %d pickup ledger %d != actual %d",
				s.Def.ID, s.CurrentPickups, perSector[s.Def.ID])
		}
	}
}

// TestDifficultiesComplete runs a short match on each preset to shake
// out preset-specific crashes.
func TestDifficultiesComplete(t *testing.T) {
	for _, name := range []string{"casual", "normal", "hard"} {
		name := name
		t.Run(name, func(t *testing.T) {
			e, err := NewEngine(Options{
				Roster:       testRoster(3),
				Difficulty:   config.ParseDifficulty(name),
				Seed:         99,
				TimeLimitSec: 30,
			})
			if err != nil {
				t.Fatalf("NewEngine: %v", err)
			}
			for e.Outcome() == nil {
				if e.AdvanceTicks(100) == 0 {
					break
				}
			}
			if e.Outcome() == nil {
				t.Fatal("match did not terminate")
			}
			assertInvariants(t, e)
		})
	}
}
