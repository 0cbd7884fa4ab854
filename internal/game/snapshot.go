package game

import (
	"sectorclash/internal/game/nav"
)

// TimelineEntry is one line of the match's running story, bounded to
// the most recent entries.
type TimelineEntry struct {
	Tick int64  `json:"tick"`
	Ms   int64  `json:"ms"`
	Text string `json:"text"`
}

// ParticipantView is the wire shape of one participant.
type ParticipantView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Connected bool      `json:"connected"`
	Pos       nav.Point `json:"pos"`
	Facing    string    `json:"facing"`
	State     string    `json:"state"` // normal, empowered, down
	Charges   int       `json:"charges"`
	Gauge     int       `json:"gauge"`
	Score     int       `json:"score"`
	DownForMs int64     `json:"downForMs,omitempty"`
}

// AdversaryView is the wire shape of one adversary.
type AdversaryView struct {
	ID      int       `json:"id"`
	Variant string    `json:"variant"`
	Pos     nav.Point `json:"pos"`
	HP      int       `json:"hp"`
	Stunned bool      `json:"stunned"`
}

// SectorView is the wire shape of one sector's mutable state.
type SectorView struct {
	ID             int  `json:"id"`
	Captured       bool `json:"captured"`
	Discovered     bool `json:"discovered"`
	CurrentPickups int  `json:"currentPickups"`
	InitialPickups int  `json:"initialPickups"`
	Decaying       bool `json:"decaying"`
}

// GateView is the wire shape of one gate.
type GateView struct {
	ID        int          `json:"id"`
	Doors     [2]nav.Point `json:"doors"`
	Switches  [2]nav.Point `json:"switches"`
	Open      bool         `json:"open"`
	Permanent bool         `json:"permanent"`
}

// PelletView is the wire shape of one power pellet.
type PelletView struct {
	Pos    nav.Point `json:"pos"`
	Active bool      `json:"active"`
}

// FruitView is the wire shape of one transient item.
type FruitView struct {
	ID   int       `json:"id"`
	Type string    `json:"type"`
	Pos  nav.Point `json:"pos"`
}

// Snapshot is the full externally-visible match state at one tick.
// Events carries the delta log drained since the previous snapshot;
// a view taken without draining has Events nil.
type Snapshot struct {
	MatchID    string  `json:"matchId"`
	Seed       int64   `json:"seed"`
	Tick       int64   `json:"tick"`
	ElapsedMs  int64   `json:"elapsedMs"`
	Progress   float64 `json:"progress"`
	Difficulty string  `json:"difficulty"`

	Terminated bool   `json:"terminated"`
	Reason     string `json:"reason,omitempty"`

	Participants []ParticipantView `json:"participants"`
	Adversaries  []AdversaryView   `json:"adversaries"`
	Sectors      []SectorView      `json:"sectors"`
	Gates        []GateView        `json:"gates"`
	Dots         []nav.Point       `json:"dots"`
	Pellets      []PelletView      `json:"pellets"`
	Fruit        []FruitView       `json:"fruit"`

	Timeline []TimelineEntry `json:"timeline"`
	Events   []Event         `json:"events,omitempty"`
}

// Snapshot builds the canonical state view and drains the delta log.
// Each delta event appears in exactly one snapshot.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.buildSnapshot()
	snap.Events = e.log.Drain()
	return snap
}

// View builds the state without touching the delta log, for observers
// that must not steal events from the canonical consumer.
func (e *Engine) View() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildSnapshot()
}

func (e *Engine) buildSnapshot() Snapshot {
	snap := Snapshot{
		MatchID:    e.matchID,
		Seed:       e.seed,
		Tick:       e.tick,
		ElapsedMs:  e.elapsedMs(),
		Progress:   e.progress(),
		Difficulty: e.diff.Name,
	}
	if e.outcome != nil {
		snap.Terminated = true
		snap.Reason = string(e.outcome.Reason)
	}

	for _, p := range e.participants {
		v := ParticipantView{
			ID:        p.ID,
			Name:      p.Name,
			Connected: p.Connected,
			Pos:       p.Pos,
			Facing:    p.Facing.String(),
			State:     "normal",
			Charges:   p.Charges,
			Gauge:     p.Gauge,
			Score:     p.Score,
		}
		switch {
		case p.Down:
			v.State = "down"
			v.DownForMs = (e.tick - p.DownSince) * 1000 / int64(e.cfg.TickRate)
		case e.isEmpowered(p):
			v.State = "empowered"
		}
		snap.Participants = append(snap.Participants, v)
	}

	for _, a := range e.adversaries {
		snap.Adversaries = append(snap.Adversaries, AdversaryView{
			ID:      a.ID,
			Variant: a.Variant.String(),
			Pos:     a.Pos,
			HP:      a.HP,
			Stunned: e.tick < a.StunnedUntil,
		})
	}

	for _, s := range e.sectors {
		snap.Sectors = append(snap.Sectors, SectorView{
			ID:             s.Def.ID,
			Captured:       s.Captured,
			Discovered:     s.Discovered,
			CurrentPickups: s.CurrentPickups,
			InitialPickups: s.Def.InitDots,
			Decaying:       s.Captured && s.regenerated > 0,
		})
	}

	for _, g := range e.gates {
		snap.Gates = append(snap.Gates, GateView{
			ID:        g.Def.ID,
			Doors:     g.Def.Doors,
			Switches:  g.Def.Switches,
			Open:      g.Open,
			Permanent: g.Permanent,
		})
	}

	// Dots in scan order so identical states serialize identically.
	for y := 0; y < e.layout.Height; y++ {
		for x := 0; x < e.layout.Width; x++ {
			p := nav.Point{X: x, Y: y}
			if e.dots[p] {
				snap.Dots = append(snap.Dots, p)
			}
		}
	}

	for _, pel := range e.pellets {
		snap.Pellets = append(snap.Pellets, PelletView{Pos: pel.Pos, Active: pel.Active})
	}
	for _, f := range e.fruit {
		snap.Fruit = append(snap.Fruit, FruitView{ID: f.ID, Type: f.Type.String(), Pos: f.Pos})
	}

	snap.Timeline = append(snap.Timeline, e.timeline...)
	return snap
}
