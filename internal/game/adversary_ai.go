package game

import (
	"sectorclash/internal/game/nav"
)

// adversaryDir picks this tick's step for an adversary. Non-drifter
// variants are greedy: among the legal directions, minimize Manhattan
// distance to a variant-specific target point. Greedy is intentional;
// participants get real search, adversaries stay cheap and fallible.
func (e *Engine) adversaryDir(a *Adversary) nav.Dir {
	allowed := e.legalDirs(a.Pos, a.Facing)
	if len(allowed) == 0 {
		return nav.None
	}

	target, ok := e.adversaryTarget(a)
	if !ok {
		return allowed[e.rng.Intn(len(allowed))]
	}

	best := allowed[0]
	bestDist := nav.Manhattan(a.Pos.Add(best), target)
	for _, d := range allowed[1:] {
		if dist := nav.Manhattan(a.Pos.Add(d), target); dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// adversaryTarget resolves the variant's current goal cell. ok=false
// means wander.
func (e *Engine) adversaryTarget(a *Adversary) (nav.Point, bool) {
	switch a.Variant {
	case VariantDrifter:
		return nav.Point{}, false

	case VariantChaser, VariantElite:
		if t := e.nearestActiveParticipant(a.Pos); t != nil {
			return t.Pos, true
		}
		return nav.Point{}, false

	case VariantAmbusher:
		t := e.nearestActiveParticipant(a.Pos)
		if t == nil {
			return nav.Point{}, false
		}
		lead := t.Pos
		delta := t.Facing.Delta()
		lead.X += delta.X * ambusherLead
		lead.Y += delta.Y * ambusherLead
		if !e.layout.InBounds(lead) {
			lead = t.Pos
		}
		return lead, true

	case VariantInvader:
		if s := e.nearestCapturedSector(a.Pos); s != nil {
			return s.Def.Centroid(), true
		}
		// Nothing to invade yet, behave like a chaser.
		if t := e.nearestActiveParticipant(a.Pos); t != nil {
			return t.Pos, true
		}
		return nav.Point{}, false
	}
	return nav.Point{}, false
}

// nearestCapturedSector returns the captured sector whose centroid is
// closest, or nil when nothing is captured.
func (e *Engine) nearestCapturedSector(from nav.Point) *SectorState {
	var best *SectorState
	bestDist := 0
	for _, s := range e.sectors {
		if !s.Captured {
			continue
		}
		d := nav.Manhattan(from, s.Def.Centroid())
		if best == nil || d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

// invaderInside reports whether any invader-variant adversary stands
// in the given sector; decay pressure doubles while one does.
func (e *Engine) invaderInside(s *SectorState) bool {
	for _, a := range e.adversaries {
		if a.Variant == VariantInvader && e.layout.SectorAt(a.Pos) == s.Def.ID {
			return true
		}
	}
	return false
}
