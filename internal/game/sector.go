package game

import (
	"sectorclash/internal/game/nav"
)

// pressure maps overall progress onto the decay curve: a grace period
// after capture during which a sector cannot regenerate, and a rate
// multiplier once it can. Early captures are nearly safe; late-match
// everything is contested.
func pressure(progress float64) (graceSec, mult float64) {
	switch {
	case progress < 0.25:
		return 30, 0.5
	case progress < 0.5:
		return 20, 0.75
	case progress < 0.75:
		return 12, 1.0
	default:
		return 6, 1.5
	}
}

// updateSectors flips clean sectors to captured and advances decay on
// captured ones. A captured sector regenerates pickups under pressure;
// past the decay threshold it reverts to uncaptured.
func (e *Engine) updateSectors() {
	progress := e.progress()

	for _, s := range e.sectors {
		if !s.Captured {
			if s.Def.InitDots > 0 && s.CurrentPickups == 0 {
				e.captureSector(s)
			}
			continue
		}
		e.decaySector(s, progress)
	}
}

func (e *Engine) captureSector(s *SectorState) {
	s.Captured = true
	s.Discovered = true
	s.CapturedAt = e.tick
	s.regenAcc = 0
	s.regenerated = 0

	// Sweep resident adversaries back to their spawns.
	for _, a := range e.adversaries {
		if e.layout.SectorAt(a.Pos) != s.Def.ID {
			continue
		}
		if spawn, ok := e.pickAdversarySpawn(); ok {
			a.Pos = spawn
			a.PrevPos = a.Pos
		}
		a.Facing = nav.None
		a.StunnedUntil = e.tick + e.graceTicks
	}

	// Credit everyone standing inside when it flips.
	for _, p := range e.participants {
		if !p.Down && e.layout.SectorAt(p.Pos) == s.Def.ID {
			p.Score += scoreCapture
			p.Captures++
		}
	}

	e.log.Emit(EventSectorCaptured, e.tick, SectorPayload{
		SectorID: s.Def.ID,
		Progress: e.progress(),
	})
	e.record("sector %d secured", s.Def.ID)
}

func (e *Engine) decaySector(s *SectorState, progress float64) {
	graceSec, mult := pressure(progress)
	graceSec /= e.diff.PressureScale
	if e.tick-s.CapturedAt < secToTicks(graceSec, e.cfg.TickRate) {
		return
	}

	rate := baseRegenPerSec * mult * e.diff.PressureScale
	if e.invaderInside(s) {
		rate *= 2
	}
	s.regenAcc += rate / float64(e.cfg.TickRate)

	for s.regenAcc >= 1 {
		s.regenAcc--
		cell, ok := e.pickRegenCell(s)
		if !ok {
			s.regenAcc = 0
			break
		}
		e.dots[cell] = true
		s.CurrentPickups++
		s.regenerated++
		e.log.Emit(EventPickupRegenerated, e.tick, PickupPayload{
			Cell:     cell,
			SectorID: s.Def.ID,
		})
	}

	if float64(s.regenerated) > e.cfg.DecayFraction*float64(s.Def.InitDots) {
		s.Captured = false
		s.regenAcc = 0
		s.regenerated = 0
		e.log.Emit(EventSectorLost, e.tick, SectorPayload{
			SectorID: s.Def.ID,
			Progress: e.progress(),
		})
		e.record("sector %d lost", s.Def.ID)
	}
}

// pickRegenCell chooses a seeded-random free regen cell in the sector.
func (e *Engine) pickRegenCell(s *SectorState) (nav.Point, bool) {
	free := make([]nav.Point, 0, len(s.Def.RegenCells))
	for _, c := range s.Def.RegenCells {
		if !e.dots[c] && !e.occupiedByParticipant(c) {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return nav.Point{}, false
	}
	return free[e.rng.Intn(len(free))], true
}

func (e *Engine) occupiedByParticipant(c nav.Point) bool {
	for _, p := range e.participants {
		if p.Pos == c {
			return true
		}
	}
	return false
}
