package game

import (
	"sectorclash/internal/game/nav"
)

// legalStep reports whether a single step from a cell is walkable.
// Closed gate doors block as destinations only, so an entity standing
// on a door when it closes can always walk off.
func (e *Engine) legalStep(from nav.Point, d nav.Dir) bool {
	to := from.Add(d)
	if !e.layout.Open(to) {
		return false
	}
	if g := e.layout.DoorGate(to); g >= 0 && !e.gates[g].Open {
		return false
	}
	return true
}

// legalDirs returns the walkable cardinals from a cell, reversal
// excluded unless it is the only way out (dead end).
func (e *Engine) legalDirs(pos nav.Point, facing nav.Dir) []nav.Dir {
	var legal []nav.Dir
	reverse := facing.Opposite()
	hasOther := false
	for _, d := range nav.Cardinal {
		if !e.legalStep(pos, d) {
			continue
		}
		legal = append(legal, d)
		if d != reverse {
			hasOther = true
		}
	}
	if !hasOther || facing == nav.None {
		return legal
	}
	n := 0
	for _, d := range legal {
		if d != reverse {
			legal[n] = d
			n++
		}
	}
	return legal[:n]
}

// resolveDir picks the actual step direction: the desired direction if
// allowed, else keep going, else stop.
func (e *Engine) resolveDir(pos nav.Point, facing, desired nav.Dir) nav.Dir {
	allowed := e.legalDirs(pos, facing)
	for _, d := range allowed {
		if d == desired {
			return d
		}
	}
	for _, d := range allowed {
		if d == facing {
			return d
		}
	}
	return nav.None
}

// participantSpeed is tiles per second after terrain and buff
// modifiers.
func (e *Engine) participantSpeed(p *Participant) float64 {
	speed := e.cfg.BaseSpeed
	if id := e.layout.SectorAt(p.Pos); id >= 0 && e.sectors[id].Captured {
		speed *= e.cfg.CapturedSpeedBonus
	}
	if e.tick < p.SpeedBuffUntil {
		speed *= e.cfg.BuffSpeedBonus
	}
	return speed
}

// moveParticipant advances one participant by zero or more whole-cell
// steps. Fractional movement accumulates across ticks; the sub-step
// cap bounds the work even under pathological speed tuning.
func (e *Engine) moveParticipant(p *Participant) {
	if p.holdPos {
		p.stepBuffer = 0
		return
	}
	p.stepBuffer += e.participantSpeed(p) / float64(e.cfg.TickRate)
	if limit := float64(e.cfg.MaxSubSteps); p.stepBuffer > limit {
		p.stepBuffer = limit
	}
	for steps := 0; p.stepBuffer >= 1 && steps < e.cfg.MaxSubSteps; steps++ {
		d := e.resolveDir(p.Pos, p.Facing, p.desired)
		if d == nav.None {
			// Blocked; do not bank movement against a wall.
			p.stepBuffer = 0
			return
		}
		p.Pos = p.Pos.Add(d)
		p.Facing = d
		p.stepBuffer--
		e.enterCell(p)
		if p.Down {
			return
		}
	}
}

// enterCell applies everything a participant touches on arrival:
// discovery, pickups, pellets, fruit.
func (e *Engine) enterCell(p *Participant) {
	if id := e.layout.SectorAt(p.Pos); id >= 0 && !e.sectors[id].Discovered {
		e.sectors[id].Discovered = true
		e.narrate("%s scouted sector %d", p.Name, id)
	}

	if e.dots[p.Pos] {
		delete(e.dots, p.Pos)
		if id := e.layout.SectorAt(p.Pos); id >= 0 {
			s := e.sectors[id]
			s.CurrentPickups--
			// In a captured sector the dot was regenerated; eating it
			// cancels its decay credit, so defended sectors hold.
			if s.Captured && s.regenerated > 0 {
				s.regenerated--
			}
		}
		p.Score += scorePickup
		p.Pickups++
		e.addGauge(p, e.cfg.GaugePerDot)
		e.log.Emit(EventPickupConsumed, e.tick, PickupPayload{
			Cell:          p.Pos,
			SectorID:      e.layout.SectorAt(p.Pos),
			ParticipantID: p.ID,
		})
	}

	for _, pel := range e.pellets {
		if !pel.Active || pel.Pos != p.Pos {
			continue
		}
		pel.Active = false
		pel.RespawnAt = e.tick + e.pelletTicks
		p.Score += scorePellet
		until := e.tick + e.empoweredTicks
		if until > p.EmpoweredUntil {
			p.EmpoweredUntil = until
		}
		e.stunNearbyAdversaries(p.Pos)
		e.log.Emit(EventPowerConsumed, e.tick, PowerPayload{
			Cell:          pel.Pos,
			ParticipantID: p.ID,
		})
	}

	for i, f := range e.fruit {
		if f.Pos != p.Pos {
			continue
		}
		e.fruit = append(e.fruit[:i], e.fruit[i+1:]...)
		e.applyFruit(p, f)
		break
	}
}

// stunNearbyAdversaries dazes adversaries close to a consumed pellet.
func (e *Engine) stunNearbyAdversaries(at nav.Point) {
	until := e.tick + e.graceTicks
	for _, a := range e.adversaries {
		if nav.Manhattan(at, a.Pos) <= pelletStunRadius && until > a.StunnedUntil {
			a.StunnedUntil = until
		}
	}
}

// applyFruit resolves a transient item's effect.
func (e *Engine) applyFruit(p *Participant, f *Fruit) {
	switch f.Type {
	case FruitCherry:
		p.Score += scoreFruit
	case FruitBolt:
		p.Score += scoreFruit / 2
		until := e.tick + e.buffTicks
		if until > p.SpeedBuffUntil {
			p.SpeedBuffUntil = until
		}
	case FruitHeart:
		p.Score += scoreFruit / 2
		for _, other := range e.participants {
			if other.Down {
				e.revive(other, p, false)
			}
		}
	}
	p.Pickups++
	e.addGauge(p, fruitGaugeBonus)
	e.log.Emit(EventFruitConsumed, e.tick, FruitPayload{
		FruitID:       f.ID,
		FruitType:     f.Type.String(),
		Cell:          f.Pos,
		ParticipantID: p.ID,
	})
}

// moveAdversary decides and applies one adversary's movement for this
// tick. Adversaries decide every tick; there is no think cadence.
func (e *Engine) moveAdversary(a *Adversary) {
	a.stepBuffer += e.adversarySpeed(a) / float64(e.cfg.TickRate)
	if limit := float64(e.cfg.MaxSubSteps); a.stepBuffer > limit {
		a.stepBuffer = limit
	}
	for steps := 0; a.stepBuffer >= 1 && steps < e.cfg.MaxSubSteps; steps++ {
		d := e.adversaryDir(a)
		if d == nav.None {
			a.stepBuffer = 0
			return
		}
		a.Pos = a.Pos.Add(d)
		a.Facing = d
		a.stepBuffer--
	}
}

func (e *Engine) adversarySpeed(a *Adversary) float64 {
	speed := e.diff.AdversarySpeed
	if a.Variant == VariantElite {
		speed *= eliteSpeedBonus
	}
	return speed
}
