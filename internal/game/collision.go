package game

import (
	"sort"

	"sectorclash/internal/game/nav"
)

// updateGates recomputes door state from switch occupancy. Movement
// earlier in the tick saw the previous tick's doors, so a gate opens
// one tick after both switches are held. A gate whose doors sit in a
// captured sector latches open permanently.
func (e *Engine) updateGates() {
	for _, g := range e.gates {
		if g.Permanent {
			g.Open = true
			continue
		}
		held := 0
		for _, sw := range g.Def.Switches {
			for _, p := range e.participants {
				if !p.Down && p.Pos == sw {
					held++
					break
				}
			}
		}
		open := held == len(g.Def.Switches)
		if open && !g.Open {
			e.narrate("gate %d slides open", g.Def.ID)
		}
		g.Open = open

		if g.Open {
			for _, d := range g.Def.Doors {
				if id := e.layout.SectorAt(d); id >= 0 && e.sectors[id].Captured {
					g.Permanent = true
					e.record("gate %d locked open", g.Def.ID)
					break
				}
			}
		}
	}
}

// resolveCollisions detects participant/adversary contact, including
// the same-tick position swap that cell equality alone misses, then
// applies downs, defeats, teammate revives and the down timeout.
func (e *Engine) resolveCollisions() {
	var defeated []int

	for _, p := range e.participants {
		if p.Down {
			continue
		}
		for _, a := range e.adversaries {
			if e.contains(defeated, a.ID) {
				continue
			}
			overlap := p.Pos == a.Pos
			swapped := p.Pos == a.PrevPos && a.Pos == p.PrevPos
			if !overlap && !swapped {
				continue
			}

			if e.isEmpowered(p) {
				if e.hitAdversary(p, a) {
					defeated = append(defeated, a.ID)
				}
				continue
			}
			if e.tick < p.ReviveGraceUntil || e.tick < a.StunnedUntil {
				continue
			}
			e.downParticipant(p)
			break
		}
	}

	if len(defeated) > 0 {
		e.removeAdversaries(defeated)
	}

	e.applyRescues()
	e.applyDownTimeouts()
}

func (e *Engine) contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// hitAdversary lands one empowered hit. Returns true when the
// adversary is out of hit points and must be removed.
func (e *Engine) hitAdversary(p *Participant, a *Adversary) bool {
	if a.Variant != VariantElite {
		p.Score += scoreDefeat
		p.Defeats++
		e.narrate("%s dispatched a %s", p.Name, a.Variant)
		return true
	}

	a.HP--
	e.log.Emit(EventEliteDamaged, e.tick, ElitePayload{
		AdversaryID:   a.ID,
		HPLeft:        a.HP,
		Cell:          a.Pos,
		ParticipantID: p.ID,
	})
	if a.HP > 0 {
		// Knocked back into a daze so the same contact cannot land
		// twice in consecutive ticks.
		a.StunnedUntil = e.tick + e.graceTicks
		return false
	}
	p.Score += scoreEliteDefeat
	p.Defeats++
	e.record("%s brought down the elite", p.Name)
	return true
}

// removeAdversaries drops defeated adversaries; non-elites respawn as
// fresh headcount at an adversary spawn.
func (e *Engine) removeAdversaries(ids []int) {
	n := 0
	for _, a := range e.adversaries {
		if !e.contains(ids, a.ID) {
			e.adversaries[n] = a
			n++
			continue
		}
		if a.Variant != VariantElite {
			// Replace in place: the balancer owns headcount, defeats
			// relocate rather than cull.
			if spawn, ok := e.pickAdversarySpawn(); ok {
				a.Pos = spawn
				a.PrevPos = a.Pos
			}
			a.Facing = nav.None
			a.StunnedUntil = e.tick + e.graceTicks
			a.stepBuffer = 0
			e.adversaries[n] = a
			n++
		}
	}
	e.adversaries = e.adversaries[:n]
}

func (e *Engine) downParticipant(p *Participant) {
	p.Down = true
	p.DownSince = e.tick
	p.desired = nav.None
	p.intentDir = nav.None
	p.holdPos = false
	p.stepBuffer = 0
	delete(e.pending, p.ID)
	e.log.Emit(EventParticipantDown, e.tick, DownPayload{
		ParticipantID: p.ID,
		Cell:          p.Pos,
	})
	e.record("%s is down", p.Name)
}

// applyRescues revives any down participant sharing a cell with an
// active teammate.
func (e *Engine) applyRescues() {
	for _, p := range e.participants {
		if !p.Down {
			continue
		}
		for _, q := range e.participants {
			if q == p || q.Down || q.Pos != p.Pos {
				continue
			}
			q.Score += scoreRescue
			q.Rescues++
			e.revive(p, q, false)
			break
		}
	}
}

// revive returns a down participant to play with a short grace window.
func (e *Engine) revive(p *Participant, rescuer *Participant, automatic bool) {
	p.Down = false
	p.DownSince = -1
	p.ReviveGraceUntil = e.tick + e.graceTicks
	payload := RevivePayload{
		ParticipantID: p.ID,
		Cell:          p.Pos,
		Automatic:     automatic,
	}
	if rescuer != nil {
		payload.RescuerID = rescuer.ID
		e.record("%s got %s back up", rescuer.Name, p.Name)
	} else if automatic {
		e.record("%s recovered alone", p.Name)
	} else {
		e.record("%s is back up", p.Name)
	}
	e.log.Emit(EventParticipantRevived, e.tick, payload)
}

// applyDownTimeouts runs the self-respawn for participants down past
// the timeout. It costs one charge and relocates to a safe cell,
// captured sectors preferred.
func (e *Engine) applyDownTimeouts() {
	for _, p := range e.participants {
		if !p.Down || e.tick-p.DownSince < e.downTimeoutTicks {
			continue
		}
		if p.Charges > 0 {
			p.Charges--
		}
		if cell, ok := e.respawnCell(p.Pos); ok {
			p.Pos = cell
			p.PrevPos = cell
			p.Facing = nav.None
		}
		e.revive(p, nil, true)
	}
}

// respawnCell picks the nearest safe floor cell, captured sectors
// first. Safe means walkable, not a door or switch, and no adversary
// within the danger radius.
func (e *Engine) respawnCell(near nav.Point) (nav.Point, bool) {
	if cell, ok := e.pickSafeCell(near, true); ok {
		return cell, true
	}
	return e.pickSafeCell(near, false)
}

func (e *Engine) pickSafeCell(near nav.Point, capturedOnly bool) (nav.Point, bool) {
	var candidates []nav.Point
	for _, s := range e.sectors {
		if capturedOnly && !s.Captured {
			continue
		}
		for _, c := range s.Def.FloorCells {
			if e.doorCells[c] || e.switchCells[c] {
				continue
			}
			if e.nearestAdversaryDist(c) <= e.cfg.DangerRadius {
				continue
			}
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nav.Point{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := nav.Manhattan(candidates[i], near), nav.Manhattan(candidates[j], near)
		if di != dj {
			return di < dj
		}
		if candidates[i].Y != candidates[j].Y {
			return candidates[i].Y < candidates[j].Y
		}
		return candidates[i].X < candidates[j].X
	})
	return candidates[0], true
}
