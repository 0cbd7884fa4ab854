package game

import (
	"sectorclash/internal/game/nav"
)

// Direction scoring weights. The strategic bonus dominates so the BFS
// goal wins whenever it is reachable; the adversary penalties dominate
// the strategic bonus at point-blank range so the AI never walks into
// a defeat to shave a tile.
const (
	weightStrategic  = 10.0
	weightPickup     = 3.0
	weightPellet     = 4.0
	weightFruit      = 4.0
	weightDecaying   = 1.0
	weightUndiscover = 0.5
	weightMomentum   = 0.5
	weightCrowding   = -1.5

	penaltyAdjacent = -50.0
	penaltyClose    = -12.0
	penaltyNear     = -2.0
	bonusHunting    = 5.0
)

// thinkParticipant runs the AI fallback decision for one participant.
// A prioritized goal list picks a strategic target, BFS finds the
// first step toward it, then local scoring arbitrates among the legal
// directions. First applicable goal wins.
func (e *Engine) thinkParticipant(p *Participant) {
	p.holdPos = false
	order := e.shuffledDirs()

	strategic := nav.None
	haveGoal := false

	// 1: move toward a down teammate.
	if t := e.nearestDownTeammate(p); t != nil {
		strategic, haveGoal = e.firstStepToward(p, order, func(c nav.Point) bool {
			return c == t.Pos
		})
	}

	// 2: in immediate danger, burn a charge and turn hunter.
	if !haveGoal && !e.isEmpowered(p) && p.Charges > 0 &&
		e.nearestAdversaryDist(p.Pos) <= e.cfg.DangerRadius {
		e.activateAbility(p)
	}

	// 3: while empowered, hunt the nearest adversary.
	if !haveGoal && e.isEmpowered(p) && len(e.adversaries) > 0 {
		strategic, haveGoal = e.firstStepToward(p, order, func(c nav.Point) bool {
			for _, a := range e.adversaries {
				if a.Pos == c {
					return true
				}
			}
			return false
		})
	}

	// 4: threatened, head for a pellet; scoring handles fleeing when
	// no pellet is reachable.
	if !haveGoal && !e.isEmpowered(p) &&
		e.nearestAdversaryDist(p.Pos) <= e.cfg.ThreatRadius {
		strategic, haveGoal = e.firstStepToward(p, order, func(c nav.Point) bool {
			for _, pel := range e.pellets {
				if pel.Active && pel.Pos == c {
					return true
				}
			}
			return false
		})
		if !haveGoal {
			// Flee: mark no strategic goal, the proximity penalties
			// steer away on their own.
			strategic = nav.None
		}
	}

	// 5: hold a gate switch when standing on one with an ally nearby
	// to take the other side.
	if !haveGoal && e.shouldHoldSwitch(p) {
		p.holdPos = true
		p.desired = nav.None
		return
	}

	// 6: shore up a decaying captured sector.
	if !haveGoal {
		if sec := e.decayingSector(); sec != nil {
			strategic, haveGoal = e.firstStepToward(p, order, func(c nav.Point) bool {
				return e.layout.SectorAt(c) == sec.Def.ID && e.dots[c]
			})
		}
	}

	// 7: scout an undiscovered sector.
	if !haveGoal {
		strategic, haveGoal = e.firstStepToward(p, order, func(c nav.Point) bool {
			id := e.layout.SectorAt(c)
			return id >= 0 && !e.sectors[id].Discovered
		})
	}

	// 8: grab a live fruit before it rots.
	if !haveGoal && len(e.fruit) > 0 {
		strategic, haveGoal = e.firstStepToward(p, order, func(c nav.Point) bool {
			for _, f := range e.fruit {
				if f.Pos == c {
					return true
				}
			}
			return false
		})
	}

	// 9: default, the nearest remaining pickup.
	if !haveGoal {
		strategic, _ = e.firstStepToward(p, order, func(c nav.Point) bool {
			return e.dots[c]
		})
	}

	p.desired = e.scoreDirections(p, strategic)
}

// firstStepToward runs the depth-bounded BFS from a participant's
// cell with the tick's shuffled neighbor order.
func (e *Engine) firstStepToward(p *Participant, order [4]nav.Dir, target nav.TargetFunc) (nav.Dir, bool) {
	d, ok := nav.FirstStep(p.Pos, e.legalStep, target, e.cfg.SearchDepth, order)
	if !ok || d == nav.None {
		return nav.None, false
	}
	return d, true
}

// nearestDownTeammate returns the closest down participant, or nil.
func (e *Engine) nearestDownTeammate(p *Participant) *Participant {
	var best *Participant
	bestDist := 0
	for _, other := range e.participants {
		if other == p || !other.Down {
			continue
		}
		d := nav.Manhattan(p.Pos, other.Pos)
		if best == nil || d < bestDist {
			best, bestDist = other, d
		}
	}
	return best
}

// shouldHoldSwitch reports whether the participant stands on a switch
// of a closed gate while an ally is near enough to work the pair.
func (e *Engine) shouldHoldSwitch(p *Participant) bool {
	for _, g := range e.gates {
		if g.Open || g.Permanent {
			continue
		}
		var other nav.Point
		onSwitch := false
		for i, s := range g.Def.Switches {
			if s == p.Pos {
				onSwitch = true
				other = g.Def.Switches[1-i]
			}
		}
		if !onSwitch {
			continue
		}
		for _, ally := range e.participants {
			if ally == p || ally.Down {
				continue
			}
			if nav.Manhattan(ally.Pos, other) <= allySwitchRange {
				return true
			}
		}
	}
	return false
}

const allySwitchRange = 8

// decayingSector returns the first captured sector that has started
// regenerating pickups, or nil.
func (e *Engine) decayingSector() *SectorState {
	for _, s := range e.sectors {
		if s.Captured && s.regenerated > 0 {
			return s
		}
	}
	return nil
}

// scoreDirections evaluates each legal direction and returns the best.
// Deterministic: candidates come in fixed cardinal order and ties keep
// the first.
func (e *Engine) scoreDirections(p *Participant, strategic nav.Dir) nav.Dir {
	allowed := e.legalDirs(p.Pos, p.Facing)
	if len(allowed) == 0 {
		return nav.None
	}

	best := nav.None
	bestScore := 0.0
	for _, d := range allowed {
		s := e.scoreDirection(p, d, strategic)
		if best == nav.None || s > bestScore {
			best, bestScore = d, s
		}
	}
	return best
}

func (e *Engine) scoreDirection(p *Participant, d nav.Dir, strategic nav.Dir) float64 {
	s := 0.0
	dest := p.Pos.Add(d)

	if d == strategic {
		s += weightStrategic
	}
	if d == p.Facing {
		s += weightMomentum
	}
	if e.dots[dest] {
		s += weightPickup
	}
	for _, pel := range e.pellets {
		if pel.Active && pel.Pos == dest {
			s += weightPellet
		}
	}
	for _, f := range e.fruit {
		if f.Pos == dest {
			s += weightFruit
		}
	}
	if id := e.layout.SectorAt(dest); id >= 0 {
		sec := e.sectors[id]
		if sec.Captured && sec.regenerated > 0 {
			s += weightDecaying
		}
		if !sec.Discovered {
			s += weightUndiscover
		}
	}
	for _, other := range e.participants {
		if other != p && !other.Down && other.Pos == dest {
			s += weightCrowding
		}
	}

	adv := e.nearestAdversaryDist(dest)
	if e.isEmpowered(p) {
		if adv <= 2 {
			s += bonusHunting
		}
	} else {
		switch {
		case adv <= 1:
			s += penaltyAdjacent
		case adv == 2:
			s += penaltyClose
		case adv <= 4:
			s += penaltyNear
		}
	}
	return s
}
