package game

import (
	"sectorclash/internal/game/nav"
)

// updateItems runs the per-tick item timers: pellet respawns and fruit
// expiry.
func (e *Engine) updateItems() {
	for _, pel := range e.pellets {
		if !pel.Active && e.tick >= pel.RespawnAt {
			pel.Active = true
			e.log.Emit(EventPowerRegenerated, e.tick, PowerPayload{Cell: pel.Pos})
		}
	}

	n := 0
	for _, f := range e.fruit {
		if e.tick-f.SpawnedAt < e.fruitTicks {
			e.fruit[n] = f
			n++
		}
	}
	e.fruit = e.fruit[:n]
}

// balance adjusts the adversary headcount toward the difficulty
// target. Runs on its own cadence; additions and removals are batched
// so the population shifts gradually. The elite is never removed here.
func (e *Engine) balance() {
	progress := e.progress()
	active := len(e.sortedActive())

	target := e.diff.AdversaryFloor +
		int(float64(active)*e.diff.AdversariesPerParticipant+progress*e.diff.ProgressAdversaryBonus)
	if target < e.diff.AdversaryFloor {
		target = e.diff.AdversaryFloor
	}
	if target > e.diff.AdversaryCeil {
		target = e.diff.AdversaryCeil
	}

	current := len(e.adversaries)
	switch {
	case current < target:
		add := target - current
		if add > balancerBatch {
			add = balancerBatch
		}
		for i := 0; i < add; i++ {
			e.spawnAdversary(e.rollVariant(progress))
		}
	case current > target:
		e.cullAdversaries(current - target)
	}

	if !e.eliteSpawned && progress >= e.diff.EliteThreshold {
		if a := e.spawnAdversary(VariantElite); a != nil {
			e.eliteSpawned = true
			e.log.Emit(EventEliteSpawned, e.tick, ElitePayload{
				AdversaryID: a.ID,
				HPLeft:      a.HP,
				Cell:        a.Pos,
			})
			e.record("an elite adversary has entered the maze")
		}
	}

	e.maybeSpawnFruit()
}

// rollVariant draws an adversary variant from the progress-weighted
// mix: drifters fade out as the match advances, hunters and invaders
// fade in.
func (e *Engine) rollVariant(progress float64) Variant {
	wDrifter := 50 - int(30*progress)
	wChaser := 20 + int(20*progress)
	wAmbusher := 10 + int(20*progress)
	wInvader := 10 + int(30*progress)

	roll := e.rng.Intn(wDrifter + wChaser + wAmbusher + wInvader)
	switch {
	case roll < wDrifter:
		return VariantDrifter
	case roll < wDrifter+wChaser:
		return VariantChaser
	case roll < wDrifter+wChaser+wAmbusher:
		return VariantAmbusher
	default:
		return VariantInvader
	}
}

// spawnAdversary creates one adversary at a seeded-random adversary
// spawn point. Returns nil on layouts without a spawn pool, which
// support no adversaries at all.
func (e *Engine) spawnAdversary(v Variant) *Adversary {
	spawn, ok := e.pickAdversarySpawn()
	if !ok {
		return nil
	}
	e.nextAdvID++
	a := &Adversary{
		ID:      e.nextAdvID,
		Variant: v,
		Pos:     spawn,
		HP:      1,
	}
	if v == VariantElite {
		a.HP = eliteHP
	}
	a.PrevPos = a.Pos
	e.adversaries = append(e.adversaries, a)
	return a
}

func (e *Engine) pickAdversarySpawn() (nav.Point, bool) {
	spawns := e.layout.AdversarySpawn
	if len(spawns) == 0 {
		return nav.Point{}, false
	}
	return spawns[e.rng.Intn(len(spawns))], true
}

// cullAdversaries removes up to batch non-elite adversaries, newest
// first so long-lived ones keep their territory.
func (e *Engine) cullAdversaries(excess int) {
	if excess > balancerBatch {
		excess = balancerBatch
	}
	for i := len(e.adversaries) - 1; i >= 0 && excess > 0; i-- {
		if e.adversaries[i].Variant == VariantElite {
			continue
		}
		e.adversaries = append(e.adversaries[:i], e.adversaries[i+1:]...)
		excess--
	}
}

// maybeSpawnFruit places a transient item on a free pickup cell when
// none is out.
func (e *Engine) maybeSpawnFruit() {
	if len(e.fruit) > 0 || e.rng.Float64() >= fruitSpawnChance {
		return
	}

	var candidates []nav.Point
	for _, s := range e.sectors {
		if s.Captured {
			continue
		}
		for _, c := range s.Def.RegenCells {
			if !e.dots[c] && !e.occupiedByParticipant(c) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return
	}

	e.nextFruitID++
	f := &Fruit{
		ID:        e.nextFruitID,
		Type:      e.rollFruitType(),
		Pos:       candidates[e.rng.Intn(len(candidates))],
		SpawnedAt: e.tick,
	}
	e.fruit = append(e.fruit, f)
	e.log.Emit(EventFruitSpawned, e.tick, FruitPayload{
		FruitID:   f.ID,
		FruitType: f.Type.String(),
		Cell:      f.Pos,
	})
}

func (e *Engine) rollFruitType() FruitType {
	switch roll := e.rng.Intn(100); {
	case roll < 60:
		return FruitCherry
	case roll < 85:
		return FruitBolt
	default:
		return FruitHeart
	}
}
