package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"sectorclash/internal/config"
	"sectorclash/internal/game/nav"
	"sectorclash/internal/world"
)

// Engine is the deterministic simulation core for one match. It owns
// no clock and no goroutine: the host calls Advance with elapsed wall
// time and the engine converts that into zero or more fixed ticks.
// All randomness flows through a single seeded RNG, so two engines
// built with the same inputs and advanced identically produce
// byte-identical snapshots.
type Engine struct {
	mu sync.Mutex

	matchID string
	seed    int64
	rng     *rand.Rand

	cfg    config.SimConfig
	diff   config.Difficulty
	layout *world.Layout

	tick    int64
	tickDur time.Duration
	acc     time.Duration

	participants []*Participant
	byID         map[string]*Participant
	adversaries  []*Adversary
	nextAdvID    int

	sectors     []*SectorState
	gates       []*GateState
	dots        map[nav.Point]bool
	pellets     []*PelletState
	fruit       []*Fruit
	nextFruitID int

	// Latest intent per participant, consumed at the top of each tick.
	pending map[string]Input

	log      *EventLog
	timeline []TimelineEntry

	// Cell sets precomputed at construction.
	switchCells map[nav.Point]bool
	doorCells   map[nav.Point]bool

	highWater    float64
	eliteSpawned bool
	outcome      *Outcome

	// Durations converted to ticks once.
	empoweredTicks   int64
	abilityTicks     int64
	buffTicks        int64
	graceTicks       int64
	downTimeoutTicks int64
	fruitTicks       int64
	pelletTicks      int64
	timeLimitTicks   int64
}

// Options bundles the knobs for NewEngine. Zero values fall back to
// the builtin layout, the default cadence and the difficulty's time
// limit.
type Options struct {
	Roster     []RosterEntry
	Difficulty config.Difficulty
	Sim        config.SimConfig
	Layout     *world.Layout
	Seed       int64

	// TimeLimitSec overrides the difficulty's limit when positive.
	TimeLimitSec float64

	// AuditPath, when set, mirrors all delta events to a gzip NDJSON
	// file. Purely observational.
	AuditPath string
}

// NewEngine builds a match in its initial state. Tick zero has not run
// yet; the first Advance runs it.
func NewEngine(opts Options) (*Engine, error) {
	if len(opts.Roster) == 0 {
		return nil, errors.New("game: empty roster")
	}
	layout := opts.Layout
	if layout == nil {
		layout = world.Builtin()
	}
	cfg := opts.Sim
	if cfg.TickRate == 0 {
		cfg = config.DefaultSim()
	}
	diff := opts.Difficulty
	if diff.Name == "" {
		diff = config.Normal()
	}
	limit := diff.TimeLimitSec
	if opts.TimeLimitSec > 0 {
		limit = opts.TimeLimitSec
	}

	e := &Engine{
		// Derived from the seed so identical runs share an identity.
		matchID: uuid.NewSHA1(uuid.NameSpaceOID,
			[]byte(fmt.Sprintf("sectorclash-%d", opts.Seed))).String(),
		seed:    opts.Seed,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		cfg:     cfg,
		diff:    diff,
		layout:  layout,
		tickDur: time.Second / time.Duration(cfg.TickRate),
		byID:    make(map[string]*Participant, len(opts.Roster)),
		dots:    make(map[nav.Point]bool, len(layout.Dots)),
		pending: make(map[string]Input),
		log:     NewEventLog(),

		switchCells: make(map[nav.Point]bool),
		doorCells:   make(map[nav.Point]bool),

		empoweredTicks:   secToTicks(cfg.EmpoweredSec, cfg.TickRate),
		abilityTicks:     secToTicks(cfg.AbilityEmpoweredSec, cfg.TickRate),
		buffTicks:        secToTicks(cfg.SpeedBuffSec, cfg.TickRate),
		graceTicks:       secToTicks(cfg.ReviveGraceSec, cfg.TickRate),
		downTimeoutTicks: secToTicks(cfg.DownTimeoutSec, cfg.TickRate),
		fruitTicks:       secToTicks(cfg.FruitLifetimeSec, cfg.TickRate),
		pelletTicks:      secToTicks(cfg.PelletRespawnSec, cfg.TickRate),
		timeLimitTicks:   secToTicks(limit, cfg.TickRate),
	}

	for _, p := range layout.Dots {
		e.dots[p] = true
	}
	for i := range layout.Pellets {
		e.pellets = append(e.pellets, &PelletState{Pos: layout.Pellets[i], Active: true})
	}
	for i := range layout.Sectors {
		s := &layout.Sectors[i]
		e.sectors = append(e.sectors, &SectorState{Def: s, CurrentPickups: s.InitDots})
	}
	for i := range layout.Gates {
		g := &layout.Gates[i]
		e.gates = append(e.gates, &GateState{Def: g})
		for _, d := range g.Doors {
			e.doorCells[d] = true
		}
		for _, s := range g.Switches {
			e.switchCells[s] = true
		}
	}

	for i, entry := range opts.Roster {
		if entry.ID == "" {
			return nil, errors.Errorf("game: roster entry %d has no id", i)
		}
		if _, dup := e.byID[entry.ID]; dup {
			return nil, errors.Errorf("game: duplicate roster id %q", entry.ID)
		}
		spawn := layout.SpawnPoints[i%len(layout.SpawnPoints)]
		p := &Participant{
			ID:         entry.ID,
			Name:       entry.Name,
			Credential: entry.Credential,
			Connected:  entry.Connected,
			Pos:        spawn,
			PrevPos:    spawn,
			DownSince:  -1,
		}
		e.participants = append(e.participants, p)
		e.byID[p.ID] = p
	}

	// Spawn sectors start discovered.
	for _, p := range e.participants {
		if id := layout.SectorAt(p.Pos); id >= 0 {
			e.sectors[id].Discovered = true
		}
	}

	for i := 0; i < diff.AdversaryFloor; i++ {
		e.spawnAdversary(e.rollVariant(0))
	}

	if opts.AuditPath != "" {
		if err := e.log.StartAudit(opts.AuditPath); err != nil {
			return nil, errors.Wrap(err, "game: audit sink")
		}
	}
	return e, nil
}

func secToTicks(sec float64, rate int) int64 {
	return int64(sec * float64(rate))
}

// MatchID returns the seed-derived match identifier.
func (e *Engine) MatchID() string {
	return e.matchID
}

// Layout returns the static maze this match runs on.
func (e *Engine) Layout() *world.Layout {
	return e.layout
}

// Close stops the audit sink. The engine itself has nothing to stop.
func (e *Engine) Close() {
	e.log.Stop()
}

// Advance converts elapsed wall time into fixed ticks and runs them.
// It returns the number of ticks executed. Once the match has an
// outcome, Advance is a no-op.
func (e *Engine) Advance(elapsed time.Duration) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.outcome != nil {
		return 0
	}
	e.acc += elapsed
	ran := 0
	for e.acc >= e.tickDur {
		e.acc -= e.tickDur
		e.step()
		ran++
		if e.outcome != nil {
			e.acc = 0
			break
		}
	}
	return ran
}

// AdvanceTicks runs exactly n ticks, ignoring the wall-time
// accumulator. Batch hosts use this to run faster than real time.
func (e *Engine) AdvanceTicks(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	ran := 0
	for i := 0; i < n && e.outcome == nil; i++ {
		e.step()
		ran++
	}
	return ran
}

// SubmitInput records an intent for a participant. Unknown ids and
// AI-controlled participants are silently ignored; inputs overwrite
// each other between ticks (last writer wins).
func (e *Engine) SubmitInput(id string, in Input) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.byID[id]
	if !ok || p.AIControlled() || e.outcome != nil {
		return
	}
	// Merge ability presses so a press between ticks is never lost.
	if prev, ok := e.pending[id]; ok && prev.Ability {
		in.Ability = true
	}
	e.pending[id] = in
}

// Authenticate checks a reconnect credential against the roster.
// Participants enrolled without a credential cannot be claimed.
func (e *Engine) Authenticate(id, credential string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.byID[id]
	return ok && p.Credential != "" && p.Credential == credential
}

// SetConnected flips a participant between human and AI control.
// Unknown ids are ignored. Disconnecting clears any pending intent.
func (e *Engine) SetConnected(id string, connected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.byID[id]
	if !ok {
		return
	}
	p.Connected = connected
	if !connected {
		delete(e.pending, id)
		p.intentDir = nav.None
	}
}

// Outcome returns the terminal outcome, or nil while the match runs.
func (e *Engine) Outcome() *Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome == nil {
		return nil
	}
	out := *e.outcome
	return &out
}

// step runs one fixed tick. Phase order is load-bearing: inputs,
// participant decisions and movement, adversary decisions and
// movement, gates, collisions, sectors, balancer, termination.
func (e *Engine) step() {
	e.tick++

	e.consumeInputs()

	for _, p := range e.participants {
		p.PrevPos = p.Pos
	}
	for _, a := range e.adversaries {
		a.PrevPos = a.Pos
	}

	for i, p := range e.participants {
		if p.Down {
			continue
		}
		if p.AIControlled() && (e.tick+int64(i))%int64(e.cfg.ThinkInterval) == 0 {
			e.thinkParticipant(p)
		}
		e.moveParticipant(p)
	}

	for _, a := range e.adversaries {
		if e.tick < a.StunnedUntil {
			continue
		}
		e.moveAdversary(a)
	}

	e.updateGates()
	e.resolveCollisions()
	e.updateSectors()
	e.updateItems()

	if e.tick%int64(e.cfg.BalanceInterval) == 0 {
		e.balance()
	}

	e.checkTermination()
}

// consumeInputs applies pending intents in roster order so map
// iteration never leaks into the simulation.
func (e *Engine) consumeInputs() {
	for _, p := range e.participants {
		in, ok := e.pending[p.ID]
		if !ok {
			continue
		}
		delete(e.pending, p.ID)
		if p.Down {
			continue
		}
		if in.Dir != nav.None {
			p.intentDir = in.Dir
		}
		if in.Ability {
			e.activateAbility(p)
		}
		p.desired = p.intentDir
	}
}

// activateAbility spends a charge for a short empowerment window.
// No-op without charges.
func (e *Engine) activateAbility(p *Participant) {
	if p.Down || p.Charges <= 0 {
		return
	}
	p.Charges--
	until := e.tick + e.abilityTicks
	if until > p.EmpoweredUntil {
		p.EmpoweredUntil = until
	}
	e.narrate("%s surges with power", p.Name)
}

func (e *Engine) isEmpowered(p *Participant) bool {
	return e.tick < p.EmpoweredUntil
}

// addGauge credits pickup energy, converting full gauges into charges
// up to the cap. Overflow beyond a full gauge at max charges is lost.
func (e *Engine) addGauge(p *Participant, n int) {
	p.Gauge += n
	for p.Gauge >= e.cfg.GaugeMax && p.Charges < e.cfg.MaxCharges {
		p.Gauge -= e.cfg.GaugeMax
		p.Charges++
		e.narrate("%s banked a charge", p.Name)
	}
	if p.Charges >= e.cfg.MaxCharges && p.Gauge > e.cfg.GaugeMax {
		p.Gauge = e.cfg.GaugeMax
	}
}

// progress is the captured share of capturable sectors, the match's
// single difficulty input. Sectors seeded with no pickups can never
// flip and are not counted.
func (e *Engine) progress() float64 {
	total, captured := 0, 0
	for _, s := range e.sectors {
		if s.Def.InitDots == 0 {
			continue
		}
		total++
		if s.Captured {
			captured++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(captured) / float64(total)
}

// elapsedMs converts the current tick into simulated milliseconds.
func (e *Engine) elapsedMs() int64 {
	return e.tick * 1000 / int64(e.cfg.TickRate)
}

// narrate emits a free-text narration event.
func (e *Engine) narrate(format string, args ...interface{}) {
	e.log.Emit(EventNarration, e.tick, NarrationPayload{
		Text: fmt.Sprintf(format, args...),
	})
}

// record appends a timeline entry and narrates it.
func (e *Engine) record(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	e.timeline = append(e.timeline, TimelineEntry{
		Tick: e.tick,
		Ms:   e.elapsedMs(),
		Text: text,
	})
	if len(e.timeline) > maxTimelineEntries {
		e.timeline = e.timeline[len(e.timeline)-maxTimelineEntries:]
	}
	e.log.Emit(EventNarration, e.tick, NarrationPayload{Text: text})
}

// sortedActive returns non-down participants in roster order.
func (e *Engine) sortedActive() []*Participant {
	out := make([]*Participant, 0, len(e.participants))
	for _, p := range e.participants {
		if !p.Down {
			out = append(out, p)
		}
	}
	return out
}

// nearestActiveParticipant returns the closest non-down participant by
// Manhattan distance, ties broken by roster order.
func (e *Engine) nearestActiveParticipant(from nav.Point) *Participant {
	var best *Participant
	bestDist := 0
	for _, p := range e.participants {
		if p.Down {
			continue
		}
		d := nav.Manhattan(from, p.Pos)
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// nearestAdversaryDist returns the Manhattan distance to the closest
// adversary, or a large sentinel when none exist.
func (e *Engine) nearestAdversaryDist(from nav.Point) int {
	best := 1 << 20
	for _, a := range e.adversaries {
		if d := nav.Manhattan(from, a.Pos); d < best {
			best = d
		}
	}
	return best
}

// shuffledDirs returns the four cardinals in seeded-random order; the
// BFS tie-break per the think cadence.
func (e *Engine) shuffledDirs() [4]nav.Dir {
	order := nav.Cardinal
	for i := len(order) - 1; i > 0; i-- {
		j := e.rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// rankParticipants returns participants sorted by score descending,
// name ascending for stability.
func (e *Engine) rankParticipants() []*Participant {
	out := make([]*Participant, len(e.participants))
	copy(out, e.participants)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}
