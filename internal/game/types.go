package game

import (
	"sectorclash/internal/game/nav"
	"sectorclash/internal/world"
)

// Score values and fixed gameplay constants that no difficulty knob
// touches.
const (
	scorePickup      = 10
	scorePellet      = 50
	scoreFruit       = 100
	scoreDefeat      = 200
	scoreEliteDefeat = 500
	scoreRescue      = 150
	scoreCapture     = 300

	eliteHP         = 3
	eliteSpeedBonus = 1.1

	ambusherLead     = 4 // tiles ahead of the target's facing
	pelletStunRadius = 3

	balancerBatch      = 2
	maxTimelineEntries = 64

	// Base pickup regeneration on captured sectors, dots per second
	// before pressure multipliers.
	baseRegenPerSec = 0.4

	// Chance per balancer pass that a fruit appears while none is out.
	fruitSpawnChance = 0.25

	fruitGaugeBonus = 25
)

// Participant is one roster member. Participants exist for the whole
// match; connectivity toggles AI control, never existence.
type Participant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Credential string `json:"-"` // reconnect token, opaque to the core
	Connected  bool   `json:"connected"`

	Pos     nav.Point `json:"pos"`
	PrevPos nav.Point `json:"-"`
	Facing  nav.Dir   `json:"-"`

	Down      bool  `json:"down"`
	DownSince int64 `json:"-"` // tick; -1 while up

	Charges int `json:"charges"`
	Gauge   int `json:"gauge"`
	Score   int `json:"score"`

	EmpoweredUntil   int64 `json:"-"`
	SpeedBuffUntil   int64 `json:"-"`
	ReviveGraceUntil int64 `json:"-"`

	// Contribution stats for the final summary.
	Pickups  int `json:"-"`
	Defeats  int `json:"-"`
	Rescues  int `json:"-"`
	Captures int `json:"-"`

	// Movement internals.
	stepBuffer float64
	desired    nav.Dir
	holdPos    bool

	// Last injected intent; consumed at the start of the movement
	// phase, persists until replaced (last-writer-wins).
	intentDir nav.Dir
}

// AIControlled reports whether the AI fallback is steering this
// participant.
func (p *Participant) AIControlled() bool {
	return !p.Connected
}

// Variant is the closed set of adversary behaviors. Behavioral
// differences are small per-field deltas, so decision points switch
// exhaustively on this tag instead of subclassing.
type Variant uint8

const (
	VariantDrifter Variant = iota // uniform random walk
	VariantChaser                 // greedy toward nearest participant
	VariantAmbusher               // greedy toward a point ahead of the target
	VariantInvader                // greedy toward a captured sector's centroid
	VariantElite                  // 3 hit points, spawned once late-match
)

func (v Variant) String() string {
	switch v {
	case VariantDrifter:
		return "drifter"
	case VariantChaser:
		return "chaser"
	case VariantAmbusher:
		return "ambusher"
	case VariantInvader:
		return "invader"
	case VariantElite:
		return "elite"
	}
	return "unknown"
}

// Adversary is a hostile entity managed by the population balancer.
type Adversary struct {
	ID      int       `json:"id"`
	Variant Variant   `json:"-"`
	Pos     nav.Point `json:"pos"`
	PrevPos nav.Point `json:"-"`
	Facing  nav.Dir   `json:"-"`

	HP           int   `json:"hp"`
	StunnedUntil int64 `json:"-"`

	stepBuffer float64
}

// GateState is the mutable side of a world.Gate.
type GateState struct {
	Def       *world.Gate
	Open      bool
	Permanent bool
}

// SectorState is the mutable capture/decay side of a world.Sector.
type SectorState struct {
	Def            *world.Sector
	Captured       bool
	Discovered     bool
	CurrentPickups int
	CapturedAt     int64

	regenAcc    float64
	regenerated int // regenerated pickups not yet eaten back
}

// PelletState tracks one power pellet cell.
type PelletState struct {
	Pos       nav.Point
	Active    bool
	RespawnAt int64
}

// FruitType is the closed set of transient item effects.
type FruitType uint8

const (
	FruitCherry FruitType = iota // score
	FruitBolt                    // speed buff
	FruitHeart                   // area-wide revive
)

func (t FruitType) String() string {
	switch t {
	case FruitCherry:
		return "cherry"
	case FruitBolt:
		return "bolt"
	case FruitHeart:
		return "heart"
	}
	return "unknown"
}

// Fruit is a transient item; it self-expires after a fixed age.
type Fruit struct {
	ID        int
	Type      FruitType
	Pos       nav.Point
	SpawnedAt int64
}

// Input is a pending intent for one participant. Zero-value Dir means
// "keep current direction".
type Input struct {
	Dir     nav.Dir
	Ability bool
}

// RosterEntry describes one participant at construction time.
type RosterEntry struct {
	ID         string
	Name       string
	Credential string
	Connected  bool
}

// Reason is a terminal match outcome.
type Reason string

const (
	ReasonVictory  Reason = "victory"
	ReasonTimeout  Reason = "timeout"
	ReasonAllDown  Reason = "all_down"
	ReasonCollapse Reason = "collapse"
)

// Outcome freezes the match once set; further Advance calls are no-ops.
type Outcome struct {
	Reason     Reason `json:"reason"`
	EndTick    int64  `json:"endTick"`
	DurationMs int64  `json:"durationMs"`
}
