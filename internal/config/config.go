// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server
// settings: when changing values, only modify this file (or ship a
// tuning YAML); the rest of the codebase references these values.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SIMULATION CADENCE & CORE TUNING
// =============================================================================

// SimConfig holds the fixed-cadence simulation tuning shared by every
// difficulty. Durations are in seconds of simulated time; the engine
// converts to ticks at construction.
type SimConfig struct {
	TickRate        int `yaml:"tick_rate_hz"`     // simulation ticks per second
	ThinkInterval   int `yaml:"think_interval"`   // ticks between participant AI decisions
	BalanceInterval int `yaml:"balance_interval"` // ticks between balancer passes

	MaxCharges  int `yaml:"max_charges"`
	GaugeMax    int `yaml:"gauge_max"`
	GaugePerDot int `yaml:"gauge_per_dot"`

	BaseSpeed          float64 `yaml:"base_speed"`           // tiles per second
	CapturedSpeedBonus float64 `yaml:"captured_speed_bonus"` // multiplier on captured sectors
	BuffSpeedBonus     float64 `yaml:"buff_speed_bonus"`     // multiplier while speed-buffed
	MaxSubSteps        int     `yaml:"max_sub_steps"`        // hard cap on steps per tick

	SearchDepth  int `yaml:"search_depth"`  // BFS depth bound
	DangerRadius int `yaml:"danger_radius"` // ability-trigger distance
	ThreatRadius int `yaml:"threat_radius"` // flee-trigger distance

	EmpoweredSec        float64 `yaml:"empowered_sec"`         // pellet empowerment
	AbilityEmpoweredSec float64 `yaml:"ability_empowered_sec"` // charge activation
	SpeedBuffSec        float64 `yaml:"speed_buff_sec"`
	ReviveGraceSec      float64 `yaml:"revive_grace_sec"`
	DownTimeoutSec      float64 `yaml:"down_timeout_sec"`

	FruitLifetimeSec float64 `yaml:"fruit_lifetime_sec"`
	PelletRespawnSec float64 `yaml:"pellet_respawn_sec"`
	DecayFraction    float64 `yaml:"decay_fraction"` // regen share that flips a sector back
}

// DefaultSim returns the reference simulation cadence (20 Hz).
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:        20,
		ThinkInterval:   5,
		BalanceInterval: 20,

		MaxCharges:  3,
		GaugeMax:    100,
		GaugePerDot: 5,

		BaseSpeed:          4.0,
		CapturedSpeedBonus: 1.25,
		BuffSpeedBonus:     1.5,
		MaxSubSteps:        8,

		SearchDepth:  64,
		DangerRadius: 2,
		ThreatRadius: 5,

		EmpoweredSec:        8,
		AbilityEmpoweredSec: 3,
		SpeedBuffSec:        6,
		ReviveGraceSec:      2,
		DownTimeoutSec:      15,

		FruitLifetimeSec: 12,
		PelletRespawnSec: 30,
		DecayFraction:    0.05,
	}
}

// SimFromEnv returns the simulation config with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()
	if v := getEnvInt("SIM_TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}
	if v := getEnvInt("SIM_MAX_SUB_STEPS", 0); v > 0 {
		cfg.MaxSubSteps = v
	}
	if v := getEnvInt("SIM_SEARCH_DEPTH", 0); v > 0 {
		cfg.SearchDepth = v
	}
	if v := getEnvFloat("SIM_BASE_SPEED", 0); v > 0 {
		cfg.BaseSpeed = v
	}
	if v := getEnvFloat("SIM_DOWN_TIMEOUT_SEC", 0); v > 0 {
		cfg.DownTimeoutSec = v
	}
	return cfg
}

// =============================================================================
// DIFFICULTY PRESETS
// =============================================================================

// Difficulty bundles the knobs a match host picks with one word.
type Difficulty struct {
	Name string `yaml:"name"`

	AdversaryFloor            int     `yaml:"adversary_floor"`
	AdversaryCeil             int     `yaml:"adversary_ceil"`
	AdversariesPerParticipant float64 `yaml:"adversaries_per_participant"`
	ProgressAdversaryBonus    float64 `yaml:"progress_adversary_bonus"` // extra headcount at full progress
	AdversarySpeed            float64 `yaml:"adversary_speed"`          // tiles per second

	TimeLimitSec   float64 `yaml:"time_limit_sec"`
	PressureScale  float64 `yaml:"pressure_scale"` // multiplies regen rate, divides grace
	EliteThreshold float64 `yaml:"elite_threshold"`
	CollapseHigh   float64 `yaml:"collapse_high"`
	CollapseLow    float64 `yaml:"collapse_low"`
}

// Casual returns the easiest preset.
func Casual() Difficulty {
	return Difficulty{
		Name:                      "casual",
		AdversaryFloor:            2,
		AdversaryCeil:             6,
		AdversariesPerParticipant: 1.0,
		ProgressAdversaryBonus:    2,
		AdversarySpeed:            3.2,
		TimeLimitSec:              600,
		PressureScale:             0.75,
		EliteThreshold:            0.80,
		CollapseHigh:              0.60,
		CollapseLow:               0.25,
	}
}

// Normal returns the default preset.
func Normal() Difficulty {
	d := Casual()
	d.Name = "normal"
	d.AdversaryFloor = 3
	d.AdversaryCeil = 8
	d.AdversariesPerParticipant = 1.5
	d.ProgressAdversaryBonus = 3
	d.AdversarySpeed = 3.5
	d.PressureScale = 1.0
	return d
}

// Hard returns the punishing preset.
func Hard() Difficulty {
	d := Casual()
	d.Name = "hard"
	d.AdversaryFloor = 4
	d.AdversaryCeil = 10
	d.AdversariesPerParticipant = 2.0
	d.ProgressAdversaryBonus = 4
	d.AdversarySpeed = 3.8
	d.PressureScale = 1.4
	d.EliteThreshold = 0.70
	return d
}

// ParseDifficulty maps a preset name onto its config. Unknown names fall
// back to normal.
func ParseDifficulty(name string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "casual":
		return Casual()
	case "hard":
		return Hard()
	default:
		return Normal()
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds the observer HTTP server settings.
type ServerConfig struct {
	Port        int
	MetricsAddr string // localhost-only debug listener
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:        3000,
		MetricsAddr: "127.0.0.1:6060",
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if a := os.Getenv("METRICS_ADDR"); a != "" {
		cfg.MetricsAddr = a
	}
	return cfg
}

// =============================================================================
// YAML TUNING OVERLAY
// =============================================================================

// tuningDoc is the optional on-disk overlay: either section may be
// omitted, in which case the defaults stand.
type tuningDoc struct {
	Sim        *SimConfig  `yaml:"sim"`
	Difficulty *Difficulty `yaml:"difficulty"`
}

// LoadTuning reads a tuning YAML and overlays it on the given configs.
func LoadTuning(path string, sim SimConfig, diff Difficulty) (SimConfig, Difficulty, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sim, diff, errors.Wrap(err, "config: read tuning")
	}
	doc := tuningDoc{Sim: &sim, Difficulty: &diff}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return sim, diff, errors.Wrap(err, "config: parse tuning yaml")
	}
	return sim, diff, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
