package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"sectorclash/internal/config"
	"sectorclash/internal/game"
	"sectorclash/internal/world"
)

// Batch runner: simulates matches as fast as the CPU allows, no
// network, no pacing. Useful for tuning sweeps and regression checks.
func main() {
	var (
		matches        = flag.Int("matches", 1, "number of matches to simulate")
		seed           = flag.Int64("seed", 1, "seed of the first match; later matches increment")
		difficultyName = flag.String("difficulty", "normal", "difficulty preset: casual, normal, hard")
		participants   = flag.Int("participants", 4, "AI participants per match")
		timeLimitSec   = flag.Float64("limit", 0, "time limit override in simulated seconds (0 = preset)")
		layoutPath     = flag.String("layout", "", "layout YAML (empty = builtin maze)")
		tuningPath     = flag.String("tuning", "", "tuning YAML overlay")
		auditPath      = flag.String("audit", "", "gzip NDJSON audit file (single match only)")
		quiet          = flag.Bool("quiet", false, "suppress per-match lines")
	)
	flag.Parse()

	simCfg := config.DefaultSim()
	diff := config.ParseDifficulty(*difficultyName)
	if *tuningPath != "" {
		var err error
		simCfg, diff, err = config.LoadTuning(*tuningPath, simCfg, diff)
		if err != nil {
			log.Fatalf("tuning overlay: %v", err)
		}
	}

	layout := world.Builtin()
	if *layoutPath != "" {
		var err error
		layout, err = world.Load(*layoutPath)
		if err != nil {
			log.Fatalf("layout: %v", err)
		}
	}

	if *auditPath != "" && *matches > 1 {
		log.Fatal("audit output supports a single match; drop -matches or -audit")
	}

	reasons := make(map[game.Reason]int)
	var totalTicks, totalScore int64
	wallStart := time.Now()

	for i := 0; i < *matches; i++ {
		matchSeed := *seed + int64(i)
		engine, err := game.NewEngine(game.Options{
			Roster:       batchRoster(*participants),
			Difficulty:   diff,
			Sim:          simCfg,
			Layout:       layout,
			Seed:         matchSeed,
			TimeLimitSec: *timeLimitSec,
			AuditPath:    *auditPath,
		})
		if err != nil {
			log.Fatalf("engine (seed %d): %v", matchSeed, err)
		}

		for engine.Outcome() == nil {
			engine.AdvanceTicks(200)
		}
		out := engine.Outcome()
		sum, _ := engine.Summary()
		engine.Close()

		reasons[out.Reason]++
		totalTicks += out.EndTick
		for _, r := range sum.Ranking {
			totalScore += int64(r.Score)
		}

		if !*quiet {
			fmt.Printf("match %3d  seed %-12d %-8s tick %-6d progress %.2f  top %s (%d)\n",
				i+1, matchSeed, out.Reason, out.EndTick, sum.Progress,
				sum.Ranking[0].Name, sum.Ranking[0].Score)
		}
	}

	wall := time.Since(wallStart)
	fmt.Printf("\n%d matches in %s (%.0f ticks/s)\n",
		*matches, wall.Round(time.Millisecond), float64(totalTicks)/wall.Seconds())
	for _, reason := range []game.Reason{game.ReasonVictory, game.ReasonTimeout, game.ReasonAllDown, game.ReasonCollapse} {
		if n := reasons[reason]; n > 0 {
			fmt.Printf("  %-10s %d\n", reason, n)
		}
	}
	fmt.Printf("  avg ticks  %d\n", totalTicks/int64(*matches))
	fmt.Printf("  avg score  %d\n", totalScore/int64(*matches))
}

var batchNames = []string{"ada", "brin", "curt", "dana", "eryn", "finn", "gale", "hoyt"}

func batchRoster(n int) []game.RosterEntry {
	if n < 1 {
		n = 1
	}
	if n > len(batchNames) {
		n = len(batchNames)
	}
	roster := make([]game.RosterEntry, n)
	for i := 0; i < n; i++ {
		roster[i] = game.RosterEntry{ID: batchNames[i], Name: batchNames[i]}
	}
	return roster
}
