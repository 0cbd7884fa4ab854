package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"sectorclash/internal/api"
	"sectorclash/internal/config"
	"sectorclash/internal/game"
	"sectorclash/internal/world"
)

func main() {
	// Load .env from the parent directory first, then the working
	// directory, matching the deployment layout.
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	var (
		difficultyName = flag.String("difficulty", getEnvWithDefault("DIFFICULTY", "normal"), "difficulty preset: casual, normal, hard")
		seed           = flag.Int64("seed", getEnvInt64("MATCH_SEED", 0), "deterministic match seed (0 = derive from clock)")
		layoutPath     = flag.String("layout", os.Getenv("LAYOUT_PATH"), "layout YAML (empty = builtin maze)")
		tuningPath     = flag.String("tuning", os.Getenv("TUNING_PATH"), "tuning YAML overlay")
		rosterSpec     = flag.String("roster", getEnvWithDefault("ROSTER", "ada,brin,curt,dana"), "comma-separated participant names")
		auditPath      = flag.String("audit", os.Getenv("AUDIT_PATH"), "gzip NDJSON event audit file")
	)
	flag.Parse()

	log.Println("🎮 ================================")
	log.Println("🎮  SECTOR CLASH - MATCH HOST")
	log.Println("🎮 ================================")

	serverCfg := config.ServerFromEnv()
	simCfg := config.SimFromEnv()
	diff := config.ParseDifficulty(*difficultyName)

	if *tuningPath != "" {
		var err error
		simCfg, diff, err = config.LoadTuning(*tuningPath, simCfg, diff)
		if err != nil {
			log.Fatalf("❌ Tuning overlay: %v", err)
		}
		log.Printf("🔧 Tuning overlay applied from %s", *tuningPath)
	}

	layout := world.Builtin()
	if *layoutPath != "" {
		var err error
		layout, err = world.Load(*layoutPath)
		if err != nil {
			log.Fatalf("❌ Layout: %v", err)
		}
	}
	log.Printf("🗺️ Layout %q: %dx%d, %d sectors, %d gates",
		layout.Name, layout.Width, layout.Height, len(layout.Sectors), len(layout.Gates))

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	roster := buildRoster(*rosterSpec)
	if len(roster) == 0 {
		log.Fatal("❌ Empty roster")
	}

	engine, err := game.NewEngine(game.Options{
		Roster:     roster,
		Difficulty: diff,
		Sim:        simCfg,
		Layout:     layout,
		Seed:       *seed,
		AuditPath:  *auditPath,
	})
	if err != nil {
		log.Fatalf("❌ Engine: %v", err)
	}

	log.Printf("🎲 Match %s (seed %d, difficulty %s, %d Hz)",
		engine.MatchID(), *seed, diff.Name, simCfg.TickRate)
	for _, entry := range roster {
		log.Printf("👤 %s joins with credential %s", entry.Name, entry.Credential)
	}
	if *auditPath != "" {
		log.Printf("📝 Audit log: %s", *auditPath)
	}

	// Debug server (pprof + prometheus) on the loopback interface.
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = serverCfg.MetricsAddr
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	server := api.NewServer(engine)
	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		log.Printf("🌐 Observer API on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("❌ Server: %v", err)
		}
	}()

	// Pace the simulation against the wall clock. The engine converts
	// elapsed real time into whole ticks itself, so jitter in this loop
	// never changes what the match computes.
	stop := make(chan struct{})
	go func() {
		interval := time.Second / time.Duration(simCfg.TickRate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := time.Now()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				start := time.Now()
				ran := engine.Advance(now.Sub(last))
				last = now
				api.RecordTickBatch(time.Since(start), ran)

				if out := engine.Outcome(); out != nil {
					log.Printf("🏁 Match over: %s at tick %d (%.1fs)",
						out.Reason, out.EndTick, float64(out.DurationMs)/1000)
					return
				}
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Match host ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	close(stop)
	server.Stop()
	engine.Close()
	log.Println("👋 Goodbye!")
}

// buildRoster turns a comma-separated name list into roster entries with
// fresh join credentials. IDs are the lowercased names; hosts that need
// stable external IDs pass them through the names directly.
func buildRoster(spec string) []game.RosterEntry {
	var roster []game.RosterEntry
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		roster = append(roster, game.RosterEntry{
			ID:         strings.ToLower(name),
			Name:       name,
			Credential: uuid.NewString(),
		})
	}
	return roster
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
