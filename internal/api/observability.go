package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-participant labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Wall time spent running simulation ticks per loop pass",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	ticksPerAdvance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_ticks_per_advance",
		Help:    "Ticks executed per Advance call; sustained >1 means the host is falling behind",
		Buckets: []float64{0, 1, 2, 4, 8, 16},
	})

	matchProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_progress_ratio",
		Help: "Captured share of sectors",
	})

	adversaryCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_adversary_count",
		Help: "Current adversary headcount",
	})

	participantsDown = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_participants_down",
		Help: "Participants currently down",
	})

	eventsDrained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_events_drained_total",
		Help: "Delta events handed to snapshot consumers",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: rate_limit, origin, ws_total_limit, ws_ip_limit

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObservabilityConfig configures the debug listener.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // keep on loopback in production
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the pprof/metrics listener. It refuses
// non-loopback addresses unless explicitly overridden.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ Debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()
	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTickBatch records one host-loop pass: how long the ticks took
// and how many ran.
func RecordTickBatch(duration time.Duration, ticks int) {
	tickDuration.Observe(duration.Seconds())
	ticksPerAdvance.Observe(float64(ticks))
}

// RecordMatchState updates the per-snapshot gauges.
func RecordMatchState(progress float64, adversaries, down, drained int) {
	matchProgress.Set(progress)
	adversaryCount.Set(float64(adversaries))
	participantsDown.Set(float64(down))
	eventsDrained.Add(float64(drained))
}

// RecordConnectionRejected increments the rejection counter. The
// reason must come from the bounded set documented on the metric.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates the WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts an outbound WebSocket message.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
