package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sectorclash/internal/game"
)

// Server combines the HTTP router with the WebSocket hub for one
// match. Construction is side-effect free; Start is the only method
// that launches goroutines or opens listeners.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates the observer server for a match.
func NewServer(engine *game.Engine) *Server {
	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(engine),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}
	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		RateLimiter: s.rateLimiter,
	})
	s.router.Get("/ws", s.handleWS)
	return s
}

// Start launches the hub workers and serves HTTP. Blocks.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop()

	log.Printf("🌐 Observer server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router exposes the handler for httptest-based integration tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
