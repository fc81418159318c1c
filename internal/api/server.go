package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dodge-royale/internal/game"
)

// Server is the HTTP API server with websocket support. It combines the
// HTTP router with the websocket hub that feeds the match.
type Server struct {
	match       *game.Match
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Start() is called. The
// constructor opens no listeners and launches no goroutines, so tests can
// build a Server and use Router() with httptest.
func NewServer(match *game.Match) *Server {
	s := &Server{
		match:       match,
		wsHub:       NewWebSocketHub(match),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Match:       match,
		RateLimiter: s.rateLimiter,
		ExtraStats:  s.wsHub.Stats,
	})

	// The websocket route needs the hub instance, so it can't live in the
	// pure NewRouter factory.
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Hub returns the websocket hub so the match loop can broadcast snapshots.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start launches the hub worker and serves HTTP on addr. This is the only
// method that starts goroutines or opens listeners. Call once.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()

	log.Printf("🌐 API server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
