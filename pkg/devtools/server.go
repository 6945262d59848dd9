package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/oz/pkg/reactive"
)

// StatsFunc reports runtime statistics. It is called from HTTP handler
// goroutines.
type StatsFunc func(ctx context.Context) (reactive.Stats, error)

// RuntimeStats returns a StatsFunc that reads rt.Stats on the runtime
// goroutine through the task queue. The runtime must be running (Run).
func RuntimeStats(rt *reactive.Runtime) StatsFunc {
	return func(ctx context.Context) (reactive.Stats, error) {
		result := make(chan reactive.Stats, 1)
		if !rt.Dispatch(func() { result <- rt.Stats() }) {
			return reactive.Stats{}, errors.New("devtools: runtime is not accepting tasks")
		}
		select {
		case s := <-result:
			return s, nil
		case <-ctx.Done():
			return reactive.Stats{}, ctx.Err()
		}
	}
}

// ServerConfig configures the devtools server.
type ServerConfig struct {
	// Gatherer backs the /metrics endpoint (default:
	// prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// Logger receives server diagnostics (default: slog.Default()).
	Logger *slog.Logger

	// CheckOrigin validates WebSocket origins. Nil allows all origins.
	CheckOrigin func(r *http.Request) bool

	// StatsTimeout bounds a /stats request (default: 2s).
	StatsTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// ServerOption configures the devtools server.
type ServerOption func(*ServerConfig)

// WithGatherer sets the metrics gatherer.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(c *ServerConfig) {
		c.Gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(c *ServerConfig) {
		c.Logger = logger
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) ServerOption {
	return func(c *ServerConfig) {
		c.CheckOrigin = fn
	}
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          slog.Default(),
		StatsTimeout:    2 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server serves a runtime's event history, statistics, live event feed and
// metrics over HTTP.
//
// Routes:
//   - GET /debug/reactive/stats: runtime statistics and event counts
//   - GET /debug/reactive/events?limit=N: recent events, oldest first
//   - GET /debug/reactive/ws: WebSocket feed of new events (JSON text frames)
//   - GET /metrics: Prometheus exposition
type Server struct {
	hub    *Hub
	stats  StatsFunc
	config ServerConfig
	router chi.Router

	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	stop     func()
	pumpDone chan struct{}
}

// NewServer creates a devtools server for hub. stats may be nil, in which
// case /stats reports only event counts. The server starts forwarding hub
// events to WebSocket clients immediately; call Close to stop it.
func NewServer(hub *Hub, stats StatsFunc, opts ...ServerOption) *Server {
	config := defaultServerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	s := &Server{
		hub:     hub,
		stats:   stats,
		config:  config,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		pumpDone: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/debug/reactive", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.handleEvents)
		r.Get("/ws", s.handleWebSocket)
	})
	r.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	s.router = r

	feed, stop := hub.Subscribe(256)
	s.stop = stop
	go s.pump(feed)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type statsResponse struct {
	Runtime *reactive.Stats   `json:"runtime,omitempty"`
	Events  map[string]uint64 `json:"events"`
	Total   uint64            `json:"total"`
	Clients int               `json:"clients"`
	Error   string            `json:"error,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Events:  s.hub.Counts(),
		Total:   s.hub.Total(),
		Clients: s.ClientCount(),
	}
	status := http.StatusOK

	if s.stats != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.StatsTimeout)
		defer cancel()
		stats, err := s.stats(ctx)
		if err != nil {
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Runtime = &stats
		}
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, s.hub.Recent(limit))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.config.Logger.Debug("devtools: write response failed", "error", err)
	}
}

// handleWebSocket registers a client and keeps the connection open until the
// client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.config.Logger.Debug("devtools: websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// pump forwards hub entries to every connected client. It is the only
// writer on client connections.
func (s *Server) pump(feed <-chan Entry) {
	defer close(s.pumpDone)
	for entry := range feed {
		s.broadcast(entry)
	}
}

func (s *Server) broadcast(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, client)
			s.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close stops forwarding events and closes all client connections.
func (s *Server) Close() {
	s.stop()
	<-s.pumpDone

	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully and closes the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("devtools listening", "address", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.config.Logger.Error("devtools shutdown error", "error", err)
		return err
	}
	s.config.Logger.Info("devtools shutdown complete")
	return nil
}
