// Package api exposes the dialog engine over HTTP.
//
// It provides the stateless chat endpoint, where the caller echoes the full
// session back on every turn, and store-backed conversation endpoints where
// the server holds the session between turns. Both run the same engine and
// produce identical payloads for identical (session, input) pairs.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/VertexInfotech/SupportFlow/internal/flow"
	"github.com/VertexInfotech/SupportFlow/internal/models"
	"github.com/VertexInfotech/SupportFlow/internal/store"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// Opts holds configuration for the API server.
type Opts struct {
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server serves the chat API.
type Server struct {
	addr   string
	engine *flow.Engine
	st     store.Store
}

// NewServer creates an API server over the given engine and session store.
func NewServer(engine *flow.Engine, st store.Store, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{addr: cfg.Addr, engine: engine, st: st}
}

// Handler returns the routed HTTP handler. Split out from Run so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat", s.chatHandler)
	mux.HandleFunc("POST /api/v1/conversations", s.createConversationHandler)
	mux.HandleFunc("POST /api/v1/conversations/{id}/messages", s.conversationMessageHandler)
	mux.HandleFunc("DELETE /api/v1/conversations/{id}", s.deleteConversationHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	slog.Info("SupportFlow API listening", "addr", s.addr)
	err := http.ListenAndServe(s.addr, s.Handler())
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"status": "healthy"}))
}

// safeStep runs one engine turn, converting a panic into the localized
// generic-error payload so the caller always gets a user-visible response.
func (s *Server) safeStep(sess *models.Session, input string) (payload models.ResponsePayload) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("engine turn panicked", "panic", rec, "state", sess.CurrentState)
			payload = s.engine.FailTurn(sess)
		}
	}()
	return s.engine.Step(sess, input)
}
