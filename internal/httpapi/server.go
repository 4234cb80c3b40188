// Package httpapi exposes the conversation engine over HTTP. One POST /v1/chat
// call is one orchestrator invocation: load state, handle the turn, trigger
// guide delivery if satisfaction just flipped, persist, reply.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pitchframe/marketing-agent/internal/flow"
	"github.com/pitchframe/marketing-agent/internal/sessionstore"
)

// userEmailHeader carries the caller's identity from the auth proxy in
// front of this service. The model never supplies the address.
const userEmailHeader = "X-User-Email"

const maxChatBodyBytes = 64 << 10

type Server struct {
	engine      *flow.Engine
	store       sessionstore.Store
	log         *slog.Logger
	turnTimeout time.Duration

	// Per-session serialization: the phase derivation assumes state is not
	// mutated mid-step by a concurrent request on the same session. Entries
	// are refcounted and reaped on release so the map does not grow with
	// the number of distinct sessions ever seen.
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewServer(engine *flow.Engine, store sessionstore.Store, logger *slog.Logger, turnTimeout time.Duration) *Server {
	if turnTimeout <= 0 {
		turnTimeout = 90 * time.Second
	}
	return &Server{
		engine:      engine,
		store:       store,
		log:         logger,
		turnTimeout: turnTimeout,
		locks:       map[string]*sessionLock{},
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/chat", s.handleChat)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string      `json:"session_id"`
	Turns     []flow.Turn `json:"turns"`
	Done      bool        `json:"done"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing message"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	callerEmail := strings.TrimSpace(r.Header.Get(userEmailHeader))

	unlock := s.lockSession(sessionID)
	defer unlock()

	ctx, cancel := context.WithTimeout(r.Context(), s.turnTimeout)
	defer cancel()

	st, err := s.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		st = &flow.State{}
	case err != nil:
		s.log.Error("load session failed", "session_id", sessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session load failed"})
		return
	}

	wasSatisfied := st.Satisfaction
	turns := s.engine.HandleTurn(ctx, st, req.Message, callerEmail)
	if !wasSatisfied && st.Satisfaction {
		turns = append(turns, s.engine.SendGuide(ctx, st)...)
	}

	if err := s.store.Save(ctx, sessionID, st); err != nil {
		s.log.Error("save session failed", "session_id", sessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session save failed"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Turns:     turns,
		Done:      st.Done(),
	})
}

func (s *Server) lockSession(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
