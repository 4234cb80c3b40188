package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pitchframe/marketing-agent/internal/flow"
	"github.com/pitchframe/marketing-agent/internal/llm"
	"github.com/pitchframe/marketing-agent/internal/sessionstore"
	"github.com/pitchframe/marketing-agent/internal/websearch"
)

type stubLLM struct {
	responses map[string]string
}

func (s *stubLLM) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	var joined strings.Builder
	for _, m := range msgs {
		joined.WriteString(m.Content)
		joined.WriteString("\n")
	}
	for marker, resp := range s.responses {
		if strings.Contains(joined.String(), marker) {
			return resp, nil
		}
	}
	return "general", nil
}

type stubSearch struct{}

func (stubSearch) Results(context.Context, string, int) ([]websearch.Result, error) {
	return nil, nil
}

type stubMailer struct {
	sent int
}

func (m *stubMailer) Send(context.Context, string, string, string) error {
	m.sent++
	return nil
}

func newTestServer(t *testing.T, responses map[string]string, sender *stubMailer) (*Server, sessionstore.Store) {
	t.Helper()
	store, err := sessionstore.OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if sender == nil {
		sender = &stubMailer{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := flow.NewEngine(&stubLLM{responses: responses}, stubSearch{}, sender, logger)
	return NewServer(engine, store, logger, time.Minute), store
}

func postChat(t *testing.T, h http.Handler, body string, email string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewBufferString(body))
	if email != "" {
		req.Header.Set(userEmailHeader, email)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChat_MintsSessionAndReplies(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, map[string]string{
		"intelligent router":                    "general",
		"Orchestrator of the AI Marketing System": "Hi! Need marketing help?",
	}, nil)
	h := srv.Handler()

	rec := postChat(t, h, `{"message":"hello"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("server must mint a session id")
	}
	if len(resp.Turns) != 1 || !strings.Contains(resp.Turns[0].Content, "marketing help") {
		t.Fatalf("turns=%v, want the small-talk reply", resp.Turns)
	}
	if resp.Done {
		t.Fatal("small talk must not complete the conversation")
	}

	st, err := store.Load(context.Background(), resp.SessionID)
	if err != nil {
		t.Fatalf("Load persisted state: %v", err)
	}
	if len(st.Turns) != 2 {
		t.Fatalf("persisted turns=%d, want user+assistant", len(st.Turns))
	}
}

func TestChat_RejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil, nil)
	rec := postChat(t, srv.Handler(), `{"message":"   "}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestChat_RejectsBadJSON(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil, nil)
	rec := postChat(t, srv.Handler(), `{not json`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestChat_SatisfactionTriggersEmailInSameRequest(t *testing.T) {
	t.Parallel()

	sender := &stubMailer{}
	srv, store := newTestServer(t, map[string]string{
		"intelligent router": "marketing",
		"PRIORITY RULES":     "SATISFIED",
	}, sender)

	seed := &flow.State{
		ProductDetails:   "Name: EcoBottle\nFeatures: reusable\nTarget Audience: students\nGoals: sales",
		Strategies:       []string{"Campus ambassadors"},
		SelectedStrategy: "Campus ambassadors",
		Guided:           true,
		StrategyGuide:    "Great choice! Here is your step-by-step guide:\n\n### Steps:\n1. go",
	}
	if err := store.Save(context.Background(), "sess-9", seed); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	rec := postChat(t, srv.Handler(), `{"session_id":"sess-9","message":"yes perfect, email me"}`, "casey@example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d: %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Done {
		t.Fatal("satisfied conversation must report done")
	}
	if sender.sent != 1 {
		t.Fatalf("mailer sends=%d, want the same-request delivery", sender.sent)
	}
	if len(resp.Turns) != 2 {
		t.Fatalf("turns=%d, want sending-now plus confirmation", len(resp.Turns))
	}
	if !strings.Contains(resp.Turns[1].Content, "casey@example.com") {
		t.Fatal("confirmation must echo the caller address")
	}

	st, err := store.Load(context.Background(), "sess-9")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !st.Satisfaction {
		t.Fatal("persisted state must carry satisfaction")
	}
}

func TestLockSession_ReapsReleasedEntries(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil, nil)

	unlock := srv.lockSession("sess-a")
	srv.mu.Lock()
	held := len(srv.locks)
	srv.mu.Unlock()
	if held != 1 {
		t.Fatalf("locks=%d while held, want 1", held)
	}
	unlock()

	srv.mu.Lock()
	remaining := len(srv.locks)
	srv.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("locks=%d after release, want entry reaped", remaining)
	}
}

func TestLockSession_WaiterKeepsEntryAlive(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil, nil)

	unlock := srv.lockSession("sess-a")

	acquired := make(chan func())
	go func() {
		acquired <- srv.lockSession("sess-a")
	}()

	// Wait until the second caller is queued on the session lock.
	for {
		srv.mu.Lock()
		refs := 0
		if l, ok := srv.locks["sess-a"]; ok {
			refs = l.refs
		}
		srv.mu.Unlock()
		if refs == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	unlock()
	unlock2 := <-acquired

	srv.mu.Lock()
	held := len(srv.locks)
	srv.mu.Unlock()
	if held != 1 {
		t.Fatalf("locks=%d with a second holder, want entry kept", held)
	}

	unlock2()
	srv.mu.Lock()
	remaining := len(srv.locks)
	srv.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("locks=%d after both releases, want entry reaped", remaining)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
}
