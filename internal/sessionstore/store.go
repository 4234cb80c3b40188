// Package sessionstore persists conversation state between turns, keyed by
// session id. The engine never touches persistence; the transport layer
// loads before and saves after each invocation.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pitchframe/marketing-agent/internal/flow"
)

// ErrNotFound is returned when no state exists for a session id.
var ErrNotFound = errors.New("session not found")

// Store loads and saves per-session conversation state.
type Store interface {
	Load(ctx context.Context, sessionID string) (*flow.State, error)
	Save(ctx context.Context, sessionID string, state *flow.State) error
	Close() error
}

func encodeState(state *flow.State) ([]byte, error) {
	if state == nil {
		return nil, errors.New("nil state")
	}
	return json.Marshal(state)
}

func decodeState(raw []byte) (*flow.State, error) {
	var state flow.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
