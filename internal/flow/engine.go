package flow

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pitchframe/marketing-agent/internal/llm"
	"github.com/pitchframe/marketing-agent/internal/mailer"
	"github.com/pitchframe/marketing-agent/internal/websearch"
)

// Engine runs one orchestrator invocation per inbound user message. All
// external collaborators are injected so tests can substitute deterministic
// fakes.
type Engine struct {
	llm    llm.Client
	search websearch.Client
	mailer mailer.Sender
	log    *slog.Logger
}

func NewEngine(llmClient llm.Client, search websearch.Client, sender mailer.Sender, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Engine{
		llm:    llmClient,
		search: search,
		mailer: sender,
		log:    logger,
	}
}

// HandleTurn appends the user message to the transcript, routes it, runs at
// most one task-agent transition, and returns the assistant turns emitted
// during this invocation. The state is mutated in place; the caller persists
// it afterwards.
func (e *Engine) HandleTurn(ctx context.Context, st *State, userMessage, callerEmail string) []Turn {
	if st == nil {
		return nil
	}
	if msg := strings.TrimSpace(userMessage); msg != "" {
		st.appendUser(msg)
	}
	if email := strings.TrimSpace(callerEmail); email != "" {
		st.UserEmail = email
	}

	start := len(st.Turns)
	e.route(ctx, st)
	switch st.NextAgent {
	case NextAgentTask:
		e.runTaskAgent(ctx, st)
	case NextAgentSmallTalk:
		e.smallTalk(ctx, st)
	}
	return assistantTurnsSince(st, start)
}

// runTaskAgent executes the step for the derived phase. A step that commits
// a transition without speaking (strategy selection) chains into the next
// phase's on-entry step so the user always gets a reply.
func (e *Engine) runTaskAgent(ctx context.Context, st *State) {
	const maxChainedSteps = 3
	for range maxChainedSteps {
		phase := DerivePhase(st)
		before := len(st.Turns)
		e.log.Debug("task agent step", "phase", phase.String())

		switch phase {
		case PhaseGathering:
			e.gatherProductDetails(ctx, st)
		case PhaseStrategizing:
			e.generateStrategies(ctx, st)
		case PhaseSelecting:
			e.selectStrategy(ctx, st)
		case PhaseGuiding:
			e.guideStrategy(ctx, st)
		case PhaseChecking:
			e.checkSatisfaction(ctx, st)
		}

		if len(st.Turns) > before {
			return
		}
		if DerivePhase(st) == phase {
			return
		}
	}
}

func assistantTurnsSince(st *State, start int) []Turn {
	if start > len(st.Turns) {
		return nil
	}
	var out []Turn
	for _, t := range st.Turns[start:] {
		if t.Role == RoleAssistant {
			out = append(out, t)
		}
	}
	return out
}

// truncate cuts s to at most max bytes, backing up to a rune boundary so
// the result stays valid UTF-8 (guides routinely end mid-emoji otherwise).
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
