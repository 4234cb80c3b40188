package flow

import (
	"context"
	"fmt"
	"strings"
)

const (
	intentMarketing = "marketing"

	routerContextWindow = 3

	smallTalkFallbackMsg = "Hi there! I'm your AI marketing assistant. Would you like help with marketing strategies for your product?"
)

// route classifies the latest user message and records the routing decision
// in st.NextAgent. A classifier miss resolves to small talk; false negatives
// are cheaper than dragging a greeting through the task agent.
func (e *Engine) route(ctx context.Context, st *State) {
	if _, ok := st.latestUserInput(); !ok {
		st.NextAgent = NextAgentSmallTalk
		return
	}

	recent := st.Turns
	if len(recent) > routerContextWindow {
		recent = recent[len(recent)-routerContextWindow:]
	}
	lines := make([]string, 0, len(recent))
	for _, t := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, t.Content))
	}

	intent, err := e.llm.Complete(ctx, routerPrompt(strings.Join(lines, "\n")))
	if err != nil {
		e.log.Warn("intent classification failed", "err", err)
		st.NextAgent = NextAgentSmallTalk
		return
	}
	intent = strings.ToLower(strings.TrimSpace(intent))
	e.log.Info("routing decision", "intent", intent)

	if strings.Contains(intent, intentMarketing) {
		st.NextAgent = NextAgentTask
		return
	}
	st.NextAgent = NextAgentSmallTalk
}

// smallTalk produces one reply in the orchestrator's own persona and ends
// the invocation.
func (e *Engine) smallTalk(ctx context.Context, st *State) {
	defer func() { st.NextAgent = NextAgentDone }()

	input, ok := st.latestUserInput()
	if !ok {
		st.appendAssistant(smallTalkFallbackMsg)
		return
	}
	reply, err := e.llm.Complete(ctx, smallTalkPrompt(input))
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			e.log.Warn("small talk completion failed", "err", err)
		}
		st.appendAssistant(smallTalkFallbackMsg)
		return
	}
	st.appendAssistant(reply)
}
