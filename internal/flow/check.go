package flow

import (
	"context"
	"strings"
)

const (
	satisfiedToken    = "SATISFIED"
	dissatisfiedToken = "DISSATISFIED"

	// checkGuideContextLimit caps how much of the guide is replayed into the
	// classification prompt. Context-size defense only; the stored guide is
	// never truncated.
	checkGuideContextLimit = 2000

	checkSatisfiedMsg = "Awesome! I'm sending this guide to your email right now! 📧"

	checkDissatisfiedMsg = "No worries! Let's pivot. Please select another strategy from the list I provided earlier."

	checkPromptMsg = "Does this strategy and guide work for you? Reply 'yes' if you're happy, or 'no' to try another."

	checkFallbackMsg = "Sorry, I lost my train of thought for a second. Is the guide working for you? Reply 'yes' if you're happy, or 'no' to try another."
)

// checkSatisfaction classifies the user's reaction to the guide. The model
// is instructed to apply five priority-ordered rules (email request beats
// everything, then approval, rejection, farewell, free-form) and answers
// either with a verdict token or with a free-form reply that is relayed
// as-is.
func (e *Engine) checkSatisfaction(ctx context.Context, st *State) {
	input, ok := st.latestUserInput()
	if !ok {
		st.appendAssistant(checkPromptMsg)
		return
	}

	reply, err := e.llm.Complete(ctx, satisfactionPrompt(
		st.SelectedStrategy,
		truncate(st.StrategyGuide, checkGuideContextLimit),
		input,
	))
	if err != nil {
		e.log.Warn("satisfaction classification failed", "err", err)
		st.appendAssistant(checkFallbackMsg)
		return
	}

	cleaned := strings.TrimSpace(reply)
	upper := strings.ToUpper(cleaned)
	// The dissatisfied token contains the satisfied one as a substring, so
	// it must be tested first.
	switch {
	case strings.Contains(upper, dissatisfiedToken):
		e.log.Info("user dissatisfied, reopening selection")
		st.SelectedStrategy = ""
		st.Satisfaction = false
		st.Guided = false
		st.appendAssistant(checkDissatisfiedMsg)
	case strings.Contains(upper, satisfiedToken):
		e.log.Info("user satisfied")
		st.Satisfaction = true
		st.appendAssistant(checkSatisfiedMsg)
	default:
		// Farewell or free-form answer; relay the model's reply unchanged.
		st.appendAssistant(cleaned)
	}
}
