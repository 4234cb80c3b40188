package flow

import (
	"context"
	"strconv"
	"strings"
)

const (
	selectNoStrategiesMsg = "I don't have any strategies to select from yet. Let's generate some first!"

	selectInvalidMsg = "I'm not sure which strategy you mean. You can simply reply with the number (e.g., '1') or the name of the strategy."

	selectPromptMsg = "Which strategy do you like best? You can tell me the number or just say the name! 🏆"
)

// selectStrategy resolves the user's reply against the strategy list via the
// model, which answers with a 1-based index or 0 for no match. A committed
// selection emits no turn of its own; the guiding step that follows speaks.
func (e *Engine) selectStrategy(ctx context.Context, st *State) {
	if len(st.Strategies) == 0 {
		// Guard: selecting before any strategies were generated.
		st.appendAssistant(selectNoStrategiesMsg)
		return
	}

	input, ok := st.latestUserInput()
	if !ok {
		st.appendAssistant(selectPromptMsg)
		return
	}

	result, err := e.llm.Complete(ctx, selectionPrompt(st.Strategies, input))
	if err != nil {
		e.log.Warn("strategy selection classification failed", "err", err)
		st.appendAssistant(selectInvalidMsg)
		return
	}

	num, err := strconv.Atoi(strings.TrimSpace(result))
	if err == nil && num > 0 && num <= len(st.Strategies) {
		st.SelectedStrategy = st.Strategies[num-1]
		e.log.Info("strategy selected", "index", num)
		return
	}
	st.appendAssistant(selectInvalidMsg)
}
