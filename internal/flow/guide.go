package flow

import (
	"context"
	"fmt"
	"strings"
)

const (
	guideSearchResults = 3

	toolsQueryFmt = "best software tools for %s marketing 2024"

	guideClosingOffer = "\n\nReady to execute this? Or would you like me to email this guide to you? 📧"

	guideFailureMsg = "I hit a snag while putting your step-by-step guide together. Give me a moment and ask again, and I'll take another run at it."
)

// guideStrategy runs once on entry to the guiding phase: two web searches
// (implementation guide, then tools) feed a single completion constrained to
// the Steps / Recommended Tools / Required Documents template. The searches
// run in order because the completion consumes both result sets.
func (e *Engine) guideStrategy(ctx context.Context, st *State) {
	guideQuery, err := e.llm.Complete(ctx, guideQueryPrompt(st.ProductDetails, st.SelectedStrategy))
	if err != nil || strings.TrimSpace(guideQuery) == "" {
		if err != nil {
			e.log.Warn("guide query generation failed", "err", err)
		}
		guideQuery = st.SelectedStrategy
	}
	guideQuery = strings.TrimSpace(guideQuery)

	e.log.Info("searching for guide", "query", guideQuery)
	guideResults, err := e.search.Results(ctx, guideQuery, guideSearchResults)
	if err != nil {
		e.log.Warn("guide web search failed", "err", err)
		guideResults = nil
	}

	toolsQuery := fmt.Sprintf(toolsQueryFmt, st.SelectedStrategy)
	e.log.Info("searching for tools", "query", toolsQuery)
	toolResults, err := e.search.Results(ctx, toolsQuery, guideSearchResults)
	if err != nil {
		e.log.Warn("tools web search failed", "err", err)
		toolResults = nil
	}

	response, err := e.llm.Complete(ctx, guidePrompt(
		st.ProductDetails,
		st.SelectedStrategy,
		formatSnippets(guideResults),
		formatSnippets(toolResults),
	))
	if err != nil || strings.TrimSpace(response) == "" {
		if err != nil {
			e.log.Warn("guide generation failed", "err", err)
		}
		// Stay in the guiding phase; the next user turn retries.
		st.appendAssistant(guideFailureMsg)
		return
	}

	full := strings.TrimSpace(response) + guideClosingOffer
	st.Guided = true
	st.StrategyGuide = full
	st.appendAssistant(full)
}
