package flow

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	strategySearchResults = 5

	sourceNotFoundMarker = "Source not found"

	strategizeFailureMsg = "I researched some strategies, but had trouble formatting them with specific sources. Please try describing your product again."

	strategyListHeader = "Here are some killer strategies I found for you! 🔥"
	strategyListFooter = "Which of these strategies resonates with you the most? Reply with the number or name! 👇"
)

var (
	citationPattern     = regexp.MustCompile(`\(Source:\s*\[?(\d+)\]?\)`)
	leadingIndexPattern = regexp.MustCompile(`^\d+\.\s*`)
)

// generateStrategies runs once on entry to the strategizing phase: derive a
// search query from the product details, search the web, and have the model
// produce 3-5 cited strategies resolved against the search results.
func (e *Engine) generateStrategies(ctx context.Context, st *State) {
	query, err := e.llm.Complete(ctx, strategyQueryPrompt(st.ProductDetails))
	if err != nil || strings.TrimSpace(query) == "" {
		if err != nil {
			e.log.Warn("strategy query generation failed", "err", err)
		}
		// Degrade to searching the raw product details.
		query = st.ProductDetails
	}
	query = strings.TrimSpace(query)
	e.log.Info("searching the web for strategies", "query", query)

	results, err := e.search.Results(ctx, query, strategySearchResults)
	if err != nil {
		e.log.Warn("strategy web search failed", "err", err)
		results = nil
	}

	sourceMap := make(map[int]string, len(results))
	for i, res := range results {
		sourceMap[i+1] = res.Link
	}

	cited, err := e.llm.Complete(ctx, citationPrompt(st.ProductDetails, results))
	if err != nil {
		e.log.Warn("strategy generation failed", "err", err)
		st.appendAssistant(strategizeFailureMsg)
		return
	}

	strategies, listing := parseCitedStrategies(cited, sourceMap)
	if len(strategies) == 0 {
		st.appendAssistant(strategizeFailureMsg)
		return
	}

	st.Strategies = strategies
	st.appendAssistant(strategyListHeader + "\n\n" + strings.Join(listing, "\n\n") + "\n\n" + strategyListFooter)
}

// parseCitedStrategies scans the model output line by line. The primary
// pattern is a "(Source: [n])" citation resolved against sourceMap; the
// secondary heuristic accepts citation-free lines that still look like a
// numbered strategy. The secondary match is attempted only when the primary
// fails, in that order.
func parseCitedStrategies(raw string, sourceMap map[int]string) (strategies []string, listing []string) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := citationPattern.FindStringSubmatch(line); m != nil {
			num, _ := strconv.Atoi(m[1])
			link, ok := sourceMap[num]
			if !ok {
				link = sourceNotFoundMarker
			}
			text := strings.TrimSpace(citationPattern.ReplaceAllString(line, ""))
			text = leadingIndexPattern.ReplaceAllString(text, "")
			strategies = append(strategies, text)
			listing = append(listing, fmt.Sprintf("**Strategy %d:** %s\n*Source: %s*", len(strategies), text, link))
			continue
		}

		if len(line) > 10 && line[0] >= '0' && line[0] <= '9' {
			text := leadingIndexPattern.ReplaceAllString(line, "")
			strategies = append(strategies, text)
			listing = append(listing, fmt.Sprintf("**Strategy %d:** %s", len(strategies), text))
		}
	}
	return strategies, listing
}
