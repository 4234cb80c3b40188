package flow

import (
	"context"
	"fmt"
	"strings"
)

const (
	// minKnownFields is how many of the four extracted fields must be known
	// before the product description is committed.
	minKnownFields = 3

	unknownMarker = "unknown"

	gatherConfirmationFmt = "Understood. Based on your input, here's what I've gathered about your product:\n\n%s\n\nShall I proceed with generating strategies based on this?"

	gatherFallbackMsg = "Tell me about your product! 🚀 What is it, who's it for, and what are you trying to achieve?"
)

// gatherProductDetails extracts the name/features/audience/goals schema from
// the latest user message. At least three known fields commit the details
// and confirm; anything less (including malformed extraction output) keeps
// the conversation in the gathering phase with a clarifying question.
func (e *Engine) gatherProductDetails(ctx context.Context, st *State) {
	if input, ok := st.latestUserInput(); ok {
		raw, err := e.llm.Complete(ctx, extractionPrompt(input))
		if err != nil {
			e.log.Warn("product detail extraction failed", "err", err)
		} else {
			details := strings.TrimSpace(raw)
			if strings.HasPrefix(details, "Name:") && strings.Contains(details, "\n") {
				if known := countKnownFields(details); known >= minKnownFields {
					e.log.Info("product details committed", "known_fields", known)
					st.ProductDetails = details
					st.appendAssistant(fmt.Sprintf(gatherConfirmationFmt, details))
					return
				}
			}
		}
	}

	reply, err := e.llm.Complete(ctx, clarifyPrompt(st.Turns))
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			e.log.Warn("clarifying question completion failed", "err", err)
		}
		reply = gatherFallbackMsg
	}
	st.appendAssistant(reply)
}

// countKnownFields counts "Key: value" lines whose value does not carry the
// unknown marker.
func countKnownFields(details string) int {
	known := 0
	for _, line := range strings.Split(details, "\n") {
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(strings.TrimSpace(value)), unknownMarker) {
			known++
		}
	}
	return known
}
