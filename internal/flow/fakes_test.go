package flow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pitchframe/marketing-agent/internal/llm"
	"github.com/pitchframe/marketing-agent/internal/websearch"
)

// Prompt markers used to dispatch scripted completions. Each marker is a
// substring unique to one prompt builder.
const (
	markRouter    = "intelligent router"
	markSmallTalk = "Orchestrator of the AI Marketing System"
	markExtract   = "extracting product details"
	markClarify   = "energetic marketing genius"
	markStratQ    = "the best marketing strategies"
	markCitation  = "cite the source number"
	markSelection = "select a marketing strategy from a list"
	markGuideQ    = "step-by-step guide for implementation"
	markGuide     = "step-by-step approach"
	markCheck     = "PRIORITY RULES"
)

type scriptedLLM struct {
	t         *testing.T
	responses map[string]string
	err       error

	prompts []string
}

func (f *scriptedLLM) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	joined := strings.Join(parts, "\n")
	f.prompts = append(f.prompts, joined)

	if f.err != nil {
		return "", f.err
	}
	for marker, resp := range f.responses {
		if strings.Contains(joined, marker) {
			return resp, nil
		}
	}
	f.t.Fatalf("no scripted response for prompt:\n%s", joined)
	return "", nil
}

// lastPromptWith returns the most recent prompt containing marker.
func (f *scriptedLLM) lastPromptWith(marker string) (string, bool) {
	for i := len(f.prompts) - 1; i >= 0; i-- {
		if strings.Contains(f.prompts[i], marker) {
			return f.prompts[i], true
		}
	}
	return "", false
}

type fakeSearch struct {
	results []websearch.Result
	err     error

	queries []string
}

func (f *fakeSearch) Results(_ context.Context, query string, _ int) ([]websearch.Result, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type sentMail struct {
	Recipient string
	Subject   string
	HTMLBody  string
}

type fakeMailer struct {
	err  error
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, recipient, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{Recipient: recipient, Subject: subject, HTMLBody: htmlBody})
	return nil
}

func newTestEngine(llmClient llm.Client, search websearch.Client, sender *fakeMailer) *Engine {
	if sender == nil {
		sender = &fakeMailer{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(llmClient, search, sender, logger)
}

var errOracle = errors.New("oracle unavailable")
