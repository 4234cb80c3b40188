package flow

import (
	"context"
	"strings"
	"testing"
)

func TestSendGuide_MissingAddressSkipsSink(t *testing.T) {
	t.Parallel()

	sender := &fakeMailer{}
	e := newTestEngine(&scriptedLLM{t: t}, &fakeSearch{}, sender)

	st := checkingState()
	st.Satisfaction = true
	turns := e.SendGuide(context.Background(), st)

	if len(sender.sent) != 0 {
		t.Fatal("sink must not be called without an address")
	}
	if len(turns) != 1 || turns[0].Content != emailMissingAddressMsg {
		t.Fatalf("turns=%v, want the apology verbatim", turns)
	}
}

func TestSendGuide_DeliversRenderedGuide(t *testing.T) {
	t.Parallel()

	sender := &fakeMailer{}
	e := newTestEngine(&scriptedLLM{t: t}, &fakeSearch{}, sender)

	st := checkingState()
	st.Satisfaction = true
	st.UserEmail = "casey@example.com"
	st.StrategyGuide = "### Steps:\n1. Compare A < B\n- item with **bold**"
	turns := e.SendGuide(context.Background(), st)

	if len(sender.sent) != 1 {
		t.Fatalf("len(sent)=%d, want 1", len(sender.sent))
	}
	sent := sender.sent[0]
	if sent.Recipient != "casey@example.com" {
		t.Fatalf("recipient=%q", sent.Recipient)
	}
	if sent.Subject != "Your Marketing Strategy: Campus ambassadors" {
		t.Fatalf("subject=%q", sent.Subject)
	}
	if !strings.Contains(sent.HTMLBody, "A &lt; B") {
		t.Fatal("literal angle bracket must be escaped in the rendered body")
	}
	if !strings.Contains(sent.HTMLBody, "Marketing Strategy Guide") {
		t.Fatal("body must carry the branded shell")
	}

	if len(turns) != 1 {
		t.Fatalf("len(turns)=%d, want confirmation turn", len(turns))
	}
	if !strings.Contains(turns[0].Content, "casey@example.com") {
		t.Fatal("confirmation must echo the address")
	}
	if !strings.Contains(turns[0].Content, st.StrategyGuide) {
		t.Fatal("confirmation must repeat the guide inline")
	}
}

func TestSendGuide_DeliveryFailureIsSoft(t *testing.T) {
	t.Parallel()

	sender := &fakeMailer{err: errOracle}
	e := newTestEngine(&scriptedLLM{t: t}, &fakeSearch{}, sender)

	st := checkingState()
	st.UserEmail = "casey@example.com"
	turns := e.SendGuide(context.Background(), st)

	if len(turns) != 1 || !strings.Contains(turns[0].Content, "delivery failed") {
		t.Fatalf("turns=%v, want soft delivery failure", turns)
	}
}

func TestSendGuide_FallsBackToTranscriptGuide(t *testing.T) {
	t.Parallel()

	sender := &fakeMailer{}
	e := newTestEngine(&scriptedLLM{t: t}, &fakeSearch{}, sender)

	st := checkingState()
	st.UserEmail = "casey@example.com"
	st.StrategyGuide = ""
	st.appendAssistant("Great choice! Here is your step-by-step guide:\n\n### Steps:\n1. Do the thing")
	st.appendUser("email it")

	turns := e.SendGuide(context.Background(), st)
	if len(sender.sent) != 1 {
		t.Fatal("sink must be called with the transcript guide")
	}
	if !strings.Contains(turns[0].Content, "Do the thing") {
		t.Fatal("confirmation must repeat the recovered guide")
	}
}

func TestSendGuide_NothingRecoverableUsesPlaceholder(t *testing.T) {
	t.Parallel()

	sender := &fakeMailer{}
	e := newTestEngine(&scriptedLLM{t: t}, &fakeSearch{}, sender)

	st := &State{UserEmail: "casey@example.com", SelectedStrategy: "Referral loop"}
	turns := e.SendGuide(context.Background(), st)

	if len(sender.sent) != 1 {
		t.Fatal("sink must still be called")
	}
	if !strings.Contains(turns[0].Content, guidePlaceholder) {
		t.Fatal("confirmation must fall back to the placeholder guide")
	}
}
