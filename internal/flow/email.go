package flow

import (
	"context"
	"fmt"
	"strings"
)

const (
	emailSubjectFmt = "Your Marketing Strategy: %s"

	emailMissingAddressMsg = "I wanted to email you the guide, but I don't have your email address handy. You can copy the guide above!"

	emailDeliveryFailedFmt = "I tried to send the guide to %s, but the delivery failed. You can copy the guide above!"

	emailConfirmationFmt = "Sent! 🚀\n\n**Here is the draft I sent to %s:**\n\n---\n%s\n---\n\nCheck your inbox!"

	// guideOpenerMarker identifies guide turns in the transcript when the
	// stored guide field is empty (older sessions).
	guideOpenerMarker = "Great choice!"

	guidePlaceholder = "Here is your marketing strategy guide."
)

// SendGuide delivers the stored guide to the caller's email address. The
// session layer invokes it once Satisfaction flips true; the task agent
// never triggers delivery on its own. A missing address or a failed
// delivery degrades to a soft assistant turn, never an error.
func (e *Engine) SendGuide(ctx context.Context, st *State) []Turn {
	if st == nil {
		return nil
	}
	start := len(st.Turns)

	recipient := strings.TrimSpace(st.UserEmail)
	if recipient == "" {
		st.appendAssistant(emailMissingAddressMsg)
		return assistantTurnsSince(st, start)
	}

	guide := strings.TrimSpace(st.StrategyGuide)
	if guide == "" {
		for i := len(st.Turns) - 1; i >= 0; i-- {
			t := st.Turns[i]
			if t.Role == RoleAssistant && strings.Contains(t.Content, guideOpenerMarker) {
				guide = t.Content
				break
			}
		}
	}
	if guide == "" {
		guide = guidePlaceholder
	}

	subject := fmt.Sprintf(emailSubjectFmt, st.SelectedStrategy)
	body := renderEmailHTML(guide)

	if err := e.mailer.Send(ctx, recipient, subject, body); err != nil {
		e.log.Warn("guide email delivery failed", "recipient", recipient, "err", err)
		st.appendAssistant(fmt.Sprintf(emailDeliveryFailedFmt, recipient))
		return assistantTurnsSince(st, start)
	}

	e.log.Info("guide emailed", "recipient", recipient)
	st.appendAssistant(fmt.Sprintf(emailConfirmationFmt, recipient, guide))
	return assistantTurnsSince(st, start)
}
