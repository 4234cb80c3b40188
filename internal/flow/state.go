// Package flow implements the conversational workflow engine: an
// orchestrator that routes each user turn to small talk or to the marketing
// task agent, and the task agent's gather/strategize/select/guide/check
// state machine over a shared per-session conversation state.
package flow

import "strings"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Routing targets recorded in State.NextAgent. The value only carries
// meaning within the invocation that produced it.
const (
	NextAgentTask      = "task"
	NextAgentSmallTalk = "smalltalk"
	NextAgentDone      = "done"
)

// State is the conversation state threaded through every invocation. The
// session layer owns persistence; orchestrator and task-agent steps mutate
// it in place. Empty string / nil slice means "unset".
type State struct {
	Turns            []Turn   `json:"turns"`
	ProductDetails   string   `json:"product_details,omitempty"`
	Strategies       []string `json:"strategies,omitempty"`
	SelectedStrategy string   `json:"selected_strategy,omitempty"`
	Satisfaction     bool     `json:"satisfaction"`
	Guided           bool     `json:"guided"`
	StrategyGuide    string   `json:"strategy_guide,omitempty"`
	UserEmail        string   `json:"user_email,omitempty"`
	NextAgent        string   `json:"next_agent,omitempty"`
}

// Done reports whether the session layer should treat the conversation as
// complete and stop prompting for input.
func (s *State) Done() bool {
	return s != nil && s.Satisfaction
}

// LastTurn returns the most recent transcript entry.
func (s *State) LastTurn() (Turn, bool) {
	if s == nil || len(s.Turns) == 0 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

func (s *State) latestUserInput() (string, bool) {
	last, ok := s.LastTurn()
	if !ok || last.Role != RoleUser {
		return "", false
	}
	return last.Content, true
}

func (s *State) appendUser(content string) {
	s.Turns = append(s.Turns, Turn{Role: RoleUser, Content: content})
}

func (s *State) appendAssistant(content string) {
	s.Turns = append(s.Turns, Turn{Role: RoleAssistant, Content: strings.TrimSpace(content)})
}

// Phase is the task agent's current node, derived from field presence.
type Phase int

const (
	PhaseGathering Phase = iota
	PhaseStrategizing
	PhaseSelecting
	PhaseGuiding
	PhaseChecking
)

func (p Phase) String() string {
	switch p {
	case PhaseGathering:
		return "gathering"
	case PhaseStrategizing:
		return "strategizing"
	case PhaseSelecting:
		return "selecting"
	case PhaseGuiding:
		return "guiding"
	case PhaseChecking:
		return "checking"
	default:
		return "unknown"
	}
}

// DerivePhase re-derives the task agent's node from which state fields are
// populated. There is no explicit phase field; the checks run in dependency
// order, which also gives unreachable combinations (e.g. guided with no
// selection) a defined fallback to the earliest incomplete node.
func DerivePhase(s *State) Phase {
	switch {
	case s == nil || strings.TrimSpace(s.ProductDetails) == "":
		return PhaseGathering
	case len(s.Strategies) == 0:
		return PhaseStrategizing
	case s.SelectedStrategy == "":
		return PhaseSelecting
	case !s.Guided:
		return PhaseGuiding
	default:
		return PhaseChecking
	}
}
