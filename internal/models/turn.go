// internal/models/turn.go
package models

import (
	"encoding/json"
)

// Selection carries a button-driven choice. Clients send either a single
// string (single-select stages) or a list of strings (multi-select), so
// both shapes decode into the same value.
type Selection struct {
	Values []string
	Set    bool
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		s.Values = []string{single}
		s.Set = true
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	s.Values = list
	s.Set = true
	return nil
}

func (s Selection) MarshalJSON() ([]byte, error) {
	if !s.Set {
		return []byte("null"), nil
	}
	return json.Marshal(s.Values)
}

// Single returns the first selected value, or "" when nothing was selected.
func (s Selection) Single() string {
	if len(s.Values) == 0 {
		return ""
	}
	return s.Values[0]
}

// TurnRequest is one inbound chat turn. Message is a pointer so that an
// empty typed message is still recognized as user input.
type TurnRequest struct {
	SessionID string    `json:"sessionId,omitempty"`
	Message   *string   `json:"message,omitempty"`
	Selection Selection `json:"selection,omitempty"`
}

// HasInput reports whether the request carries any user input, as opposed
// to a bare "what should I ask next" call.
func (r TurnRequest) HasInput() bool {
	return r.Message != nil || r.Selection.Set
}

// UIHint describes how the client should render the current prompt's
// choices.
type UIHint struct {
	Type    string   `json:"type"` // "single_select" or "multi_select"
	Options []string `json:"options"`
}

const (
	UISingleSelect = "single_select"
	UIMultiSelect  = "multi_select"
)

// AssistantTurn is the assistant side of one exchange.
type AssistantTurn struct {
	Text string  `json:"text"`
	UI   *UIHint `json:"ui,omitempty"`
}

// PlanPayload is attached to the response of the turn that produced a plan.
type PlanPayload struct {
	PlanText  string `json:"planText"`
	SavedToDB bool   `json:"savedToDB"`
}

// Action is a follow-up affordance the client may offer the user.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// TurnResponse is the outcome of one inbound turn.
type TurnResponse struct {
	SessionID  string        `json:"sessionId"`
	Stage      Stage         `json:"stage"`
	Assistant  AssistantTurn `json:"assistant"`
	Error      string        `json:"error,omitempty"`
	EmailError string        `json:"emailError,omitempty"`
	Plan       *PlanPayload  `json:"plan,omitempty"`
	Actions    []Action      `json:"actions,omitempty"`
}
