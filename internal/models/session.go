// internal/models/session.go
package models

import (
	"time"
)

// Stage identifies the current position in the intake question sequence.
// It is the single source of truth for what input a session expects next.
type Stage string

const (
	StageGoal         Stage = "GOAL"
	StageAge          Stage = "AGE"
	StageWeight       Stage = "WEIGHT"
	StageHeight       Stage = "HEIGHT"
	StageHours        Stage = "HOURS"
	StageEquipment    Stage = "EQUIPMENT"
	StagePlan         Stage = "PLAN"
	StageDone         Stage = "DONE"
	StageEmailShare   Stage = "EMAIL_SHARE"
	StageEmailSending Stage = "EMAIL_SENDING"
)

// Profile accumulates the user's answers. Zero values mean "not collected
// yet"; fields are filled monotonically in stage order and never reset
// within a session.
type Profile struct {
	Goal        string   `json:"goal"`
	Age         int      `json:"age"`
	Weight      float64  `json:"weight"`
	Height      float64  `json:"height"`
	WeeklyHours float64  `json:"weekly_hours"`
	Equipment   []string `json:"equipment"`
	ShareEmail  string   `json:"share_email,omitempty"`
}

// Message is one exchanged chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the per-conversation state record.
type Session struct {
	ID        string    `json:"id"`
	Stage     Stage     `json:"stage"`
	Profile   Profile   `json:"profile"`
	History   []Message `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppendHistory records one turn in the session's chat log.
func (s *Session) AppendHistory(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
}
