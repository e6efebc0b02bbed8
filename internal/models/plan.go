// internal/models/plan.go
package models

import (
	"time"
)

// PlanMeta summarizes a computed weekly schedule.
type PlanMeta struct {
	Days           int      `json:"days"`
	SessionMinutes int      `json:"sessionMinutes"`
	Focus          []string `json:"focus"`
}

// PlanSession is one training day inside a weekly plan.
type PlanSession struct {
	Day             int      `json:"day"`
	DurationMinutes int      `json:"durationMinutes"`
	Warmup          string   `json:"warmup"`
	Main            []string `json:"main"`
	Finisher        string   `json:"finisher"`
}

// WeeklyPlan is the deterministic schedule computed from a profile. It is
// the ground truth the generated narrative must not contradict.
type WeeklyPlan struct {
	Meta     PlanMeta      `json:"meta"`
	Sessions []PlanSession `json:"sessions"`
}

// PlanRecord is the persisted snapshot of a completed session: profile,
// chat history and the generated plan text.
type PlanRecord struct {
	SessionID   string    `json:"session_id"`
	Goal        string    `json:"goal"`
	Age         int       `json:"age"`
	Weight      float64   `json:"weight"`
	Height      float64   `json:"height"`
	WeeklyHours float64   `json:"weekly_hours"`
	Equipment   []string  `json:"equipment"`
	ChatHistory []Message `json:"chat_history"`
	PlanText    string    `json:"plan_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
