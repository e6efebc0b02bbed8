// internal/chat/orchestrator.go
package chat

import (
	"context"
	"strings"
	"sync"

	"fitness-coach/internal/flow"
	"fitness-coach/internal/models"
	"fitness-coach/internal/plan"
	"fitness-coach/pkg/logger"
)

// Generator renders the computed schedule as prose. A failure propagates as
// a single "generation failed" error to the caller's turn.
type Generator interface {
	GeneratePlan(ctx context.Context, profile models.Profile, computed models.WeeklyPlan, learningContext string) (string, error)
}

// PlanStore is the best-effort persistence boundary. Upsert reports success
// as a boolean and FindSimilar is empty on any failure; neither may abort a
// turn.
type PlanStore interface {
	Upsert(ctx context.Context, rec *models.PlanRecord) bool
	GetBySession(ctx context.Context, sessionID string) (*models.PlanRecord, bool)
	FindSimilar(ctx context.Context, goal string, weeklyHours float64) []models.PlanRecord
}

// EmailSender delivers the plan link. A send failure is reported to the
// user but never reverts the conversation state.
type EmailSender interface {
	Send(ctx context.Context, to, sessionID string) error
}

// SessionStore resolves and persists live conversation sessions. Lock
// returns the per-session mutex serializing turns for one id; the caller
// unlocks it.
type SessionStore interface {
	GetOrCreate(id string) (*models.Session, bool)
	Save(sess *models.Session)
	Lock(id string) *sync.Mutex
}

// Orchestrator drives one response per inbound turn: it applies input to
// the session state machine and runs the plan-generation and email-send
// sub-flows when a transition lands on their trigger stages.
type Orchestrator struct {
	sessions  SessionStore
	planStore PlanStore
	generator Generator
	sender    EmailSender
	logger    *logger.Logger
}

func NewOrchestrator(sessions SessionStore, planStore PlanStore, generator Generator, sender EmailSender, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		planStore: planStore,
		generator: generator,
		sender:    sender,
		logger:    log,
	}
}

// HandleTurn processes one inbound turn. Turns for the same session id are
// serialized; distinct sessions proceed in parallel.
func (o *Orchestrator) HandleTurn(ctx context.Context, req models.TurnRequest) models.TurnResponse {
	sess, created := o.sessions.GetOrCreate(req.SessionID)
	if created && req.SessionID != "" && req.SessionID != sess.ID {
		o.logger.Warnw("Replaced malformed session id", "supplied", req.SessionID, "minted", sess.ID)
	}

	mu := o.sessions.Lock(sess.ID)
	defer mu.Unlock()
	defer o.sessions.Save(sess)

	// A session parked in PLAN means an earlier generation attempt failed;
	// any new turn retries it instead of feeding input to the state machine.
	if sess.Stage == models.StagePlan {
		return o.generateAndFinish(ctx, sess)
	}

	if req.HasInput() {
		in := flow.Input{Selection: req.Selection}
		if req.Message != nil {
			in.Message = *req.Message
		}
		sess.AppendHistory("user", historyContent(in))

		res := flow.ApplyInput(sess, in)
		if !res.OK {
			// Re-prompt the same stage alongside the error.
			prompt := flow.NextPrompt(sess)
			return models.TurnResponse{
				SessionID: sess.ID,
				Stage:     sess.Stage,
				Error:     res.Error,
				Assistant: models.AssistantTurn{Text: prompt.Text, UI: prompt.UI},
			}
		}

		switch sess.Stage {
		case models.StagePlan:
			return o.generateAndFinish(ctx, sess)
		case models.StageEmailSending:
			return o.sendPlanEmail(ctx, sess)
		}
	}

	prompt := flow.NextPrompt(sess)
	sess.AppendHistory("assistant", prompt.Text)
	return models.TurnResponse{
		SessionID: sess.ID,
		Stage:     sess.Stage,
		Assistant: models.AssistantTurn{Text: prompt.Text, UI: prompt.UI},
	}
}

// generateAndFinish runs the PLAN stage: compute the schedule, render it as
// prose, persist best-effort, then advance to DONE. A generation failure
// leaves the session in PLAN so the next turn retries.
func (o *Orchestrator) generateAndFinish(ctx context.Context, sess *models.Session) models.TurnResponse {
	profile := sess.Profile
	computed := plan.BuildWeeklyPlan(profile.Goal, profile.WeeklyHours, profile.Equipment)

	similar := o.planStore.FindSimilar(ctx, profile.Goal, profile.WeeklyHours)
	learning := plan.LearningContextPrompt(similar)

	planText, err := o.generator.GeneratePlan(ctx, profile, computed, learning)
	if err != nil {
		o.logger.Errorw("Plan generation failed", "error", err, "session_id", sess.ID)
		return models.TurnResponse{
			SessionID: sess.ID,
			Stage:     sess.Stage,
			Error:     "Plan generation failed. Please try again.",
		}
	}

	saved := o.planStore.Upsert(ctx, &models.PlanRecord{
		SessionID:   sess.ID,
		Goal:        profile.Goal,
		Age:         profile.Age,
		Weight:      profile.Weight,
		Height:      profile.Height,
		WeeklyHours: profile.WeeklyHours,
		Equipment:   profile.Equipment,
		ChatHistory: sess.History,
		PlanText:    planText,
	})
	if !saved {
		o.logger.Warnw("Plan record not persisted, continuing degraded", "session_id", sess.ID)
	}

	sess.Stage = models.StageDone
	sess.AppendHistory("assistant", planText)

	return models.TurnResponse{
		SessionID: sess.ID,
		Stage:     sess.Stage,
		Assistant: models.AssistantTurn{Text: "Here's your personalized fitness plan:"},
		Plan:      &models.PlanPayload{PlanText: planText, SavedToDB: saved},
		Actions:   []models.Action{{Type: "share_email", Label: "Share via Email"}},
	}
}

// sendPlanEmail runs the EMAIL_SENDING stage. The session always lands on
// DONE; a send failure is reported in a separate field so the user is never
// stranded mid-branch.
func (o *Orchestrator) sendPlanEmail(ctx context.Context, sess *models.Session) models.TurnResponse {
	err := o.sender.Send(ctx, sess.Profile.ShareEmail, sess.ID)
	sess.Stage = models.StageDone

	resp := models.TurnResponse{
		SessionID: sess.ID,
		Stage:     sess.Stage,
	}
	if err != nil {
		o.logger.Errorw("Email send failed", "error", err, "session_id", sess.ID)
		resp.Assistant = models.AssistantTurn{Text: "We couldn't send the email right now. Your plan is still available here."}
		resp.EmailError = "Failed to send email. Please try again."
	} else {
		resp.Assistant = models.AssistantTurn{Text: "✅ Your fitness plan link has been sent successfully. Please check your inbox."}
	}
	sess.AppendHistory("assistant", resp.Assistant.Text)
	return resp
}

func historyContent(in flow.Input) string {
	if in.Selection.Set {
		return strings.Join(in.Selection.Values, ", ")
	}
	return in.Message
}
