package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness-coach/internal/flow"
	"fitness-coach/internal/models"
	"fitness-coach/internal/session"
	"fitness-coach/pkg/logger"
)

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (g *fakeGenerator) GeneratePlan(_ context.Context, _ models.Profile, _ models.WeeklyPlan, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

type fakePlanStore struct {
	upsertOK bool
	saved    []*models.PlanRecord
	similar  []models.PlanRecord
}

func (s *fakePlanStore) Upsert(_ context.Context, rec *models.PlanRecord) bool {
	s.saved = append(s.saved, rec)
	return s.upsertOK
}

func (s *fakePlanStore) GetBySession(_ context.Context, sessionID string) (*models.PlanRecord, bool) {
	for _, rec := range s.saved {
		if rec.SessionID == sessionID {
			return rec, true
		}
	}
	return nil, false
}

func (s *fakePlanStore) FindSimilar(_ context.Context, _ string, _ float64) []models.PlanRecord {
	return s.similar
}

type fakeSender struct {
	err   error
	sent  []string
	calls int
}

func (s *fakeSender) Send(_ context.Context, to, _ string) error {
	s.calls++
	s.sent = append(s.sent, to)
	return s.err
}

var _ SessionStore = (*session.Store)(nil)

type fixture struct {
	orch      *Orchestrator
	generator *fakeGenerator
	planStore *fakePlanStore
	sender    *fakeSender
}

func newFixture() *fixture {
	log := logger.NewNop()
	f := &fixture{
		generator: &fakeGenerator{text: "Your plan: lift things up and put them down."},
		planStore: &fakePlanStore{upsertOK: true},
		sender:    &fakeSender{},
	}
	sessions := session.NewStore(time.Hour, log)
	f.orch = NewOrchestrator(sessions, f.planStore, f.generator, f.sender, log)
	return f
}

func strptr(s string) *string { return &s }

func turnMsg(sessionID, message string) models.TurnRequest {
	return models.TurnRequest{SessionID: sessionID, Message: strptr(message)}
}

func turnSel(sessionID string, values ...string) models.TurnRequest {
	return models.TurnRequest{SessionID: sessionID, Selection: models.Selection{Values: values, Set: true}}
}

// runIntake drives a fresh conversation up to and including the equipment
// answer, returning the final response.
func runIntake(t *testing.T, f *fixture) models.TurnResponse {
	t.Helper()
	ctx := context.Background()

	resp := f.orch.HandleTurn(ctx, models.TurnRequest{})
	require.Equal(t, models.StageGoal, resp.Stage)
	require.NotNil(t, resp.Assistant.UI)
	require.Len(t, resp.Assistant.UI.Options, 5)
	id := resp.SessionID

	resp = f.orch.HandleTurn(ctx, turnSel(id, "Muscle gain"))
	require.Equal(t, models.StageAge, resp.Stage)
	resp = f.orch.HandleTurn(ctx, turnMsg(id, "25"))
	require.Equal(t, models.StageWeight, resp.Stage)
	resp = f.orch.HandleTurn(ctx, turnMsg(id, "80"))
	require.Equal(t, models.StageHeight, resp.Stage)
	resp = f.orch.HandleTurn(ctx, turnMsg(id, "180"))
	require.Equal(t, models.StageHours, resp.Stage)
	resp = f.orch.HandleTurn(ctx, turnMsg(id, "4"))
	require.Equal(t, models.StageEquipment, resp.Stage)
	require.NotNil(t, resp.Assistant.UI)

	return f.orch.HandleTurn(ctx, turnSel(id, "Dumbbells", "Home gym"))
}

func TestEndToEndIntakeProducesPlan(t *testing.T) {
	f := newFixture()
	resp := runIntake(t, f)

	assert.Equal(t, models.StageDone, resp.Stage)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, f.generator.text, resp.Plan.PlanText)
	assert.True(t, resp.Plan.SavedToDB)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "share_email", resp.Actions[0].Type)

	require.Len(t, f.planStore.saved, 1)
	rec := f.planStore.saved[0]
	assert.Equal(t, resp.SessionID, rec.SessionID)
	assert.Equal(t, "Muscle gain", rec.Goal)
	assert.Equal(t, []string{"Dumbbells", "Home gym"}, rec.Equipment)
	assert.Equal(t, f.generator.text, rec.PlanText)
}

func TestValidationFailureRepromptsSameStage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp := f.orch.HandleTurn(ctx, models.TurnRequest{})
	id := resp.SessionID
	resp = f.orch.HandleTurn(ctx, turnSel(id, "Muscle gain"))
	require.Equal(t, models.StageAge, resp.Stage)

	resp = f.orch.HandleTurn(ctx, turnMsg(id, "abc"))
	assert.Equal(t, models.StageAge, resp.Stage)
	assert.Contains(t, resp.Error, "valid age")
	assert.Contains(t, resp.Assistant.Text, "age")

	resp = f.orch.HandleTurn(ctx, turnMsg(id, "25"))
	assert.Equal(t, models.StageWeight, resp.Stage)
	assert.Empty(t, resp.Error)
}

func TestGenerationFailureKeepsSessionInPlanForRetry(t *testing.T) {
	f := newFixture()
	f.generator.err = errors.New("model unavailable")

	resp := runIntake(t, f)
	assert.Equal(t, models.StagePlan, resp.Stage)
	assert.Equal(t, "Plan generation failed. Please try again.", resp.Error)
	assert.Nil(t, resp.Plan)

	// Next turn retries generation instead of re-running the state machine.
	f.generator.err = nil
	resp = f.orch.HandleTurn(context.Background(), models.TurnRequest{SessionID: resp.SessionID})
	assert.Equal(t, models.StageDone, resp.Stage)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, 2, f.generator.calls)
}

func TestPersistenceFailureDegradesGracefully(t *testing.T) {
	f := newFixture()
	f.planStore.upsertOK = false

	resp := runIntake(t, f)
	assert.Equal(t, models.StageDone, resp.Stage)
	require.NotNil(t, resp.Plan)
	assert.False(t, resp.Plan.SavedToDB)
	assert.Empty(t, resp.Error)
}

func TestLearningContextPassedToGenerator(t *testing.T) {
	f := newFixture()
	f.planStore.similar = []models.PlanRecord{
		{Goal: "Muscle gain", WeeklyHours: 5, PlanText: "old plan"},
	}

	resp := runIntake(t, f)
	assert.Equal(t, models.StageDone, resp.Stage)
	assert.Equal(t, 1, f.generator.calls)
}

func TestEmailShareSucceeds(t *testing.T) {
	f := newFixture()
	resp := runIntake(t, f)
	id := resp.SessionID
	ctx := context.Background()

	resp = f.orch.HandleTurn(ctx, turnSel(id, flow.ShareEmailTrigger))
	assert.Equal(t, models.StageEmailShare, resp.Stage)

	resp = f.orch.HandleTurn(ctx, turnMsg(id, "user@example.com"))
	assert.Equal(t, models.StageDone, resp.Stage)
	assert.Empty(t, resp.EmailError)
	assert.Equal(t, []string{"user@example.com"}, f.sender.sent)
}

func TestEmailFailureStillEndsAtDone(t *testing.T) {
	f := newFixture()
	f.sender.err = errors.New("smtp down")

	resp := runIntake(t, f)
	id := resp.SessionID
	ctx := context.Background()

	resp = f.orch.HandleTurn(ctx, turnSel(id, flow.ShareEmailTrigger))
	require.Equal(t, models.StageEmailShare, resp.Stage)

	resp = f.orch.HandleTurn(ctx, turnMsg(id, "not-an-email"))
	assert.Equal(t, models.StageEmailShare, resp.Stage)
	assert.NotEmpty(t, resp.Error)

	resp = f.orch.HandleTurn(ctx, turnMsg(id, "user@example.com"))
	assert.Equal(t, models.StageDone, resp.Stage)
	assert.NotEmpty(t, resp.EmailError)
	assert.Equal(t, 1, f.sender.calls)
}

func TestMalformedSessionIDGetsFreshSession(t *testing.T) {
	f := newFixture()
	resp := f.orch.HandleTurn(context.Background(), models.TurnRequest{SessionID: "garbage-id"})

	assert.NotEqual(t, "garbage-id", resp.SessionID)
	assert.Equal(t, models.StageGoal, resp.Stage)
	assert.Empty(t, resp.Error)
}
