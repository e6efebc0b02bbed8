package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness-coach/internal/chat"
	"fitness-coach/internal/models"
	"fitness-coach/internal/session"
	"fitness-coach/pkg/logger"
)

type stubGenerator struct{}

func (stubGenerator) GeneratePlan(_ context.Context, _ models.Profile, _ models.WeeklyPlan, _ string) (string, error) {
	return "generated plan text", nil
}

type memPlanStore struct {
	records map[string]*models.PlanRecord
}

func newMemPlanStore() *memPlanStore {
	return &memPlanStore{records: make(map[string]*models.PlanRecord)}
}

func (s *memPlanStore) Upsert(_ context.Context, rec *models.PlanRecord) bool {
	s.records[rec.SessionID] = rec
	return true
}

func (s *memPlanStore) GetBySession(_ context.Context, sessionID string) (*models.PlanRecord, bool) {
	rec, found := s.records[sessionID]
	return rec, found
}

func (s *memPlanStore) FindSimilar(_ context.Context, _ string, _ float64) []models.PlanRecord {
	return nil
}

type stubSender struct{}

func (stubSender) Send(_ context.Context, _, _ string) error { return nil }

func newTestServer() (*Server, *memPlanStore) {
	log := logger.NewNop()
	plans := newMemPlanStore()
	sessions := session.NewStore(time.Hour, log)
	orch := chat.NewOrchestrator(sessions, plans, stubGenerator{}, stubSender{}, log)
	return NewServer("0", orch, plans, log), plans
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeTurn(t *testing.T, rec *httptest.ResponseRecorder) models.TurnResponse {
	t.Helper()
	var resp models.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestChatNewSessionReturnsGoalPrompt(t *testing.T) {
	s, _ := newTestServer()

	rec := postJSON(t, s, "/api/chat", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeTurn(t, rec)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.StageGoal, resp.Stage)
	require.NotNil(t, resp.Assistant.UI)
	assert.Equal(t, models.UISingleSelect, resp.Assistant.UI.Type)
	assert.Len(t, resp.Assistant.UI.Options, 5)
}

func TestChatSelectionAdvancesStage(t *testing.T) {
	s, _ := newTestServer()

	resp := decodeTurn(t, postJSON(t, s, "/api/chat", `{}`))

	rec := postJSON(t, s, "/api/chat",
		`{"sessionId":"`+resp.SessionID+`","selection":"Muscle gain"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = decodeTurn(t, rec)
	assert.Equal(t, models.StageAge, resp.Stage)
	assert.Empty(t, resp.Error)
}

func TestChatEquipmentListSelection(t *testing.T) {
	s, plans := newTestServer()

	resp := decodeTurn(t, postJSON(t, s, "/api/chat", `{}`))
	id := resp.SessionID
	for _, body := range []string{
		`{"sessionId":"` + id + `","selection":"Muscle gain"}`,
		`{"sessionId":"` + id + `","message":"25"}`,
		`{"sessionId":"` + id + `","message":"80"}`,
		`{"sessionId":"` + id + `","message":"180"}`,
		`{"sessionId":"` + id + `","message":"4"}`,
	} {
		resp = decodeTurn(t, postJSON(t, s, "/api/chat", body))
		require.Empty(t, resp.Error)
	}
	require.Equal(t, models.StageEquipment, resp.Stage)

	resp = decodeTurn(t, postJSON(t, s, "/api/chat",
		`{"sessionId":"`+id+`","selection":["Dumbbells","Home gym"]}`))
	assert.Equal(t, models.StageDone, resp.Stage)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, "generated plan text", resp.Plan.PlanText)

	_, found := plans.records[id]
	assert.True(t, found)
}

func TestChatInvalidPayload(t *testing.T) {
	s, _ := newTestServer()
	rec := postJSON(t, s, "/api/chat", `{"selection":42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlanNotFound(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/plan/unknown-session", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPlanReturnsStoredRecord(t *testing.T) {
	s, plans := newTestServer()
	plans.records["s1"] = &models.PlanRecord{SessionID: "s1", Goal: "Endurance", PlanText: "run a lot"}

	req := httptest.NewRequest(http.MethodGet, "/api/plan/s1", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.PlanRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run a lot", got.PlanText)
}

func TestShareEmailRequiresPayload(t *testing.T) {
	s, _ := newTestServer()
	rec := postJSON(t, s, "/api/share/email", `{"sessionId":"","email":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPanicSurfacesAsInternalError(t *testing.T) {
	s, _ := newTestServer()
	s.echo.GET("/boom", func(c echo.Context) error {
		panic("kaboom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
