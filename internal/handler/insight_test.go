package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/ecotrack/internal/advisor"
	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

type fakeInsightGenerator struct {
	insights *store.InsightStore
}

// GenerateInsight only knows about 2024-01-01.
func (g *fakeInsightGenerator) GenerateInsight(ctx context.Context, ownerID string, date model.Date) (*model.CarbonInsight, error) {
	if date.String() != "2024-01-01" {
		return nil, advisor.ErrFootprintNotFound
	}
	return g.insights.Create(ctx, ownerID, 1, date, "Walk more.")
}

func newInsightHandler(t *testing.T) *InsightHandler {
	t.Helper()
	insights := store.NewInsightStore(setupTestDB(t))
	return NewInsightHandler(insights, &fakeInsightGenerator{insights: insights}, Base{})
}

func TestInsightGenerate(t *testing.T) {
	h := newInsightHandler(t)

	rec := serve(h.Create, request(t, http.MethodPost, "/api/generate-insight", "user_a", `{"date":"2024-01-01"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Success bool                `json:"success"`
		Insight model.CarbonInsight `json:"insight"`
	}](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "Walk more.", body.Insight.Insight)

	rec = serve(h.Create, request(t, http.MethodPost, "/api/generate-insight", "user_a", `{"date":"2024-05-05"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Carbon footprint data not found", errorOf(t, rec))

	rec = serve(h.Create, request(t, http.MethodPost, "/api/generate-insight", "user_a", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsightEditAndDelete(t *testing.T) {
	h := newInsightHandler(t)

	rec := serve(h.Create, request(t, http.MethodPost, "/api/generate-insight", "user_a", `{"date":"2024-01-01"}`))
	id := nestedID(t, rec, "insight")

	rec = serve(h.Update, request(t, http.MethodPut, "/api/generate-insight", "user_a", map[string]any{"id": id}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", errorOf(t, rec))

	rec = serve(h.Update, request(t, http.MethodPut, "/api/generate-insight", "user_b", map[string]any{"id": id, "insight": "mine now"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Insight not found", errorOf(t, rec))

	rec = serve(h.Update, request(t, http.MethodPut, "/api/generate-insight", "user_a", map[string]any{"id": id, "insight": "Cycle more."}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cycle more.", decode[model.CarbonInsight](t, rec).Insight)

	rec = serve(h.Get, request(t, http.MethodGet, "/api/generate-insight", "user_a", nil))
	assert.Len(t, decode[[]model.CarbonInsight](t, rec), 1)

	rec = serve(h.Delete, request(t, http.MethodDelete, "/api/generate-insight", "user_a", nil))
	assert.Equal(t, "Missing insight ID", errorOf(t, rec))

	rec = serve(h.Delete, request(t, http.MethodDelete, "/api/generate-insight?id="+itoa(id), "user_a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Insight deleted successfully"}`, rec.Body.String())

	rec = serve(h.Get, request(t, http.MethodGet, "/api/generate-insight?id="+itoa(id), "user_a", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Insight not found", errorOf(t, rec))
}
