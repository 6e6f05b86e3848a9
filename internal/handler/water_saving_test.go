package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/ecotrack/internal/store"
)

func TestWaterSavingLifecycle(t *testing.T) {
	h := NewWaterSavingHandler(store.NewWaterSavingStore(setupTestDB(t)), Base{})

	rec := serve(h.Create, request(t, http.MethodPost, "/api/waterSavings", "user_a",
		`{"date":"2024-02-10","amountSaved":12.5,"notes":"shorter shower"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"amountSaved":12.50`)
	id := int64(decode[map[string]any](t, rec)["id"].(float64))

	rec = serve(h.Update, request(t, http.MethodPut, "/api/waterSavings", "user_a", map[string]any{
		"id": id, "date": "2024-02-11", "amountSaved": 20,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"amountSaved":20.00`)

	rec = serve(h.Get, request(t, http.MethodGet, "/api/waterSavings?id="+itoa(id), "user_a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h.Delete, request(t, http.MethodDelete, "/api/waterSavings?id="+itoa(id), "user_a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Water saving entry deleted successfully"}`, rec.Body.String())

	rec = serve(h.Get, request(t, http.MethodGet, "/api/waterSavings?id="+itoa(id), "user_a", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaterSavingValidation(t *testing.T) {
	h := NewWaterSavingHandler(store.NewWaterSavingStore(setupTestDB(t)), Base{})

	rec := serve(h.Create, request(t, http.MethodPost, "/api/waterSavings", "user_a",
		`{"date":"2024-02-10","amountSaved":"12"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input data", errorOf(t, rec))

	rec = serve(h.Update, request(t, http.MethodPut, "/api/waterSavings", "user_a",
		`{"date":"2024-02-10","amountSaved":12}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID is required", errorOf(t, rec))

	rec = serve(h.Delete, request(t, http.MethodDelete, "/api/waterSavings", "user_a", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID is required", errorOf(t, rec))
}
