package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/ecotrack/internal/store"
)

func TestGoalLifecycle(t *testing.T) {
	hub := newRecordingHub()
	h := NewGoalHandler(store.NewGoalStore(setupTestDB(t)), Base{Hub: hub})

	rec := serve(h.Create, request(t, http.MethodPost, "/api/sustainabilityGoals", "user_a", map[string]any{
		"goal": "Bike to work", "targetDate": "2024-06-01", "completed": false, "progress": 20,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "Bike to work", created["goal"])
	assert.Nil(t, created["notes"])
	id := int64(created["id"].(float64))

	rec = serve(h.Update, request(t, http.MethodPut, "/api/sustainabilityGoals", "user_a", map[string]any{
		"id": id, "goal": "Bike to work", "targetDate": "2024-06-01", "completed": true, "progress": 100,
		"notes": "done early",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "done early", updated["notes"])

	rec = serve(h.Delete, request(t, http.MethodDelete, "/api/sustainabilityGoals?id="+itoa(id), "user_b", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h.Delete, request(t, http.MethodDelete, "/api/sustainabilityGoals?id="+itoa(id), "user_a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Goal deleted successfully"}`, rec.Body.String())

	assert.Equal(t, []string{
		"sustainability_goal_created",
		"sustainability_goal_updated",
		"sustainability_goal_deleted",
	}, hub.types("user_a"))
	assert.Empty(t, hub.types("user_b"))
}

func TestGoalRejectsWrongTypes(t *testing.T) {
	h := NewGoalHandler(store.NewGoalStore(setupTestDB(t)), Base{})

	bodies := map[string]string{
		"completed as string": `{"goal":"x","targetDate":"2024-06-01","completed":"no","progress":1}`,
		"progress as string":  `{"goal":"x","targetDate":"2024-06-01","completed":false,"progress":"1"}`,
		"fractional progress": `{"goal":"x","targetDate":"2024-06-01","completed":false,"progress":1.5}`,
		"progress over 100":   `{"goal":"x","targetDate":"2024-06-01","completed":false,"progress":101}`,
		"notes as number":     `{"goal":"x","targetDate":"2024-06-01","completed":false,"progress":1,"notes":3}`,
		"missing goal":        `{"targetDate":"2024-06-01","completed":false,"progress":1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := serve(h.Create, request(t, http.MethodPost, "/api/sustainabilityGoals", "user_a", body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid input data", errorOf(t, rec))
		})
	}
}

func TestGoalGetUnknownID(t *testing.T) {
	h := NewGoalHandler(store.NewGoalStore(setupTestDB(t)), Base{})

	for _, target := range []string{"/api/sustainabilityGoals?id=42", "/api/sustainabilityGoals?id=abc"} {
		rec := serve(h.Get, request(t, http.MethodGet, target, "user_a", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "Not Found", errorOf(t, rec))
	}
}
