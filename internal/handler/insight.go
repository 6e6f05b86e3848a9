package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/ecotrack/internal/advisor"
	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

// InsightGenerator analyzes an owner's footprint for a date and stores the result.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, ownerID string, date model.Date) (*model.CarbonInsight, error)
}

type InsightHandler struct {
	Base
	store     *store.InsightStore
	generator InsightGenerator
}

func NewInsightHandler(s *store.InsightStore, gen InsightGenerator, base Base) *InsightHandler {
	return &InsightHandler{Base: base, store: s, generator: gen}
}

type insightCreated struct {
	Success bool                 `json:"success"`
	Insight *model.CarbonInsight `json:"insight"`
}

func (h *InsightHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req struct {
		Date *model.Date `json:"date"`
	}
	if err := decodeBody(r, &req); err != nil || req.Date == nil {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	insight, err := h.generator.GenerateInsight(r.Context(), ownerID, *req.Date)
	if errors.Is(err, advisor.ErrFootprintNotFound) {
		writeError(w, http.StatusNotFound, "Carbon footprint data not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to generate insight", err)
		return
	}

	h.publish(ownerID, "carbon_insight", "created", insight.ID)
	writeJSON(w, http.StatusOK, insightCreated{Success: true, Insight: insight})
}

func (h *InsightHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	id, present, valid := queryID(r)
	if !present {
		list, err := h.store.List(r.Context(), ownerID)
		if err != nil {
			h.fail(w, r, "Failed to fetch insights", err)
			return
		}
		writeJSON(w, http.StatusOK, emptyIfNil(list))
		return
	}
	if !valid {
		writeError(w, http.StatusNotFound, "Insight not found")
		return
	}

	insight, err := h.store.Get(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Insight not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to fetch insights", err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

func (h *InsightHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req struct {
		ID      int64  `json:"id"`
		Insight string `json:"insight"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	req.Insight = strings.TrimSpace(req.Insight)
	if req.ID == 0 || req.Insight == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	insight, err := h.store.Update(r.Context(), ownerID, req.ID, req.Insight)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Insight not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to update insight", err)
		return
	}

	h.publish(ownerID, "carbon_insight", "updated", insight.ID)
	writeJSON(w, http.StatusOK, insight)
}

func (h *InsightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	id, present, valid := queryID(r)
	if !present {
		writeError(w, http.StatusBadRequest, "Missing insight ID")
		return
	}
	if !valid {
		writeError(w, http.StatusNotFound, "Insight not found")
		return
	}

	err := h.store.Delete(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Insight not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to delete insight", err)
		return
	}

	h.publish(ownerID, "carbon_insight", "deleted", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Insight deleted successfully"})
}
