package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

// TipGenerator creates and stores a generated tip for an owner.
type TipGenerator interface {
	GenerateTip(ctx context.Context, ownerID string) (*model.EcoTip, error)
}

type EcoTipHandler struct {
	Base
	store     *store.EcoTipStore
	generator TipGenerator
}

func NewEcoTipHandler(s *store.EcoTipStore, gen TipGenerator, base Base) *EcoTipHandler {
	return &EcoTipHandler{Base: base, store: s, generator: gen}
}

type ecoTipCreated struct {
	Success bool          `json:"success"`
	EcoTip  *model.EcoTip `json:"ecoTip"`
}

// Create takes no body: the tip, its category and its image are all generated.
func (h *EcoTipHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	tip, err := h.generator.GenerateTip(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, "Failed to generate eco tip", err)
		return
	}

	h.publish(ownerID, "eco_tip", "created", tip.ID)
	writeJSON(w, http.StatusOK, ecoTipCreated{Success: true, EcoTip: tip})
}

func (h *EcoTipHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	id, present, valid := queryID(r)
	if !present {
		list, err := h.store.List(r.Context(), ownerID)
		if err != nil {
			h.fail(w, r, "Failed to fetch eco tips", err)
			return
		}
		writeJSON(w, http.StatusOK, emptyIfNil(list))
		return
	}
	if !valid {
		writeError(w, http.StatusNotFound, "Eco tip not found")
		return
	}

	tip, err := h.store.Get(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Eco tip not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to fetch eco tips", err)
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

type ecoTipUpdate struct {
	ID       int64  `json:"id"`
	Tip      string `json:"tip"`
	Category string `json:"category"`
}

// Update edits the text and category; the tip stops counting as generated.
func (h *EcoTipHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req ecoTipUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	req.Tip = strings.TrimSpace(req.Tip)
	req.Category = strings.TrimSpace(req.Category)
	if req.ID == 0 || req.Tip == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	tip, err := h.store.Update(r.Context(), ownerID, req.ID, req.Tip, req.Category)
	switch {
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Eco tip not found")
		return
	case err != nil:
		h.fail(w, r, "Failed to update eco tip", err)
		return
	}

	h.publish(ownerID, "eco_tip", "updated", tip.ID)
	writeJSON(w, http.StatusOK, tip)
}

func (h *EcoTipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	id, present, valid := queryID(r)
	if !present {
		writeError(w, http.StatusBadRequest, "Missing eco tip ID")
		return
	}
	if !valid {
		writeError(w, http.StatusNotFound, "Eco tip not found")
		return
	}

	err := h.store.Delete(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Eco tip not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to delete eco tip", err)
		return
	}

	h.publish(ownerID, "eco_tip", "deleted", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Eco tip deleted successfully"})
}
