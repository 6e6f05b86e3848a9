package handler

import (
	"errors"
	"net/http"

	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

type WaterSavingHandler struct {
	Base
	store *store.WaterSavingStore
}

func NewWaterSavingHandler(s *store.WaterSavingStore, base Base) *WaterSavingHandler {
	return &WaterSavingHandler{Base: base, store: s}
}

type waterSavingRequest struct {
	ID          *int64        `json:"id"`
	Date        *model.Date   `json:"date"`
	AmountSaved *model.Amount `json:"amountSaved"`
	Notes       *string       `json:"notes"`
}

func (req waterSavingRequest) input() (store.WaterSavingInput, bool) {
	if req.Date == nil || req.AmountSaved == nil {
		return store.WaterSavingInput{}, false
	}
	return store.WaterSavingInput{
		Date:        *req.Date,
		AmountSaved: *req.AmountSaved,
		Notes:       req.Notes,
	}, true
}

func (h *WaterSavingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req waterSavingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	in, ok := req.input()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	ws, err := h.store.Create(r.Context(), ownerID, in)
	if errors.Is(err, store.ErrInvalid) {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}

	h.publish(ownerID, "water_saving", "created", ws.ID)
	writeJSON(w, http.StatusOK, ws)
}

func (h *WaterSavingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	id, present, valid := queryID(r)
	if !present {
		list, err := h.store.List(r.Context(), ownerID)
		if err != nil {
			h.fail(w, r, "Internal Server Error", err)
			return
		}
		writeJSON(w, http.StatusOK, emptyIfNil(list))
		return
	}
	if !valid {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	ws, err := h.store.Get(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *WaterSavingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req waterSavingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	if req.ID == nil || *req.ID == 0 {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}
	in, ok := req.input()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	ws, err := h.store.Update(r.Context(), ownerID, *req.ID, in)
	switch {
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found")
		return
	case err != nil:
		h.fail(w, r, "Internal Server Error", err)
		return
	}

	h.publish(ownerID, "water_saving", "updated", ws.ID)
	writeJSON(w, http.StatusOK, ws)
}

func (h *WaterSavingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	id, present, valid := queryID(r)
	if !present {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}
	if !valid {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}

	err := h.store.Delete(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}

	h.publish(ownerID, "water_saving", "deleted", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Water saving entry deleted successfully"})
}
