package handler

import (
	"errors"
	"net/http"

	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

type FootprintHandler struct {
	Base
	store *store.FootprintStore
}

func NewFootprintHandler(s *store.FootprintStore, base Base) *FootprintHandler {
	return &FootprintHandler{Base: base, store: s}
}

type footprintRequest struct {
	ID             *int64        `json:"id"`
	Date           *model.Date   `json:"date"`
	Transportation *model.Amount `json:"transportation"`
	Energy         *model.Amount `json:"energy"`
	Food           *model.Amount `json:"food"`
}

func (req footprintRequest) input() (store.FootprintInput, bool) {
	if req.Date == nil || req.Transportation == nil || req.Energy == nil || req.Food == nil {
		return store.FootprintInput{}, false
	}
	return store.FootprintInput{
		Date:           *req.Date,
		Transportation: *req.Transportation,
		Energy:         *req.Energy,
		Food:           *req.Food,
	}, true
}

func (h *FootprintHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req footprintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	in, ok := req.input()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	f, err := h.store.Create(r.Context(), ownerID, in)
	if errors.Is(err, store.ErrInvalid) {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}

	h.publish(ownerID, "carbon_footprint", "created", f.ID)
	writeJSON(w, http.StatusOK, f)
}

// Get returns one footprint when ?id= is given, otherwise all of the owner's.
func (h *FootprintHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	f, err := h.store.Get(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FootprintHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req footprintRequest
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

	f, err := h.store.Update(r.Context(), ownerID, *req.ID, in)
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

	h.publish(ownerID, "carbon_footprint", "updated", f.ID)
	writeJSON(w, http.StatusOK, f)
}

func (h *FootprintHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	h.publish(ownerID, "carbon_footprint", "deleted", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Record deleted successfully"})
}
