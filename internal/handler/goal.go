package handler

import (
	"errors"
	"net/http"

	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

type GoalHandler struct {
	Base
	store *store.GoalStore
}

func NewGoalHandler(s *store.GoalStore, base Base) *GoalHandler {
	return &GoalHandler{Base: base, store: s}
}

type goalRequest struct {
	ID         *int64      `json:"id"`
	Goal       *string     `json:"goal"`
	TargetDate *model.Date `json:"targetDate"`
	Completed  *bool       `json:"completed"`
	Progress   *float64    `json:"progress"`
	Notes      *string     `json:"notes"`
}

// input requires every field but notes. Progress arrives as any JSON number
// and must be a whole percentage.
func (req goalRequest) input() (store.GoalInput, bool) {
	if req.Goal == nil || req.TargetDate == nil || req.Completed == nil || req.Progress == nil {
		return store.GoalInput{}, false
	}
	p := *req.Progress
	if p != float64(int(p)) {
		return store.GoalInput{}, false
	}
	return store.GoalInput{
		Goal:       *req.Goal,
		TargetDate: *req.TargetDate,
		Completed:  *req.Completed,
		Progress:   int(p),
		Notes:      req.Notes,
	}, true
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	in, ok := req.input()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	g, err := h.store.Create(r.Context(), ownerID, in)
	if errors.Is(err, store.ErrInvalid) {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}

	h.publish(ownerID, "sustainability_goal", "created", g.ID)
	writeJSON(w, http.StatusOK, g)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	g, err := h.store.Get(r.Context(), ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}

	var req goalRequest
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

	g, err := h.store.Update(r.Context(), ownerID, *req.ID, in)
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

	h.publish(ownerID, "sustainability_goal", "updated", g.ID)
	writeJSON(w, http.StatusOK, g)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	h.publish(ownerID, "sustainability_goal", "deleted", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Goal deleted successfully"})
}
