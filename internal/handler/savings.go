package handler

import (
	"net/http"

	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/savings"
	"github.com/dukerupert/ecotrack/internal/store"
)

type SavingsHandler struct {
	Base
	calc       *savings.Calculator
	footprints *store.FootprintStore
	insights   *store.InsightStore
	goals      *store.GoalStore
	tips       *store.EcoTipStore
	water      *store.WaterSavingStore
}

type SavingsStores struct {
	Footprints *store.FootprintStore
	Insights   *store.InsightStore
	Goals      *store.GoalStore
	EcoTips    *store.EcoTipStore
	Water      *store.WaterSavingStore
}

func NewSavingsHandler(calc *savings.Calculator, stores SavingsStores, base Base) *SavingsHandler {
	return &SavingsHandler{
		Base:       base,
		calc:       calc,
		footprints: stores.Footprints,
		insights:   stores.Insights,
		goals:      stores.Goals,
		tips:       stores.EcoTips,
		water:      stores.Water,
	}
}

func (h *SavingsHandler) summary(metric model.Metric) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerOrReject(w, r)
		if !ok {
			return
		}
		s, err := h.calc.Summary(r.Context(), ownerID, metric)
		if err != nil {
			h.fail(w, r, "Internal Server Error", err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func (h *SavingsHandler) CarbonSaved(w http.ResponseWriter, r *http.Request) {
	h.summary(model.MetricCarbon)(w, r)
}

func (h *SavingsHandler) EnergySaved(w http.ResponseWriter, r *http.Request) {
	h.summary(model.MetricEnergy)(w, r)
}

// Dashboard gathers every per-owner figure the overview screen shows.
func (h *SavingsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOrReject(w, r)
	if !ok {
		return
	}
	d, err := h.dashboard(r, ownerID)
	if err != nil {
		h.fail(w, r, "Internal Server Error", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *SavingsHandler) dashboard(r *http.Request, ownerID string) (*model.Dashboard, error) {
	ctx := r.Context()
	var (
		d   model.Dashboard
		err error
	)
	if d.Footprints, err = h.footprints.Count(ctx, ownerID); err != nil {
		return nil, err
	}
	if d.Insights, err = h.insights.Count(ctx, ownerID); err != nil {
		return nil, err
	}
	if d.Goals, d.GoalsCompleted, err = h.goals.Counts(ctx, ownerID); err != nil {
		return nil, err
	}
	if d.Goals > 0 {
		d.GoalCompletion = float64(d.GoalsCompleted) / float64(d.Goals)
	}
	if d.EcoTips, err = h.tips.Count(ctx, ownerID); err != nil {
		return nil, err
	}

	start, end := h.calc.Window()
	if d.WaterSaved, err = h.water.Total(ctx, ownerID, start, end); err != nil {
		return nil, err
	}
	if d.CarbonSaved, err = h.calc.Summary(ctx, ownerID, model.MetricCarbon); err != nil {
		return nil, err
	}
	if d.EnergySaved, err = h.calc.Summary(ctx, ownerID, model.MetricEnergy); err != nil {
		return nil, err
	}
	return &d, nil
}
