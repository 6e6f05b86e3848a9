package model

import "encoding/json"

// Metric selects which footprint column a savings summary aggregates.
type Metric string

const (
	MetricCarbon Metric = "carbon"
	MetricEnergy Metric = "energy"
)

// SavingsSummary is the result of comparing recent entries against a daily baseline.
type SavingsSummary struct {
	Metric          Metric
	Saved           Amount
	AvgDailySavings Amount
	DaysRecorded    int
	TimeFrame       int
}

// MarshalJSON names the saved figure after the metric, e.g. carbonSaved.
func (s SavingsSummary) MarshalJSON() ([]byte, error) {
	savedKey := "saved"
	if s.Metric != "" {
		savedKey = string(s.Metric) + "Saved"
	}
	return json.Marshal(map[string]any{
		savedKey:          s.Saved,
		"avgDailySavings": s.AvgDailySavings,
		"daysRecorded":    s.DaysRecorded,
		"timeFrame":       s.TimeFrame,
	})
}

// Dashboard aggregates per-owner counts and savings for the overview screen.
type Dashboard struct {
	Footprints     int            `json:"footprints"`
	Insights       int            `json:"insights"`
	Goals          int            `json:"goals"`
	GoalsCompleted int            `json:"goalsCompleted"`
	GoalCompletion float64        `json:"goalCompletion"`
	EcoTips        int            `json:"ecoTips"`
	WaterSaved     Amount         `json:"waterSaved"`
	CarbonSaved    SavingsSummary `json:"carbonSaved"`
	EnergySaved    SavingsSummary `json:"energySaved"`
}
