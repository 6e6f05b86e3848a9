// Package savings derives how much carbon and energy an owner saved against a
// fixed daily baseline over a trailing window.
package savings

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

const (
	DefaultCarbonBaseline = 22.0 // kg CO2e per day
	DefaultEnergyBaseline = 30.0 // kWh per day
	DefaultWindowDays     = 30
)

// Aggregator sums a footprint metric over a date range.
type Aggregator interface {
	Aggregate(ctx context.Context, ownerID string, metric model.Metric, start, end model.Date) (store.Aggregate, error)
}

type Config struct {
	CarbonBaseline float64
	EnergyBaseline float64
	WindowDays     int
}

func DefaultConfig() Config {
	return Config{
		CarbonBaseline: DefaultCarbonBaseline,
		EnergyBaseline: DefaultEnergyBaseline,
		WindowDays:     DefaultWindowDays,
	}
}

type Calculator struct {
	agg Aggregator
	cfg Config
	now func() time.Time
}

type Option func(*Calculator)

// WithClock overrides the time source used to anchor the window.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

func NewCalculator(agg Aggregator, cfg Config, opts ...Option) *Calculator {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	c := &Calculator{agg: agg, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns the inclusive date range of WindowDays calendar dates ending
// today, so no more days can be recorded than the baseline covers.
func (c *Calculator) Window() (start, end model.Date) {
	end = model.DateOf(c.now())
	return end.AddDays(-(c.cfg.WindowDays - 1)), end
}

func (c *Calculator) baseline(metric model.Metric) (float64, error) {
	switch metric {
	case model.MetricCarbon:
		return c.cfg.CarbonBaseline, nil
	case model.MetricEnergy:
		return c.cfg.EnergyBaseline, nil
	}
	return 0, fmt.Errorf("unknown metric %q", metric)
}

// Summary compares the owner's recorded total for metric against the baseline.
func (c *Calculator) Summary(ctx context.Context, ownerID string, metric model.Metric) (model.SavingsSummary, error) {
	daily, err := c.baseline(metric)
	if err != nil {
		return model.SavingsSummary{}, err
	}

	start, end := c.Window()
	agg, err := c.agg.Aggregate(ctx, ownerID, metric, start, end)
	if err != nil {
		return model.SavingsSummary{}, fmt.Errorf("aggregate %s: %w", metric, err)
	}

	return Compute(metric, daily, c.cfg.WindowDays, agg), nil
}

// Compute applies the savings formula to an aggregate. Saved never drops below
// zero and the daily average is zero when no days were recorded.
func Compute(metric model.Metric, dailyBaseline float64, windowDays int, agg store.Aggregate) model.SavingsSummary {
	baseline := model.AmountFromFloat(dailyBaseline * float64(windowDays))
	saved := max(baseline-agg.Sum, 0)

	var avg model.Amount
	if agg.Days > 0 {
		avg = model.Amount(math.Round(float64(saved) / float64(agg.Days)))
	}

	return model.SavingsSummary{
		Metric:          metric,
		Saved:           saved,
		AvgDailySavings: avg,
		DaysRecorded:    agg.Days,
		TimeFrame:       windowDays,
	}
}
