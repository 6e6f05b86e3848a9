package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/ecotrack/internal/model"
)

type FootprintStore struct {
	db *sql.DB
}

func NewFootprintStore(db *sql.DB) *FootprintStore {
	return &FootprintStore{db: db}
}

// FootprintInput holds the caller-supplied fields; the total is always derived.
type FootprintInput struct {
	Date           model.Date
	Transportation model.Amount
	Energy         model.Amount
	Food           model.Amount
}

func (in FootprintInput) validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}
	if in.Transportation < 0 || in.Energy < 0 || in.Food < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalid)
	}
	if !in.Transportation.InRange() || !in.Energy.InRange() || !in.Food.InRange() {
		return fmt.Errorf("%w: amounts must not exceed %s", ErrInvalid, model.MaxAmount)
	}
	return nil
}

// total cannot overflow once validate has bounded each component.
func (in FootprintInput) total() model.Amount {
	return in.Transportation + in.Energy + in.Food
}

func scanFootprint(scanner interface{ Scan(...any) error }) (*model.CarbonFootprint, error) {
	var f model.CarbonFootprint
	err := scanner.Scan(
		&f.ID, &f.UserID, &f.Date, &f.Transportation, &f.Energy,
		&f.Food, &f.Total, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const footprintCols = `id, user_id, date, transportation, energy, food, total, created_at`

func (s *FootprintStore) Create(ctx context.Context, ownerID string, in FootprintInput) (*model.CarbonFootprint, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO carbon_footprints (user_id, date, transportation, energy, food, total) VALUES (?, ?, ?, ?, ?, ?)`,
		ownerID, in.Date, in.Transportation, in.Energy, in.Food, in.total(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert footprint: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, ownerID, id)
}

func (s *FootprintStore) Get(ctx context.Context, ownerID string, id int64) (*model.CarbonFootprint, error) {
	where, args := Owner(ownerID).ByID(id).Where()
	row := s.db.QueryRowContext(ctx, `SELECT `+footprintCols+` FROM carbon_footprints WHERE `+where, args...)
	f, err := scanFootprint(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get footprint: %w", err)
	}
	return f, nil
}

// GetByDate returns the owner's earliest-created entry for the given date.
func (s *FootprintStore) GetByDate(ctx context.Context, ownerID string, date model.Date) (*model.CarbonFootprint, error) {
	where, args := Owner(ownerID).And("date = ?", date).Where()
	row := s.db.QueryRowContext(ctx,
		`SELECT `+footprintCols+` FROM carbon_footprints WHERE `+where+` ORDER BY id LIMIT 1`, args...)
	f, err := scanFootprint(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get footprint by date: %w", err)
	}
	return f, nil
}

func (s *FootprintStore) List(ctx context.Context, ownerID string) ([]model.CarbonFootprint, error) {
	where, args := Owner(ownerID).Where()
	rows, err := s.db.QueryContext(ctx, `SELECT `+footprintCols+` FROM carbon_footprints WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list footprints: %w", err)
	}
	defer rows.Close()

	var footprints []model.CarbonFootprint
	for rows.Next() {
		f, err := scanFootprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan footprint: %w", err)
		}
		footprints = append(footprints, *f)
	}
	return footprints, rows.Err()
}

// Update replaces every field of the entry and recomputes its total.
func (s *FootprintStore) Update(ctx context.Context, ownerID string, id int64, in FootprintInput) (*model.CarbonFootprint, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	where, args := Owner(ownerID).ByID(id).Where()
	args = append([]any{in.Date, in.Transportation, in.Energy, in.Food, in.total()}, args...)
	result, err := s.db.ExecContext(ctx,
		`UPDATE carbon_footprints SET date = ?, transportation = ?, energy = ?, food = ?, total = ? WHERE `+where,
		args...,
	)
	if err := affectedOne(result, err, "update footprint"); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, id)
}

func (s *FootprintStore) Delete(ctx context.Context, ownerID string, id int64) error {
	where, args := Owner(ownerID).ByID(id).Where()
	result, err := s.db.ExecContext(ctx, `DELETE FROM carbon_footprints WHERE `+where, args...)
	return affectedOne(result, err, "delete footprint")
}

func (s *FootprintStore) Count(ctx context.Context, ownerID string) (int, error) {
	where, args := Owner(ownerID).Where()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM carbon_footprints WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count footprints: %w", err)
	}
	return n, nil
}

// Aggregate is the sum of one footprint column plus the number of distinct
// dates that contributed to it.
type Aggregate struct {
	Sum  model.Amount
	Days int
}

var metricColumns = map[model.Metric]string{
	model.MetricCarbon: "total",
	model.MetricEnergy: "energy",
}

// Aggregate sums the metric's column over entries dated within [start, end].
// Days counts distinct dates, so several entries on one date count once.
func (s *FootprintStore) Aggregate(ctx context.Context, ownerID string, metric model.Metric, start, end model.Date) (Aggregate, error) {
	col, ok := metricColumns[metric]
	if !ok {
		return Aggregate{}, fmt.Errorf("%w: unknown metric %q", ErrInvalid, metric)
	}

	where, args := Owner(ownerID).And("date >= ?", start).And("date <= ?", end).Where()
	var agg Aggregate
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(`+col+`), 0), COUNT(DISTINCT date) FROM carbon_footprints WHERE `+where,
		args...,
	).Scan(&agg.Sum, &agg.Days)
	if err != nil {
		return Aggregate{}, fmt.Errorf("aggregate %s: %w", metric, err)
	}
	return agg, nil
}
