package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/ecotrack/internal/model"
)

type WaterSavingStore struct {
	db *sql.DB
}

func NewWaterSavingStore(db *sql.DB) *WaterSavingStore {
	return &WaterSavingStore{db: db}
}

type WaterSavingInput struct {
	Date        model.Date
	AmountSaved model.Amount
	Notes       *string
}

func (in WaterSavingInput) validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}
	if in.AmountSaved < 0 {
		return fmt.Errorf("%w: amount saved must not be negative", ErrInvalid)
	}
	if !in.AmountSaved.InRange() {
		return fmt.Errorf("%w: amount saved must not exceed %s", ErrInvalid, model.MaxAmount)
	}
	return nil
}

func scanWaterSaving(scanner interface{ Scan(...any) error }) (*model.WaterSaving, error) {
	var w model.WaterSaving
	var notes sql.NullString

	err := scanner.Scan(&w.ID, &w.UserID, &w.Date, &w.AmountSaved, &notes, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		w.Notes = &notes.String
	}
	return &w, nil
}

const waterSavingCols = `id, user_id, date, amount_saved, notes, created_at, updated_at`

func (s *WaterSavingStore) Create(ctx context.Context, ownerID string, in WaterSavingInput) (*model.WaterSaving, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO water_savings (user_id, date, amount_saved, notes) VALUES (?, ?, ?, ?)`,
		ownerID, in.Date, in.AmountSaved, nullString(in.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert water saving: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, ownerID, id)
}

func (s *WaterSavingStore) Get(ctx context.Context, ownerID string, id int64) (*model.WaterSaving, error) {
	where, args := Owner(ownerID).ByID(id).Where()
	row := s.db.QueryRowContext(ctx, `SELECT `+waterSavingCols+` FROM water_savings WHERE `+where, args...)
	w, err := scanWaterSaving(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get water saving: %w", err)
	}
	return w, nil
}

func (s *WaterSavingStore) List(ctx context.Context, ownerID string) ([]model.WaterSaving, error) {
	where, args := Owner(ownerID).Where()
	rows, err := s.db.QueryContext(ctx, `SELECT `+waterSavingCols+` FROM water_savings WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list water savings: %w", err)
	}
	defer rows.Close()

	var savings []model.WaterSaving
	for rows.Next() {
		w, err := scanWaterSaving(rows)
		if err != nil {
			return nil, fmt.Errorf("scan water saving: %w", err)
		}
		savings = append(savings, *w)
	}
	return savings, rows.Err()
}

func (s *WaterSavingStore) Update(ctx context.Context, ownerID string, id int64, in WaterSavingInput) (*model.WaterSaving, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	where, args := Owner(ownerID).ByID(id).Where()
	args = append([]any{in.Date, in.AmountSaved, nullString(in.Notes)}, args...)
	result, err := s.db.ExecContext(ctx,
		`UPDATE water_savings SET date = ?, amount_saved = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE `+where,
		args...,
	)
	if err := affectedOne(result, err, "update water saving"); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, id)
}

func (s *WaterSavingStore) Delete(ctx context.Context, ownerID string, id int64) error {
	where, args := Owner(ownerID).ByID(id).Where()
	result, err := s.db.ExecContext(ctx, `DELETE FROM water_savings WHERE `+where, args...)
	return affectedOne(result, err, "delete water saving")
}

// Total sums the amount saved over entries dated within [start, end].
func (s *WaterSavingStore) Total(ctx context.Context, ownerID string, start, end model.Date) (model.Amount, error) {
	where, args := Owner(ownerID).And("date >= ?", start).And("date <= ?", end).Where()
	var total model.Amount
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_saved), 0) FROM water_savings WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total water saved: %w", err)
	}
	return total, nil
}
