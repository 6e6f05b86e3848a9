package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/ecotrack/internal/model"
)

type InsightStore struct {
	db *sql.DB
}

func NewInsightStore(db *sql.DB) *InsightStore {
	return &InsightStore{db: db}
}

func scanInsight(scanner interface{ Scan(...any) error }) (*model.CarbonInsight, error) {
	var i model.CarbonInsight
	err := scanner.Scan(&i.ID, &i.CarbonFootprintID, &i.UserID, &i.Date, &i.Insight, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const insightCols = `id, carbon_footprint_id, user_id, date, insight, created_at`

// Create stores an insight. footprintID is a lookup reference only; the footprint
// may later be deleted without affecting the insight.
func (s *InsightStore) Create(ctx context.Context, ownerID string, footprintID int64, date model.Date, text string) (*model.CarbonInsight, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: insight is required", ErrInvalid)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO carbon_insights (carbon_footprint_id, user_id, date, insight) VALUES (?, ?, ?, ?)`,
		footprintID, ownerID, date, text,
	)
	if err != nil {
		return nil, fmt.Errorf("insert insight: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, ownerID, id)
}

func (s *InsightStore) Get(ctx context.Context, ownerID string, id int64) (*model.CarbonInsight, error) {
	where, args := Owner(ownerID).ByID(id).Where()
	row := s.db.QueryRowContext(ctx, `SELECT `+insightCols+` FROM carbon_insights WHERE `+where, args...)
	i, err := scanInsight(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get insight: %w", err)
	}
	return i, nil
}

func (s *InsightStore) List(ctx context.Context, ownerID string) ([]model.CarbonInsight, error) {
	where, args := Owner(ownerID).Where()
	rows, err := s.db.QueryContext(ctx, `SELECT `+insightCols+` FROM carbon_insights WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var insights []model.CarbonInsight
	for rows.Next() {
		i, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, *i)
	}
	return insights, rows.Err()
}

func (s *InsightStore) Update(ctx context.Context, ownerID string, id int64, text string) (*model.CarbonInsight, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: insight is required", ErrInvalid)
	}

	where, args := Owner(ownerID).ByID(id).Where()
	result, err := s.db.ExecContext(ctx,
		`UPDATE carbon_insights SET insight = ? WHERE `+where,
		append([]any{text}, args...)...,
	)
	if err := affectedOne(result, err, "update insight"); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, id)
}

func (s *InsightStore) Delete(ctx context.Context, ownerID string, id int64) error {
	where, args := Owner(ownerID).ByID(id).Where()
	result, err := s.db.ExecContext(ctx, `DELETE FROM carbon_insights WHERE `+where, args...)
	return affectedOne(result, err, "delete insight")
}

func (s *InsightStore) Count(ctx context.Context, ownerID string) (int, error) {
	where, args := Owner(ownerID).Where()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM carbon_insights WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count insights: %w", err)
	}
	return n, nil
}
