package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/ecotrack/internal/model"
)

const (
	maxTipLength      = 500
	maxCategoryLength = 50
)

type EcoTipStore struct {
	db *sql.DB
}

func NewEcoTipStore(db *sql.DB) *EcoTipStore {
	return &EcoTipStore{db: db}
}

type EcoTipInput struct {
	Tip         string
	Category    string
	ImageURL    string
	AIGenerated bool
}

func validateTip(tip, category string) error {
	if strings.TrimSpace(tip) == "" {
		return fmt.Errorf("%w: tip is required", ErrInvalid)
	}
	if utf8.RuneCountInString(tip) > maxTipLength {
		return fmt.Errorf("%w: tip exceeds %d characters", ErrInvalid, maxTipLength)
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return fmt.Errorf("%w: category exceeds %d characters", ErrInvalid, maxCategoryLength)
	}
	return nil
}

func scanEcoTip(scanner interface{ Scan(...any) error }) (*model.EcoTip, error) {
	var t model.EcoTip
	var ai int

	err := scanner.Scan(&t.ID, &t.UserID, &t.Tip, &t.Category, &t.ImageURL, &ai, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.IsAIGenerated = ai != 0
	return &t, nil
}

const ecoTipCols = `id, user_id, tip, category, image_url, is_ai_generated, created_at`

func (s *EcoTipStore) Create(ctx context.Context, ownerID string, in EcoTipInput) (*model.EcoTip, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := validateTip(in.Tip, in.Category); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO eco_tips (user_id, tip, category, image_url, is_ai_generated) VALUES (?, ?, ?, ?, ?)`,
		ownerID, in.Tip, in.Category, in.ImageURL, boolInt(in.AIGenerated),
	)
	if err != nil {
		return nil, fmt.Errorf("insert eco tip: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, ownerID, id)
}

func (s *EcoTipStore) Get(ctx context.Context, ownerID string, id int64) (*model.EcoTip, error) {
	where, args := Owner(ownerID).ByID(id).Where()
	row := s.db.QueryRowContext(ctx, `SELECT `+ecoTipCols+` FROM eco_tips WHERE `+where, args...)
	t, err := scanEcoTip(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get eco tip: %w", err)
	}
	return t, nil
}

func (s *EcoTipStore) List(ctx context.Context, ownerID string) ([]model.EcoTip, error) {
	where, args := Owner(ownerID).Where()
	rows, err := s.db.QueryContext(ctx, `SELECT `+ecoTipCols+` FROM eco_tips WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list eco tips: %w", err)
	}
	defer rows.Close()

	var tips []model.EcoTip
	for rows.Next() {
		t, err := scanEcoTip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan eco tip: %w", err)
		}
		tips = append(tips, *t)
	}
	return tips, rows.Err()
}

// Update applies a human edit, which always clears the AI-generated flag.
func (s *EcoTipStore) Update(ctx context.Context, ownerID string, id int64, tip, category string) (*model.EcoTip, error) {
	if err := validateTip(tip, category); err != nil {
		return nil, err
	}

	where, args := Owner(ownerID).ByID(id).Where()
	result, err := s.db.ExecContext(ctx,
		`UPDATE eco_tips SET tip = ?, category = ?, is_ai_generated = 0 WHERE `+where,
		append([]any{tip, category}, args...)...,
	)
	if err := affectedOne(result, err, "update eco tip"); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, id)
}

func (s *EcoTipStore) Delete(ctx context.Context, ownerID string, id int64) error {
	where, args := Owner(ownerID).ByID(id).Where()
	result, err := s.db.ExecContext(ctx, `DELETE FROM eco_tips WHERE `+where, args...)
	return affectedOne(result, err, "delete eco tip")
}

func (s *EcoTipStore) Count(ctx context.Context, ownerID string) (int, error) {
	where, args := Owner(ownerID).Where()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM eco_tips WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count eco tips: %w", err)
	}
	return n, nil
}
