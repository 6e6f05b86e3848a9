package store

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/dukerupert/ecotrack/internal/model"
)

const maxGoalLength = 255

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

type GoalInput struct {
	Goal       string
	TargetDate model.Date
	Completed  bool
	Progress   int
	Notes      *string
}

func (in GoalInput) validate() error {
	if utf8.RuneCountInString(in.Goal) > maxGoalLength {
		return fmt.Errorf("%w: goal exceeds %d characters", ErrInvalid, maxGoalLength)
	}
	if in.TargetDate.IsZero() {
		return fmt.Errorf("%w: target date is required", ErrInvalid)
	}
	if in.Progress < 0 || in.Progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalid)
	}
	return nil
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.SustainabilityGoal, error) {
	var g model.SustainabilityGoal
	var completed int
	var notes sql.NullString

	err := scanner.Scan(
		&g.ID, &g.UserID, &g.Goal, &g.TargetDate, &completed,
		&g.Progress, &notes, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Completed = completed != 0
	if notes.Valid {
		g.Notes = &notes.String
	}
	return &g, nil
}

const goalCols = `id, user_id, goal, target_date, completed, progress, notes, created_at`

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *GoalStore) Create(ctx context.Context, ownerID string, in GoalInput) (*model.SustainabilityGoal, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sustainability_goals (user_id, goal, target_date, completed, progress, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		ownerID, in.Goal, in.TargetDate, boolInt(in.Completed), in.Progress, nullString(in.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, ownerID, id)
}

func (s *GoalStore) Get(ctx context.Context, ownerID string, id int64) (*model.SustainabilityGoal, error) {
	where, args := Owner(ownerID).ByID(id).Where()
	row := s.db.QueryRowContext(ctx, `SELECT `+goalCols+` FROM sustainability_goals WHERE `+where, args...)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) List(ctx context.Context, ownerID string) ([]model.SustainabilityGoal, error) {
	where, args := Owner(ownerID).Where()
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalCols+` FROM sustainability_goals WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.SustainabilityGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *GoalStore) Update(ctx context.Context, ownerID string, id int64, in GoalInput) (*model.SustainabilityGoal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	where, args := Owner(ownerID).ByID(id).Where()
	args = append([]any{in.Goal, in.TargetDate, boolInt(in.Completed), in.Progress, nullString(in.Notes)}, args...)
	result, err := s.db.ExecContext(ctx,
		`UPDATE sustainability_goals SET goal = ?, target_date = ?, completed = ?, progress = ?, notes = ? WHERE `+where,
		args...,
	)
	if err := affectedOne(result, err, "update goal"); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, id)
}

func (s *GoalStore) Delete(ctx context.Context, ownerID string, id int64) error {
	where, args := Owner(ownerID).ByID(id).Where()
	result, err := s.db.ExecContext(ctx, `DELETE FROM sustainability_goals WHERE `+where, args...)
	return affectedOne(result, err, "delete goal")
}

// Counts returns the number of goals and how many of them are completed.
func (s *GoalStore) Counts(ctx context.Context, ownerID string) (total, completed int, err error) {
	where, args := Owner(ownerID).Where()
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM sustainability_goals WHERE `+where, args...,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count goals: %w", err)
	}
	return total, completed, nil
}
