package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoalCRUD(t *testing.T) {
	ctx := context.Background()
	gs := NewGoalStore(setupTestDB(t))

	g, err := gs.Create(ctx, "user_a", GoalInput{
		Goal:       "Bike to work",
		TargetDate: mustDate(t, "2024-06-30"),
		Progress:   10,
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.Completed {
		t.Error("expected not completed")
	}
	if g.Notes != nil {
		t.Errorf("notes = %v, want nil", g.Notes)
	}
	if g.TargetDate.String() != "2024-06-30" {
		t.Errorf("target_date = %s, want 2024-06-30", g.TargetDate)
	}

	updated, err := gs.Update(ctx, "user_a", g.ID, GoalInput{
		Goal:       "Bike to work",
		TargetDate: mustDate(t, "2024-06-30"),
		Completed:  true,
		Progress:   100,
		Notes:      strPtr("done early"),
	})
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if !updated.Completed || updated.Progress != 100 {
		t.Errorf("completed=%v progress=%d, want true 100", updated.Completed, updated.Progress)
	}
	if updated.Notes == nil || *updated.Notes != "done early" {
		t.Errorf("notes = %v, want %q", updated.Notes, "done early")
	}

	gs.Create(ctx, "user_a", GoalInput{Goal: "Compost", TargetDate: mustDate(t, "2024-07-01")})
	total, completed, err := gs.Counts(ctx, "user_a")
	if err != nil {
		t.Fatalf("count goals: %v", err)
	}
	if total != 2 || completed != 1 {
		t.Errorf("counts = %d/%d, want 2/1", total, completed)
	}

	if err := gs.Delete(ctx, "user_b", g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete: err = %v, want ErrNotFound", err)
	}
	if err := gs.Delete(ctx, "user_a", g.ID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	list, err := gs.List(ctx, "user_a")
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(list) != 1 || list[0].Goal != "Compost" {
		t.Errorf("list = %+v, want only Compost", list)
	}
}

func TestGoalValidation(t *testing.T) {
	ctx := context.Background()
	gs := NewGoalStore(setupTestDB(t))
	day := mustDate(t, "2024-01-01")

	tests := []struct {
		name string
		in   GoalInput
	}{
		{"progress above 100", GoalInput{Goal: "x", TargetDate: day, Progress: 101}},
		{"negative progress", GoalInput{Goal: "x", TargetDate: day, Progress: -1}},
		{"goal too long", GoalInput{Goal: strings.Repeat("g", 256), TargetDate: day}},
		{"missing target date", GoalInput{Goal: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gs.Create(ctx, "user_a", tt.in); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := gs.Create(ctx, "user_a", GoalInput{Goal: strings.Repeat("g", 255), TargetDate: day, Progress: 100}); err != nil {
		t.Errorf("boundary goal: %v", err)
	}
}
