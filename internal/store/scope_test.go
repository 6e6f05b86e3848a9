package store

import (
	"reflect"
	"testing"
)

func TestOwnerScopeWhere(t *testing.T) {
	tests := []struct {
		name      string
		scope     OwnerScope
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "owner only",
			scope:     Owner("user_1"),
			wantWhere: "user_id = ?",
			wantArgs:  []any{"user_1"},
		},
		{
			name:      "by id",
			scope:     Owner("user_1").ByID(7),
			wantWhere: "id = ? AND user_id = ?",
			wantArgs:  []any{int64(7), "user_1"},
		},
		{
			name:      "extra conditions",
			scope:     Owner("user_1").And("date >= ?", "2024-01-01").And("date <= ?", "2024-01-31"),
			wantWhere: "user_id = ? AND date >= ? AND date <= ?",
			wantArgs:  []any{"user_1", "2024-01-01", "2024-01-31"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.scope.Where()
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestOwnerScopeAndDoesNotAlias(t *testing.T) {
	base := Owner("user_1").And("a = ?", 1)
	left := base.And("b = ?", 2)
	right := base.And("c = ?", 3)

	lw, _ := left.Where()
	rw, _ := right.Where()
	if lw != "user_id = ? AND a = ? AND b = ?" {
		t.Errorf("left = %q", lw)
	}
	if rw != "user_id = ? AND a = ? AND c = ?" {
		t.Errorf("right = %q", rw)
	}
}
