package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no row matches both the id and the owner.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid is returned when input violates a column invariant.
	ErrInvalid = errors.New("invalid record")
)

// OwnerScope builds the row-level predicate every owner-facing statement carries.
// The owner condition is always present; an id and extra conditions are ANDed on.
type OwnerScope struct {
	ownerID string
	id      *int64
	conds   []string
	args    []any
}

// Owner starts a scope matching rows owned by ownerID.
func Owner(ownerID string) OwnerScope {
	return OwnerScope{ownerID: ownerID}
}

// ByID narrows the scope to a single primary key.
func (s OwnerScope) ByID(id int64) OwnerScope {
	s.id = &id
	return s
}

// And appends a condition with its placeholders' arguments.
func (s OwnerScope) And(cond string, args ...any) OwnerScope {
	s.conds = append(append([]string(nil), s.conds...), cond)
	s.args = append(append([]any(nil), s.args...), args...)
	return s
}

// Where returns the WHERE clause body and its arguments in placeholder order.
func (s OwnerScope) Where() (string, []any) {
	conds := make([]string, 0, 2+len(s.conds))
	args := make([]any, 0, 2+len(s.args))
	if s.id != nil {
		conds = append(conds, "id = ?")
		args = append(args, *s.id)
	}
	conds = append(conds, "user_id = ?")
	args = append(args, s.ownerID)
	conds = append(conds, s.conds...)
	args = append(args, s.args...)
	return strings.Join(conds, " AND "), args
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalid)
	}
	return nil
}

// affectedOne converts the result of a scoped UPDATE or DELETE into ErrNotFound
// when no row matched.
func affectedOne(result sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
