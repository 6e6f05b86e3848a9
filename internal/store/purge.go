package store

import (
	"context"
	"database/sql"
	"fmt"
)

var ownedTables = []string{
	"carbon_insights",
	"carbon_footprints",
	"sustainability_goals",
	"eco_tips",
	"water_savings",
}

// PurgeOwner deletes every row owned by ownerID in a single transaction and
// returns the number of rows removed.
func PurgeOwner(ctx context.Context, db *sql.DB, ownerID string) (int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	where, args := Owner(ownerID).Where()
	var removed int64
	for _, table := range ownedTables {
		result, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+where, args...)
		if err != nil {
			return 0, fmt.Errorf("purge %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		removed += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit purge: %w", err)
	}
	return removed, nil
}
