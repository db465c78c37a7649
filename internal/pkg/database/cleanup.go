package database

import (
	"context"
	"time"
)

// Cleanup trims temperature log rows older than the retention window. Events
// and settings are kept; the log is the only table that grows per cycle.
func (db *Database) Cleanup(ctx context.Context, retention time.Duration) error {
	if _, err := db.pool.Exec(ctx, "DELETE FROM templog WHERE time < $1", time.Now().Add(-retention)); err != nil {
		return err
	}
	return nil
}
