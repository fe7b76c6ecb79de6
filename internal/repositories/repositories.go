// package repositories provides persistence layer implementations for the local database.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a row addressed by key or id does not exist.
var ErrNotFound = errors.New("record not found")

// requireAffected turns a zero-row result into [ErrNotFound].
func requireAffected(result sql.Result, what, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return nil
}
