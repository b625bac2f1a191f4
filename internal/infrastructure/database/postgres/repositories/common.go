// Package repositories provides the PostgreSQL implementations of the
// patent-radar persistence ports.
package repositories

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5"
)

// rowScanner abstracts pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// isNoRows reports whether the error is pgx's empty-result sentinel.
func isNoRows(err error) bool {
	return stderrors.Is(err, pgx.ErrNoRows)
}
