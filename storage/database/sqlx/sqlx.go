// Package sqlxrepos implements PostgreSQL-backed repositories using sqlx
// and the squirrel query builder.
package sqlxrepos

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// psql builds queries with PostgreSQL's $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// trapNoRowsErr maps sql.ErrNoRows to the domain's not-found sentinel.
func trapNoRowsErr(err, notFoundErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	return err
}
