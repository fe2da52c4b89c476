package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/GTDGit/herbal_api/internal/utils"
)

const uniqueViolation = "23505"

// translate maps driver errors onto the application error taxonomy. Errors it
// does not recognise are returned unchanged for the service layer to treat as
// storage failures.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return utils.ErrConflict
	}
	return err
}
