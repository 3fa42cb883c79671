package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique
// constraint. The constraints are the real guard against concurrent
// check-then-insert races; callers map this to a conflict response.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolationCode = "23505"

func mapDBError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}
