package model

import (
	"errors"

	"github.com/lib/pq"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrDuplicateKey happens if a user tries to create a record that already exists
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// UserError is an error whose message is safe to show to the user
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// duplicateKeyConstraint returns the name of the violated constraint if err is a unique violation
func duplicateKeyConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode {
		return pqErr.Constraint, true
	}

	return "", false
}
