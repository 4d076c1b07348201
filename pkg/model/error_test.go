package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateKeyConstraint(t *testing.T) {
	a := assert.New(t)

	constraint, ok := duplicateKeyConstraint(&pq.Error{Code: "23505", Constraint: "users_email_idx"})
	a.True(ok)
	a.Equal("users_email_idx", constraint)

	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: gameInProgressConstraint})
	constraint, ok = duplicateKeyConstraint(wrapped)
	a.True(ok)
	a.Equal(gameInProgressConstraint, constraint)

	_, ok = duplicateKeyConstraint(&pq.Error{Code: "23503"})
	a.False(ok)

	_, ok = duplicateKeyConstraint(errors.New("nope"))
	a.False(ok)

	_, ok = duplicateKeyConstraint(nil)
	a.False(ok)
}
