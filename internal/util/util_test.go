package util

import (
	"strings"
	"testing"

	"github.com/badoux/checkmail"
	"github.com/stretchr/testify/assert"
)

func TestRandomEmail(t *testing.T) {
	a := RandomEmail()
	b := RandomEmail()

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "@example.domain"))
	assert.NoError(t, checkmail.ValidateFormat(a))
}
