package util

import (
	"strings"
	"testing"
	"whist-server/internal/rng"

	"github.com/stretchr/testify/assert"
)

func TestGetRandomName(t *testing.T) {
	random = rng.Seeded(0)
	first := GetRandomName()

	random = rng.Seeded(0)
	assert.Equal(t, first, GetRandomName())

	random = rng.Crypto{}
	parts := strings.Split(first, " ")
	if assert.Equal(t, 2, len(parts)) {
		assert.Contains(t, adjectives, parts[0])
		assert.Contains(t, animals, parts[1])
	}
}
