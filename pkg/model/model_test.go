package model

import (
	"context"
	"os"
	"sync"
	"testing"
	"whist-server/internal/util"
	"whist-server/pkg/db"

	"github.com/stretchr/testify/assert"
)

var cbg = context.Background()

var migrateOnce sync.Once

// requireDB skips the test unless a postgres database is configured
func requireDB(t *testing.T) {
	t.Helper()

	if os.Getenv("WHIST_PG_DSN") == "" {
		t.Skip("WHIST_PG_DSN is not set")
	}

	migrateOnce.Do(func() {
		if os.Getenv("WHIST_MIGRATIONS_PATH") == "" {
			_ = os.Setenv("WHIST_MIGRATIONS_PATH", "../../sql")
		}

		db.Migrate()
	})
}

func user(t *testing.T) *User {
	t.Helper()

	u, err := CreateUser(cbg, util.RandomEmail(), util.GetRandomName(), "my password", "127.0.0.1")
	if err != nil {
		t.Fatal(err)
	}

	return u
}

func TestUserError(t *testing.T) {
	var err error = UserError("message")
	assert.EqualError(t, err, "message")
}
