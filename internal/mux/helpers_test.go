package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"whist-server/internal/config"
	"whist-server/internal/jwt"
	"whist-server/pkg/db"
	"whist-server/pkg/scorekeeper"

	"github.com/stretchr/testify/assert"
)

var cbg = context.Background()

var setupOnce sync.Once

func setupJWT() {
	setupOnce.Do(func() {
		_ = os.Setenv("WHIST_CONFIG_FILE", "testdata/does-not-exist.yaml")
		_ = os.Setenv("WHIST_JWT_PUBLIC_KEY", "testdata/public.pem")
		_ = os.Setenv("WHIST_JWT_PRIVATE_KEY", "testdata/private.key")
		if err := config.Load(); err != nil {
			panic(err)
		}

		jwt.LoadKeys()
	})
}

// newTestServer returns a server backed by an in-memory repository
func newTestServer() (*Mux, *httptest.Server) {
	setupJWT()
	m := NewMux("", scorekeeper.NewService(scorekeeper.NewMemoryRepository()))
	return m, httptest.NewServer(m)
}

// token returns a signed JWT for a user that may not exist in the database
func token(t *testing.T, userID int64) string {
	t.Helper()

	j, err := jwt.Sign(userID)
	if err != nil {
		t.Fatal(err)
	}

	return j
}

var migrateOnce sync.Once

// requireDB skips the test unless a postgres database is configured
func requireDB(t *testing.T) {
	t.Helper()

	if os.Getenv("WHIST_PG_DSN") == "" {
		t.Skip("WHIST_PG_DSN is not set")
	}

	setupJWT()
	migrateOnce.Do(func() {
		_ = os.Setenv("WHIST_MIGRATIONS_PATH", "../../sql")
		if err := config.Load(); err != nil {
			panic(err)
		}

		db.Migrate()
	})
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGetWithResp(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertGetWithResp(t, ts, path, respObj, statusCode, signedJWT...)
}

func assertSend(t *testing.T, method string, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertSend(t, http.MethodPost, ts, path, payload, respObj, statusCode, signedJWT...)
}

func assertPut(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertSend(t, http.MethodPut, ts, path, payload, respObj, statusCode, signedJWT...)
}

func assertDelete(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertSend(t, http.MethodDelete, ts, path, nil, respObj, statusCode, signedJWT...)
}
