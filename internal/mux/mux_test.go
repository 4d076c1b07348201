package mux

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"whist-server/internal/util"
	"whist-server/pkg/model"
	"whist-server/pkg/scorekeeper"

	"github.com/stretchr/testify/assert"
)

func Test_authRouter(t *testing.T) {
	setupJWT()
	m := NewMux("", scorekeeper.NewService(scorekeeper.NewMemoryRepository()))

	m.authRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, userID(r))
	})

	ts := httptest.NewServer(m)
	defer ts.Close()

	var errObj errorResponse
	assertGet(t, ts, "/test", &errObj, 401)
	assert.Equal(t, "Unauthorized", errObj.Message)

	assertGet(t, ts, "/test", &errObj, 401, "not-a-jwt")

	j := token(t, 42)

	// test using auth header
	var id int64
	resp := assertGetWithResp(t, ts, "/test", &id, 200, j)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "42", resp.Header.Get(UserIDHeader))

	// test using query parameter
	resp = assertGetWithResp(t, ts, "/test?access_token="+url.QueryEscape(j), &id, 200)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, strconv.FormatInt(42, 10), resp.Header.Get(UserIDHeader))
}

func Test_adminRouter(t *testing.T) {
	requireDB(t)
	m := NewMux("", scorekeeper.NewService(model.NewRepository()))

	m.adminRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, "OK")
	})

	ts := httptest.NewServer(m)
	defer ts.Close()

	user, err := model.CreateUser(cbg, util.RandomEmail(), "x", "password", "")
	if !assert.NoError(t, err) {
		return
	}

	j := token(t, user.ID)

	var errObj errorResponse
	assertGet(t, ts, "/test", &errObj, 403, j)
	assert.Equal(t, "Forbidden", errObj.Message)

	assert.NoError(t, user.SetIsSiteAdmin(cbg, true))

	var str string
	assertGet(t, ts, "/test", &str, 200, j)
	assert.Equal(t, "OK", str)

	// the user no longer exists
	assertGet(t, ts, "/test", &errObj, 401, token(t, -1))
}
