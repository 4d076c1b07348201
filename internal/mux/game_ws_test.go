package mux

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

type testWSResponse struct {
	Key     string          `json:"key"`
	Value   string          `json:"value"`
	Context string          `json:"context"`
	Data    json.RawMessage `json:"data"`
}

// readUntil reads messages until one has the key
func readUntil(t *testing.T, conn *websocket.Conn, key string) testWSResponse {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second * 5))
	for {
		var resp testWSResponse
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("waiting for %s: %v", key, err)
		}

		if resp.Key == key {
			return resp
		}
	}
}

func TestMux_getGameIDWS(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	j := token(t, 1)
	created := createGame(t, ts, j, "A", "B")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + created.Game.ID + "/ws?access_token=" + url.QueryEscape(j)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()

	var scoreboard struct {
		GameID       string `json:"gameId"`
		PlayedRounds int    `json:"playedRounds"`
		TotalRounds  int    `json:"totalRounds"`
		IsTerminated bool   `json:"isTerminated"`
	}

	resp := readUntil(t, conn, "scoreboard")
	assert.NoError(t, json.Unmarshal(resp.Data, &scoreboard))
	assert.Equal(t, created.Game.ID, scoreboard.GameID)
	assert.Equal(t, 0, scoreboard.PlayedRounds)
	assert.Equal(t, 52, scoreboard.TotalRounds)

	assert.NoError(t, conn.WriteJSON(map[string]string{"action": "ping", "context": "abc"}))
	resp = readUntil(t, conn, "ok")
	assert.Equal(t, "abc", resp.Context)

	assert.NoError(t, conn.WriteJSON(map[string]string{"action": "shuffle", "context": "def"}))
	resp = readUntil(t, conn, "error")
	assert.Equal(t, "def", resp.Context)
	assert.Equal(t, `unknown action: "shuffle"`, resp.Value)

	playNextRound(t, ts, j, created.Game.ID)
	resp = readUntil(t, conn, "scoreboard")
	assert.NoError(t, json.Unmarshal(resp.Data, &scoreboard))
	assert.Equal(t, 1, scoreboard.PlayedRounds)

	// another user can't watch the game
	otherURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + created.Game.ID + "/ws?access_token=" + url.QueryEscape(token(t, 2))
	_, httpResp, err := websocket.DefaultDialer.Dial(otherURL, nil)
	assert.Error(t, err)
	if assert.NotNil(t, httpResp) {
		assert.Equal(t, 403, httpResp.StatusCode)
	}
}
