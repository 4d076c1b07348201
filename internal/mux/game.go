package mux

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"whist-server/pkg/scorekeeper"
	"whist-server/pkg/whist"

	"github.com/gorilla/mux"
)

type postGamePayload struct {
	PlayersInOrder []string `json:"playersInOrder"`
}

// gameDetails is a game along with what is needed to play its next round
type gameDetails struct {
	Game      *whist.Game      `json:"game"`
	NextRound *whist.RoundInfo `json:"nextRound"`
	Ranking   whist.Ranking    `json:"ranking"`
	Draft     json.RawMessage  `json:"draft"`
}

func newGameDetails(game *whist.Game) (*gameDetails, error) {
	details := &gameDetails{
		Game:    game,
		Ranking: game.Ranking(),
		Draft:   json.RawMessage("null"),
	}

	if info, err := game.NextRoundInfo(); err == nil {
		details.NextRound = &info
	}

	if draft := game.Draft(); draft != nil {
		b, err := whist.MarshalDraft(draft)
		if err != nil {
			return nil, err
		}

		details.Draft = b
	}

	return details, nil
}

func writeGameDetails(w http.ResponseWriter, statusCode int, game *whist.Game) {
	details, err := newGameDetails(game)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, statusCode, details)
}

func (m *Mux) postGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postGamePayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		game, err := m.service.CreateNewGame(r.Context(), userID(r), payload.PlayersInOrder)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeGameDetails(w, http.StatusCreated, game)
	}
}

func (m *Mux) getGames() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		filter := scorekeeper.GameFilter{
			Offset: start,
			Limit:  rows,
		}

		if terminatedStr := r.FormValue("terminated"); terminatedStr != "" {
			terminated, err := strconv.ParseBool(terminatedStr)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, errors.New("terminated must be a boolean"))
				return
			}

			filter.Terminated = &terminated
		}

		games, err := m.service.ListGames(r.Context(), userID(r), filter)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, games)
	}
}

func (m *Mux) getGameCurrent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := m.service.CurrentGame(r.Context(), userID(r))
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeGameDetails(w, http.StatusOK, game)
	}
}

func (m *Mux) deleteGameCurrent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.service.ExitCurrentGame(r.Context(), userID(r)); err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

func (m *Mux) getGameLastTerminated() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := m.service.LastTerminatedGame(r.Context(), userID(r))
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeGameDetails(w, http.StatusOK, game)
	}
}

// withGame loads the game in the path and passes it to fn
func (m *Mux) withGame(fn func(w http.ResponseWriter, r *http.Request, game *whist.Game)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := m.service.GetGame(r.Context(), userID(r), mux.Vars(r)["id"])
		if err != nil {
			writeGameError(w, err)
			return
		}

		fn(w, r, game)
	}
}

func (m *Mux) getGameID() http.HandlerFunc {
	return m.withGame(func(w http.ResponseWriter, r *http.Request, game *whist.Game) {
		writeGameDetails(w, http.StatusOK, game)
	})
}

func (m *Mux) deleteGameID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.service.DeleteGame(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

func (m *Mux) getGameIDNextRound() http.HandlerFunc {
	return m.withGame(func(w http.ResponseWriter, r *http.Request, game *whist.Game) {
		info, err := game.NextRoundInfo()
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, info)
	})
}

func (m *Mux) getGameIDRanking() http.HandlerFunc {
	return m.withGame(func(w http.ResponseWriter, r *http.Request, game *whist.Game) {
		writeJSON(w, http.StatusOK, game.Ranking())
	})
}

func (m *Mux) getGameIDScores() http.HandlerFunc {
	return m.withGame(func(w http.ResponseWriter, r *http.Request, game *whist.Game) {
		writeJSON(w, http.StatusOK, game.Scores())
	})
}

func (m *Mux) putGameIDDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload json.RawMessage
		if !decodeRequest(w, r, &payload) {
			return
		}

		draft, err := whist.UnmarshalDraft(payload)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if err := m.service.SaveRoundDraft(r.Context(), userID(r), mux.Vars(r)["id"], draft); err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

func (m *Mux) postGameIDRound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// the route only matches digits
		roundIndex, err := strconv.Atoi(mux.Vars(r)["index"])
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		var outcome whist.RoundOutcome
		if !decodeRequest(w, r, &outcome) {
			return
		}

		game, err := m.service.SaveRoundResults(r.Context(), userID(r), mux.Vars(r)["id"], roundIndex, outcome)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeGameDetails(w, http.StatusOK, game)
	}
}
