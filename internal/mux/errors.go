package mux

import (
	"errors"
	"net/http"
	"whist-server/pkg/scorekeeper"
	"whist-server/pkg/whist"
)

// statusCode returns the HTTP status matching an error of the score keeper
func statusCode(err error) int {
	if errors.Is(err, scorekeeper.ErrGameNotFound) {
		return http.StatusNotFound
	}

	switch whist.KindOf(err) {
	case whist.KindMinPlayers, whist.KindMaxPlayers, whist.KindDuplicatePlayers, whist.KindInvalidOutcome:
		return http.StatusBadRequest
	case whist.KindUnauthorizedGame:
		return http.StatusForbidden
	case whist.KindExistingGame, whist.KindOutOfSyncRoundSubmission, whist.KindTerminatedGame, whist.KindNoMoreNextRound:
		return http.StatusConflict
	case whist.KindIDReassign, whist.KindUnknown:
		return http.StatusInternalServerError
	}

	return http.StatusInternalServerError
}

type gameErrorResponse struct {
	errorResponse
	Kind     string `json:"kind,omitempty"`
	Expected int    `json:"expected,omitempty"`
	Received int    `json:"received,omitempty"`
	Player   string `json:"player,omitempty"`
}

// writeGameError writes an error of the score keeper along with its kind
func writeGameError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= 500 {
		writeJSONError(w, code, err)
		return
	}

	resp := gameErrorResponse{
		errorResponse: errorResponse{
			Message:    err.Error(),
			StatusCode: code,
		},
	}

	if kind := whist.KindOf(err); kind != whist.KindUnknown {
		resp.Kind = kind.String()
	}

	var outOfSync *whist.OutOfSyncRoundSubmissionError
	if errors.As(err, &outOfSync) {
		resp.Expected = outOfSync.Expected
		resp.Received = outOfSync.Received
	}

	var invalid *whist.InvalidOutcomeError
	if errors.As(err, &invalid) {
		resp.Player = invalid.Player
	}

	writeJSON(w, code, resp)
}
