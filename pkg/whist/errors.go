package whist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMinPlayers is returned when a game is defined with less than two players
var ErrMinPlayers = errors.New("a game can't be defined with less than two players")

// ErrMaxPlayers is returned when there are more players than cards in the deck
var ErrMaxPlayers = fmt.Errorf("a game can't be defined with more than %d players", MaxCards)

// ErrTerminatedGame is returned when a round outcome is submitted to a finished game
var ErrTerminatedGame = errors.New("impossible to add a round result to a terminated game")

// ErrNoMoreNextRound is returned when the next round is requested on a finished game
var ErrNoMoreNextRound = errors.New("there is no more next round for this game")

// ErrIDReassign is returned when an ID is assigned to a game that already has one
var ErrIDReassign = errors.New("impossible to assign an ID to an entity that already has one")

// ErrExistingGame is returned when an owner tries to start a second in-progress game
var ErrExistingGame = errors.New("a game already exists")

// ErrUnauthorizedGame is returned when a game is accessed by someone other than its owner
var ErrUnauthorizedGame = errors.New("this game doesn't belong to the current user")

// DuplicatePlayersError is returned when a player name is used more than once
type DuplicatePlayersError struct {
	Duplicates []string
}

func (d *DuplicatePlayersError) Error() string {
	return fmt.Sprintf("a game can't have duplicate players: %s", strings.Join(d.Duplicates, ", "))
}

// OutOfSyncRoundSubmissionError is returned when the submitted round is not the next round
type OutOfSyncRoundSubmissionError struct {
	Expected int
	Received int
}

func (o *OutOfSyncRoundSubmissionError) Error() string {
	return fmt.Sprintf("out of sync round submission: expected %d, received %d", o.Expected, o.Received)
}

// InvalidOutcomeError is returned when a round outcome breaks the rules of the round
type InvalidOutcomeError struct {
	Player string
	Reason string
}

func (i *InvalidOutcomeError) Error() string {
	if i.Player == "" {
		return "invalid round outcome: " + i.Reason
	}

	return fmt.Sprintf("invalid round outcome for %s: %s", i.Player, i.Reason)
}

// Kind classifies the errors returned by this package
type Kind int

// Kind constants
const (
	KindUnknown Kind = iota
	KindMinPlayers
	KindMaxPlayers
	KindDuplicatePlayers
	KindTerminatedGame
	KindOutOfSyncRoundSubmission
	KindNoMoreNextRound
	KindIDReassign
	KindExistingGame
	KindUnauthorizedGame
	KindInvalidOutcome
)

var kindNames = map[Kind]string{
	KindUnknown:                  "unknown",
	KindMinPlayers:               "minPlayers",
	KindMaxPlayers:               "maxPlayers",
	KindDuplicatePlayers:         "duplicatePlayers",
	KindTerminatedGame:           "terminatedGame",
	KindOutOfSyncRoundSubmission: "outOfSyncRoundSubmission",
	KindNoMoreNextRound:          "noMoreNextRound",
	KindIDReassign:               "idReassign",
	KindExistingGame:             "existingGame",
	KindUnauthorizedGame:         "unauthorizedGame",
	KindInvalidOutcome:           "invalidOutcome",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf returns the kind of err, or KindUnknown if err did not come from this package
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var dup *DuplicatePlayersError
	var outOfSync *OutOfSyncRoundSubmissionError
	var invalid *InvalidOutcomeError

	switch {
	case errors.Is(err, ErrMinPlayers):
		return KindMinPlayers
	case errors.Is(err, ErrMaxPlayers):
		return KindMaxPlayers
	case errors.As(err, &dup):
		return KindDuplicatePlayers
	case errors.Is(err, ErrTerminatedGame):
		return KindTerminatedGame
	case errors.As(err, &outOfSync):
		return KindOutOfSyncRoundSubmission
	case errors.Is(err, ErrNoMoreNextRound):
		return KindNoMoreNextRound
	case errors.Is(err, ErrIDReassign):
		return KindIDReassign
	case errors.Is(err, ErrExistingGame):
		return KindExistingGame
	case errors.Is(err, ErrUnauthorizedGame):
		return KindUnauthorizedGame
	case errors.As(err, &invalid):
		return KindInvalidOutcome
	}

	return KindUnknown
}
