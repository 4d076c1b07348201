package scorekeeper

import (
	"context"
	"errors"
	"time"
	"whist-server/pkg/whist"
)

// ErrGameNotFound is returned when a game does not exist
var ErrGameNotFound = errors.New("game not found")

// GameFilter narrows down a list of games
type GameFilter struct {
	Offset int64
	Limit  int

	// Terminated, when set, only keeps the games in that state
	Terminated *bool
}

// GameListItem is a lightweight view of a game used when listing games
type GameListItem struct {
	ID             string    `json:"id"`
	IsTerminated   bool      `json:"isTerminated"`
	Created        time.Time `json:"created"`
	PlayersInOrder []string  `json:"playersInOrder"`
	PlayedRounds   int       `json:"playedRounds"`
}

// Repository stores games, their round results and drafts
type Repository interface {
	// CreateGame stores a new game and assigns its ID
	// Returns whist.ErrExistingGame if the owner already has a game in progress
	CreateGame(ctx context.Context, game *whist.Game) error

	// GetGame returns the game with its outcomes and draft, or ErrGameNotFound
	GetGame(ctx context.Context, id string) (*whist.Game, error)

	// GetCurrentGame returns the game in progress of the owner, or ErrGameNotFound
	GetCurrentGame(ctx context.Context, ownerID int64) (*whist.Game, error)

	// GetLastTerminatedGame returns the most recently created finished game, or ErrGameNotFound
	GetLastTerminatedGame(ctx context.Context, ownerID int64) (*whist.Game, error)

	// GetGames returns the games of the owner, newest first
	GetGames(ctx context.Context, ownerID int64, filter GameFilter) ([]*GameListItem, error)

	DeleteGame(ctx context.Context, id string) error

	// SaveRoundDraft replaces the draft of the game
	SaveRoundDraft(ctx context.Context, gameID string, draft whist.Draft) error

	// SaveRoundResult stores the outcome of roundIndex and deletes the draft
	// game already holds the outcome; the game is marked terminated when it has no more rounds
	// Returns a *whist.OutOfSyncRoundSubmissionError if roundIndex is not the next round in storage
	SaveRoundResult(ctx context.Context, game *whist.Game, roundIndex int, outcome whist.RoundOutcome) error

	// AddPlayers remembers player names on the owner, ignoring the names already known
	AddPlayers(ctx context.Context, ownerID int64, names []string) error

	// GetPlayers returns the player names known by the owner, sorted by name
	GetPlayers(ctx context.Context, ownerID int64) ([]string, error)
}
