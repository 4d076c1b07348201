package model

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"
	"whist-server/pkg/db"
	"whist-server/pkg/scorekeeper"
	"whist-server/pkg/whist"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const gameInProgressConstraint = "games_owner_in_progress_idx"
const roundWeightConstraint = "round_results_game_id_weight_key"

const gameColumns = `
games.id,
games.owner_id,
games.created`

// Repository stores the games in postgres
type Repository struct{}

var _ scorekeeper.Repository = (*Repository)(nil)

// NewRepository returns a postgres backed repository
func NewRepository() *Repository {
	return &Repository{}
}

type gameRecord struct {
	id      string
	ownerID int64
	created time.Time
}

// CreateGame stores a new game and assigns its ID
func (r *Repository) CreateGame(ctx context.Context, game *whist.Game) error {
	id := uuid.New().String()

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		const query = `
INSERT INTO games (id, owner_id, created)
VALUES ($1, $2, $3)`

		if _, err := tx.ExecContext(ctx, query, id, game.OwnerID(), game.Created().UTC()); err != nil {
			return err
		}

		const playersQuery = `
INSERT INTO game_players (game_id, weight, name)
SELECT $1, p.weight - 1, p.name
FROM UNNEST($2::TEXT[]) WITH ORDINALITY AS p(name, weight)`

		_, err := tx.ExecContext(ctx, playersQuery, id, pq.Array(game.Players()))
		return err
	})

	if err != nil {
		if constraint, ok := duplicateKeyConstraint(err); ok {
			if constraint == gameInProgressConstraint {
				return whist.ErrExistingGame
			}

			return ErrDuplicateKey
		}

		return err
	}

	return game.SetID(id)
}

// GetGame returns the game with its outcomes and draft
func (r *Repository) GetGame(ctx context.Context, id string) (*whist.Game, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, scorekeeper.ErrGameNotFound
	}

	const query = `
SELECT ` + gameColumns + `
FROM games
WHERE id = $1`

	return r.loadGame(ctx, db.Instance().QueryRowContext(ctx, query, id))
}

// GetCurrentGame returns the game in progress of the owner
func (r *Repository) GetCurrentGame(ctx context.Context, ownerID int64) (*whist.Game, error) {
	const query = `
SELECT ` + gameColumns + `
FROM games
WHERE owner_id = $1
  AND NOT is_terminated`

	return r.loadGame(ctx, db.Instance().QueryRowContext(ctx, query, ownerID))
}

// GetLastTerminatedGame returns the most recently created finished game of the owner
func (r *Repository) GetLastTerminatedGame(ctx context.Context, ownerID int64) (*whist.Game, error) {
	const query = `
SELECT ` + gameColumns + `
FROM games
WHERE owner_id = $1
  AND is_terminated
ORDER BY created DESC, id DESC
LIMIT 1`

	return r.loadGame(ctx, db.Instance().QueryRowContext(ctx, query, ownerID))
}

// GetGames returns the games of the owner, newest first
func (r *Repository) GetGames(ctx context.Context, ownerID int64, filter scorekeeper.GameFilter) ([]*scorekeeper.GameListItem, error) {
	const query = `
SELECT games.id,
       games.is_terminated,
       games.created,
       (SELECT ARRAY_AGG(name ORDER BY weight) FROM game_players WHERE game_id = games.id),
       (SELECT COUNT(*) FROM round_results WHERE game_id = games.id)
FROM games
WHERE owner_id = $1
  AND ($2::BOOLEAN IS NULL OR is_terminated = $2)
ORDER BY created DESC, id DESC
OFFSET $3
LIMIT $4`

	var terminated sql.NullBool
	if filter.Terminated != nil {
		terminated = sql.NullBool{Bool: *filter.Terminated, Valid: true}
	}

	var limit sql.NullInt64
	if filter.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(filter.Limit), Valid: true}
	}

	rows, err := db.Instance().QueryContext(ctx, query, ownerID, terminated, filter.Offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*scorekeeper.GameListItem, 0)
	for rows.Next() {
		var item scorekeeper.GameListItem
		if err := rows.Scan(&item.ID, &item.IsTerminated, &item.Created, pq.Array(&item.PlayersInOrder), &item.PlayedRounds); err != nil {
			return nil, err
		}

		items = append(items, &item)
	}

	return items, rows.Err()
}

// DeleteGame deletes a game along with its rounds and draft
func (r *Repository) DeleteGame(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return scorekeeper.ErrGameNotFound
	}

	const query = `
DELETE FROM games
WHERE id = $1`

	res, err := db.Instance().ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return scorekeeper.ErrGameNotFound
	}

	return nil
}

// SaveRoundResult stores the outcome of roundIndex and deletes the draft
// The game row is locked for the duration of the transaction
func (r *Repository) SaveRoundResult(ctx context.Context, game *whist.Game, roundIndex int, outcome whist.RoundOutcome) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		const lockQuery = `
SELECT is_terminated
FROM games
WHERE id = $1
FOR UPDATE`

		var isTerminated bool
		if err := tx.QueryRowContext(ctx, lockQuery, game.ID()).Scan(&isTerminated); err != nil {
			if err == sql.ErrNoRows {
				return scorekeeper.ErrGameNotFound
			}

			return err
		}

		if isTerminated {
			return whist.ErrTerminatedGame
		}

		const countQuery = `
SELECT COUNT(*)
FROM round_results
WHERE game_id = $1`

		var played int
		if err := tx.QueryRowContext(ctx, countQuery, game.ID()).Scan(&played); err != nil {
			return err
		}

		if next := played + 1; roundIndex != next {
			return &whist.OutOfSyncRoundSubmissionError{Expected: next, Received: roundIndex}
		}

		const roundQuery = `
INSERT INTO round_results (game_id, weight)
VALUES ($1, $2)
RETURNING id`

		var roundResultID int64
		if err := tx.QueryRowContext(ctx, roundQuery, game.ID(), roundIndex).Scan(&roundResultID); err != nil {
			if constraint, ok := duplicateKeyConstraint(err); ok && constraint == roundWeightConstraint {
				return &whist.OutOfSyncRoundSubmissionError{Expected: played + 2, Received: roundIndex}
			}

			return err
		}

		players := make([]string, 0, len(outcome))
		for player := range outcome {
			players = append(players, player)
		}
		sort.Strings(players)

		calls := make([]int64, len(players))
		results := make([]int64, len(players))
		for i, player := range players {
			calls[i] = int64(outcome[player].Call)
			results[i] = int64(outcome[player].Result)
		}

		const playersQuery = `
INSERT INTO player_round_results (round_result_id, player, player_call, player_result)
SELECT $1, p.player, p.player_call, p.player_result
FROM UNNEST($2::TEXT[], $3::INTEGER[], $4::INTEGER[]) AS p(player, player_call, player_result)`

		if _, err := tx.ExecContext(ctx, playersQuery, roundResultID, pq.Array(players), pq.Array(calls), pq.Array(results)); err != nil {
			return err
		}

		if err := deleteRoundDraft(ctx, tx, game.ID()); err != nil {
			return err
		}

		if !game.IsTerminated() {
			return nil
		}

		const terminateQuery = `
UPDATE games
SET is_terminated = 't',
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $1`

		_, err := tx.ExecContext(ctx, terminateQuery, game.ID())
		return err
	})
}

// AddPlayers remembers player names on the owner
func (r *Repository) AddPlayers(ctx context.Context, ownerID int64, names []string) error {
	return AddPlayers(ctx, ownerID, names)
}

// GetPlayers returns the player names known by the owner
func (r *Repository) GetPlayers(ctx context.Context, ownerID int64) ([]string, error) {
	return GetPlayers(ctx, ownerID)
}

func (r *Repository) loadGame(ctx context.Context, row db.Scanner) (*whist.Game, error) {
	var rec gameRecord
	if err := row.Scan(&rec.id, &rec.ownerID, &rec.created); err != nil {
		if err == sql.ErrNoRows {
			return nil, scorekeeper.ErrGameNotFound
		}

		return nil, err
	}

	players, err := getGamePlayers(ctx, rec.id)
	if err != nil {
		return nil, err
	}

	outcomes, err := getRoundOutcomes(ctx, rec.id)
	if err != nil {
		return nil, err
	}

	game, err := whist.RestoreGame(rec.id, rec.ownerID, rec.created, players, outcomes)
	if err != nil {
		return nil, err
	}

	draft, err := getRoundDraft(ctx, rec.id)
	if err != nil {
		return nil, err
	}

	game.RestoreDraft(draft)
	return game, nil
}

func getGamePlayers(ctx context.Context, gameID string) ([]string, error) {
	const query = `
SELECT COALESCE(ARRAY_AGG(name ORDER BY weight), '{}')
FROM game_players
WHERE game_id = $1`

	var players []string
	if err := db.Instance().QueryRowContext(ctx, query, gameID).Scan(pq.Array(&players)); err != nil {
		return nil, err
	}

	return players, nil
}

func getRoundOutcomes(ctx context.Context, gameID string) ([]whist.RoundOutcome, error) {
	const query = `
SELECT round_results.weight,
       player_round_results.player,
       player_round_results.player_call,
       player_round_results.player_result
FROM round_results
INNER JOIN player_round_results ON player_round_results.round_result_id = round_results.id
WHERE round_results.game_id = $1
ORDER BY round_results.weight`

	rows, err := db.Instance().QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := make([]whist.RoundOutcome, 0)
	for rows.Next() {
		var weight int
		var player string
		var po whist.PlayerOutcome
		if err := rows.Scan(&weight, &player, &po.Call, &po.Result); err != nil {
			return nil, err
		}

		for len(outcomes) < weight {
			outcomes = append(outcomes, make(whist.RoundOutcome))
		}

		outcomes[weight-1][player] = po
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, outcome := range outcomes {
		if len(outcome) == 0 {
			return nil, errors.New("round results are not contiguous")
		}
	}

	return outcomes, nil
}
