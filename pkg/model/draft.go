package model

import (
	"context"
	"database/sql"
	"whist-server/pkg/db"
	"whist-server/pkg/whist"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SaveRoundDraft replaces the draft of the game
func (r *Repository) SaveRoundDraft(ctx context.Context, gameID string, draft whist.Draft) error {
	b, err := whist.MarshalDraft(draft)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO round_drafts (game_id, weight, draft)
VALUES ($1, $2, $3)
ON CONFLICT (game_id) DO UPDATE
SET weight = EXCLUDED.weight,
    draft = EXCLUDED.draft,
    updated = (NOW() AT TIME ZONE 'utc')`

	_, err = db.Instance().ExecContext(ctx, query, gameID, draft.Round(), string(b))
	return err
}

// deleteRoundDraft removes the draft of the game, if any
func deleteRoundDraft(ctx context.Context, e execer, gameID string) error {
	const query = `
DELETE FROM round_drafts
WHERE game_id = $1`

	_, err := e.ExecContext(ctx, query, gameID)
	return err
}

// getRoundDraft returns the stored draft, or nil
func getRoundDraft(ctx context.Context, gameID string) (whist.Draft, error) {
	const query = `
SELECT draft
FROM round_drafts
WHERE game_id = $1`

	var b []byte
	if err := db.Instance().QueryRowContext(ctx, query, gameID).Scan(&b); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return whist.UnmarshalDraft(b)
}
