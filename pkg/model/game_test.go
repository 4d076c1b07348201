package model

import (
	"testing"
	"whist-server/pkg/scorekeeper"
	"whist-server/pkg/whist"

	"github.com/stretchr/testify/assert"
)

func validOutcome(info whist.RoundInfo) whist.RoundOutcome {
	outcome := make(whist.RoundOutcome)
	for i, player := range info.PlayersInRoundOrder {
		po := whist.PlayerOutcome{}
		if i == 0 {
			po.Result = info.TotalCardsPerPlayer
		}

		outcome[player] = po
	}

	return outcome
}

func newGame(t *testing.T, r *Repository, ownerID int64, players ...string) *whist.Game {
	t.Helper()

	game, err := whist.NewGame(ownerID, players)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.CreateGame(cbg, game); err != nil {
		t.Fatal(err)
	}

	return game
}

func playRound(t *testing.T, r *Repository, game *whist.Game) {
	t.Helper()

	info, _ := game.NextRoundInfo()
	outcome := validOutcome(info)
	if err := game.AcceptRoundOutcome(info.Index, outcome); err != nil {
		t.Fatal(err)
	}

	if err := r.SaveRoundResult(cbg, game, info.Index, outcome); err != nil {
		t.Fatal(err)
	}
}

func TestRepository_CreateGame(t *testing.T) {
	requireDB(t)
	a := assert.New(t)
	r := NewRepository()
	u := user(t)

	game := newGame(t, r, u.ID, "Alice", "Bob", "Chloé")
	a.NotEmpty(game.ID())

	found, err := r.GetGame(cbg, game.ID())
	a.NoError(err)
	a.Equal(u.ID, found.OwnerID())
	a.Equal([]string{"Alice", "Bob", "Chloé"}, found.Players())
	a.Equal(0, found.PlayedRounds())
	a.Nil(found.Draft())

	current, err := r.GetCurrentGame(cbg, u.ID)
	a.NoError(err)
	a.Equal(game.ID(), current.ID())

	second, _ := whist.NewGame(u.ID, []string{"Alice", "Bob"})
	a.Equal(whist.ErrExistingGame, r.CreateGame(cbg, second))
	a.Equal("", second.ID())

	_, err = r.GetGame(cbg, "not-a-uuid")
	a.Equal(scorekeeper.ErrGameNotFound, err)

	_, err = r.GetLastTerminatedGame(cbg, u.ID)
	a.Equal(scorekeeper.ErrGameNotFound, err)
}

func TestRepository_SaveRoundResult(t *testing.T) {
	requireDB(t)
	a := assert.New(t)
	r := NewRepository()
	u := user(t)

	game := newGame(t, r, u.ID, "A", "B", "C", "D", "E", "F", "G", "H")
	playRound(t, r, game)

	// the stored game is one round ahead
	stale, _ := r.GetGame(cbg, game.ID())
	info, _ := stale.NextRoundInfo()
	a.Equal(2, info.Index)
	err := r.SaveRoundResult(cbg, game, 1, validOutcome(info))
	a.Equal(&whist.OutOfSyncRoundSubmissionError{Expected: 2, Received: 1}, err)

	a.NoError(r.SaveRoundDraft(cbg, game.ID(), &whist.CallsStepDraft{RoundIndex: 2, Calls: []int{1}, CallIndex: 1}))
	withDraft, _ := r.GetGame(cbg, game.ID())
	a.Equal(&whist.CallsStepDraft{RoundIndex: 2, Calls: []int{1}, CallIndex: 1}, withDraft.Draft())

	for !game.IsTerminated() {
		playRound(t, r, game)
	}

	found, err := r.GetGame(cbg, game.ID())
	a.NoError(err)
	a.True(found.IsTerminated())
	a.Nil(found.Draft())
	a.Equal(game.Outcomes(), found.Outcomes())
	a.Equal(game.Ranking(), found.Ranking())

	_, err = r.GetCurrentGame(cbg, u.ID)
	a.Equal(scorekeeper.ErrGameNotFound, err)

	last, err := r.GetLastTerminatedGame(cbg, u.ID)
	a.NoError(err)
	a.Equal(game.ID(), last.ID())

	a.Equal(whist.ErrTerminatedGame, r.SaveRoundResult(cbg, game, 14, whist.RoundOutcome{}))
}

func TestRepository_GetGames(t *testing.T) {
	requireDB(t)
	a := assert.New(t)
	r := NewRepository()
	u := user(t)

	first := newGame(t, r, u.ID, "A", "B", "C", "D", "E", "F", "G", "H")
	for !first.IsTerminated() {
		playRound(t, r, first)
	}

	second := newGame(t, r, u.ID, "A", "B")
	playRound(t, r, second)

	games, err := r.GetGames(cbg, u.ID, scorekeeper.GameFilter{})
	a.NoError(err)
	if a.Equal(2, len(games)) {
		a.Equal(second.ID(), games[0].ID)
		a.Equal([]string{"A", "B"}, games[0].PlayersInOrder)
		a.Equal(1, games[0].PlayedRounds)
		a.False(games[0].IsTerminated)

		a.Equal(first.ID(), games[1].ID)
		a.Equal(13, games[1].PlayedRounds)
		a.True(games[1].IsTerminated)
	}

	terminated := true
	games, _ = r.GetGames(cbg, u.ID, scorekeeper.GameFilter{Terminated: &terminated})
	if a.Equal(1, len(games)) {
		a.Equal(first.ID(), games[0].ID)
	}

	games, _ = r.GetGames(cbg, u.ID, scorekeeper.GameFilter{Offset: 1, Limit: 1})
	if a.Equal(1, len(games)) {
		a.Equal(first.ID(), games[0].ID)
	}
}

func TestRepository_DeleteGame(t *testing.T) {
	requireDB(t)
	a := assert.New(t)
	r := NewRepository()
	u := user(t)

	game := newGame(t, r, u.ID, "A", "B")
	playRound(t, r, game)
	a.NoError(r.SaveRoundDraft(cbg, game.ID(), &whist.ResultsStepDraft{RoundIndex: 2, Calls: []int{0, 0}}))

	a.NoError(r.DeleteGame(cbg, game.ID()))
	_, err := r.GetGame(cbg, game.ID())
	a.Equal(scorekeeper.ErrGameNotFound, err)
	a.Equal(scorekeeper.ErrGameNotFound, r.DeleteGame(cbg, game.ID()))

	// the owner can start over
	newGame(t, r, u.ID, "A", "B")
}

func TestRepository_service(t *testing.T) {
	requireDB(t)
	a := assert.New(t)
	u := user(t)

	s := scorekeeper.NewService(NewRepository())
	game, err := s.CreateNewGame(cbg, u.ID, []string{"Alice", "Bob", "Chloé"})
	a.NoError(err)

	players, _ := s.Players(cbg, u.ID)
	a.ElementsMatch([]string{"Alice", "Bob", "Chloé"}, players)

	info, _ := game.NextRoundInfo()
	game, err = s.SaveRoundResults(cbg, u.ID, game.ID(), 1, validOutcome(info))
	a.NoError(err)
	a.Equal(2, game.NextRoundIndex())
}
