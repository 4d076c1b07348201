package scorekeeper

import (
	"context"
	"sync"
	"testing"
	"whist-server/pkg/whist"

	"github.com/stretchr/testify/assert"
)

var cbg = context.Background()

type recordingNotifier struct {
	mu         sync.Mutex
	rounds     []int
	terminated []string
}

func (r *recordingNotifier) RoundAccepted(game *whist.Game, roundIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds = append(r.rounds, roundIndex)
}

func (r *recordingNotifier) GameTerminated(game *whist.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminated = append(r.terminated, game.ID())
}

// validOutcome has everybody call zero and the first player in round order take every trick
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

func newTestService() (*Service, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewService(NewMemoryRepository(), n), n
}

func playRound(t *testing.T, s *Service, game *whist.Game) *whist.Game {
	t.Helper()

	info, err := game.NextRoundInfo()
	if err != nil {
		t.Fatal(err)
	}

	game, err = s.SaveRoundResults(cbg, game.OwnerID(), game.ID(), info.Index, validOutcome(info))
	if err != nil {
		t.Fatal(err)
	}

	return game
}

func TestService_CreateNewGame(t *testing.T) {
	a := assert.New(t)
	s, _ := newTestService()

	game, err := s.CreateNewGame(cbg, 1, []string{"Alice", "Bob", "Chloé"})
	a.NoError(err)
	a.NotEmpty(game.ID())
	a.Equal(35, game.TotalRounds())

	players, err := s.Players(cbg, 1)
	a.NoError(err)
	a.Equal([]string{"Alice", "Bob", "Chloé"}, players)

	_, err = s.CreateNewGame(cbg, 1, []string{"Alice", "Bob"})
	a.Equal(whist.ErrExistingGame, err)

	// another owner is not affected
	_, err = s.CreateNewGame(cbg, 2, []string{"Alice", "Dan"})
	a.NoError(err)

	players, _ = s.Players(cbg, 2)
	a.Equal([]string{"Alice", "Dan"}, players)
}

func TestService_CreateNewGame_invalidPlayers(t *testing.T) {
	a := assert.New(t)
	s, _ := newTestService()

	_, err := s.CreateNewGame(cbg, 1, []string{"Alice"})
	a.Equal(whist.ErrMinPlayers, err)

	_, err = s.CreateNewGame(cbg, 1, []string{"Alice", "Bob", "Alice"})
	var dupErr *whist.DuplicatePlayersError
	if a.ErrorAs(err, &dupErr) {
		a.Equal([]string{"Alice"}, dupErr.Duplicates)
	}

	_, err = s.CurrentGame(cbg, 1)
	a.Equal(ErrGameNotFound, err)

	players, _ := s.Players(cbg, 1)
	a.Empty(players)
}

func TestService_GetGame(t *testing.T) {
	a := assert.New(t)
	s, _ := newTestService()

	game, _ := s.CreateNewGame(cbg, 1, []string{"Alice", "Bob"})

	found, err := s.GetGame(cbg, 1, game.ID())
	a.NoError(err)
	a.Equal(game.ID(), found.ID())
	a.Equal([]string{"Alice", "Bob"}, found.Players())

	_, err = s.GetGame(cbg, 2, game.ID())
	a.Equal(whist.ErrUnauthorizedGame, err)

	_, err = s.GetGame(cbg, 1, "missing")
	a.Equal(ErrGameNotFound, err)
}

func TestService_SaveRoundResults(t *testing.T) {
	a := assert.New(t)
	s, n := newTestService()

	game, _ := s.CreateNewGame(cbg, 1, []string{"A", "B", "C", "D"})
	info, _ := game.NextRoundInfo()

	// out of sync
	_, err := s.SaveRoundResults(cbg, 1, game.ID(), 2, validOutcome(info))
	a.Equal(&whist.OutOfSyncRoundSubmissionError{Expected: 1, Received: 2}, err)

	// breaks the rules of the round
	_, err = s.SaveRoundResults(cbg, 1, game.ID(), 1, whist.RoundOutcome{"A": {}})
	var outcomeErr *whist.InvalidOutcomeError
	a.ErrorAs(err, &outcomeErr)

	// somebody else's game
	_, err = s.SaveRoundResults(cbg, 2, game.ID(), 1, validOutcome(info))
	a.Equal(whist.ErrUnauthorizedGame, err)
	a.Empty(n.rounds)

	game, err = s.SaveRoundResults(cbg, 1, game.ID(), 1, validOutcome(info))
	a.NoError(err)
	a.Equal(2, game.NextRoundIndex())
	a.Equal([]int{1}, n.rounds)

	stored, _ := s.GetGame(cbg, 1, game.ID())
	a.Equal(1, stored.PlayedRounds())
	a.Equal(game.Ranking(), stored.Ranking())

	// B was first to play and took the only trick after calling 0
	ranking := stored.Ranking()
	a.Equal("A", ranking[0].Player)
	a.Equal(20, ranking[0].CumulativePoints)
	a.Equal("B", ranking[3].Player)
	a.Equal(-20, ranking[3].CumulativePoints)
}

func TestService_SaveRoundResults_wholeGame(t *testing.T) {
	a := assert.New(t)
	s, n := newTestService()

	game, _ := s.CreateNewGame(cbg, 1, []string{"A", "B", "C", "D"})
	id := game.ID()

	for i := 0; i < 26; i++ {
		game = playRound(t, s, game)
	}

	a.True(game.IsTerminated())
	a.Equal(26, len(n.rounds))
	a.Equal([]string{id}, n.terminated)

	_, err := s.SaveRoundResults(cbg, 1, id, 27, whist.RoundOutcome{})
	a.Equal(whist.ErrTerminatedGame, err)

	_, err = s.CurrentGame(cbg, 1)
	a.Equal(ErrGameNotFound, err)

	last, err := s.LastTerminatedGame(cbg, 1)
	a.NoError(err)
	a.Equal(id, last.ID())
	a.True(last.IsTerminated())
	a.True(last.Scores().IsFinal)

	// a new game can be started once the previous one is over
	_, err = s.CreateNewGame(cbg, 1, []string{"A", "B", "C", "D"})
	a.NoError(err)
}

func TestService_SaveRoundResults_concurrent(t *testing.T) {
	a := assert.New(t)
	s, n := newTestService()

	game, _ := s.CreateNewGame(cbg, 1, []string{"A", "B", "C"})
	info, _ := game.NextRoundInfo()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SaveRoundResults(cbg, 1, game.ID(), 1, validOutcome(info))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	accepted := 0
	for err := range errs {
		if err == nil {
			accepted++
			continue
		}

		a.Equal(whist.KindOutOfSyncRoundSubmission, whist.KindOf(err))
	}

	a.Equal(1, accepted)
	a.Equal([]int{1}, n.rounds)
	a.Equal(0, s.locks.len())

	stored, _ := s.GetGame(cbg, 1, game.ID())
	a.Equal(1, stored.PlayedRounds())
}

func TestService_SaveRoundDraft(t *testing.T) {
	a := assert.New(t)
	s, _ := newTestService()

	game, _ := s.CreateNewGame(cbg, 1, []string{"A", "B", "C"})

	draft := &whist.CallsStepDraft{RoundIndex: 1, Calls: []int{0, 1}, CallIndex: 2}
	a.NoError(s.SaveRoundDraft(cbg, 1, game.ID(), draft))

	stored, _ := s.GetGame(cbg, 1, game.ID())
	a.Equal(draft, stored.Draft())

	err := s.SaveRoundDraft(cbg, 1, game.ID(), &whist.ResultsStepDraft{RoundIndex: 3})
	a.Equal(&whist.OutOfSyncRoundSubmissionError{Expected: 1, Received: 3}, err)

	a.Equal(whist.ErrUnauthorizedGame, s.SaveRoundDraft(cbg, 2, game.ID(), draft))

	// the draft is dropped once the round is saved
	playRound(t, s, game)
	stored, _ = s.GetGame(cbg, 1, game.ID())
	a.Nil(stored.Draft())
}

func TestService_ListGames(t *testing.T) {
	a := assert.New(t)
	s, _ := newTestService()

	first, _ := s.CreateNewGame(cbg, 1, []string{"A", "B", "C", "D", "E", "F", "G", "H"})
	for !first.IsTerminated() {
		first = playRound(t, s, first)
	}

	second, _ := s.CreateNewGame(cbg, 1, []string{"A", "B"})
	second = playRound(t, s, second)

	games, err := s.ListGames(cbg, 1, GameFilter{})
	a.NoError(err)
	if a.Equal(2, len(games)) {
		ids := []string{games[0].ID, games[1].ID}
		a.ElementsMatch([]string{first.ID(), second.ID()}, ids)
	}

	terminated := true
	games, _ = s.ListGames(cbg, 1, GameFilter{Terminated: &terminated})
	if a.Equal(1, len(games)) {
		a.Equal(first.ID(), games[0].ID)
		a.True(games[0].IsTerminated)
		a.Equal(13, games[0].PlayedRounds)
	}

	inProgress := false
	games, _ = s.ListGames(cbg, 1, GameFilter{Terminated: &inProgress})
	if a.Equal(1, len(games)) {
		a.Equal(second.ID(), games[0].ID)
		a.Equal(1, games[0].PlayedRounds)
		a.Equal([]string{"A", "B"}, games[0].PlayersInOrder)
	}

	games, _ = s.ListGames(cbg, 1, GameFilter{Offset: 1, Limit: 5})
	a.Equal(1, len(games))

	games, _ = s.ListGames(cbg, 1, GameFilter{Offset: 2})
	a.Equal(0, len(games))

	games, _ = s.ListGames(cbg, 2, GameFilter{})
	a.Equal(0, len(games))
}

func TestService_DeleteGame(t *testing.T) {
	a := assert.New(t)
	s, _ := newTestService()

	game, _ := s.CreateNewGame(cbg, 1, []string{"A", "B"})
	a.Equal(whist.ErrUnauthorizedGame, s.DeleteGame(cbg, 2, game.ID()))

	a.NoError(s.DeleteGame(cbg, 1, game.ID()))
	_, err := s.GetGame(cbg, 1, game.ID())
	a.Equal(ErrGameNotFound, err)

	a.Equal(ErrGameNotFound, s.DeleteGame(cbg, 1, game.ID()))
}

func TestService_ExitCurrentGame(t *testing.T) {
	a := assert.New(t)
	s, _ := newTestService()

	a.NoError(s.ExitCurrentGame(cbg, 1))

	_, _ = s.CreateNewGame(cbg, 1, []string{"A", "B"})
	a.NoError(s.ExitCurrentGame(cbg, 1))

	_, err := s.CurrentGame(cbg, 1)
	a.Equal(ErrGameNotFound, err)

	_, err = s.CreateNewGame(cbg, 1, []string{"A", "B"})
	a.NoError(err)
}

func TestNewNames(t *testing.T) {
	assert.Equal(t, []string{"C"}, newNames([]string{"A", "B"}, []string{"B", "C", "A"}))
	assert.Nil(t, newNames([]string{"A"}, []string{"A"}))
}
