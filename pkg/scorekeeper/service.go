package scorekeeper

import (
	"context"
	"errors"
	"whist-server/pkg/whist"

	"github.com/sirupsen/logrus"
)

// Service runs the score keeping use-cases on top of a Repository
type Service struct {
	repo      Repository
	notifiers []Notifier
	locks     *gameLocks
}

// NewService returns a new service
func NewService(repo Repository, notifiers ...Notifier) *Service {
	return &Service{
		repo:      repo,
		notifiers: notifiers,
		locks:     newGameLocks(),
	}
}

// AddNotifier registers a notifier
// It must be called before the service is used
func (s *Service) AddNotifier(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// CreateNewGame creates a game for the owner with the players in their seating order
func (s *Service) CreateNewGame(ctx context.Context, ownerID int64, playersInOrder []string) (*whist.Game, error) {
	if _, err := s.repo.GetCurrentGame(ctx, ownerID); err == nil {
		return nil, whist.ErrExistingGame
	} else if !errors.Is(err, ErrGameNotFound) {
		return nil, err
	}

	game, err := whist.NewGame(ownerID, playersInOrder)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	known, err := s.repo.GetPlayers(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if newPlayers := newNames(known, game.Players()); len(newPlayers) > 0 {
		if err := s.repo.AddPlayers(ctx, ownerID, newPlayers); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"gameID":  game.ID(),
		"ownerID": ownerID,
		"players": len(playersInOrder),
	}).Info("game created")

	return game, nil
}

// GetGame returns a game of the owner
func (s *Service) GetGame(ctx context.Context, ownerID int64, id string) (*whist.Game, error) {
	game, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if game.OwnerID() != ownerID {
		return nil, whist.ErrUnauthorizedGame
	}

	return game, nil
}

// CurrentGame returns the game in progress of the owner, or ErrGameNotFound
func (s *Service) CurrentGame(ctx context.Context, ownerID int64) (*whist.Game, error) {
	return s.repo.GetCurrentGame(ctx, ownerID)
}

// LastTerminatedGame returns the last finished game of the owner, or ErrGameNotFound
func (s *Service) LastTerminatedGame(ctx context.Context, ownerID int64) (*whist.Game, error) {
	return s.repo.GetLastTerminatedGame(ctx, ownerID)
}

// ListGames returns a page of the games of the owner
func (s *Service) ListGames(ctx context.Context, ownerID int64, filter GameFilter) ([]*GameListItem, error) {
	return s.repo.GetGames(ctx, ownerID, filter)
}

// Players returns the player names the owner has used before
func (s *Service) Players(ctx context.Context, ownerID int64) ([]string, error) {
	return s.repo.GetPlayers(ctx, ownerID)
}

// DeleteGame deletes a game of the owner
func (s *Service) DeleteGame(ctx context.Context, ownerID int64, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.GetGame(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteGame(ctx, id); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"gameID":  id,
		"ownerID": ownerID,
	}).Info("game deleted")

	return nil
}

// ExitCurrentGame deletes the game in progress of the owner, if any
func (s *Service) ExitCurrentGame(ctx context.Context, ownerID int64) error {
	game, err := s.repo.GetCurrentGame(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return nil
		}

		return err
	}

	return s.DeleteGame(ctx, ownerID, game.ID())
}

// SaveRoundDraft keeps the draft of the next round of a game
func (s *Service) SaveRoundDraft(ctx context.Context, ownerID int64, id string, draft whist.Draft) error {
	unlock := s.locks.lock(id)
	defer unlock()

	game, err := s.GetGame(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := game.SaveDraft(draft); err != nil {
		return err
	}

	return s.repo.SaveRoundDraft(ctx, id, draft)
}

// SaveRoundResults records the outcome of a round
// The outcome must be for the next round of the game and follow the rules of that round
func (s *Service) SaveRoundResults(ctx context.Context, ownerID int64, id string, roundIndex int, outcome whist.RoundOutcome) (*whist.Game, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	game, err := s.GetGame(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := game.CheckSubmission(roundIndex); err != nil {
		return nil, err
	}

	info, err := game.NextRoundInfo()
	if err != nil {
		return nil, err
	}

	if err := info.ValidateOutcome(outcome); err != nil {
		return nil, err
	}

	if err := game.AcceptRoundOutcome(roundIndex, outcome); err != nil {
		return nil, err
	}

	if err := s.repo.SaveRoundResult(ctx, game, roundIndex, outcome); err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"gameID": id,
		"round":  roundIndex,
	})
	log.Debug("round accepted")

	for _, n := range s.notifiers {
		n.RoundAccepted(game, roundIndex)
	}

	if game.IsTerminated() {
		log.Info("game terminated")
		for _, n := range s.notifiers {
			n.GameTerminated(game)
		}
	}

	return game, nil
}

// newNames returns the names of players that are not in known
func newNames(known, players []string) []string {
	seen := make(map[string]bool, len(known))
	for _, name := range known {
		seen[name] = true
	}

	var names []string
	for _, name := range players {
		if !seen[name] {
			names = append(names, name)
		}
	}

	return names
}
