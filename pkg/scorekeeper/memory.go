package scorekeeper

import (
	"context"
	"sort"
	"sync"
	"time"
	"whist-server/pkg/whist"

	"github.com/google/uuid"
)

type memoryGame struct {
	id           string
	ownerID      int64
	created      time.Time
	players      []string
	outcomes     []whist.RoundOutcome
	draft        []byte
	isTerminated bool
}

// MemoryRepository is a Repository that keeps everything in memory
type MemoryRepository struct {
	mu      sync.RWMutex
	games   map[string]*memoryGame
	players map[int64]map[string]bool
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		games:   make(map[string]*memoryGame),
		players: make(map[int64]map[string]bool),
	}
}

// CreateGame stores a new game and assigns its ID
func (m *MemoryRepository) CreateGame(ctx context.Context, game *whist.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range m.games {
		if g.ownerID == game.OwnerID() && !g.isTerminated {
			return whist.ErrExistingGame
		}
	}

	id := uuid.New().String()
	if err := game.SetID(id); err != nil {
		return err
	}

	m.games[id] = &memoryGame{
		id:       id,
		ownerID:  game.OwnerID(),
		created:  game.Created(),
		players:  game.Players(),
		outcomes: game.Outcomes(),
	}

	return nil
}

// GetGame returns a game, or ErrGameNotFound
func (m *MemoryRepository) GetGame(ctx context.Context, id string) (*whist.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	return g.restore()
}

// GetCurrentGame returns the game in progress of the owner
func (m *MemoryRepository) GetCurrentGame(ctx context.Context, ownerID int64) (*whist.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.games {
		if g.ownerID == ownerID && !g.isTerminated {
			return g.restore()
		}
	}

	return nil, ErrGameNotFound
}

// GetLastTerminatedGame returns the most recently created finished game of the owner
func (m *MemoryRepository) GetLastTerminatedGame(ctx context.Context, ownerID int64) (*whist.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	terminated := true
	games := m.ownerGames(ownerID, &terminated)
	if len(games) == 0 {
		return nil, ErrGameNotFound
	}

	return games[0].restore()
}

// GetGames returns the games of the owner, newest first
func (m *MemoryRepository) GetGames(ctx context.Context, ownerID int64, filter GameFilter) ([]*GameListItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	games := m.ownerGames(ownerID, filter.Terminated)
	if filter.Offset >= int64(len(games)) {
		return []*GameListItem{}, nil
	}

	games = games[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(games) {
		games = games[:filter.Limit]
	}

	items := make([]*GameListItem, len(games))
	for i, g := range games {
		players := make([]string, len(g.players))
		copy(players, g.players)

		items[i] = &GameListItem{
			ID:             g.id,
			IsTerminated:   g.isTerminated,
			Created:        g.created,
			PlayersInOrder: players,
			PlayedRounds:   len(g.outcomes),
		}
	}

	return items, nil
}

// DeleteGame deletes a game
func (m *MemoryRepository) DeleteGame(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[id]; !ok {
		return ErrGameNotFound
	}

	delete(m.games, id)
	return nil
}

// SaveRoundDraft replaces the draft of the game
func (m *MemoryRepository) SaveRoundDraft(ctx context.Context, gameID string, draft whist.Draft) error {
	b, err := whist.MarshalDraft(draft)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return ErrGameNotFound
	}

	g.draft = b
	return nil
}

// SaveRoundResult stores the outcome of roundIndex and deletes the draft
func (m *MemoryRepository) SaveRoundResult(ctx context.Context, game *whist.Game, roundIndex int, outcome whist.RoundOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[game.ID()]
	if !ok {
		return ErrGameNotFound
	}

	if next := len(g.outcomes) + 1; roundIndex != next {
		return &whist.OutOfSyncRoundSubmissionError{Expected: next, Received: roundIndex}
	}

	stored := make(whist.RoundOutcome, len(outcome))
	for player, po := range outcome {
		stored[player] = po
	}

	g.outcomes = append(g.outcomes, stored)
	g.draft = nil
	g.isTerminated = game.IsTerminated()
	return nil
}

// AddPlayers remembers player names on the owner
func (m *MemoryRepository) AddPlayers(ctx context.Context, ownerID int64, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	known, ok := m.players[ownerID]
	if !ok {
		known = make(map[string]bool)
		m.players[ownerID] = known
	}

	for _, name := range names {
		known[name] = true
	}

	return nil
}

// GetPlayers returns the player names known by the owner
func (m *MemoryRepository) GetPlayers(ctx context.Context, ownerID int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.players[ownerID]))
	for name := range m.players[ownerID] {
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// ownerGames must be called with the lock held
func (m *MemoryRepository) ownerGames(ownerID int64, terminated *bool) []*memoryGame {
	var games []*memoryGame
	for _, g := range m.games {
		if g.ownerID != ownerID {
			continue
		}

		if terminated != nil && g.isTerminated != *terminated {
			continue
		}

		games = append(games, g)
	}

	sort.Slice(games, func(i, j int) bool {
		if games[i].created.Equal(games[j].created) {
			return games[i].id > games[j].id
		}

		return games[i].created.After(games[j].created)
	})

	return games
}

func (g *memoryGame) restore() (*whist.Game, error) {
	game, err := whist.RestoreGame(g.id, g.ownerID, g.created, g.players, g.outcomes)
	if err != nil {
		return nil, err
	}

	if g.draft != nil {
		draft, err := whist.UnmarshalDraft(g.draft)
		if err != nil {
			return nil, err
		}

		game.RestoreDraft(draft)
	}

	return game, nil
}
