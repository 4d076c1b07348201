package whist

import (
	"encoding/json"
	"time"
)

// Game is a game of whist and the outcomes of the rounds played so far
// The round plan is derived once from the players when the game is built
type Game struct {
	id       string
	ownerID  int64
	created  time.Time
	players  []string
	outcomes []RoundOutcome
	draft    Draft

	plan   Plan
	rounds []RoundInfo
}

// NewGame creates a game that has not started yet
// The game has no ID until SetID is called
func NewGame(ownerID int64, playersInOrder []string) (*Game, error) {
	return RestoreGame("", ownerID, time.Now(), playersInOrder, nil)
}

// RestoreGame rebuilds a game from stored values
func RestoreGame(id string, ownerID int64, created time.Time, playersInOrder []string, outcomes []RoundOutcome) (*Game, error) {
	if err := ValidatePlayerList(playersInOrder); err != nil {
		return nil, err
	}

	players := make([]string, len(playersInOrder))
	copy(players, playersInOrder)

	plan, err := NewPlan(len(players))
	if err != nil {
		return nil, err
	}

	if len(outcomes) > plan.TotalRounds {
		return nil, ErrTerminatedGame
	}

	g := &Game{
		id:       id,
		ownerID:  ownerID,
		created:  created,
		players:  players,
		outcomes: make([]RoundOutcome, 0, plan.TotalRounds),
		plan:     plan,
		rounds:   plan.rounds(players),
	}

	for _, outcome := range outcomes {
		g.outcomes = append(g.outcomes, outcome.clone())
	}

	return g, nil
}

// ID returns the ID of the game, or an empty string if it was never stored
func (g *Game) ID() string {
	return g.id
}

// SetID assigns the ID once the game is stored
func (g *Game) SetID(id string) error {
	if g.id != "" {
		return ErrIDReassign
	}

	g.id = id
	return nil
}

// OwnerID returns the ID of the user who created the game
func (g *Game) OwnerID() int64 {
	return g.ownerID
}

// Created returns when the game was created
func (g *Game) Created() time.Time {
	return g.created
}

// Players returns the players in their initial order
func (g *Game) Players() []string {
	players := make([]string, len(g.players))
	copy(players, g.players)
	return players
}

// Outcomes returns the outcomes of the rounds played so far
func (g *Game) Outcomes() []RoundOutcome {
	outcomes := make([]RoundOutcome, len(g.outcomes))
	for i, outcome := range g.outcomes {
		outcomes[i] = outcome.clone()
	}

	return outcomes
}

// Plan returns the card distribution of the game
func (g *Game) Plan() Plan {
	return g.plan
}

// TotalRounds returns the number of rounds in the game
func (g *Game) TotalRounds() int {
	return g.plan.TotalRounds
}

// Rounds returns every round of the game
func (g *Game) Rounds() []RoundInfo {
	rounds := make([]RoundInfo, len(g.rounds))
	copy(rounds, g.rounds)
	return rounds
}

// PlayedRounds returns the number of rounds with an outcome
func (g *Game) PlayedRounds() int {
	return len(g.outcomes)
}

// IsTerminated returns true once every round has an outcome
func (g *Game) IsTerminated() bool {
	return len(g.outcomes) == g.plan.TotalRounds
}

// NextRoundIndex returns the 1-based index of the round to be played
func (g *Game) NextRoundIndex() int {
	return len(g.outcomes) + 1
}

// NextRoundInfo returns the round to be played
func (g *Game) NextRoundInfo() (RoundInfo, error) {
	if g.IsTerminated() {
		return RoundInfo{}, ErrNoMoreNextRound
	}

	return g.rounds[len(g.outcomes)], nil
}

// CheckSubmission returns an error if an outcome for roundIndex would be rejected
func (g *Game) CheckSubmission(roundIndex int) error {
	if g.IsTerminated() {
		return ErrTerminatedGame
	}

	if next := g.NextRoundIndex(); roundIndex != next {
		return &OutOfSyncRoundSubmissionError{Expected: next, Received: roundIndex}
	}

	return nil
}

// AcceptRoundOutcome records the outcome of the round at roundIndex
// The game is left untouched if an error is returned
func (g *Game) AcceptRoundOutcome(roundIndex int, outcome RoundOutcome) error {
	if err := g.CheckSubmission(roundIndex); err != nil {
		return err
	}

	g.outcomes = append(g.outcomes, outcome.clone())
	g.draft = nil
	return nil
}

// Ranking returns the ranking after the last round played
func (g *Game) Ranking() Ranking {
	scores := g.RoundScores()
	if len(scores) == 0 {
		return InitialRanking(g.players)
	}

	return scores[len(scores)-1].Ranking
}

// RoundScores returns the scores after each round played
func (g *Game) RoundScores() []RoundScore {
	return ComputeRoundScores(g.players, g.outcomes)
}

// Draft returns the draft of the next round, or nil
func (g *Game) Draft() Draft {
	return g.draft
}

// SaveDraft keeps the draft of the next round
func (g *Game) SaveDraft(d Draft) error {
	if g.IsTerminated() {
		return ErrNoMoreNextRound
	}

	if next := g.NextRoundIndex(); d.Round() != next {
		return &OutOfSyncRoundSubmissionError{Expected: next, Received: d.Round()}
	}

	g.draft = d
	return nil
}

// RestoreDraft sets a stored draft, dropping it if it no longer matches the next round
func (g *Game) RestoreDraft(d Draft) {
	if d == nil || g.IsTerminated() || d.Round() != g.NextRoundIndex() {
		g.draft = nil
		return
	}

	g.draft = d
}

// ClearDraft removes the draft
func (g *Game) ClearDraft() {
	g.draft = nil
}

type gameJSON struct {
	ID             string    `json:"id"`
	OwnerID        int64     `json:"ownerId"`
	Created        time.Time `json:"created"`
	Players        []string  `json:"playersInOrder"`
	TotalRounds    int       `json:"totalRounds"`
	PlayedRounds   int       `json:"playedRounds"`
	NextRoundIndex int       `json:"nextRoundIndex"`
	IsTerminated   bool      `json:"isTerminated"`
}

// MarshalJSON returns a summary of the game
func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameJSON{
		ID:             g.id,
		OwnerID:        g.ownerID,
		Created:        g.created,
		Players:        g.players,
		TotalRounds:    g.plan.TotalRounds,
		PlayedRounds:   len(g.outcomes),
		NextRoundIndex: g.NextRoundIndex(),
		IsTerminated:   g.IsTerminated(),
	})
}
