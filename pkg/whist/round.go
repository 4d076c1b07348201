package whist

import (
	"fmt"
)

// MaxCards is the number of cards in the deck
const MaxCards = 52

// Direction is the phase of the game a round belongs to
type Direction int

// Direction constants
const (
	// Ascending rounds deal one more card than the previous round
	Ascending Direction = iota
	// NoTrump is the only no-trump round of the game
	NoTrump
	// NoTrumpFirstOfTwo is the first of two no-trump rounds
	NoTrumpFirstOfTwo
	// NoTrumpSecondOfTwo is the second of two no-trump rounds
	NoTrumpSecondOfTwo
	// Descending rounds deal one less card than the previous round
	Descending
)

var directionNames = []string{"asc", "no-trump", "no-trump-1", "no-trump-2", "desc"}

func (d Direction) String() string {
	if d < Ascending || d > Descending {
		return fmt.Sprintf("Direction(%d)", int(d))
	}

	return directionNames[d]
}

// MarshalText encodes the direction as its short name
func (d Direction) MarshalText() ([]byte, error) {
	if d < Ascending || d > Descending {
		return nil, fmt.Errorf("unknown direction: %d", int(d))
	}

	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes a short name
func (d *Direction) UnmarshalText(b []byte) error {
	for i, name := range directionNames {
		if name == string(b) {
			*d = Direction(i)
			return nil
		}
	}

	return fmt.Errorf("unknown direction: %q", string(b))
}

// IsNoTrump returns true for the rounds played without trump
func (d Direction) IsNoTrump() bool {
	return d == NoTrump || d == NoTrumpFirstOfTwo || d == NoTrumpSecondOfTwo
}

// Plan is the card distribution of a game, which only depends on the number of players
type Plan struct {
	TotalPlayers int
	// TrumpTotalCards is the highest number of cards dealt in a trump round
	TrumpTotalCards int
	// NoTrumpMaxTotalCards is the number of cards dealt in the no-trump rounds
	NoTrumpMaxTotalCards int
	// NoTrumpTotalRounds is either 1 or 2
	NoTrumpTotalRounds int
	TotalRounds        int
}

// NewPlan returns the plan for a game of totalPlayers
func NewPlan(totalPlayers int) (Plan, error) {
	if totalPlayers < 2 {
		return Plan{}, ErrMinPlayers
	}

	if totalPlayers > MaxCards {
		return Plan{}, ErrMaxPlayers
	}

	// a full deal is kept for the no-trump rounds when the deck splits evenly
	evenDeal := MaxCards%totalPlayers == 0

	trumpTotalCards := MaxCards / totalPlayers
	if evenDeal {
		trumpTotalCards--
	}

	noTrumpMaxTotalCards := trumpTotalCards
	if evenDeal {
		noTrumpMaxTotalCards++
	}

	noTrumpTotalRounds := 1
	if (trumpTotalCards*2+1)%totalPlayers == 1 {
		noTrumpTotalRounds = 2
	}

	return Plan{
		TotalPlayers:         totalPlayers,
		TrumpTotalCards:      trumpTotalCards,
		NoTrumpMaxTotalCards: noTrumpMaxTotalCards,
		NoTrumpTotalRounds:   noTrumpTotalRounds,
		TotalRounds:          trumpTotalCards*2 + noTrumpTotalRounds,
	}, nil
}

// RoundAt returns the number of cards per player and the direction of the round at the zero-based position
func (p Plan) RoundAt(position int) (totalCardsPerPlayer int, direction Direction) {
	switch {
	case position < p.TrumpTotalCards:
		return position + 1, Ascending
	case position == p.TrumpTotalCards:
		if p.NoTrumpTotalRounds == 1 {
			return p.NoTrumpMaxTotalCards, NoTrump
		}

		return p.NoTrumpMaxTotalCards, NoTrumpFirstOfTwo
	case position == p.TrumpTotalCards+1 && p.NoTrumpTotalRounds == 2:
		return p.NoTrumpMaxTotalCards, NoTrumpSecondOfTwo
	default:
		return p.TotalRounds - position, Descending
	}
}

// RoundInfo describes a round of the game
type RoundInfo struct {
	// Index is 1-based
	Index               int       `json:"index"`
	TotalCardsPerPlayer int       `json:"totalCardsPerPlayer"`
	Direction           Direction `json:"direction"`
	Dealer              string    `json:"dealer"`
	// PlayersInRoundOrder starts with the player after the dealer and ends with the dealer
	PlayersInRoundOrder []string `json:"playersInRoundOrder"`
}

// GenerateRoundPlan returns every round of a game played by playersInOrder
func GenerateRoundPlan(playersInOrder []string) ([]RoundInfo, error) {
	plan, err := NewPlan(len(playersInOrder))
	if err != nil {
		return nil, err
	}

	return plan.rounds(playersInOrder), nil
}

func (p Plan) rounds(playersInOrder []string) []RoundInfo {
	rounds := make([]RoundInfo, p.TotalRounds)
	for position := range rounds {
		cards, direction := p.RoundAt(position)
		dealerIndex := position % p.TotalPlayers

		order := make([]string, 0, p.TotalPlayers)
		order = append(order, playersInOrder[dealerIndex+1:]...)
		order = append(order, playersInOrder[:dealerIndex+1]...)

		rounds[position] = RoundInfo{
			Index:               position + 1,
			TotalCardsPerPlayer: cards,
			Direction:           direction,
			Dealer:              playersInOrder[dealerIndex],
			PlayersInRoundOrder: order,
		}
	}

	return rounds
}
