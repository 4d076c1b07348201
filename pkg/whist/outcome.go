package whist

import "fmt"

// PlayerOutcome is what a player called and how many tricks they won
type PlayerOutcome struct {
	Call   int `json:"call"`
	Result int `json:"result"`
}

// Delta is the distance between the call and the result
func (p PlayerOutcome) Delta() int {
	if p.Result > p.Call {
		return p.Result - p.Call
	}

	return p.Call - p.Result
}

// RoundOutcome maps a player name to their outcome for a single round
type RoundOutcome map[string]PlayerOutcome

func (r RoundOutcome) clone() RoundOutcome {
	c := make(RoundOutcome, len(r))
	for player, outcome := range r {
		c[player] = outcome
	}

	return c
}

// ValidateOutcome checks the outcome against the rules of the round
// The engine does not call this itself; it is up to the caller to check an outcome before submitting it
func (r RoundInfo) ValidateOutcome(outcome RoundOutcome) error {
	if len(outcome) != len(r.PlayersInRoundOrder) {
		return &InvalidOutcomeError{
			Reason: fmt.Sprintf("expected %d players, got %d", len(r.PlayersInRoundOrder), len(outcome)),
		}
	}

	totalCalls := 0
	totalResults := 0
	for i, player := range r.PlayersInRoundOrder {
		po, ok := outcome[player]
		if !ok {
			return &InvalidOutcomeError{Player: player, Reason: "missing outcome"}
		}

		if po.Call < 0 || po.Result < 0 {
			return &InvalidOutcomeError{Player: player, Reason: "call and result must not be negative"}
		}

		if po.Call > r.TotalCardsPerPlayer {
			return &InvalidOutcomeError{
				Player: player,
				Reason: fmt.Sprintf("call must be between 0 and %d", r.TotalCardsPerPlayer),
			}
		}

		totalCalls += po.Call
		totalResults += po.Result

		// the last player may not make the calls add up to the number of cards
		if i == len(r.PlayersInRoundOrder)-1 && totalCalls == r.TotalCardsPerPlayer {
			return &InvalidOutcomeError{
				Player: player,
				Reason: fmt.Sprintf("call must be different from %d", po.Call),
			}
		}
	}

	if totalResults != r.TotalCardsPerPlayer {
		return &InvalidOutcomeError{
			Reason: fmt.Sprintf("results must add up to %d, got %d", r.TotalCardsPerPlayer, totalResults),
		}
	}

	return nil
}
