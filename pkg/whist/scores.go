package whist

// PlayerRoundDetails is a line of the detailed score sheet
type PlayerRoundDetails struct {
	Call   int `json:"call"`
	Result int `json:"result"`
	Delta  int `json:"delta"`
	PlayerScore
}

// RoundDetails is a completed round on the detailed score sheet
type RoundDetails struct {
	Index               int                           `json:"index"`
	TotalCardsPerPlayer int                           `json:"totalCardsPerPlayer"`
	Direction           Direction                     `json:"direction"`
	Dealer              string                        `json:"dealer"`
	Ranking             Ranking                       `json:"ranking"`
	Results             map[string]PlayerRoundDetails `json:"results"`
}

// Scores is the detailed score sheet of a game
type Scores struct {
	Players []string       `json:"players"`
	IsFinal bool           `json:"isFinal"`
	Rounds  []RoundDetails `json:"rounds"`
}

// Scores returns the score sheet of the rounds played so far
func (g *Game) Scores() *Scores {
	roundScores := g.RoundScores()
	rounds := make([]RoundDetails, len(roundScores))

	for i, score := range roundScores {
		info := g.rounds[i]
		outcome := g.outcomes[i]

		results := make(map[string]PlayerRoundDetails, len(g.players))
		for _, player := range g.players {
			po := outcome[player]
			results[player] = PlayerRoundDetails{
				Call:        po.Call,
				Result:      po.Result,
				Delta:       po.Delta(),
				PlayerScore: score.Results[player],
			}
		}

		rounds[i] = RoundDetails{
			Index:               info.Index,
			TotalCardsPerPlayer: info.TotalCardsPerPlayer,
			Direction:           info.Direction,
			Dealer:              info.Dealer,
			Ranking:             score.Ranking,
			Results:             results,
		}
	}

	return &Scores{
		Players: g.Players(),
		IsFinal: g.IsTerminated(),
		Rounds:  rounds,
	}
}
