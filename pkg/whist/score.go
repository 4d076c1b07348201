package whist

import "sort"

const (
	baseWinPoints  = 20
	baseLosePoints = -20
	winItemPoints  = 10
	loseItemPoints = 10
)

// Points returns the points earned by a player for a single round
func Points(call, result int) int {
	delta := PlayerOutcome{Call: call, Result: result}.Delta()
	if delta == 0 {
		return baseWinPoints + call*winItemPoints
	}

	return baseLosePoints - (delta-1)*loseItemPoints
}

// PlayerScore contains the points of a player for a round and the totals up to that round
type PlayerScore struct {
	Points               int `json:"points"`
	CumulativePoints     int `json:"cumulativePoints"`
	CumulativeCalls      int `json:"cumulativeCalls"`
	CumulativeWonCalls   int `json:"cumulativeWonCalls"`
	CumulativeWonRounds  int `json:"cumulativeWonRounds"`
	CumulativeLostRounds int `json:"cumulativeLostRounds"`
}

// next folds the outcome of a round into the previous totals
func (p PlayerScore) next(outcome PlayerOutcome) PlayerScore {
	points := Points(outcome.Call, outcome.Result)
	next := PlayerScore{
		Points:               points,
		CumulativePoints:     p.CumulativePoints + points,
		CumulativeCalls:      p.CumulativeCalls + outcome.Call,
		CumulativeWonCalls:   p.CumulativeWonCalls + outcome.Result,
		CumulativeWonRounds:  p.CumulativeWonRounds,
		CumulativeLostRounds: p.CumulativeLostRounds,
	}

	if points > 0 {
		next.CumulativeWonRounds++
	} else {
		next.CumulativeLostRounds++
	}

	return next
}

// RankEntry is a player's place in the ranking
type RankEntry struct {
	Player string `json:"player"`
	// Position is 1-based, tied players share the position of the first of them
	Position           int  `json:"position"`
	IsTiedWithPrevious bool `json:"isTiedWithPrevious"`
	CumulativePoints   int  `json:"cumulativePoints"`
}

// Ranking is ordered from the best player to the worst
type Ranking []RankEntry

// RoundScore is the state of the scores after a round
type RoundScore struct {
	Results map[string]PlayerScore `json:"results"`
	Ranking Ranking                `json:"ranking"`
}

// InitialRanking is the ranking before any round is played
// Every player is first; all but the first player are flagged as tied with the previous one
func InitialRanking(players []string) Ranking {
	ranking := make(Ranking, len(players))
	for i, player := range players {
		ranking[i] = RankEntry{
			Player:             player,
			Position:           1,
			IsTiedWithPrevious: i != 0,
			CumulativePoints:   0,
		}
	}

	return ranking
}

// ComputeRoundScores returns one RoundScore per outcome, in the same order
func ComputeRoundScores(players []string, outcomes []RoundOutcome) []RoundScore {
	scores := make([]RoundScore, 0, len(outcomes))
	previous := make(map[string]PlayerScore, len(players))

	for _, outcome := range outcomes {
		results := make(map[string]PlayerScore, len(players))
		for _, player := range players {
			results[player] = previous[player].next(outcome[player])
		}

		scores = append(scores, RoundScore{
			Results: results,
			Ranking: rank(players, results),
		})

		previous = results
	}

	return scores
}

// rank orders the players by cumulative points
// Equal points keep the order of players, and the first player after a tie takes the position
// matching the number of entries before it
func rank(players []string, results map[string]PlayerScore) Ranking {
	ordered := make([]string, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return results[ordered[i]].CumulativePoints > results[ordered[j]].CumulativePoints
	})

	ranking := make(Ranking, 0, len(ordered))
	for i, player := range ordered {
		entry := RankEntry{
			Player:           player,
			Position:         i + 1,
			CumulativePoints: results[player].CumulativePoints,
		}

		if i > 0 {
			prev := ranking[i-1]
			if prev.CumulativePoints == entry.CumulativePoints {
				entry.Position = prev.Position
				entry.IsTiedWithPrevious = true
			}
		}

		ranking = append(ranking, entry)
	}

	return ranking
}
