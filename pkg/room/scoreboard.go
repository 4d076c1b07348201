package room

import "whist-server/pkg/whist"

// Scoreboard is what the clients watching a game are shown
type Scoreboard struct {
	GameID       string           `json:"gameId"`
	Players      []string         `json:"playersInOrder"`
	PlayedRounds int              `json:"playedRounds"`
	TotalRounds  int              `json:"totalRounds"`
	IsTerminated bool             `json:"isTerminated"`
	NextRound    *whist.RoundInfo `json:"nextRound"`
	Ranking      whist.Ranking    `json:"ranking"`
}

// NewScoreboard returns the scoreboard of a game
func NewScoreboard(game *whist.Game) *Scoreboard {
	s := &Scoreboard{
		GameID:       game.ID(),
		Players:      game.Players(),
		PlayedRounds: game.PlayedRounds(),
		TotalRounds:  game.TotalRounds(),
		IsTerminated: game.IsTerminated(),
		Ranking:      game.Ranking(),
	}

	if info, err := game.NextRoundInfo(); err == nil {
		s.NextRound = &info
	}

	return s
}
