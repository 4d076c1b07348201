package scorekeeper

import "whist-server/pkg/whist"

// Notifier is told about the changes made to a game
// Methods are called synchronously after the change is stored and must not block
type Notifier interface {
	RoundAccepted(game *whist.Game, roundIndex int)
	GameTerminated(game *whist.Game)
}
