package whist

// ValidatePlayerList ensures a game can be played by the players
func ValidatePlayerList(players []string) error {
	if len(players) < 2 {
		return ErrMinPlayers
	}

	if len(players) > MaxCards {
		return ErrMaxPlayers
	}

	if duplicates := duplicatePlayers(players); len(duplicates) > 0 {
		return &DuplicatePlayersError{Duplicates: duplicates}
	}

	return nil
}

// duplicatePlayers returns each repeated name once, in the order the repeat was found
func duplicatePlayers(players []string) []string {
	seen := make(map[string]bool, len(players))
	reported := make(map[string]bool)
	var duplicates []string

	for _, player := range players {
		if !seen[player] {
			seen[player] = true
			continue
		}

		if !reported[player] {
			reported[player] = true
			duplicates = append(duplicates, player)
		}
	}

	return duplicates
}
