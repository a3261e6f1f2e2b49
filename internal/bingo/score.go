package bingo

type TeamScore struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

type Scores struct {
	Solo  *int        `json:"solo,omitempty"`
	Teams []TeamScore `json:"teams,omitempty"`
}

// SoloScore sums the values of completed tiles. Triggered mines already
// carry their negative value.
func (b *Board) SoloScore() int {
	score := 0
	for i := range b.Tiles {
		if b.Tiles[i].Completed {
			score += b.Tiles[i].Task.Points()
		}
	}
	return score
}

// TeamScores sums claimed tile values per team and awards the first claim
// bonus of every non-mine tile to its first claimant.
func (b *Board) TeamScores() map[string]int {
	scores := make(map[string]int, len(b.Teams))
	for _, team := range b.Teams {
		scores[team.Name] = 0
	}
	for i := range b.Tiles {
		t := &b.Tiles[i]
		for _, name := range t.ClaimedBy {
			scores[name] += t.Task.Points()
		}
		if first, ok := t.FirstClaimer(); ok && b.FirstClaimBonus > 0 && !t.IsMine {
			scores[first] += b.FirstClaimBonus
		}
	}
	return scores
}

func (b *Board) Scores() Scores {
	if !b.Mode.Teams() {
		solo := b.SoloScore()
		return Scores{Solo: &solo}
	}
	byName := b.TeamScores()
	teams := make([]TeamScore, 0, len(b.Teams))
	for _, team := range b.Teams {
		teams = append(teams, TeamScore{
			Name:  team.Name,
			Color: team.Color,
			Score: byName[team.Name],
		})
	}
	return Scores{Teams: teams}
}

// MinesLeft counts the mines not yet triggered in the scope.
func (b *Board) MinesLeft(s Scope) int {
	hit := 0
	for i := range b.Tiles {
		if b.Tiles[i].IsMine && b.CompletedIn(i, s) {
			hit++
		}
	}
	return b.MineCount - hit
}
