package game

// Scoreboard holds per-round integer scores for each player. Running totals
// derive by summation, matching original_source/src/lib.rs's Scoreboard.
type Scoreboard struct {
	scores [][]int32 // scores[seat] = per-round deltas, in GameState.Players order
}

// NewScoreboard returns an empty scoreboard for playerCount players.
func NewScoreboard(playerCount int) *Scoreboard {
	return &Scoreboard{scores: make([][]int32, playerCount)}
}

// AddRound appends one round's score for every player.
func (s *Scoreboard) AddRound(perPlayer []int32) {
	for i, delta := range perPlayer {
		s.scores[i] = append(s.scores[i], delta)
	}
}

// Totals returns the running total for every player.
func (s *Scoreboard) Totals() []int32 {
	totals := make([]int32, len(s.scores))
	for i, rounds := range s.scores {
		var sum int32
		for _, r := range rounds {
			sum += r
		}
		totals[i] = sum
	}
	return totals
}
