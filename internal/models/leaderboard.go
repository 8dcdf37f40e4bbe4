package models

// LeaderboardEntry is one ranked row of a tournament leaderboard.
type LeaderboardEntry struct {
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name"`
	TotalScore  int    `json:"total_score"`
	CurrentHole int    `json:"current_hole"`

	// HolesPlayed is the number of holes with a recorded score.
	HolesPlayed int `json:"holes_played"`

	// ToPar is the sum of (strokes - par) over the scored holes.
	ToPar int `json:"to_par"`

	// Position is the rank by total strokes, ties broken by progress.
	// Tied teams share a position.
	Position int `json:"position"`

	// Scores maps hole number (as a string, for JSON objects) to strokes.
	Scores map[string]int `json:"scores"`
}
