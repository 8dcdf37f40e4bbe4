package models

// Team is a group of players sharing one score card within a tournament.
type Team struct {
	// ID is the unique identifier for the team (UUID format).
	ID string `json:"id"`

	// TournamentID is the tournament this team plays in.
	TournamentID string `json:"tournament_id"`

	// Name is unique (case-insensitively) among the tournament's live teams.
	Name string `json:"name"`

	// CurrentHole is the hole the team is expected to report next.
	// Starts at 1 and never moves past the course's last hole.
	CurrentHole int `json:"current_hole"`

	// TotalScore always equals the sum of the team's TeamScore strokes.
	TotalScore int `json:"total_score"`

	// Deleted marks a soft-deleted team. Deleted teams keep their row but
	// free their name and disappear from the leaderboard.
	Deleted bool `json:"-"`

	// FixMode is set while the team owes a replacement score for its most
	// recently scored hole.
	FixMode bool `json:"-"`

	// CreatedAt is the Unix timestamp when the team was created.
	CreatedAt int64 `json:"created_at"`
}

// TeamScore is the stroke count a team recorded for one hole.
// There is at most one per (team, hole); later writes overwrite.
type TeamScore struct {
	ID         string `json:"id"`
	TeamID     string `json:"team_id"`
	HoleNumber int    `json:"hole_number"`
	Strokes    int    `json:"strokes"`
	CreatedAt  int64  `json:"created_at"`
}
