package models

// ChatMessage is a freeform message posted to the leaderboard chat.
// Messages are immutable and ordered by CreatedAt.
type ChatMessage struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	TeamID       string `json:"team_id"`
	Message      string `json:"message"`
	CreatedAt    int64  `json:"created_at"`

	// TeamName is joined in when reading; it is not stored on the message.
	TeamName string `json:"team_name,omitempty"`
}

// ChatPage is one page of chat history, newest first.
type ChatPage struct {
	Messages   []*ChatMessage `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}
