package broadcast

// Event types carried in the "type" field of every broadcast payload.
const (
	EventConnected         = "connected"
	EventPing              = "ping"
	EventLeaderboardUpdate = "leaderboard_update"
	EventTeamScoreUpdate   = "team_score_update"
	EventChatUpdate        = "chat_update"
)

// ConnectedEvent is the first event every subscriber receives.
type ConnectedEvent struct {
	Type          string `json:"type"`
	TournamentKey string `json:"tournament_key"`
	Topic         Topic  `json:"topic"`
}

// PingEvent keeps idle connections open through proxies.
type PingEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}
