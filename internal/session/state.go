package session

import "github.com/rrazong/leaderz-backend/internal/models"

// State is where a sender stands in the conversation. It is never stored;
// StateOf derives it from the player and team records on every message.
type State int

const (
	// Unregistered senders have never messaged before.
	Unregistered State = iota
	// AwaitingTeam senders have a player record but no team.
	AwaitingTeam
	// Active senders are on a team and report scores.
	Active
	// FixPending senders are on a team that owes a replacement score for
	// its most recently scored hole.
	FixPending
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case AwaitingTeam:
		return "awaiting_team"
	case Active:
		return "active"
	case FixPending:
		return "fix_pending"
	}
	return "unknown"
}

// StateOf derives the conversation state. player is nil for an unseen
// sender; team is nil when the player's team is missing, deleted, or
// belongs to another tournament.
func StateOf(player *models.Player, team *models.Team) State {
	switch {
	case player == nil:
		return Unregistered
	case !player.HasTeam() || team == nil || team.Deleted:
		return AwaitingTeam
	case team.FixMode:
		return FixPending
	default:
		return Active
	}
}
