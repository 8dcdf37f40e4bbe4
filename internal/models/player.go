package models

// Player is a phone number that has messaged the tournament line.
// Players are created on first contact and never deleted.
type Player struct {
	// ID is the unique identifier for the player (UUID format).
	ID string `json:"id"`

	// PhoneNumber identifies the sender, without any channel prefix.
	PhoneNumber string `json:"phone_number"`

	// Name is an optional display name.
	Name string `json:"name,omitempty"`

	// TeamID links the player to a team. Empty until the player joins one,
	// and cleared again when that team is deleted.
	TeamID string `json:"team_id,omitempty"`

	// CreatedAt is the Unix timestamp when the player first messaged.
	CreatedAt int64 `json:"created_at"`
}

// HasTeam reports whether the player is linked to a team.
func (p *Player) HasTeam() bool {
	return p != nil && p.TeamID != ""
}
