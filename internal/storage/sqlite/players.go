package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

// GetPlayerByPhone retrieves a player by phone number.
func (s *SQLiteStore) GetPlayerByPhone(ctx context.Context, phone string) (*models.Player, error) {
	player := &models.Player{}
	var teamID sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, phone_number, name, team_id, created_at FROM players WHERE phone_number = ?",
		phone,
	).Scan(&player.ID, &player.PhoneNumber, &player.Name, &teamID, &player.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s: %w", phone, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	player.TeamID = teamID.String
	return player, nil
}

// CreatePlayer inserts a player unless the phone number is already known,
// then loads the stored record into player.
func (s *SQLiteStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	if player.ID == "" {
		player.ID = uuid.New().String()
	}
	if player.CreatedAt == 0 {
		player.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, phone_number, name, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(phone_number) DO NOTHING`,
		player.ID, player.PhoneNumber, player.Name, player.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}

	stored, err := s.GetPlayerByPhone(ctx, player.PhoneNumber)
	if err != nil {
		return err
	}
	*player = *stored
	return nil
}

// SetPlayerTeam links a player to a team.
func (s *SQLiteStore) SetPlayerTeam(ctx context.Context, phone, teamID string) error {
	var team any
	if teamID != "" {
		team = teamID
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE players SET team_id = ? WHERE phone_number = ?",
		team, phone,
	)
	if err != nil {
		return fmt.Errorf("failed to set player team: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("player %s: %w", phone, storage.ErrNotFound)
	}
	return nil
}
