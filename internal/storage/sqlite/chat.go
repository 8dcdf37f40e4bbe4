package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rrazong/leaderz-backend/internal/models"
)

const (
	defaultChatPageSize = 50
	maxChatPageSize     = 100
)

// AddChatMessage appends a message to the tournament chat.
func (s *SQLiteStore) AddChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, tournament_id, team_id, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.TournamentID, msg.TeamID, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT name FROM teams WHERE id = ?", msg.TeamID,
	).Scan(&msg.TeamName)
	if err != nil {
		return fmt.Errorf("failed to get chat team name: %w", err)
	}
	return nil
}

// ListChatMessages returns one page of the tournament chat, newest first.
// Out-of-range page and limit values are clamped.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, tournamentID string, page, limit int) (*models.ChatPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultChatPageSize
	}
	if limit > maxChatPageSize {
		limit = maxChatPageSize
	}

	result := &models.ChatPage{
		Messages: []*models.ChatMessage{},
		Page:     page,
		Limit:    limit,
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_messages WHERE tournament_id = ?", tournamentID,
	).Scan(&result.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to count chat messages: %w", err)
	}
	result.TotalPages = (result.Total + limit - 1) / limit

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.tournament_id, c.team_id, c.message, c.created_at, t.name
		 FROM chat_messages c
		 JOIN teams t ON t.id = c.team_id
		 WHERE c.tournament_id = ?
		 ORDER BY c.created_at DESC, c.rowid DESC
		 LIMIT ? OFFSET ?`,
		tournamentID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg := &models.ChatMessage{}
		if err := rows.Scan(&msg.ID, &msg.TournamentID, &msg.TeamID, &msg.Message, &msg.CreatedAt, &msg.TeamName); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		result.Messages = append(result.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return result, nil
}
