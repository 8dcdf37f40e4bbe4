package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

const teamColumns = "id, tournament_id, name, current_hole, total_score, fix_mode, is_deleted, created_at"

func scanTeam(row *sql.Row) (*models.Team, error) {
	team := &models.Team{}
	err := row.Scan(&team.ID, &team.TournamentID, &team.Name, &team.CurrentHole,
		&team.TotalScore, &team.FixMode, &team.Deleted, &team.CreatedAt)
	if err != nil {
		return nil, err
	}
	return team, nil
}

// CreateTeam persists a new team on hole 1 with no strokes.
func (s *SQLiteStore) CreateTeam(ctx context.Context, team *models.Team) error {
	team.Name = strings.TrimSpace(team.Name)
	if team.ID == "" {
		team.ID = uuid.New().String()
	}
	if team.CreatedAt == 0 {
		team.CreatedAt = now()
	}
	team.CurrentHole = 1
	team.TotalScore = 0
	team.FixMode = false
	team.Deleted = false

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (id, tournament_id, name, current_hole, total_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		team.ID, team.TournamentID, team.Name, team.CurrentHole, team.TotalScore, team.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("team %q: %w", team.Name, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// GetTeam retrieves a live team by ID.
func (s *SQLiteStore) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	return getTeam(ctx, s.db, teamID)
}

func getTeam(ctx context.Context, q queryer, teamID string) (*models.Team, error) {
	team, err := scanTeam(q.QueryRowContext(ctx,
		"SELECT "+teamColumns+" FROM teams WHERE id = ? AND is_deleted = 0",
		teamID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %s: %w", teamID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetTeamByName finds a live team in the tournament, ignoring case and
// surrounding whitespace.
func (s *SQLiteStore) GetTeamByName(ctx context.Context, tournamentID, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	team, err := scanTeam(s.db.QueryRowContext(ctx,
		"SELECT "+teamColumns+` FROM teams
		 WHERE tournament_id = ? AND name = ? COLLATE NOCASE AND is_deleted = 0`,
		tournamentID, name,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %q: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by name: %w", err)
	}
	return team, nil
}

// DeleteTeam soft-deletes a team that has no scores and unlinks every
// player on it.
func (s *SQLiteStore) DeleteTeam(ctx context.Context, teamID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getTeam(ctx, tx, teamID); err != nil {
		return err
	}

	var scores int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM team_scores WHERE team_id = ?", teamID,
	).Scan(&scores)
	if err != nil {
		return fmt.Errorf("failed to count team scores: %w", err)
	}
	if scores > 0 {
		return storage.ErrTeamHasScores
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE teams SET is_deleted = 1, fix_mode = 0 WHERE id = ?", teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE players SET team_id = NULL WHERE team_id = ?", teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink players: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetFixMode sets or clears the team's pending-correction flag.
func (s *SQLiteStore) SetFixMode(ctx context.Context, teamID string, on bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE teams SET fix_mode = ? WHERE id = ? AND is_deleted = 0",
		on, teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to set fix mode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("team %s: %w", teamID, storage.ErrNotFound)
	}
	return nil
}
