package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

// GetLeaderboard ranks the tournament's live teams. Fewer strokes rank
// higher; among equal totals the team further along the course ranks
// higher. Teams equal on both share a position.
func (s *SQLiteStore) GetLeaderboard(ctx context.Context, tournamentID string) ([]*models.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, total_score, current_hole,
		        RANK() OVER (ORDER BY total_score ASC, current_hole DESC) AS position
		 FROM teams
		 WHERE tournament_id = ? AND is_deleted = 0
		 ORDER BY position, name COLLATE NOCASE`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*models.LeaderboardEntry{}
	byTeam := make(map[string]*models.LeaderboardEntry)
	for rows.Next() {
		entry := &models.LeaderboardEntry{Scores: make(map[string]int)}
		if err := rows.Scan(&entry.TeamID, &entry.TeamName, &entry.TotalScore, &entry.CurrentHole, &entry.Position); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
		byTeam[entry.TeamID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	rows.Close()

	if len(entries) == 0 {
		return entries, nil
	}

	scoreRows, err := s.db.QueryContext(ctx,
		`SELECT s.team_id, s.hole_number, s.strokes, COALESCE(h.par, 0)
		 FROM team_scores s
		 JOIN teams t ON t.id = s.team_id
		 JOIN tournaments tr ON tr.id = t.tournament_id
		 LEFT JOIN course_holes h ON h.course_id = tr.course_id AND h.hole_number = s.hole_number
		 WHERE t.tournament_id = ? AND t.is_deleted = 0`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard scores: %w", err)
	}
	defer scoreRows.Close()

	for scoreRows.Next() {
		var teamID string
		var hole, strokes, par int
		if err := scoreRows.Scan(&teamID, &hole, &strokes, &par); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard score: %w", err)
		}
		entry, ok := byTeam[teamID]
		if !ok {
			continue
		}
		entry.Scores[strconv.Itoa(hole)] = strokes
		entry.HolesPlayed++
		if par > 0 {
			entry.ToPar += strokes - par
		}
	}
	if err := scoreRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard scores: %w", err)
	}

	return entries, nil
}

// GetTeamPosition returns a team's current leaderboard position.
func (s *SQLiteStore) GetTeamPosition(ctx context.Context, tournamentID, teamID string) (int, error) {
	var position int
	err := s.db.QueryRowContext(ctx,
		`SELECT position FROM (
		     SELECT id, RANK() OVER (ORDER BY total_score ASC, current_hole DESC) AS position
		     FROM teams
		     WHERE tournament_id = ? AND is_deleted = 0
		 ) WHERE id = ?`,
		tournamentID, teamID,
	).Scan(&position)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("team %s: %w", teamID, storage.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get team position: %w", err)
	}
	return position, nil
}
