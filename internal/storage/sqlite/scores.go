package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

// ListTeamScores returns a team's scores ordered by hole number.
func (s *SQLiteStore) ListTeamScores(ctx context.Context, teamID string) ([]*models.TeamScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_id, hole_number, strokes, created_at
		 FROM team_scores WHERE team_id = ? ORDER BY hole_number`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list team scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.TeamScore
	for rows.Next() {
		score := &models.TeamScore{}
		if err := rows.Scan(&score.ID, &score.TeamID, &score.HoleNumber, &score.Strokes, &score.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team scores: %w", err)
	}

	return scores, nil
}

// LastScore returns the score on the team's highest-numbered scored hole.
func (s *SQLiteStore) LastScore(ctx context.Context, teamID string) (*models.TeamScore, error) {
	score := &models.TeamScore{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, hole_number, strokes, created_at
		 FROM team_scores WHERE team_id = ? ORDER BY hole_number DESC LIMIT 1`,
		teamID,
	).Scan(&score.ID, &score.TeamID, &score.HoleNumber, &score.Strokes, &score.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %s has no scores: %w", teamID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last score: %w", err)
	}
	return score, nil
}

// RecordScore writes one hole's score and updates the team to match.
// The total is recomputed from the stored rows so it never drifts from
// the per-hole scores.
func (s *SQLiteStore) RecordScore(ctx context.Context, w storage.ScoreWrite) (*models.Team, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	team, err := getTeam(ctx, tx, w.TeamID)
	if err != nil {
		return nil, err
	}
	if team.CurrentHole != w.ExpectedCurrentHole {
		return nil, fmt.Errorf("team %s is on hole %d, expected %d: %w",
			w.TeamID, team.CurrentHole, w.ExpectedCurrentHole, storage.ErrStaleTeam)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO team_scores (id, team_id, hole_number, strokes, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(team_id, hole_number) DO UPDATE SET strokes = excluded.strokes`,
		uuid.New().String(), w.TeamID, w.Hole, w.Strokes, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert team score: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE teams SET
		     total_score = (SELECT COALESCE(SUM(strokes), 0) FROM team_scores WHERE team_id = ?),
		     current_hole = ?,
		     fix_mode = 0
		 WHERE id = ?`,
		w.TeamID, w.NextCurrentHole, w.TeamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	team, err = getTeam(ctx, tx, w.TeamID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return team, nil
}
