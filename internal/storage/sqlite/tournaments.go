package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
	"github.com/rrazong/leaderz-backend/internal/tournamentkey"
)

const tournamentColumns = "number, id, name, course_id, status, created_at, updated_at"

// CreateCourse persists a course with its holes.
func (s *SQLiteStore) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	if course.CreatedAt == 0 {
		course.CreatedAt = now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO courses (id, name, location, created_at) VALUES (?, ?, ?, ?)",
		course.ID, course.Name, course.Location, course.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	for _, hole := range course.Holes {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO course_holes (course_id, hole_number, par) VALUES (?, ?, ?)",
			course.ID, hole.HoleNumber, hole.Par,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("hole %d listed twice: %w", hole.HoleNumber, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert course hole: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCourseHoles returns the holes of a course ordered by number.
func (s *SQLiteStore) GetCourseHoles(ctx context.Context, courseID string) ([]models.Hole, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT hole_number, par FROM course_holes WHERE course_id = ? ORDER BY hole_number",
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get course holes: %w", err)
	}
	defer rows.Close()

	var holes []models.Hole
	for rows.Next() {
		var hole models.Hole
		if err := rows.Scan(&hole.HoleNumber, &hole.Par); err != nil {
			return nil, fmt.Errorf("failed to scan course hole: %w", err)
		}
		holes = append(holes, hole)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course holes: %w", err)
	}

	if len(holes) == 0 {
		return nil, fmt.Errorf("course %s: %w", courseID, storage.ErrNotFound)
	}
	return holes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var status string
	err := row.Scan(&t.Number, &t.ID, &t.Name, &t.CourseID, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = models.TournamentStatus(status)
	t.Key = tournamentkey.Encode(uint64(t.Number))
	return t, nil
}

// CreateTournament persists a tournament. The database assigns its
// sequential number, from which the public key is derived.
func (s *SQLiteStore) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.TournamentActive
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = now()
	}
	t.UpdatedAt = t.CreatedAt

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tournaments (id, name, course_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.CourseID, string(t.Status), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}

	number, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get tournament number: %w", err)
	}
	t.Number = number
	t.Key = tournamentkey.Encode(uint64(number))
	return nil
}

// GetTournament retrieves a tournament by its internal ID.
func (s *SQLiteStore) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := scanTournament(s.db.QueryRowContext(ctx,
		"SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tournament %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return t, nil
}

// GetTournamentByKey decodes a public key and loads the tournament it
// names. Malformed keys are reported as not found.
func (s *SQLiteStore) GetTournamentByKey(ctx context.Context, key string) (*models.Tournament, error) {
	number, err := tournamentkey.Decode(key)
	if err != nil {
		return nil, fmt.Errorf("tournament key %q: %w", key, storage.ErrNotFound)
	}

	t, err := scanTournament(s.db.QueryRowContext(ctx,
		"SELECT "+tournamentColumns+" FROM tournaments WHERE number = ?", int64(number),
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tournament key %q: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament by key: %w", err)
	}
	return t, nil
}

// GetActiveTournament returns the newest active tournament.
func (s *SQLiteStore) GetActiveTournament(ctx context.Context) (*models.Tournament, error) {
	t, err := scanTournament(s.db.QueryRowContext(ctx,
		"SELECT "+tournamentColumns+" FROM tournaments WHERE status = ? ORDER BY number DESC LIMIT 1",
		string(models.TournamentActive),
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("active tournament: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active tournament: %w", err)
	}
	return t, nil
}

// ListTournaments returns all tournaments, newest first.
func (s *SQLiteStore) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+tournamentColumns+" FROM tournaments ORDER BY number DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", err)
	}

	return tournaments, nil
}

// UpdateTournament saves a tournament's name and status.
func (s *SQLiteStore) UpdateTournament(ctx context.Context, t *models.Tournament) error {
	t.UpdatedAt = now()

	result, err := s.db.ExecContext(ctx,
		"UPDATE tournaments SET name = ?, status = ?, updated_at = ? WHERE id = ?",
		t.Name, string(t.Status), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tournament %s: %w", t.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteTournament removes a tournament. Its teams, scores and chat go with
// it through cascading foreign keys; players stay but lose their team.
func (s *SQLiteStore) DeleteTournament(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tournaments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tournament %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
