// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/rrazong/leaderz-backend/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with a uniqueness rule,
	// such as a second live team with the same name.
	ErrConflict = errors.New("conflict")

	// ErrTeamHasScores is returned when deleting a team that has scores.
	ErrTeamHasScores = errors.New("team has recorded scores")

	// ErrStaleTeam is returned by RecordScore when the team's current hole
	// no longer matches the caller's expectation.
	ErrStaleTeam = errors.New("team changed concurrently")
)

// ScoreWrite describes one score commit for RecordScore.
type ScoreWrite struct {
	TeamID  string
	Hole    int
	Strokes int

	// ExpectedCurrentHole guards the write: it only applies if the team is
	// still on this hole.
	ExpectedCurrentHole int

	// NextCurrentHole is the team's current hole after the write.
	NextCurrentHole int
}

// Store defines the data-access operations the tournament server needs.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the session engine or the API layer.
// Every method is atomic on its own.
type Store interface {
	PlayerStore
	TeamStore
	ScoreStore
	TournamentStore
	ChatStore

	// GetLeaderboard ranks the tournament's live teams by total strokes,
	// ties broken by current hole (further along ranks higher).
	GetLeaderboard(ctx context.Context, tournamentID string) ([]*models.LeaderboardEntry, error)

	// GetTeamPosition returns the team's leaderboard position.
	GetTeamPosition(ctx context.Context, tournamentID, teamID string) (int, error)

	// Ping checks the connection to the backing database.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

type PlayerStore interface {
	// GetPlayerByPhone returns ErrNotFound for an unseen number.
	GetPlayerByPhone(ctx context.Context, phone string) (*models.Player, error)

	// CreatePlayer persists a new player. Creating a phone number that
	// already exists is not an error; the existing record is loaded into
	// player.
	CreatePlayer(ctx context.Context, player *models.Player) error

	// SetPlayerTeam links the player to teamID.
	SetPlayerTeam(ctx context.Context, phone, teamID string) error
}

type TeamStore interface {
	// CreateTeam persists a new team starting on hole 1. Returns
	// ErrConflict if a live team of the same name exists.
	CreateTeam(ctx context.Context, team *models.Team) error

	// GetTeam returns a live team by ID, or ErrNotFound.
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)

	// GetTeamByName finds a live team by name, ignoring case.
	GetTeamByName(ctx context.Context, tournamentID, name string) (*models.Team, error)

	// DeleteTeam soft-deletes a team with no scores and unlinks its players.
	// Returns ErrTeamHasScores if any score exists.
	DeleteTeam(ctx context.Context, teamID string) error

	// SetFixMode sets or clears the team's pending-correction flag.
	SetFixMode(ctx context.Context, teamID string, on bool) error
}

type ScoreStore interface {
	// ListTeamScores returns the team's scores ordered by hole.
	ListTeamScores(ctx context.Context, teamID string) ([]*models.TeamScore, error)

	// LastScore returns the score of the highest-numbered scored hole, or
	// ErrNotFound if the team has none.
	LastScore(ctx context.Context, teamID string) (*models.TeamScore, error)

	// RecordScore upserts the hole's score, recomputes the total from the
	// stored scores, moves the current hole, and clears fix mode, all in one
	// transaction. Returns ErrStaleTeam if the expected current hole no
	// longer matches.
	RecordScore(ctx context.Context, w ScoreWrite) (*models.Team, error)
}

type TournamentStore interface {
	// CreateCourse persists a course and its holes.
	CreateCourse(ctx context.Context, course *models.Course) error

	// GetCourseHoles returns the course's holes ordered by number.
	GetCourseHoles(ctx context.Context, courseID string) ([]models.Hole, error)

	// CreateTournament persists a tournament and assigns its number and key.
	CreateTournament(ctx context.Context, t *models.Tournament) error

	// GetTournament returns a tournament by internal ID.
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)

	// GetTournamentByKey resolves a public tournament key.
	GetTournamentByKey(ctx context.Context, key string) (*models.Tournament, error)

	// GetActiveTournament returns the most recently created active tournament.
	GetActiveTournament(ctx context.Context) (*models.Tournament, error)

	ListTournaments(ctx context.Context) ([]*models.Tournament, error)

	// UpdateTournament saves the tournament's name and status.
	UpdateTournament(ctx context.Context, t *models.Tournament) error

	// DeleteTournament removes a tournament with its teams, scores and chat.
	DeleteTournament(ctx context.Context, id string) error
}

type ChatStore interface {
	// AddChatMessage appends a message and fills in its ID, timestamp and
	// team name.
	AddChatMessage(ctx context.Context, msg *models.ChatMessage) error

	// ListChatMessages returns one page of the tournament's chat, newest
	// first. Pages start at 1.
	ListChatMessages(ctx context.Context, tournamentID string, page, limit int) (*models.ChatPage, error)
}
