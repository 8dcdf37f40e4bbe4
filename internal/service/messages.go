package service

import (
	"github.com/rrazong/leaderz-backend/internal/events"
	"github.com/rrazong/leaderz-backend/internal/models"
)

// Tournament is the public view of a tournament. It carries the key, never
// the internal sequence number.
type Tournament struct {
	Key       string                  `json:"tournament_key"`
	Name      string                  `json:"name"`
	Status    models.TournamentStatus `json:"status"`
	CourseID  string                  `json:"golf_course_id"`
	Holes     []models.Hole           `json:"holes,omitempty"`
	CreatedAt int64                   `json:"created_at"`
	UpdatedAt int64                   `json:"updated_at"`
}

func toTournament(t *models.Tournament, holes []models.Hole) *Tournament {
	return &Tournament{
		Key:       t.Key,
		Name:      t.Name,
		Status:    t.Status,
		CourseID:  t.CourseID,
		Holes:     holes,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type GetTournamentRequest struct {
	TournamentKey string `json:"tournament_key"`
}

func (r GetTournamentRequest) TournamentRef() string { return r.TournamentKey }

type GetTournamentResponse struct {
	Tournament *Tournament `json:"tournament"`
}

type GetLeaderboardRequest struct {
	TournamentKey string `json:"tournament_key"`
}

func (r GetLeaderboardRequest) TournamentRef() string { return r.TournamentKey }

type GetLeaderboardResponse struct {
	Tournament  events.TournamentSummary   `json:"tournament"`
	Leaderboard []*models.LeaderboardEntry `json:"leaderboard"`
	Pars        map[string]int             `json:"pars"`
}

type ListChatMessagesRequest struct {
	TournamentKey string `json:"tournament_key"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}

func (r ListChatMessagesRequest) TournamentRef() string { return r.TournamentKey }

type ListChatMessagesResponse struct {
	models.ChatPage
}

type CreateCourseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	// Pars lists the par of each hole in order, starting with hole 1.
	Pars []int `json:"pars"`
}

type CreateCourseResponse struct {
	Course *models.Course `json:"course"`
}

type CreateTournamentRequest struct {
	Name     string `json:"name"`
	CourseID string `json:"golf_course_id"`
}

type CreateTournamentResponse struct {
	Tournament *Tournament `json:"tournament"`
}

type ListTournamentsRequest struct{}

type ListTournamentsResponse struct {
	Tournaments []*Tournament `json:"tournaments"`
}

type UpdateTournamentRequest struct {
	TournamentKey string `json:"tournament_key"`
	// Name and Status are left unchanged when empty.
	Name   string                  `json:"name,omitempty"`
	Status models.TournamentStatus `json:"status,omitempty"`
}

func (r UpdateTournamentRequest) TournamentRef() string { return r.TournamentKey }

type UpdateTournamentResponse struct {
	Tournament *Tournament `json:"tournament"`
}

type DeleteTournamentRequest struct {
	TournamentKey string `json:"tournament_key"`
}

func (r DeleteTournamentRequest) TournamentRef() string { return r.TournamentKey }

type DeleteTournamentResponse struct{}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
