package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/rrazong/leaderz-backend/internal/events"
	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

const (
	minPar   = 3
	maxPar   = 6
	maxHoles = 18
)

// AdminService implements the organizer operations. Every call requires a
// valid organizer token; the interceptor is attached where the handler is
// mounted.
type AdminService struct {
	store     storage.Store
	publisher *events.Publisher
}

// NewAdminService creates an AdminService.
func NewAdminService(store storage.Store, publisher *events.Publisher) *AdminService {
	return &AdminService{store: store, publisher: publisher}
}

// CreateCourse creates a course whose holes are numbered from 1 in the
// order the pars are given.
func (s *AdminService) CreateCourse(ctx context.Context, req *connect.Request[CreateCourseRequest]) (*connect.Response[CreateCourseResponse], error) {
	slog.Info("CreateCourse request received", "name", req.Msg.Name, "holes", len(req.Msg.Pars))

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name is required"))
	}
	if len(req.Msg.Pars) == 0 || len(req.Msg.Pars) > maxHoles {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("a course needs between 1 and %d holes", maxHoles))
	}

	holes := make([]models.Hole, len(req.Msg.Pars))
	for i, par := range req.Msg.Pars {
		if par < minPar || par > maxPar {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("hole %d: par must be between %d and %d", i+1, minPar, maxPar))
		}
		holes[i] = models.Hole{HoleNumber: i + 1, Par: par}
	}

	course := &models.Course{
		Name:     name,
		Location: strings.TrimSpace(req.Msg.Location),
		Holes:    holes,
	}
	if err := s.store.CreateCourse(ctx, course); err != nil {
		slog.Error("CreateCourse failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Course created", "course_id", course.ID, "holes", len(course.Holes))

	return connect.NewResponse(&CreateCourseResponse{Course: course}), nil
}

// CreateTournament creates an active tournament on an existing course.
func (s *AdminService) CreateTournament(ctx context.Context, req *connect.Request[CreateTournamentRequest]) (*connect.Response[CreateTournamentResponse], error) {
	slog.Info("CreateTournament request received", "name", req.Msg.Name, "course_id", req.Msg.CourseID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name is required"))
	}
	if req.Msg.CourseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("golf_course_id is required"))
	}

	holes, err := s.store.GetCourseHoles(ctx, req.Msg.CourseID)
	if err != nil {
		slog.Warn("CreateTournament failed to load course", "course_id", req.Msg.CourseID, "error", err)
		return nil, storageError(err)
	}

	t := &models.Tournament{
		Name:     name,
		CourseID: req.Msg.CourseID,
		Status:   models.TournamentActive,
	}
	if err := s.store.CreateTournament(ctx, t); err != nil {
		slog.Error("CreateTournament failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Tournament created", "tournament_id", t.ID, "tournament_key", t.Key)

	return connect.NewResponse(&CreateTournamentResponse{Tournament: toTournament(t, holes)}), nil
}

// ListTournaments returns every tournament, newest first.
func (s *AdminService) ListTournaments(ctx context.Context, req *connect.Request[ListTournamentsRequest]) (*connect.Response[ListTournamentsResponse], error) {
	slog.Info("ListTournaments request received")

	tournaments, err := s.store.ListTournaments(ctx)
	if err != nil {
		slog.Error("ListTournaments failed", "error", err)
		return nil, storageError(err)
	}

	out := make([]*Tournament, len(tournaments))
	for i, t := range tournaments {
		out[i] = toTournament(t, nil)
	}

	slog.Info("ListTournaments successful", "count", len(out))

	return connect.NewResponse(&ListTournamentsResponse{Tournaments: out}), nil
}

// UpdateTournament renames a tournament or changes its status, then pushes
// a fresh leaderboard so viewers see the change.
func (s *AdminService) UpdateTournament(ctx context.Context, req *connect.Request[UpdateTournamentRequest]) (*connect.Response[UpdateTournamentResponse], error) {
	slog.Info("UpdateTournament request received",
		"tournament_key", req.Msg.TournamentKey,
		"name", req.Msg.Name,
		"status", req.Msg.Status,
	)

	if req.Msg.TournamentKey == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingKey)
	}
	if req.Msg.Status != "" && !req.Msg.Status.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown status %q", req.Msg.Status))
	}

	t, err := s.store.GetTournamentByKey(ctx, req.Msg.TournamentKey)
	if err != nil {
		slog.Warn("UpdateTournament failed", "tournament_key", req.Msg.TournamentKey, "error", err)
		return nil, storageError(err)
	}

	if name := strings.TrimSpace(req.Msg.Name); name != "" {
		t.Name = name
	}
	if req.Msg.Status != "" {
		t.Status = req.Msg.Status
	}

	if err := s.store.UpdateTournament(ctx, t); err != nil {
		slog.Error("UpdateTournament failed", "tournament_key", t.Key, "error", err)
		return nil, storageError(err)
	}

	s.publisher.TournamentChanged(ctx, t)

	slog.Info("Tournament updated", "tournament_key", t.Key, "status", t.Status)

	return connect.NewResponse(&UpdateTournamentResponse{Tournament: toTournament(t, nil)}), nil
}

// DeleteTournament removes a tournament with its teams, scores and chat.
func (s *AdminService) DeleteTournament(ctx context.Context, req *connect.Request[DeleteTournamentRequest]) (*connect.Response[DeleteTournamentResponse], error) {
	slog.Info("DeleteTournament request received", "tournament_key", req.Msg.TournamentKey)

	if req.Msg.TournamentKey == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingKey)
	}

	t, err := s.store.GetTournamentByKey(ctx, req.Msg.TournamentKey)
	if err != nil {
		slog.Warn("DeleteTournament failed", "tournament_key", req.Msg.TournamentKey, "error", err)
		return nil, storageError(err)
	}

	if err := s.store.DeleteTournament(ctx, t.ID); err != nil {
		slog.Error("DeleteTournament failed", "tournament_key", t.Key, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Tournament deleted", "tournament_key", t.Key)

	return connect.NewResponse(&DeleteTournamentResponse{}), nil
}
