package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/rrazong/leaderz-backend/internal/events"
	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

const (
	defaultChatLimit = 20
	maxChatLimit     = 100
)

var errMissingKey = errors.New("tournament_key is required")

// LeaderboardService serves the public, read-only tournament views.
type LeaderboardService struct {
	store     storage.Store
	publisher *events.Publisher
}

// NewLeaderboardService creates a LeaderboardService. The publisher builds
// leaderboard snapshots so the API and the stream serve the same shape.
func NewLeaderboardService(store storage.Store, publisher *events.Publisher) *LeaderboardService {
	return &LeaderboardService{store: store, publisher: publisher}
}

func (s *LeaderboardService) tournament(ctx context.Context, key string) (*models.Tournament, error) {
	if key == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingKey)
	}
	t, err := s.store.GetTournamentByKey(ctx, key)
	if err != nil {
		return nil, storageError(err)
	}
	return t, nil
}

// GetTournament returns a tournament and its course holes.
func (s *LeaderboardService) GetTournament(ctx context.Context, req *connect.Request[GetTournamentRequest]) (*connect.Response[GetTournamentResponse], error) {
	slog.Info("GetTournament request received", "tournament_key", req.Msg.TournamentKey)

	t, err := s.tournament(ctx, req.Msg.TournamentKey)
	if err != nil {
		slog.Warn("GetTournament failed", "tournament_key", req.Msg.TournamentKey, "error", err)
		return nil, err
	}

	holes, err := s.store.GetCourseHoles(ctx, t.CourseID)
	if err != nil {
		slog.Error("GetTournament failed to load holes", "tournament_key", t.Key, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&GetTournamentResponse{
		Tournament: toTournament(t, holes),
	}), nil
}

// GetLeaderboard returns the ranked leaderboard in the same shape as the
// leaderboard_update stream event.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, req *connect.Request[GetLeaderboardRequest]) (*connect.Response[GetLeaderboardResponse], error) {
	slog.Info("GetLeaderboard request received", "tournament_key", req.Msg.TournamentKey)

	t, err := s.tournament(ctx, req.Msg.TournamentKey)
	if err != nil {
		slog.Warn("GetLeaderboard failed", "tournament_key", req.Msg.TournamentKey, "error", err)
		return nil, err
	}

	snapshot, err := s.publisher.Snapshot(ctx, t)
	if err != nil {
		slog.Error("GetLeaderboard failed", "tournament_key", t.Key, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("GetLeaderboard successful", "tournament_key", t.Key, "teams", len(snapshot.Leaderboard))

	return connect.NewResponse(&GetLeaderboardResponse{
		Tournament:  snapshot.Tournament,
		Leaderboard: snapshot.Leaderboard,
		Pars:        snapshot.Pars,
	}), nil
}

// ListChatMessages returns one page of chat history, newest first.
func (s *LeaderboardService) ListChatMessages(ctx context.Context, req *connect.Request[ListChatMessagesRequest]) (*connect.Response[ListChatMessagesResponse], error) {
	slog.Info("ListChatMessages request received",
		"tournament_key", req.Msg.TournamentKey,
		"page", req.Msg.Page,
		"limit", req.Msg.Limit,
	)

	page, limit := req.Msg.Page, req.Msg.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultChatLimit
	}
	if page < 1 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("page must be at least 1"))
	}
	if limit < 1 || limit > maxChatLimit {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("limit must be between 1 and 100"))
	}

	t, err := s.tournament(ctx, req.Msg.TournamentKey)
	if err != nil {
		slog.Warn("ListChatMessages failed", "tournament_key", req.Msg.TournamentKey, "error", err)
		return nil, err
	}

	chat, err := s.store.ListChatMessages(ctx, t.ID, page, limit)
	if err != nil {
		slog.Error("ListChatMessages failed", "tournament_key", t.Key, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&ListChatMessagesResponse{ChatPage: *chat}), nil
}
