// Package events builds the broadcast payloads that follow a committed
// change and hands them to the hub.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rrazong/leaderz-backend/internal/broadcast"
	"github.com/rrazong/leaderz-backend/internal/metrics"
	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

// Store is the read access the publisher needs to assemble payloads.
type Store interface {
	GetLeaderboard(ctx context.Context, tournamentID string) ([]*models.LeaderboardEntry, error)
	GetCourseHoles(ctx context.Context, courseID string) ([]models.Hole, error)
	GetTournamentByKey(ctx context.Context, key string) (*models.Tournament, error)
}

// TournamentSummary is the public view of a tournament in event payloads.
type TournamentSummary struct {
	Key    string                  `json:"tournament_key"`
	Name   string                  `json:"name"`
	Status models.TournamentStatus `json:"status"`
}

// Summarize returns the public view of t.
func Summarize(t *models.Tournament) TournamentSummary {
	return TournamentSummary{Key: t.Key, Name: t.Name, Status: t.Status}
}

// LeaderboardUpdate carries the full ranked leaderboard.
type LeaderboardUpdate struct {
	Type        string                     `json:"type"`
	Tournament  TournamentSummary          `json:"tournament"`
	Leaderboard []*models.LeaderboardEntry `json:"leaderboard"`
	// Pars maps hole number to par.
	Pars      map[string]int `json:"pars"`
	Timestamp string         `json:"timestamp"`
}

// TeamSnapshot is one team's standing after a score change.
type TeamSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalScore  int    `json:"total_score"`
	CurrentHole int    `json:"current_hole"`
}

// TeamScoreUpdate announces that one team's card changed.
type TeamScoreUpdate struct {
	Type          string       `json:"type"`
	TournamentKey string       `json:"tournament_key"`
	Team          TeamSnapshot `json:"team"`
	Timestamp     string       `json:"timestamp"`
}

// ChatUpdate carries one new chat message.
type ChatUpdate struct {
	Type          string              `json:"type"`
	TournamentKey string              `json:"tournament_key"`
	NewMessage    *models.ChatMessage `json:"newMessage"`
	Timestamp     string              `json:"timestamp"`
}

// Publisher turns committed mutations into hub events. Its methods never
// return errors: a failure to build a payload is logged and the event is
// skipped, leaving the mutation and the player's reply untouched.
type Publisher struct {
	store   Store
	hub     *broadcast.Hub
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPublisher creates a Publisher. logger and m may be nil.
func NewPublisher(store Store, hub *broadcast.Hub, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:   store,
		hub:     hub,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

func (p *Publisher) timestamp() string {
	return p.now().UTC().Format(time.RFC3339)
}

// Snapshot assembles the current leaderboard of t.
func (p *Publisher) Snapshot(ctx context.Context, t *models.Tournament) (*LeaderboardUpdate, error) {
	entries, err := p.store.GetLeaderboard(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	holes, err := p.store.GetCourseHoles(ctx, t.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course holes: %w", err)
	}

	pars := make(map[string]int, len(holes))
	for _, h := range holes {
		pars[strconv.Itoa(h.HoleNumber)] = h.Par
	}

	return &LeaderboardUpdate{
		Type:        broadcast.EventLeaderboardUpdate,
		Tournament:  Summarize(t),
		Leaderboard: entries,
		Pars:        pars,
		Timestamp:   p.timestamp(),
	}, nil
}

// LeaderboardChanged announces a team's new score, then the leaderboard
// it produced.
func (p *Publisher) LeaderboardChanged(ctx context.Context, t *models.Tournament, team *models.Team) {
	p.publish(t.Key, broadcast.TopicLeaderboard, broadcast.EventTeamScoreUpdate, TeamScoreUpdate{
		Type:          broadcast.EventTeamScoreUpdate,
		TournamentKey: t.Key,
		Team: TeamSnapshot{
			ID:          team.ID,
			Name:        team.Name,
			TotalScore:  team.TotalScore,
			CurrentHole: team.CurrentHole,
		},
		Timestamp: p.timestamp(),
	})

	p.TournamentChanged(ctx, t)
}

// TournamentChanged publishes a fresh leaderboard for t, for example after
// its status changed.
func (p *Publisher) TournamentChanged(ctx context.Context, t *models.Tournament) {
	update, err := p.Snapshot(ctx, t)
	if err != nil {
		p.logger.Error("Failed to build leaderboard update", "tournament_key", t.Key, "error", err)
		return
	}
	p.publish(t.Key, broadcast.TopicLeaderboard, broadcast.EventLeaderboardUpdate, update)
}

// ChatPosted publishes a new chat message.
func (p *Publisher) ChatPosted(ctx context.Context, t *models.Tournament, msg *models.ChatMessage) {
	p.publish(t.Key, broadcast.TopicChat, broadcast.EventChatUpdate, ChatUpdate{
		Type:          broadcast.EventChatUpdate,
		TournamentKey: t.Key,
		NewMessage:    msg,
		Timestamp:     p.timestamp(),
	})
}

func (p *Publisher) publish(key string, topic broadcast.Topic, eventType string, payload any) {
	n := p.hub.Publish(key, topic, payload)
	p.metrics.EventPublished(eventType)
	p.logger.Debug("Published event", "tournament_key", key, "type", eventType, "subscribers", n)
}

// ResolveKey maps a key from a stream URL to the canonical key events are
// published under, so "222g" and "222G" reach the same subscribers.
func (p *Publisher) ResolveKey(ctx context.Context, key string) (string, error) {
	t, err := p.store.GetTournamentByKey(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", broadcast.ErrUnknownTournament
	}
	if err != nil {
		return "", err
	}
	return t.Key, nil
}
