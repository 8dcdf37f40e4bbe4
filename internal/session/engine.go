// Package session runs the text-message conversation with players: joining
// a team, reporting and fixing scores, and chatting to the leaderboard.
//
// Each inbound message is handled on its own. The sender's conversation
// state is rebuilt from stored records (see StateOf), at most one change is
// committed, exactly one reply is sent, and any broadcast follows the reply.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rrazong/leaderz-backend/internal/metrics"
	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

// maxTeamNameLen bounds team names, counted in characters.
const maxTeamNameLen = 40

// Sender delivers a reply to a player.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Publisher broadcasts committed changes to leaderboard viewers.
type Publisher interface {
	LeaderboardChanged(ctx context.Context, t *models.Tournament, team *models.Team)
	ChatPosted(ctx context.Context, t *models.Tournament, msg *models.ChatMessage)
}

// Options configures an Engine.
type Options struct {
	// TournamentKey pins the tournament players report to. When empty the
	// newest active tournament is used.
	TournamentKey string

	// LeaderboardBaseURL prefixes the leaderboard links in replies.
	LeaderboardBaseURL string

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Inbound is one message received from a player.
type Inbound struct {
	// Sender is the player's phone number without any channel prefix.
	Sender string
	Body   string
}

// Engine interprets inbound messages.
type Engine struct {
	store     storage.Store
	sender    Sender
	publisher Publisher
	opts      Options
	logger    *slog.Logger
	locks     *teamLocks
}

// New creates an Engine.
func New(store storage.Store, sender Sender, publisher Publisher, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     store,
		sender:    sender,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		locks:     newTeamLocks(),
	}
}

// outcome is the result of handling one message: the reply, plus an
// optional broadcast of the change the message committed. The broadcast
// runs before the reply is sent and regardless of whether sending works.
type outcome struct {
	branch string
	reply  string
	outbox func(ctx context.Context)
}

func reply(branch, text string) outcome {
	return outcome{branch: branch, reply: text}
}

// HandleMessage processes one inbound message and sends exactly one reply.
// Processing failures are answered with an apology rather than returned;
// the only error returned is a failure to send the reply.
func (e *Engine) HandleMessage(ctx context.Context, in Inbound) error {
	out, err := e.handle(ctx, in)
	if err != nil {
		e.logger.Error("Failed to handle message", "from", in.Sender, "error", err)
		out = reply("error", replyApology)
	}
	e.opts.Metrics.MessageHandled(out.branch)

	if out.outbox != nil {
		out.outbox(ctx)
	}

	if err := e.sender.Send(ctx, in.Sender, out.reply); err != nil {
		e.opts.Metrics.ReplyFailed()
		return fmt.Errorf("failed to send reply to %s: %w", in.Sender, err)
	}
	return nil
}

func (e *Engine) handle(ctx context.Context, in Inbound) (outcome, error) {
	body := strings.TrimSpace(in.Body)

	tournament, err := e.activeTournament(ctx)
	if err != nil {
		return outcome{}, err
	}

	player, err := e.store.GetPlayerByPhone(ctx, in.Sender)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return outcome{}, err
	}
	if player == nil {
		return e.welcome(ctx, tournament, in.Sender)
	}

	if !player.HasTeam() {
		return e.join(ctx, tournament, player, body)
	}

	unlock := e.locks.Lock(player.TeamID)
	defer unlock()

	team, err := e.currentTeam(ctx, tournament, player)
	if err != nil {
		return outcome{}, err
	}

	state := StateOf(player, team)
	e.logger.Debug("Handling message", "from", in.Sender, "state", state)

	if state == AwaitingTeam {
		return e.join(ctx, tournament, player, body)
	}
	return e.dispatch(ctx, tournament, player, team, body)
}

// activeTournament returns the configured tournament, or the newest active
// one when none is configured.
func (e *Engine) activeTournament(ctx context.Context) (*models.Tournament, error) {
	if e.opts.TournamentKey != "" {
		t, err := e.store.GetTournamentByKey(ctx, e.opts.TournamentKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load tournament %s: %w", e.opts.TournamentKey, err)
		}
		return t, nil
	}
	t, err := e.store.GetActiveTournament(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tournament: %w", err)
	}
	return t, nil
}

// currentTeam loads the player's team, or nil if it is gone or belongs to
// a different tournament than the one being played.
func (e *Engine) currentTeam(ctx context.Context, t *models.Tournament, player *models.Player) (*models.Team, error) {
	team, err := e.store.GetTeam(ctx, player.TeamID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if team.TournamentID != t.ID {
		return nil, nil
	}
	return team, nil
}

func (e *Engine) welcome(ctx context.Context, t *models.Tournament, phone string) (outcome, error) {
	player := &models.Player{PhoneNumber: phone}
	if err := e.store.CreatePlayer(ctx, player); err != nil {
		return outcome{}, err
	}
	e.logger.Info("Player created", "player_id", player.ID, "from", phone)
	return reply("welcome", welcomeReply(t)), nil
}

// join treats the whole body as a team name, joining the live team of that
// name or creating it.
func (e *Engine) join(ctx context.Context, t *models.Tournament, player *models.Player, name string) (outcome, error) {
	if name == "" {
		return reply("rejected", replyNameRequired), nil
	}
	if len([]rune(name)) > maxTeamNameLen {
		return reply("rejected", nameTooLongReply()), nil
	}

	team, err := e.store.GetTeamByName(ctx, t.ID, name)
	if errors.Is(err, storage.ErrNotFound) {
		team = &models.Team{TournamentID: t.ID, Name: name}
		err = e.store.CreateTeam(ctx, team)
		if errors.Is(err, storage.ErrConflict) {
			// Another player created it first.
			team, err = e.store.GetTeamByName(ctx, t.ID, name)
		} else if err == nil {
			e.logger.Info("Team created", "team_id", team.ID, "name", team.Name, "tournament_key", t.Key)
		}
	}
	if err != nil {
		return outcome{}, err
	}

	if err := e.store.SetPlayerTeam(ctx, player.PhoneNumber, team.ID); err != nil {
		return outcome{}, err
	}
	e.logger.Info("Player joined team", "player_id", player.ID, "team_id", team.ID)
	return reply("join", e.joinReply(t, team)), nil
}
