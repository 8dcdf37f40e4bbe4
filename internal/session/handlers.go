package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/scoring"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

// dispatch classifies a message from a player on a team: help, delete,
// fix, a score, and finally chat.
func (e *Engine) dispatch(ctx context.Context, t *models.Tournament, player *models.Player, team *models.Team, body string) (outcome, error) {
	lower := strings.ToLower(body)
	switch {
	case lower == "help":
		return reply("help", e.helpReply(t, team)), nil
	case strings.HasPrefix(lower, "delete "):
		return e.deleteTeam(ctx, team, strings.TrimSpace(body[len("delete "):]))
	case lower == "fix":
		return e.startFix(ctx, t, team)
	}

	out, ok, err := e.score(ctx, t, team, body)
	if err != nil || ok {
		return out, err
	}
	return e.chat(ctx, t, team, body)
}

func (e *Engine) deleteTeam(ctx context.Context, team *models.Team, name string) (outcome, error) {
	if !strings.EqualFold(strings.TrimSpace(name), team.Name) {
		return reply("rejected", notOwnTeamReply(team)), nil
	}

	err := e.store.DeleteTeam(ctx, team.ID)
	if errors.Is(err, storage.ErrTeamHasScores) {
		return reply("rejected", replyHasScores), nil
	}
	if err != nil {
		return outcome{}, err
	}

	e.logger.Info("Team deleted", "team_id", team.ID, "name", team.Name)
	return reply("delete", deletedReply(team)), nil
}

func (e *Engine) startFix(ctx context.Context, t *models.Tournament, team *models.Team) (outcome, error) {
	if t.Status != models.TournamentActive {
		return reply("rejected", replyNotActive), nil
	}

	last, err := e.store.LastScore(ctx, team.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return reply("rejected", replyNothingToFix), nil
	}
	if err != nil {
		return outcome{}, err
	}

	if err := e.store.SetFixMode(ctx, team.ID, true); err != nil {
		return outcome{}, err
	}
	return reply("fix", fixPromptReply(last)), nil
}

// target is the hole a score message will be written to.
type target struct {
	hole     int
	next     int
	fix      bool
	finished bool // the last hole is scored after the write
}

// score handles a score-shaped message. ok is false when the body is not a
// score at all and should be treated as chat.
func (e *Engine) score(ctx context.Context, t *models.Tournament, team *models.Team, body string) (out outcome, ok bool, err error) {
	holes, err := e.store.GetCourseHoles(ctx, t.CourseID)
	if err != nil {
		return outcome{}, false, err
	}
	scores, err := e.store.ListTeamScores(ctx, team.ID)
	if err != nil {
		return outcome{}, false, err
	}

	tgt := resolveTarget(team, holes, scores)
	par, inCourse := models.ParFor(holes, tgt.hole)
	if !inCourse {
		// Parse against the final hole so the message can still be
		// classified as a score or chat.
		par = holes[len(holes)-1].Par
	}

	parsed, err := scoring.Parse(body, par)
	if errors.Is(err, scoring.ErrNotScore) {
		return outcome{}, false, nil
	}

	// From here on the message is score-shaped and consumes any pending fix.
	var rejection string
	switch {
	case errors.Is(err, scoring.ErrOutOfRange):
		rejection = outOfRangeReply()
	case errors.Is(err, scoring.ErrGolfWord):
		rejection = golfWordReply(body)
	case err != nil:
		return outcome{}, true, err
	case t.Status != models.TournamentActive:
		rejection = replyNotActive
	case parsed.Strokes == 0:
		rejection = replyZeroStrokes
	case !inCourse:
		rejection = courseFinishedReply(team, holes[len(holes)-1].HoleNumber)
	}
	if rejection != "" {
		if team.FixMode {
			if err := e.store.SetFixMode(ctx, team.ID, false); err != nil {
				return outcome{}, true, err
			}
		}
		return reply("rejected", rejection), true, nil
	}

	updated, err := e.store.RecordScore(ctx, storage.ScoreWrite{
		TeamID:              team.ID,
		Hole:                tgt.hole,
		Strokes:             parsed.Strokes,
		ExpectedCurrentHole: team.CurrentHole,
		NextCurrentHole:     tgt.next,
	})
	if err != nil {
		return outcome{}, true, err
	}
	e.logger.Info("Score recorded",
		"team_id", team.ID,
		"hole", tgt.hole,
		"strokes", parsed.Strokes,
		"fix", tgt.fix,
		"total", updated.TotalScore,
	)

	out = outcome{
		outbox: func(ctx context.Context) { e.publisher.LeaderboardChanged(ctx, t, updated) },
	}
	if tgt.fix {
		out.branch = "fix_score"
		out.reply = e.withLink(t, fixedReply(tgt, parsed, updated))
		return out, true, nil
	}

	out.branch = "score"
	text := scoredLine(tgt.hole, parsed)
	if tgt.finished {
		position, err := e.store.GetTeamPosition(ctx, t.ID, team.ID)
		if err != nil {
			e.logger.Error("Failed to get team position", "team_id", team.ID, "error", err)
			position = 0
		}
		text += "\n\n" + completedLines(updated.TotalScore, position)
	} else {
		text += fmt.Sprintf("\n\nOn to Hole %d!", updated.CurrentHole)
	}
	out.reply = e.withLink(t, text)
	return out, true, nil
}

func fixedReply(tgt target, s scoring.Score, team *models.Team) string {
	text := fixedLine(tgt.hole, s, team.TotalScore)
	if tgt.finished {
		return text + "\n\nSend 'fix' to correct it again."
	}
	return text + fmt.Sprintf("\n\nSend 'fix' to correct it again, or send your score for Hole %d.", team.CurrentHole)
}

// resolveTarget picks the hole a score is written to:
//
//   - with fix pending, the highest scored hole, leaving the current hole
//     unchanged
//   - when the current hole already has a score, the hole after it
//   - otherwise the current hole
//
// The current hole moves forward by one per new score and never past the
// last hole. A target past the last hole is returned as-is for the caller
// to reject.
func resolveTarget(team *models.Team, holes []models.Hole, scores []*models.TeamScore) target {
	lastHole := holes[len(holes)-1].HoleNumber
	scored := make(map[int]bool, len(scores))
	for _, s := range scores {
		scored[s.HoleNumber] = true
	}

	if team.FixMode && len(scores) > 0 {
		hole := scores[len(scores)-1].HoleNumber
		return target{hole: hole, next: team.CurrentHole, fix: true, finished: scored[lastHole]}
	}

	hole := team.CurrentHole
	next := hole + 1
	if scored[hole] {
		hole++
		next = hole
	}
	if next > lastHole {
		next = lastHole
	}
	return target{hole: hole, next: next, finished: hole == lastHole}
}

func (e *Engine) chat(ctx context.Context, t *models.Tournament, team *models.Team, body string) (outcome, error) {
	msg := &models.ChatMessage{
		TournamentID: t.ID,
		TeamID:       team.ID,
		Message:      body,
	}
	if err := e.store.AddChatMessage(ctx, msg); err != nil {
		return outcome{}, err
	}

	return outcome{
		branch: "chat",
		reply:  e.withLink(t, "Message sent to leaderboard chat! 📱"),
		outbox: func(ctx context.Context) { e.publisher.ChatPosted(ctx, t, msg) },
	}, nil
}
