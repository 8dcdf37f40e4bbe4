package session

import (
	"fmt"
	"strings"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/scoring"
)

const (
	replyApology      = "Sorry, there was an error processing your message. Please try again."
	replyNameRequired = "Please send your team name to join the leaderboard."
	replyHasScores    = "Cannot delete team after scores have been submitted."
	replyZeroStrokes  = "You can't have zero strokes on a hole. Please send your score again."
	replyNothingToFix = "Your team hasn't recorded any scores yet, so there's nothing to fix."
	replyNotActive    = "Scoring is closed for this tournament. You can still send messages to the leaderboard chat."
)

func (e *Engine) leaderboardURL(t *models.Tournament) string {
	return strings.TrimRight(e.opts.LeaderboardBaseURL, "/") + "/" + t.Key
}

func (e *Engine) withLink(t *models.Tournament, text string) string {
	return text + "\n\nLeaderboard: " + e.leaderboardURL(t)
}

func welcomeReply(t *models.Tournament) string {
	return fmt.Sprintf("Welcome to the \"%s\" tournament! 🏌️‍♂️\n\n"+
		"What team are you on? Just send me your team name and I'll add you to the leaderboard.", t.Name)
}

func nameTooLongReply() string {
	return fmt.Sprintf("Team names can be at most %d characters. Please send a shorter name.", maxTeamNameLen)
}

func (e *Engine) joinReply(t *models.Tournament, team *models.Team) string {
	return e.withLink(t, fmt.Sprintf("Welcome to team '%s'! 🏌️‍♂️\n\n"+
		"You're now on Hole %d. Send me your score when you finish each hole.\n\n%s",
		team.Name, team.CurrentHole, helpLines))
}

const helpLines = "You can enter your score, like '4' or 'par'\n" +
	"Or, to correct your last score, send 'fix'\n" +
	"Or, you can type anything else and it will appear on the leaderboard chat"

func (e *Engine) helpReply(t *models.Tournament, team *models.Team) string {
	return e.withLink(t, fmt.Sprintf("Your team '%s' is on Hole %d.\n\n%s", team.Name, team.CurrentHole, helpLines))
}

func notOwnTeamReply(team *models.Team) string {
	return fmt.Sprintf("You can only delete your own team. Your team is '%s'.", team.Name)
}

func deletedReply(team *models.Team) string {
	return fmt.Sprintf("Team '%s' has been deleted. What team are you on?", team.Name)
}

func fixPromptReply(last *models.TeamScore) string {
	return fmt.Sprintf("OK, let's fix Hole #%d (currently %s). What's the correct score?",
		last.HoleNumber, strokesText(last.Strokes))
}

func outOfRangeReply() string {
	return fmt.Sprintf("That score looks too high. Please send a number of strokes between 1 and %d.", scoring.MaxStrokes)
}

func golfWordReply(word string) string {
	return fmt.Sprintf("'%s' isn't a score. Please send your number of strokes, like '4', 'par' or 'bogey'.", word)
}

func courseFinishedReply(team *models.Team, lastHole int) string {
	return fmt.Sprintf("Team '%s' has already scored all %d holes. Send 'fix' to correct your last score.", team.Name, lastHole)
}

func strokesText(n int) string {
	if n == 1 {
		return "1 stroke"
	}
	return fmt.Sprintf("%d strokes", n)
}

func scoredLine(hole int, s scoring.Score) string {
	return fmt.Sprintf("Got it. Hole #%d, %s (%s)", hole, strokesText(s.Strokes), s.Description)
}

func completedLines(total, position int) string {
	text := fmt.Sprintf("🎉 Congratulations! You've completed the tournament!\nFinal Score: %d", total)
	if position > 0 {
		text += "\nCurrent Place: " + ordinal(position)
	}
	return text
}

func fixedLine(hole int, s scoring.Score, total int) string {
	return fmt.Sprintf("Fixed. Hole #%d is now %s (%s). Total: %d", hole, strokesText(s.Strokes), s.Description, total)
}

// ordinal renders 1 as "1st", 12 as "12th", 22 as "22nd".
func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
