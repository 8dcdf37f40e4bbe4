package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rrazong/leaderz-backend/internal/models"
	"github.com/rrazong/leaderz-backend/internal/storage"
	"github.com/rrazong/leaderz-backend/internal/storage/sqlite"
)

type sentMessage struct {
	to, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakePublisher struct {
	mu          sync.Mutex
	leaderboard []*models.Team
	chat        []*models.ChatMessage
}

func (f *fakePublisher) LeaderboardChanged(_ context.Context, _ *models.Tournament, team *models.Team) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaderboard = append(f.leaderboard, team)
}

func (f *fakePublisher) ChatPosted(_ context.Context, _ *models.Tournament, msg *models.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chat = append(f.chat, msg)
}

type harness struct {
	t          *testing.T
	engine     *Engine
	store      *sqlite.SQLiteStore
	sender     *fakeSender
	publisher  *fakePublisher
	tournament *models.Tournament
}

// newHarness builds an engine over a fresh database with one active
// tournament on a course with the given pars.
func newHarness(t *testing.T, pars ...int) *harness {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	course := &models.Course{Name: "Torrey Pines"}
	for i, par := range pars {
		course.Holes = append(course.Holes, models.Hole{HoleNumber: i + 1, Par: par})
	}
	if err := store.CreateCourse(ctx, course); err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}
	tournament := &models.Tournament{Name: "Summer Invitational", CourseID: course.ID}
	if err := store.CreateTournament(ctx, tournament); err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}

	sender := &fakeSender{}
	publisher := &fakePublisher{}
	engine := New(store, sender, publisher, Options{LeaderboardBaseURL: "https://golf.example.com/leaderboardz/"})

	return &harness{t: t, engine: engine, store: store, sender: sender, publisher: publisher, tournament: tournament}
}

// send delivers body from phone and returns the single reply.
func (h *harness) send(phone, body string) string {
	h.t.Helper()

	before := h.sender.count()
	if err := h.engine.HandleMessage(context.Background(), Inbound{Sender: phone, Body: body}); err != nil {
		h.t.Fatalf("HandleMessage(%q) failed: %v", body, err)
	}
	if got := h.sender.count() - before; got != 1 {
		h.t.Fatalf("HandleMessage(%q) sent %d replies, want 1", body, got)
	}
	last := h.sender.sent[len(h.sender.sent)-1]
	if last.to != phone {
		h.t.Fatalf("reply went to %s, want %s", last.to, phone)
	}
	return last.body
}

// register creates a player on the named team.
func (h *harness) register(phone, teamName string) {
	h.t.Helper()
	h.send(phone, "hi")
	h.send(phone, teamName)
}

func (h *harness) team(name string) *models.Team {
	h.t.Helper()
	team, err := h.store.GetTeamByName(context.Background(), h.tournament.ID, name)
	if err != nil {
		h.t.Fatalf("GetTeamByName(%q) failed: %v", name, err)
	}
	return team
}

func (h *harness) scores(team *models.Team) map[int]int {
	h.t.Helper()
	list, err := h.store.ListTeamScores(context.Background(), team.ID)
	if err != nil {
		h.t.Fatalf("ListTeamScores failed: %v", err)
	}
	out := make(map[int]int, len(list))
	for _, s := range list {
		out[s.HoleNumber] = s.Strokes
	}
	return out
}

func (h *harness) checkTotal(team *models.Team) {
	h.t.Helper()
	sum := 0
	for _, strokes := range h.scores(team) {
		sum += strokes
	}
	if sum != team.TotalScore {
		h.t.Errorf("team %s total %d, scores sum to %d", team.Name, team.TotalScore, sum)
	}
}

func expectContains(t *testing.T, reply string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(reply, part) {
			t.Errorf("reply %q does not contain %q", reply, part)
		}
	}
}

const phone = "+15551234567"

func TestNewPlayerJoinsTeam(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)

	welcome := h.send(phone, "Hello!")
	expectContains(t, welcome, "Summer Invitational", "What team are you on?")

	player, err := h.store.GetPlayerByPhone(context.Background(), phone)
	if err != nil {
		t.Fatalf("player not created: %v", err)
	}
	if player.HasTeam() {
		t.Fatal("new player should not have a team")
	}

	joined := h.send(phone, "  Eagles ")
	expectContains(t, joined, "Eagles", "Hole 1", "https://golf.example.com/leaderboardz/"+h.tournament.Key)

	team := h.team("eagles")
	player, _ = h.store.GetPlayerByPhone(context.Background(), phone)
	if player.TeamID != team.ID {
		t.Errorf("player linked to %q, want %q", player.TeamID, team.ID)
	}
	if team.CurrentHole != 1 || team.TotalScore != 0 {
		t.Errorf("new team on hole %d with %d strokes", team.CurrentHole, team.TotalScore)
	}

	t.Run("second player joins the existing team ignoring case", func(t *testing.T) {
		h.register("+15550000002", "EAGLES")
		other, _ := h.store.GetPlayerByPhone(context.Background(), "+15550000002")
		if other.TeamID != team.ID {
			t.Errorf("second player on %q, want %q", other.TeamID, team.ID)
		}
	})

	t.Run("long names are refused", func(t *testing.T) {
		h.send("+15550000003", "hi")
		reply := h.send("+15550000003", strings.Repeat("x", maxTeamNameLen+1))
		expectContains(t, reply, "at most 40 characters")
		p, _ := h.store.GetPlayerByPhone(context.Background(), "+15550000003")
		if p.HasTeam() {
			t.Error("player joined a team with an over-long name")
		}
	})
}

func TestBirdieAdvancesHole(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")
	h.send(phone, "4")
	h.send(phone, "par")
	before := h.team("Eagles")

	reply := h.send(phone, "birdie")
	expectContains(t, reply, "Hole #3, 3 strokes (birdie)", "On to Hole 4!")

	team := h.team("Eagles")
	if got := h.scores(team)[3]; got != 3 {
		t.Errorf("hole 3 strokes = %d, want 3", got)
	}
	if team.CurrentHole != 4 {
		t.Errorf("CurrentHole = %d, want 4", team.CurrentHole)
	}
	if team.TotalScore != before.TotalScore+3 {
		t.Errorf("TotalScore = %d, want %d", team.TotalScore, before.TotalScore+3)
	}
	if n := len(h.publisher.leaderboard); n != 3 {
		t.Errorf("published %d leaderboard updates, want 3", n)
	}
	h.checkTotal(team)
}

func TestFixCorrectsLastHole(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")
	h.send(phone, "4")
	h.send(phone, "3")
	h.send(phone, "3")

	prompt := h.send(phone, "fix")
	expectContains(t, prompt, "Hole #3", "3 strokes")
	if !h.team("Eagles").FixMode {
		t.Fatal("fix mode not set")
	}

	reply := h.send(phone, "6")
	expectContains(t, reply, "Fixed. Hole #3 is now 6 strokes (double bogey)", "Total: 13", "Hole 4")

	team := h.team("Eagles")
	if team.FixMode {
		t.Error("fix mode should clear after the correction")
	}
	if team.CurrentHole != 4 {
		t.Errorf("CurrentHole = %d, want 4", team.CurrentHole)
	}
	if team.TotalScore != 13 {
		t.Errorf("TotalScore = %d, want 13", team.TotalScore)
	}
	if got := h.scores(team); got[1] != 4 || got[2] != 3 || got[3] != 6 {
		t.Errorf("scores = %v", got)
	}
	h.checkTotal(team)
}

func TestFixWithoutScores(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")

	reply := h.send(phone, "FIX")
	if reply != replyNothingToFix {
		t.Errorf("reply = %q, want %q", reply, replyNothingToFix)
	}
	team := h.team("Eagles")
	if team.FixMode {
		t.Error("fix mode set with no scores")
	}
	if len(h.scores(team)) != 0 {
		t.Error("fix without scores mutated scores")
	}
}

func TestFixModeConsumedByScoreShapedMessages(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")
	h.send(phone, "5")

	h.send(phone, "fix")
	h.send(phone, "great weather today")
	if !h.team("Eagles").FixMode {
		t.Fatal("chat should leave fix mode pending")
	}

	reply := h.send(phone, "25")
	expectContains(t, reply, "too high")
	team := h.team("Eagles")
	if team.FixMode {
		t.Error("out-of-range score should clear fix mode")
	}
	if got := h.scores(team)[1]; got != 5 {
		t.Errorf("hole 1 = %d, want unchanged 5", got)
	}

	h.send(phone, "fix")
	reply = h.send(phone, "0")
	if reply != replyZeroStrokes {
		t.Errorf("reply = %q, want zero-stroke rejection", reply)
	}
	if h.team("Eagles").FixMode {
		t.Error("zero strokes should clear fix mode")
	}
}

func TestDeleteTeam(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")
	h.register("+15550000002", "Eagles")
	h.register("+15550000003", "Hawks")
	team := h.team("Eagles")

	reply := h.send(phone, "delete Hawks")
	expectContains(t, reply, "You can only delete your own team", "'Eagles'")

	reply = h.send(phone, "delete eagles")
	expectContains(t, reply, "Team 'Eagles' has been deleted", "What team are you on?")

	if _, err := h.store.GetTeam(context.Background(), team.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetTeam after delete error = %v, want ErrNotFound", err)
	}
	for _, p := range []string{phone, "+15550000002"} {
		player, _ := h.store.GetPlayerByPhone(context.Background(), p)
		if player.HasTeam() {
			t.Errorf("player %s still linked after delete", p)
		}
	}

	// The next message is taken as a team name again.
	joined := h.send(phone, "Condors")
	expectContains(t, joined, "Welcome to team 'Condors'")
}

func TestDeleteTeamWithScoresIsRejected(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")
	h.send(phone, "4")
	before := h.team("Eagles")

	reply := h.send(phone, "delete Eagles")
	if reply != replyHasScores {
		t.Errorf("reply = %q, want %q", reply, replyHasScores)
	}

	after := h.team("Eagles")
	if *after != *before {
		t.Errorf("team changed: %+v -> %+v", before, after)
	}
}

func TestRejectedScores(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")

	tests := []struct {
		body string
		want string
	}{
		{"0", replyZeroStrokes},
		{"21", "too high"},
		{"+30", "too high"},
		{"strokes", "isn't a score"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			reply := h.send(phone, tt.body)
			expectContains(t, reply, tt.want)
		})
	}

	team := h.team("Eagles")
	if len(h.scores(team)) != 0 || team.CurrentHole != 1 {
		t.Errorf("rejected scores changed the team: %+v", team)
	}
	if len(h.publisher.leaderboard) != 0 {
		t.Error("rejected scores were broadcast")
	}
}

func TestFinishingTheCourse(t *testing.T) {
	h := newHarness(t, 4, 3, 5)
	h.register(phone, "Eagles")
	h.register("+15550000002", "Hawks")
	h.send("+15550000002", "3")
	h.send("+15550000002", "2")

	h.send(phone, "4")
	h.send(phone, "3")
	reply := h.send(phone, "bogey")
	expectContains(t, reply, "Hole #3, 6 strokes (bogey)", "Congratulations", "Final Score: 13", "Current Place: 2nd")

	team := h.team("Eagles")
	if team.CurrentHole != 3 {
		t.Errorf("CurrentHole = %d, want to stay on the last hole", team.CurrentHole)
	}

	reply = h.send(phone, "4")
	expectContains(t, reply, "already scored all 3 holes")
	after := h.team("Eagles")
	if after.TotalScore != 13 || len(h.scores(after)) != 3 {
		t.Errorf("score past the course was recorded: %+v", after)
	}

	t.Run("fix after finishing", func(t *testing.T) {
		h.send(phone, "fix")
		reply := h.send(phone, "5")
		expectContains(t, reply, "Fixed. Hole #3 is now 5 strokes (par)", "Total: 12")
		if strings.Contains(reply, "send your score for Hole") {
			t.Errorf("finished team asked for another hole: %q", reply)
		}
	})
}

func TestChatAndHelp(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")

	reply := h.send(phone, "Nice drive, Hawks!")
	expectContains(t, reply, "Message sent to leaderboard chat! 📱", "Leaderboard: ")
	if len(h.publisher.chat) != 1 || h.publisher.chat[0].Message != "Nice drive, Hawks!" {
		t.Fatalf("chat broadcasts = %+v", h.publisher.chat)
	}
	if h.publisher.chat[0].TeamName != "Eagles" {
		t.Errorf("TeamName = %q, want Eagles", h.publisher.chat[0].TeamName)
	}

	page, err := h.store.ListChatMessages(context.Background(), h.tournament.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListChatMessages failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("stored %d chat messages, want 1", page.Total)
	}

	help := h.send(phone, "HELP")
	expectContains(t, help, "Your team 'Eagles' is on Hole 1.", "'fix'")
}

func TestClosedTournamentRefusesScores(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.engine.opts.TournamentKey = h.tournament.Key
	h.register(phone, "Eagles")
	h.send(phone, "4")

	h.tournament.Status = models.TournamentCompleted
	if err := h.store.UpdateTournament(context.Background(), h.tournament); err != nil {
		t.Fatalf("UpdateTournament failed: %v", err)
	}

	if reply := h.send(phone, "5"); reply != replyNotActive {
		t.Errorf("score reply = %q, want %q", reply, replyNotActive)
	}
	if reply := h.send(phone, "fix"); reply != replyNotActive {
		t.Errorf("fix reply = %q, want %q", reply, replyNotActive)
	}
	expectContains(t, h.send(phone, "good game all"), "Message sent")

	if got := h.scores(h.team("Eagles")); len(got) != 1 {
		t.Errorf("scores = %v, want only hole 1", got)
	}
}

func TestApologyWhenNoTournament(t *testing.T) {
	h := newHarness(t, 4)
	h.engine.opts.TournamentKey = "ZZZZ"

	reply := h.send(phone, "hi")
	if reply != replyApology {
		t.Errorf("reply = %q, want apology", reply)
	}
	if _, err := h.store.GetPlayerByPhone(context.Background(), phone); !errors.Is(err, storage.ErrNotFound) {
		t.Error("player created despite failure")
	}
}

func TestSendFailureStillBroadcasts(t *testing.T) {
	h := newHarness(t, 4, 3, 4, 5)
	h.register(phone, "Eagles")
	h.sender.err = errors.New("twilio unavailable")

	err := h.engine.HandleMessage(context.Background(), Inbound{Sender: phone, Body: "4"})
	if err == nil {
		t.Fatal("expected send error")
	}
	team := h.team("Eagles")
	if got := h.scores(team)[1]; got != 4 {
		t.Errorf("hole 1 = %d, want 4", got)
	}
	if len(h.publisher.leaderboard) != 1 {
		t.Fatalf("got %d leaderboard broadcasts, want 1", len(h.publisher.leaderboard))
	}
	if got := h.publisher.leaderboard[0]; got.CurrentHole != 2 || got.TotalScore != 4 {
		t.Errorf("broadcast team on hole %d with total %d, want hole 2 total 4", got.CurrentHole, got.TotalScore)
	}

	err = h.engine.HandleMessage(context.Background(), Inbound{Sender: phone, Body: "great drive on 1"})
	if err == nil {
		t.Fatal("expected send error")
	}
	if len(h.publisher.chat) != 1 || h.publisher.chat[0].Message != "great drive on 1" {
		t.Errorf("chat broadcasts = %v, want the posted message", h.publisher.chat)
	}
}

func TestConcurrentTeammatesDoNotLoseUpdates(t *testing.T) {
	h := newHarness(t, 4, 4, 4, 4, 4, 4, 4, 4, 4)
	phones := make([]string, 8)
	for i := range phones {
		phones[i] = fmt.Sprintf("+1555000%04d", i)
		h.register(phones[i], "Eagles")
	}

	var wg sync.WaitGroup
	for _, p := range phones {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if err := h.engine.HandleMessage(context.Background(), Inbound{Sender: p, Body: "5"}); err != nil {
				t.Errorf("HandleMessage failed: %v", err)
			}
		}(p)
	}
	wg.Wait()

	team := h.team("Eagles")
	scores := h.scores(team)
	if len(scores) != len(phones) {
		t.Errorf("recorded %d holes, want %d", len(scores), len(phones))
	}
	if team.CurrentHole != len(phones)+1 {
		t.Errorf("CurrentHole = %d, want %d", team.CurrentHole, len(phones)+1)
	}
	h.checkTotal(team)
	if n := h.engine.locks.len(); n != 0 {
		t.Errorf("%d team locks left behind", n)
	}
}

func TestStateOf(t *testing.T) {
	linked := &models.Player{TeamID: "t1"}
	tests := []struct {
		name   string
		player *models.Player
		team   *models.Team
		want   State
	}{
		{"unseen sender", nil, nil, Unregistered},
		{"no team", &models.Player{}, nil, AwaitingTeam},
		{"team gone", linked, nil, AwaitingTeam},
		{"team deleted", linked, &models.Team{ID: "t1", Deleted: true}, AwaitingTeam},
		{"on a team", linked, &models.Team{ID: "t1"}, Active},
		{"fix pending", linked, &models.Team{ID: "t1", FixMode: true}, FixPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOf(tt.player, tt.team); got != tt.want {
				t.Errorf("StateOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th",
		13: "13th", 21: "21st", 22: "22nd", 101: "101st", 111: "111th",
	}
	for n, want := range tests {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}
