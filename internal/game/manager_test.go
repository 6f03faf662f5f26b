package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

type stubProvider struct {
	batch entities.QuestionBatch
	err   error
}

func (p stubProvider) Generate(_ context.Context, _ string, _ int) (entities.QuestionBatch, error) {
	return p.batch, p.err
}

type fakeGameStore struct {
	mu       sync.Mutex
	saved    []*entities.GameRecord
	finished []*entities.GameRecord
	saveErr  error
}

func (s *fakeGameStore) SaveGame(_ context.Context, rec *entities.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, rec)
	return nil
}

func (s *fakeGameStore) FinishGame(_ context.Context, rec *entities.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, rec)
	return nil
}

type fakeScoreStore struct {
	mu      sync.Mutex
	upserts []entities.ScoreLedgerEntry
	failFor map[int64]error
}

func (s *fakeScoreStore) UpsertScore(_ context.Context, entry entities.ScoreLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[entry.UserID]; ok {
		return err
	}
	s.upserts = append(s.upserts, entry)
	return nil
}

type notifierEvent struct {
	kind     string
	username string
	points   int
	answer   string
	hints    int
	early    bool
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

func (n *fakeNotifier) record(e notifierEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) QuestionOpened(_ int64, _, _ int, _ string, _ time.Duration) {
	n.record(notifierEvent{kind: "opened"})
}

func (n *fakeNotifier) HintRevealed(_ int64, _, _ int, _ string, hints []string) {
	n.record(notifierEvent{kind: "hint", hints: len(hints)})
}

func (n *fakeNotifier) AnswerAccepted(_ int64, username, answer string, points int, _ time.Duration) {
	n.record(notifierEvent{kind: "accepted", username: username, points: points, answer: answer})
}

func (n *fakeNotifier) QuestionTimedOut(_ int64, answer string) {
	n.record(notifierEvent{kind: "timeout", answer: answer})
}

func (n *fakeNotifier) GameFinished(_ int64, _ []Standing, early bool, _, _ int) {
	n.record(notifierEvent{kind: "finished", early: early})
}

func (n *fakeNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	var c int
	for _, e := range n.events {
		if e.kind == kind {
			c++
		}
	}
	return c
}

func (n *fakeNotifier) last(kind string) (notifierEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.events) - 1; i >= 0; i-- {
		if n.events[i].kind == kind {
			return n.events[i], true
		}
	}
	return notifierEvent{}, false
}

func testConfig() Config {
	return Config{
		AnswerWindow: 30 * time.Second,
		DecayDivisor: 6 * time.Second,
		BaseBonus:    0,
		MinElapsed:   0,
		AnswerGrace:  10 * time.Millisecond,
		TimeoutGrace: 10 * time.Millisecond,
		StartDelay:   time.Millisecond,
		ConfigTTL:    10 * time.Minute,
	}
}

func testBatch(n int) entities.QuestionBatch {
	batch := make(entities.QuestionBatch, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, entities.QuestionRecord{
			Text:              "Which river flows through Cairo?",
			OfficialAnswer:    "The Nile",
			AcceptableAnswers: []string{"nile"},
		})
	}
	return batch
}

type testEnv struct {
	manager  *Manager
	registry *Registry
	games    *fakeGameStore
	scores   *fakeScoreStore
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T, cfg Config, provider Provider) *testEnv {
	t.Helper()

	env := &testEnv{
		registry: NewRegistry(),
		games:    &fakeGameStore{},
		scores:   &fakeScoreStore{},
		notifier: &fakeNotifier{},
	}

	scheduler := NewScheduler()
	t.Cleanup(scheduler.Stop)

	env.manager = NewManager(cfg, env.registry, scheduler, provider, env.games, env.scores, zap.NewNop())
	env.manager.SetNotifier(env.notifier)

	return env
}

// startGame runs the configuration and launch flow and waits for the
// first question to open.
func (env *testEnv) startGame(t *testing.T, chatID, initiator int64, count int) {
	t.Helper()

	require.NoError(t, env.manager.Create(chatID, initiator, count))
	require.NoError(t, env.manager.Launch(context.Background(), chatID, "general"))

	require.Eventually(t, func() bool {
		return env.notifier.count("opened") >= 1
	}, time.Second, time.Millisecond)
}

func TestLaunchGenerationFailureDiscardsGame(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{err: errors.New("provider down")})

	require.NoError(t, env.manager.Create(1, 100, 3))

	err := env.manager.Launch(context.Background(), 1, "general")
	assert.ErrorIs(t, err, ErrGenerationFailed)

	// The chat is free to start over.
	assert.False(t, env.manager.Active(1))
	assert.NoError(t, env.manager.Create(1, 100, 3))
}

func TestLaunchPersistFailureDiscardsGame(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})
	env.games.saveErr = errors.New("db down")

	require.NoError(t, env.manager.Create(1, 100, 3))

	err := env.manager.Launch(context.Background(), 1, "general")
	assert.Error(t, err)
	assert.False(t, env.manager.Active(1))
}

func TestFirstCorrectAnswerWins(t *testing.T) {
	cfg := testConfig()
	cfg.AnswerGrace = time.Hour // hold the closed phase for the assertions
	env := newTestEnv(t, cfg, stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	now := time.Now()
	env.manager.SubmitAnswer(1, 100, "Alice", "The Nile", now)
	env.manager.SubmitAnswer(1, 200, "Bob", "nile", now)

	accepted, ok := env.notifier.last("accepted")
	require.True(t, ok)
	assert.Equal(t, "Alice", accepted.username)
	assert.Equal(t, "The Nile", accepted.answer)
	assert.Equal(t, 1, env.notifier.count("accepted"), "second matching answer is ignored")

	// Near-instant answer: floor(just-under-30s / 6s) = 4.
	assert.Equal(t, 4, accepted.points)

	g, ok := env.registry.Get(1)
	require.True(t, ok)
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Equal(t, 1, g.Position)
	assert.Equal(t, PhaseQuestionClosed, g.Phase)
	assert.NotContains(t, g.Scores, int64(200))
}

func TestWrongAnswerIgnored(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	env.manager.SubmitAnswer(1, 200, "Bob", "amazon", time.Now())

	assert.Equal(t, 0, env.notifier.count("accepted"))

	g, ok := env.registry.Get(1)
	require.True(t, ok)
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Equal(t, PhaseQuestionOpen, g.Phase)
	assert.Empty(t, g.Scores)
}

func TestSubmissionPredatingQuestionRejected(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	env.manager.SubmitAnswer(1, 200, "Bob", "nile", time.Now().Add(-time.Minute))

	assert.Equal(t, 0, env.notifier.count("accepted"))
}

func TestMinElapsedFloorRejectsEarlySubmission(t *testing.T) {
	cfg := testConfig()
	cfg.MinElapsed = time.Hour
	env := newTestEnv(t, cfg, stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	env.manager.SubmitAnswer(1, 200, "Bob", "nile", time.Now())

	assert.Equal(t, 0, env.notifier.count("accepted"))

	g, ok := env.registry.Get(1)
	require.True(t, ok)
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Equal(t, PhaseQuestionOpen, g.Phase)
}

func TestTimeoutRevealsAnswerAndAdvances(t *testing.T) {
	cfg := testConfig()
	cfg.AnswerWindow = 30 * time.Millisecond
	env := newTestEnv(t, cfg, stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	require.Eventually(t, func() bool {
		return env.notifier.count("timeout") >= 1
	}, time.Second, time.Millisecond)

	timeout, _ := env.notifier.last("timeout")
	assert.Equal(t, "The Nile", timeout.answer)

	// Next question opens after the grace delay; no one scored.
	require.Eventually(t, func() bool {
		return env.notifier.count("opened") >= 2
	}, time.Second, time.Millisecond)

	g, ok := env.registry.Get(1)
	require.True(t, ok)
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Empty(t, g.Scores)
	assert.GreaterOrEqual(t, g.Position, 1)
}

func TestLateAnswerAfterTimeoutIgnored(t *testing.T) {
	cfg := testConfig()
	cfg.AnswerWindow = 20 * time.Millisecond
	cfg.TimeoutGrace = time.Hour // hold the closed phase open for the assertion
	env := newTestEnv(t, cfg, stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	require.Eventually(t, func() bool {
		return env.notifier.count("timeout") >= 1
	}, time.Second, time.Millisecond)

	env.manager.SubmitAnswer(1, 200, "Bob", "nile", time.Now())

	assert.Equal(t, 0, env.notifier.count("accepted"))

	g, ok := env.registry.Get(1)
	require.True(t, ok)
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Empty(t, g.Scores, "score must not change after the question closed")
}

func TestHintsRevealedCumulatively(t *testing.T) {
	cfg := testConfig()
	cfg.AnswerWindow = 90 * time.Millisecond
	cfg.TimeoutGrace = time.Hour

	batch := testBatch(1)
	batch[0].Hints = []string{"It is in Africa", "Its delta is in Egypt"}
	env := newTestEnv(t, cfg, stubProvider{batch: batch})
	env.startGame(t, 1, 100, 1)

	require.Eventually(t, func() bool {
		return env.notifier.count("hint") >= 2
	}, time.Second, time.Millisecond)

	latest, _ := env.notifier.last("hint")
	assert.Equal(t, 2, latest.hints, "second reveal carries both hints")
}

func TestHintAfterAnswerIsNoOp(t *testing.T) {
	cfg := testConfig()
	cfg.AnswerGrace = time.Hour

	batch := testBatch(1)
	batch[0].Hints = []string{"It is in Africa"}
	env := newTestEnv(t, cfg, stubProvider{batch: batch})
	env.startGame(t, 1, 100, 1)

	env.manager.SubmitAnswer(1, 100, "Alice", "nile", time.Now())
	require.Equal(t, 1, env.notifier.count("accepted"))

	// Hint offset for a single hint is window/2 = 15s; the answer cancels
	// it, so nothing shows up.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, env.notifier.count("hint"))
}

func TestEndEarlyUnauthorized(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	err := env.manager.EndEarly(1, 999, false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Game unchanged, still active.
	assert.True(t, env.manager.Active(1))
	g, ok := env.registry.Get(1)
	require.True(t, ok)
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Equal(t, entities.StatusActive, g.Status)
}

func TestEndEarlyByInitiator(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	env.manager.SubmitAnswer(1, 100, "Alice", "nile", time.Now())
	require.NoError(t, env.manager.EndEarly(1, 100, false))

	finished, ok := env.notifier.last("finished")
	require.True(t, ok)
	assert.True(t, finished.early)

	assert.False(t, env.manager.Active(1))

	env.games.mu.Lock()
	require.Len(t, env.games.finished, 1)
	assert.Equal(t, entities.StatusEndedEarly, env.games.finished[0].Status)
	env.games.mu.Unlock()
}

func TestEndEarlyByPrivilegedUser(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})
	env.startGame(t, 1, 100, 3)

	require.NoError(t, env.manager.EndEarly(1, 999, true))
	assert.False(t, env.manager.Active(1))
}

func TestEndEarlyWithoutGame(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})

	err := env.manager.EndEarly(1, 100, false)
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

func TestGameCompletesAfterLastQuestion(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(1)})
	env.startGame(t, 1, 100, 1)

	env.manager.SubmitAnswer(1, 100, "Alice", "nile", time.Now())

	require.Eventually(t, func() bool {
		return env.notifier.count("finished") == 1
	}, time.Second, time.Millisecond)

	finished, _ := env.notifier.last("finished")
	assert.False(t, finished.early)
	assert.False(t, env.manager.Active(1))

	env.games.mu.Lock()
	require.Len(t, env.games.finished, 1)
	assert.Equal(t, entities.StatusCompleted, env.games.finished[0].Status)
	assert.Equal(t, 1, env.games.finished[0].QuestionsCompleted)
	env.games.mu.Unlock()

	env.scores.mu.Lock()
	require.Len(t, env.scores.upserts, 1)
	assert.Equal(t, int64(100), env.scores.upserts[0].UserID)
	assert.Equal(t, 4, env.scores.upserts[0].TotalPoints)
	assert.Equal(t, 1, env.scores.upserts[0].GamesPlayed)
	env.scores.mu.Unlock()
}

func TestFinishUpsertsAreIndependent(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(2)})
	env.scores.failFor = map[int64]error{100: errors.New("db down")}
	env.startGame(t, 1, 100, 2)

	env.manager.SubmitAnswer(1, 100, "Alice", "nile", time.Now())

	require.Eventually(t, func() bool {
		return env.notifier.count("opened") >= 2
	}, time.Second, time.Millisecond)

	env.manager.SubmitAnswer(1, 200, "Bob", "nile", time.Now())

	require.Eventually(t, func() bool {
		return env.notifier.count("finished") == 1
	}, time.Second, time.Millisecond)

	// Alice's upsert failed, Bob's still landed, and the registry is
	// clean either way.
	env.scores.mu.Lock()
	require.Len(t, env.scores.upserts, 1)
	assert.Equal(t, int64(200), env.scores.upserts[0].UserID)
	env.scores.mu.Unlock()

	assert.False(t, env.manager.Active(1))
}

func TestAbortDiscardsOnlyConfiguringGames(t *testing.T) {
	env := newTestEnv(t, testConfig(), stubProvider{batch: testBatch(3)})

	require.NoError(t, env.manager.Create(1, 100, 3))
	env.manager.Abort(1)
	assert.False(t, env.manager.Active(1))

	env.startGame(t, 2, 100, 3)
	env.manager.Abort(2)
	assert.True(t, env.manager.Active(2), "active games are not abortable")
}

func TestStandingsSortedByPoints(t *testing.T) {
	standings := buildStandings(map[int64]entities.PlayerScore{
		1: {Username: "Alice", Points: 3},
		2: {Username: "Bob", Points: 7},
		3: {Username: "Carol", Points: 3},
	})

	require.Len(t, standings, 3)
	assert.Equal(t, "Bob", standings[0].Username)
	assert.Equal(t, "Alice", standings[1].Username)
	assert.Equal(t, "Carol", standings[2].Username)
}
