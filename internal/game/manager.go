package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

var (
	// ErrUnauthorized means /end came from someone who neither started the
	// game nor administers the chat.
	ErrUnauthorized = errors.New("only the game starter or a chat admin can end the game")
	// ErrGenerationFailed means the provider could not supply questions and
	// no fallback was available.
	ErrGenerationFailed = errors.New("question generation failed")
)

// timer names within a chat's tag.
const (
	timerOpenNext = "open_next"
	timerTimeout  = "timeout"
	timerHint     = "hint"
)

const persistTimeout = 10 * time.Second

// Manager drives every live game: it owns the registry, the scheduler and
// the question provider, and it is the only writer of game state. Incoming
// submissions and timer callbacks funnel through it.
type Manager struct {
	cfg       Config
	registry  *Registry
	scheduler *Scheduler
	provider  Provider
	games     GameStore
	scores    ScoreStore
	notifier  Notifier
	logger    *zap.Logger
}

func NewManager(
	cfg Config,
	registry *Registry,
	scheduler *Scheduler,
	provider Provider,
	games GameStore,
	scores ScoreStore,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		cfg:       cfg,
		registry:  registry,
		scheduler: scheduler,
		provider:  provider,
		games:     games,
		scores:    scores,
		logger:    logger,
	}
}

// SetNotifier sets the notifier (called after the delivery layer is built).
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

// Active reports whether a live game exists for the chat.
func (m *Manager) Active(chatID int64) bool {
	_, ok := m.registry.Get(chatID)
	return ok
}

// Create registers a configuring game with the chosen question count.
// Fails with ErrAlreadyActive when the chat already has a live game.
func (m *Manager) Create(chatID, initiator int64, count int) error {
	g, err := m.registry.Create(chatID, initiator)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.RequestedCount = count
	g.mu.Unlock()

	m.logger.Info("game configuration started",
		zap.Int64("chat_id", chatID),
		zap.Int64("initiator", initiator),
		zap.Int("count", count),
	)

	return nil
}

// RequestedCount returns the configured question count for the chat's
// game, or zero when no game exists.
func (m *Manager) RequestedCount(chatID int64) int {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.RequestedCount
}

// Abort discards a game that never got past configuration.
func (m *Manager) Abort(chatID int64) {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return
	}

	g.mu.Lock()
	configuring := g.Status == entities.StatusConfiguring
	g.mu.Unlock()

	if configuring {
		m.registry.Remove(chatID)
	}
}

// Launch fetches the question batch for the configured game and starts the
// question loop. On fetch failure the game is discarded and the error is
// surfaced; the user may retry with a fresh /start.
func (m *Manager) Launch(ctx context.Context, chatID int64, category string) error {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return ErrNoActiveGame
	}

	g.mu.Lock()
	if g.Status != entities.StatusConfiguring || g.launching {
		g.mu.Unlock()
		// A second category tap after the game launched.
		return ErrAlreadyActive
	}
	g.launching = true
	count := g.RequestedCount
	initiator := g.Initiator
	g.mu.Unlock()

	batch, err := m.provider.Generate(ctx, category, count)
	if err != nil {
		m.registry.Remove(chatID)
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	rec := entities.NewGameRecord(chatID, initiator, category, count)
	if err := m.games.SaveGame(ctx, rec); err != nil {
		m.registry.Remove(chatID)
		return fmt.Errorf("save game record: %w", err)
	}

	g.mu.Lock()
	g.Category = category
	g.Batch = batch
	g.Status = entities.StatusActive
	g.Record = rec
	g.mu.Unlock()

	m.logger.Info("game started",
		zap.Int64("chat_id", chatID),
		zap.String("category", category),
		zap.Int("questions", count),
	)

	m.scheduler.After(m.cfg.StartDelay, chatID, timerOpenNext, func() {
		m.openNextQuestion(chatID)
	})

	return nil
}

// openNextQuestion serves the question at the current position, or
// finishes the game when the batch is exhausted.
func (m *Manager) openNextQuestion(chatID int64) {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return
	}

	g.mu.Lock()
	if g.Status != entities.StatusActive {
		g.mu.Unlock()
		return
	}

	if g.Position >= g.RequestedCount {
		g.mu.Unlock()
		m.finish(chatID, entities.StatusCompleted)
		return
	}

	pos := g.Position
	q := g.current()
	g.Phase = PhaseQuestionOpen
	g.OpenedAt = time.Now()
	g.HintsRevealed = 0
	number := pos + 1
	total := g.RequestedCount
	g.mu.Unlock()

	m.notifier.QuestionOpened(chatID, number, total, q.Text, m.cfg.AnswerWindow)

	// One reveal per hint, evenly spaced strictly before the deadline.
	for i := range q.Hints {
		offset := m.cfg.AnswerWindow * time.Duration(i+1) / time.Duration(len(q.Hints)+1)
		idx := i
		m.scheduler.After(offset, chatID, fmt.Sprintf("%s:%d:%d", timerHint, pos, idx), func() {
			m.revealHint(chatID, pos, idx)
		})
	}

	m.scheduler.After(m.cfg.AnswerWindow, chatID, fmt.Sprintf("%s:%d", timerTimeout, pos), func() {
		m.handleTimeout(chatID, pos)
	})
}

// revealHint re-sends the question with every hint revealed so far. A
// reveal firing after the question closed is a no-op.
func (m *Manager) revealHint(chatID int64, pos, idx int) {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return
	}

	g.mu.Lock()
	if g.Status != entities.StatusActive || g.Phase != PhaseQuestionOpen || g.Position != pos {
		g.mu.Unlock()
		return
	}

	q := g.current()
	if idx >= len(q.Hints) {
		g.mu.Unlock()
		return
	}

	g.HintsRevealed = idx + 1
	hints := q.Hints[:idx+1]
	number := pos + 1
	total := g.RequestedCount
	g.mu.Unlock()

	m.notifier.HintRevealed(chatID, number, total, q.Text, hints)
}

// handleTimeout closes an unanswered question, reveals the official answer
// and moves on. If an answer won the race, the phase check makes this a
// no-op.
func (m *Manager) handleTimeout(chatID int64, pos int) {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return
	}

	g.mu.Lock()
	if g.Status != entities.StatusActive || g.Phase != PhaseQuestionOpen || g.Position != pos {
		g.mu.Unlock()
		return
	}

	q := g.current()
	g.Phase = PhaseQuestionClosed
	g.Position++
	g.mu.Unlock()

	m.scheduler.CancelAll(chatID)
	m.notifier.QuestionTimedOut(chatID, q.OfficialAnswer)

	m.scheduler.After(m.cfg.TimeoutGrace, chatID, timerOpenNext, func() {
		m.openNextQuestion(chatID)
	})
}

// SubmitAnswer processes one incoming chat message as a potential answer.
// Anything that does not close the current question is silently ignored:
// wrong answers, answers for a closed question, answers predating the
// question open timestamp and answers inside the minimum-elapsed floor.
func (m *Manager) SubmitAnswer(chatID, userID int64, username, text string, sentAt time.Time) {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return
	}

	g.mu.Lock()
	if g.Status != entities.StatusActive || g.Phase != PhaseQuestionOpen {
		g.mu.Unlock()
		return
	}

	// A submission stamped before the question opened belongs to a stale
	// clock or a replay.
	if sentAt.Before(g.OpenedAt) {
		g.mu.Unlock()
		return
	}

	// Absorb the race window between the "question opened" send and
	// submission delivery.
	elapsed := time.Since(g.OpenedAt)
	if elapsed < m.cfg.MinElapsed {
		g.mu.Unlock()
		return
	}

	q := g.current()
	if !q.Matches(entities.NormalizeAnswer(text)) {
		g.mu.Unlock()
		return
	}

	points := Points(elapsed, m.cfg.AnswerWindow, m.cfg.DecayDivisor, m.cfg.BaseBonus)
	g.addPoints(userID, username, points)
	g.Phase = PhaseQuestionClosed
	g.Position++
	g.mu.Unlock()

	m.scheduler.CancelAll(chatID)

	remaining := m.cfg.AnswerWindow - elapsed
	if remaining < 0 {
		remaining = 0
	}
	m.notifier.AnswerAccepted(chatID, username, q.OfficialAnswer, points, remaining)

	m.logger.Info("answer accepted",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.Int("points", points),
		zap.Duration("elapsed", elapsed),
	)

	m.scheduler.After(m.cfg.AnswerGrace, chatID, timerOpenNext, func() {
		m.openNextQuestion(chatID)
	})
}

// EndEarly stops an active game on request. Only the initiator or a
// privileged user (chat admin, checked by the delivery layer) may do so.
func (m *Manager) EndEarly(chatID, userID int64, privileged bool) error {
	g, ok := m.registry.Get(chatID)
	if !ok {
		return ErrNoActiveGame
	}

	g.mu.Lock()
	if g.Status != entities.StatusActive {
		g.mu.Unlock()
		return ErrNoActiveGame
	}

	if userID != g.Initiator && !privileged {
		g.mu.Unlock()
		return ErrUnauthorized
	}
	g.mu.Unlock()

	m.logger.Info("game ended early",
		zap.Int64("chat_id", chatID),
		zap.Int64("by_user", userID),
	)

	m.finish(chatID, entities.StatusEndedEarly)

	return nil
}

// finish is the single terminal transition: it cancels all timers, writes
// the final records and removes the game from the registry. Persistence
// failures are logged but never block the removal, so the chat is free to
// start a new game even when the store is degraded.
func (m *Manager) finish(chatID int64, status string) {
	m.scheduler.CancelAll(chatID)

	g, ok := m.registry.Get(chatID)
	if !ok {
		return
	}

	g.mu.Lock()
	if g.Status != entities.StatusActive {
		g.mu.Unlock()
		return
	}
	g.Status = status

	completed := g.Position
	total := g.RequestedCount
	rec := g.Record

	scores := make(map[int64]entities.PlayerScore, len(g.Scores))
	for id, s := range g.Scores {
		scores[id] = s
	}
	g.mu.Unlock()

	standings := buildStandings(scores)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if rec != nil {
		rec.Finish(status, completed, scores)
		if err := m.games.FinishGame(ctx, rec); err != nil {
			m.logger.Error("failed to finalize game record",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}

	// Independent upserts: one user's failure must not cost the others
	// their points.
	now := time.Now()
	for userID, s := range scores {
		err := m.scores.UpsertScore(ctx, entities.ScoreLedgerEntry{
			UserID:      userID,
			ChatID:      chatID,
			Username:    s.Username,
			TotalPoints: s.Points,
			GamesPlayed: 1,
			LastPlayed:  now,
		})
		if err != nil {
			m.logger.Error("failed to upsert user score",
				zap.Int64("chat_id", chatID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	m.notifier.GameFinished(chatID, standings, status == entities.StatusEndedEarly, completed, total)

	m.registry.Remove(chatID)

	m.logger.Info("game finished",
		zap.Int64("chat_id", chatID),
		zap.String("status", status),
		zap.Int("questions_completed", completed),
	)
}

// Run blocks until ctx is done, periodically discarding games whose
// configuration was abandoned mid-keyboard. Without the sweep such a game
// blocks its chat forever.
func (m *Manager) Run(ctx context.Context) {
	c := cron.New()

	_, err := c.AddFunc("*/5 * * * *", func() {
		for _, chatID := range m.registry.Stale(m.cfg.ConfigTTL) {
			m.registry.Remove(chatID)
			m.logger.Info("discarded abandoned game configuration",
				zap.Int64("chat_id", chatID),
			)
		}
	})
	if err != nil {
		m.logger.Error("failed to add reaper cron job", zap.Error(err))
		return
	}

	c.Start()
	m.logger.Info("stale game reaper started")

	<-ctx.Done()

	c.Stop()
	m.scheduler.Stop()
	m.logger.Info("game manager stopped")
}

// buildStandings sorts scores by points descending; ties break by name so
// the order is stable.
func buildStandings(scores map[int64]entities.PlayerScore) []Standing {
	standings := make([]Standing, 0, len(scores))
	for userID, s := range scores {
		standings = append(standings, Standing{
			UserID:   userID,
			Username: s.Username,
			Points:   s.Points,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Username < standings[j].Username
	})

	return standings
}
