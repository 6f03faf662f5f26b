package game

import (
	"context"
	"time"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

// Provider supplies a question batch for a category. Implementations own
// their timeout and fallback policy; the manager treats the call as
// all-or-nothing.
type Provider interface {
	Generate(ctx context.Context, category string, count int) (entities.QuestionBatch, error)
}

// GameStore persists game records: one insert when the game starts, one
// update when it ends.
type GameStore interface {
	SaveGame(ctx context.Context, rec *entities.GameRecord) error
	FinishGame(ctx context.Context, rec *entities.GameRecord) error
}

// ScoreStore accumulates per-user, per-chat totals. Upserts at game end
// are independent per user; a failed one must not block the rest.
type ScoreStore interface {
	UpsertScore(ctx context.Context, entry entities.ScoreLedgerEntry) error
}

// Notifier delivers game events to the chat. Rendering lives behind it so
// the state machine never formats user-facing text.
type Notifier interface {
	QuestionOpened(chatID int64, number, total int, text string, window time.Duration)
	HintRevealed(chatID int64, number, total int, text string, hints []string)
	AnswerAccepted(chatID int64, username, officialAnswer string, points int, remaining time.Duration)
	QuestionTimedOut(chatID int64, officialAnswer string)
	GameFinished(chatID int64, standings []Standing, early bool, questionsCompleted, total int)
}

// Config holds the game loop tunables.
type Config struct {
	AnswerWindow time.Duration // how long a question stays open
	DecayDivisor time.Duration // seconds of remaining time per point
	BaseBonus    int           // flat bonus added to any in-window correct answer
	MinElapsed   time.Duration // floor before any submission can be accepted
	AnswerGrace  time.Duration // pause after a correct answer
	TimeoutGrace time.Duration // pause after a timeout reveal
	StartDelay   time.Duration // pause between batch ready and first question
	ConfigTTL    time.Duration // max age of an unfinished configuration
}
