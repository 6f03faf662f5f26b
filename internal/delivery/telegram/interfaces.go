package telegram

import (
	"context"
	"time"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

// GameService is the slice of the game manager the handler drives.
type GameService interface {
	Active(chatID int64) bool
	Create(chatID, initiator int64, count int) error
	Launch(ctx context.Context, chatID int64, category string) error
	SubmitAnswer(chatID, userID int64, username, text string, sentAt time.Time)
	EndEarly(chatID, userID int64, privileged bool) error
	Abort(chatID int64)
	RequestedCount(chatID int64) int
}

// ScoreService reads back cumulative scores for /stats and /leaderboard.
type ScoreService interface {
	GetByUser(ctx context.Context, userID, chatID int64) (*entities.ScoreLedgerEntry, error)
	Top(ctx context.Context, chatID int64, limit int) ([]entities.ScoreLedgerEntry, error)
}
