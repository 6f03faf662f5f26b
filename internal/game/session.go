package game

import (
	"sync"
	"time"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

// Phase describes whether the current question is open for answers.
type Phase string

const (
	PhaseAwaitingQuestion Phase = "awaiting_question"
	PhaseQuestionOpen     Phase = "question_open"
	PhaseQuestionClosed   Phase = "question_closed"
)

// Game is one live trivia session bound to a single chat. All mutable
// fields are guarded by mu; timer callbacks and incoming submissions both
// lock the game before touching it, so the loser of an answer/timeout race
// sees the closed phase and backs off.
type Game struct {
	mu sync.Mutex

	ChatID         int64
	Initiator      int64
	Category       string
	RequestedCount int
	Batch          entities.QuestionBatch

	// Position is the 0-based index of the question currently open, or,
	// once closed, of the next question to serve. It only ever grows.
	Position      int
	Phase         Phase
	HintsRevealed int
	OpenedAt      time.Time

	Scores    map[int64]entities.PlayerScore
	Status    string
	Record    *entities.GameRecord
	CreatedAt time.Time

	// launching is set while the batch fetch is in flight so a doubled
	// category tap cannot start the loop twice.
	launching bool
}

func newGame(chatID, initiator int64) *Game {
	return &Game{
		ChatID:    chatID,
		Initiator: initiator,
		Phase:     PhaseAwaitingQuestion,
		Scores:    make(map[int64]entities.PlayerScore),
		Status:    entities.StatusConfiguring,
		CreatedAt: time.Now(),
	}
}

// current returns the question at Position. Callers must hold mu and have
// checked Position < len(Batch).
func (g *Game) current() entities.QuestionRecord {
	return g.Batch[g.Position]
}

// addPoints accumulates points for a user, creating the entry on first
// accepted answer. Totals never decrease within a session.
func (g *Game) addPoints(userID int64, username string, points int) {
	score := g.Scores[userID]
	score.Username = username
	score.Points += points
	g.Scores[userID] = score
}

// Standing is one row of the final leaderboard.
type Standing struct {
	UserID   int64
	Username string
	Points   int
}
