package entities

import (
	"time"

	"github.com/google/uuid"
)

// Game statuses.
const (
	StatusConfiguring = "configuring" // count/category selection in progress
	StatusActive      = "active"      // question loop running
	StatusCompleted   = "completed"   // all questions played out
	StatusEndedEarly  = "ended_early" // stopped by /end
)

// PlayerScore is one user's running total within a single game.
type PlayerScore struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// GameRecord is the persisted form of a game. It is inserted when the
// question batch is ready and updated once with the final scores when the
// game reaches a terminal status.
type GameRecord struct {
	ID                 uuid.UUID
	ChatID             int64
	Category           string
	CategoryName       string
	RequestedCount     int
	QuestionsCompleted int
	Scores             map[int64]PlayerScore
	Status             string
	StartedBy          int64
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// NewGameRecord creates the initial persisted record for a freshly
// started game.
func NewGameRecord(chatID, startedBy int64, category string, count int) *GameRecord {
	return &GameRecord{
		ID:             uuid.New(),
		ChatID:         chatID,
		Category:       category,
		CategoryName:   CategoryTitle(category),
		RequestedCount: count,
		Scores:         map[int64]PlayerScore{},
		Status:         StatusActive,
		StartedBy:      startedBy,
		CreatedAt:      time.Now(),
	}
}

// Finish marks the record terminal and stamps the completion time.
func (g *GameRecord) Finish(status string, questionsCompleted int, scores map[int64]PlayerScore) {
	g.Status = status
	g.QuestionsCompleted = questionsCompleted
	g.Scores = scores
	now := time.Now()
	g.CompletedAt = &now
}
