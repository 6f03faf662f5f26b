package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
	"github.com/quizairium/trivia-bot/internal/infra/postgres"
)

// GameRepository persists game records.
type GameRepository struct {
	db postgres.DBTX
}

// NewGameRepository creates a new GameRepository with the provided database pool.
func NewGameRepository(db postgres.DBTX) *GameRepository {
	return &GameRepository{db: db}
}

// SaveGame inserts the initial record for a freshly started game.
func (r *GameRepository) SaveGame(ctx context.Context, rec *entities.GameRecord) error {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	query := `
		INSERT INTO games (id, chat_id, category, category_name, requested_count, scores, status, started_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		rec.ID,
		rec.ChatID,
		rec.Category,
		rec.CategoryName,
		rec.RequestedCount,
		scores,
		rec.Status,
		rec.StartedBy,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}

	return nil
}

// FinishGame writes the terminal state of a game: final scores, status,
// completion time and how many questions were played out.
func (r *GameRepository) FinishGame(ctx context.Context, rec *entities.GameRecord) error {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	query := `
		UPDATE games
		SET scores = $2, status = $3, questions_completed = $4, completed_at = $5
		WHERE id = $1
	`

	_, err = r.db.Exec(ctx, query,
		rec.ID,
		scores,
		rec.Status,
		rec.QuestionsCompleted,
		rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}

	return nil
}
