package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
	"github.com/quizairium/trivia-bot/internal/infra/postgres"
)

var ErrScoreNotFound = errors.New("score not found")

// ScoreRepository provides access to cumulative per-user, per-chat scores.
type ScoreRepository struct {
	db postgres.DBTX
}

// NewScoreRepository creates a new ScoreRepository with the provided database pool.
func NewScoreRepository(db postgres.DBTX) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// UpsertScore adds a finished game's points to the user's running total,
// creating the row on first play. Totals only ever grow.
func (r *ScoreRepository) UpsertScore(ctx context.Context, entry entities.ScoreLedgerEntry) error {
	query := `
		INSERT INTO scores (user_id, chat_id, username, total_points, games_played, last_played)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, chat_id) DO UPDATE SET
			total_points = scores.total_points + EXCLUDED.total_points,
			games_played = scores.games_played + EXCLUDED.games_played,
			username = EXCLUDED.username,
			last_played = EXCLUDED.last_played
	`

	_, err := r.db.Exec(ctx, query,
		entry.UserID,
		entry.ChatID,
		entry.Username,
		entry.TotalPoints,
		entry.GamesPlayed,
		entry.LastPlayed,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	return nil
}

// GetByUser retrieves one user's cumulative score in a chat.
func (r *ScoreRepository) GetByUser(ctx context.Context, userID, chatID int64) (*entities.ScoreLedgerEntry, error) {
	query := `
		SELECT user_id, chat_id, username, total_points, games_played, last_played
		FROM scores
		WHERE user_id = $1 AND chat_id = $2
	`

	var entry entities.ScoreLedgerEntry
	err := r.db.QueryRow(ctx, query, userID, chatID).Scan(
		&entry.UserID,
		&entry.ChatID,
		&entry.Username,
		&entry.TotalPoints,
		&entry.GamesPlayed,
		&entry.LastPlayed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("get score: %w", err)
	}

	return &entry, nil
}

// Top returns the chat's best players ordered by total points.
func (r *ScoreRepository) Top(ctx context.Context, chatID int64, limit int) ([]entities.ScoreLedgerEntry, error) {
	query := `
		SELECT user_id, chat_id, username, total_points, games_played, last_played
		FROM scores
		WHERE chat_id = $1
		ORDER BY total_points DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var entries []entities.ScoreLedgerEntry
	for rows.Next() {
		var entry entities.ScoreLedgerEntry
		err := rows.Scan(
			&entry.UserID,
			&entry.ChatID,
			&entry.Username,
			&entry.TotalPoints,
			&entry.GamesPlayed,
			&entry.LastPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}

	return entries, nil
}
