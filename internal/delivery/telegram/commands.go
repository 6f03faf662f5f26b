package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/quizairium/trivia-bot/internal/game"
	"github.com/quizairium/trivia-bot/internal/infra/postgres/repository"
)

// handleEndCommand stops the running game when the requester is allowed
// to: either they started the game or they administer the chat.
func (h *Handler) handleEndCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	from := msg.From
	if from == nil {
		return
	}

	err := h.gameService.EndEarly(chatID, from.ID, h.isChatAdmin(chatID, from.ID))
	switch {
	case errors.Is(err, game.ErrNoActiveGame):
		h.send(newHTMLMessage(chatID, msgNothingToEnd))
	case errors.Is(err, game.ErrUnauthorized):
		h.send(newHTMLMessage(chatID, msgEndUnauthorized))
	case err != nil:
		h.logger.Error("failed to end game",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		h.sendError(chatID, msgInternalError)
	default:
		h.send(newHTMLMessage(chatID, msgEndedEarly))
	}
}

// statsHandler shows the requester's cumulative stats in this chat.
func (h *Handler) statsHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		entry, err := h.scoreService.GetByUser(ctx, userID, chatID)
		if err != nil {
			if errors.Is(err, repository.ErrScoreNotFound) {
				h.send(newHTMLMessage(chatID, msgNoStatsYet))
				return nil
			}
			return fmt.Errorf("get user stats: %w", err)
		}

		h.send(newHTMLMessage(chatID, renderStats(entry)))
		return nil
	}
}

// leaderboardHandler shows the chat's all-time top players.
func (h *Handler) leaderboardHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		entries, err := h.scoreService.Top(ctx, chatID, h.cfg.LeaderboardSize)
		if err != nil {
			return fmt.Errorf("get leaderboard: %w", err)
		}

		if len(entries) == 0 {
			h.send(newHTMLMessage(chatID, msgNoLeaderboardYet))
			return nil
		}

		h.send(newHTMLMessage(chatID, renderLeaderboard(entries)))
		return nil
	}
}

// isChatAdmin reports whether the user administers the chat. Lookup
// failures count as not privileged; the initiator path still works.
func (h *Handler) isChatAdmin(chatID, userID int64) bool {
	member, err := h.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		h.logger.Warn("failed to get chat member",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false
	}

	return member.IsAdministrator() || member.IsCreator()
}
