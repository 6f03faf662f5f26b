package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
	"github.com/quizairium/trivia-bot/internal/game"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	cd := decodeCallback(cb.Data)

	switch cd.Action {
	case actionCount:
		h.handleCountCallback(cb, cd)
	case actionCategory:
		h.handleCategoryCallback(ctx, cb, cd)
	default:
		return
	}

	// Remove the user's "clock".
	answer := tgbotapi.NewCallback(cb.ID, "")
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}

// handleCountCallback registers the configuring game with the chosen
// question count and advances to category selection.
func (h *Handler) handleCountCallback(cb *tgbotapi.CallbackQuery, cd callbackData) {
	chatID := cb.Message.Chat.ID

	if len(cd.Params) != 1 {
		h.logger.Warn("invalid count callback data", zap.String("data", cb.Data))
		return
	}

	count, err := strconv.Atoi(cd.Params[0])
	if err != nil || count <= 0 {
		h.logger.Warn("invalid count in callback", zap.String("data", cb.Data))
		return
	}

	if err := h.gameService.Create(chatID, cb.From.ID, count); err != nil {
		if errors.Is(err, game.ErrAlreadyActive) {
			h.send(newHTMLMessage(chatID, msgAlreadyActive))
		}
		return
	}

	edit := newHTMLEdit(chatID, cb.Message.MessageID, renderCategoryPrompt(count))
	kb := buildCategoryKeyboard()
	edit.ReplyMarkup = &kb
	h.send(edit)
}

// handleCategoryCallback launches the game. Generation takes a while, so
// the launch runs on its own goroutine and edits the progress message when
// it resolves; the update loop stays free for other chats.
func (h *Handler) handleCategoryCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	if len(cd.Params) != 1 || !entities.ValidCategory(cd.Params[0]) {
		h.logger.Warn("invalid category callback data", zap.String("data", cb.Data))
		return
	}
	category := cd.Params[0]

	count := h.gameService.RequestedCount(chatID)
	if count == 0 {
		h.send(newHTMLEdit(chatID, messageID, msgNoGameToConfigure))
		return
	}

	h.send(newHTMLEdit(chatID, messageID, renderGenerating(count, category)))

	go func() {
		if err := h.gameService.Launch(ctx, chatID, category); err != nil {
			if errors.Is(err, game.ErrAlreadyActive) {
				// Doubled category tap; the first one is launching.
				return
			}
			h.logger.Error("failed to launch game",
				zap.Int64("chat_id", chatID),
				zap.String("category", category),
				zap.Error(err),
			)
			h.gameService.Abort(chatID)
			h.send(newHTMLEdit(chatID, messageID, msgGenerationFailed))
			return
		}

		h.send(newHTMLEdit(chatID, messageID, renderReady(count, category, h.cfg.StartDelay)))
	}()
}
