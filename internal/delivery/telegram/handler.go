package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Config holds the delivery-level knobs the handler needs for rendering.
type Config struct {
	LeaderboardSize int
	StartDelay      time.Duration
}

type Handler struct {
	bot          *tgbotapi.BotAPI
	logger       *zap.Logger
	cfg          Config
	gameService  GameService
	scoreService ScoreService
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	cfg Config,
	gameService GameService,
	scoreService ScoreService,
) *Handler {
	return &Handler{
		bot:          bot,
		logger:       logger,
		cfg:          cfg,
		gameService:  gameService,
		scoreService: scoreService,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	from := msg.From
	if from == nil {
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text),
	)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.handleStartCommand(msg)

		case "end":
			h.handleEndCommand(msg)

		case "stats":
			_ = h.withErrorHandling(h.statsHandler(from.ID))(ctx, chatID)

		case "leaderboard":
			_ = h.withErrorHandling(h.leaderboardHandler())(ctx, chatID)

		case "help":
			h.send(newHTMLMessage(chatID, msgHelp))

		default:
			h.send(newHTMLMessage(chatID, msgUnknownCommand))
		}

		return
	}

	// Any plain group text while a game runs is a potential answer.
	if msg.Text != "" && isGroup(msg.Chat) {
		h.gameService.SubmitAnswer(chatID, from.ID, displayName(from), msg.Text, msg.Time())
	}
}

// handleStartCommand opens the configuration flow with the question count
// keyboard. Games only run in group chats, one at a time.
func (h *Handler) handleStartCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !isGroup(msg.Chat) {
		h.send(newHTMLMessage(chatID, msgGroupOnly))
		return
	}

	if h.gameService.Active(chatID) {
		h.send(newHTMLMessage(chatID, msgAlreadyActive))
		return
	}

	reply := newHTMLMessage(chatID, msgWelcome)
	reply.ReplyMarkup = buildCountKeyboard()
	h.send(reply)
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
