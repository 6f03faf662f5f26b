package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/quizairium/trivia-bot/internal/game"
)

// Notifier renders game events into chat messages. It implements
// game.Notifier so the state machine stays free of Telegram concerns.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewNotifier(bot *tgbotapi.BotAPI, logger *zap.Logger) *Notifier {
	return &Notifier{bot: bot, logger: logger}
}

func (n *Notifier) QuestionOpened(chatID int64, number, total int, text string, window time.Duration) {
	n.send(newHTMLMessage(chatID, renderQuestion(number, total, text, window)))
}

func (n *Notifier) HintRevealed(chatID int64, number, total int, text string, hints []string) {
	n.send(newHTMLMessage(chatID, renderHints(number, total, text, hints)))
}

func (n *Notifier) AnswerAccepted(chatID int64, username, officialAnswer string, points int, remaining time.Duration) {
	n.send(newHTMLMessage(chatID, renderAnswerAccepted(username, officialAnswer, points, remaining)))
}

func (n *Notifier) QuestionTimedOut(chatID int64, officialAnswer string) {
	n.send(newHTMLMessage(chatID, renderTimeout(officialAnswer)))
}

func (n *Notifier) GameFinished(chatID int64, standings []game.Standing, early bool, questionsCompleted, total int) {
	n.send(newHTMLMessage(chatID, renderFinalStandings(standings, early, questionsCompleted, total)))
}

func (n *Notifier) send(c tgbotapi.Chattable) {
	if _, err := n.bot.Send(c); err != nil {
		n.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
