package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

// countOptions are the question counts offered during setup.
var countOptions = []int{5, 10, 15, 20}

// buildCountKeyboard builds the question count selection keyboard.
func buildCountKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, count := range countOptions {
		label := fmt.Sprintf("%d Questions", count)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildCountCallback(count)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildCategoryKeyboard builds the category selection keyboard.
func buildCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range entities.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Title, buildCategoryCallback(c.Key)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
