package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
	"github.com/quizairium/trivia-bot/internal/game"
)

const (
	msgWelcome = "🎯 Welcome to Trivia Bot! 🎯\n\n" +
		"Choose the number of questions for your trivia game:"

	msgGroupOnly = "This bot only works in group chats! Add me to a group to start playing trivia."

	msgAlreadyActive = "There's already an active trivia game in this chat! Please wait for it to finish."

	msgGenerationFailed = "❌ Failed to generate questions. Please try again with /start"

	msgNothingToEnd = "There's no active game to end!"

	msgNoGameToConfigure = "Error: No active game found. Please start a new game with /start"

	msgEndUnauthorized = "❌ Only the player who started the game or group admins can end the game early!"

	msgEndedEarly = "🛑 Game ended early by admin/starter!"

	msgNoStatsYet = "You haven't played any games yet! Use /start to begin."

	msgNoLeaderboardYet = "No games have been played in this chat yet!"

	msgUnknownCommand = "Unknown command. Try /start, /stats or /leaderboard."

	msgInternalError = "Something went wrong. Please try again later."

	msgHelp = "🎯 <b>Trivia Bot</b>\n\n" +
		"/start — start a new trivia game (groups only)\n" +
		"/end — end the current game early (starter or admins)\n" +
		"/stats — your personal stats in this chat\n" +
		"/leaderboard — top players of this chat"
)

var medals = []string{"🥇", "🥈", "🥉"}

// renderCategoryPrompt asks for a category after the count was chosen.
func renderCategoryPrompt(count int) string {
	return fmt.Sprintf("Great! You've chosen %d questions.\n\nNow select a category:", count)
}

// renderGenerating is shown while the question batch is being produced.
func renderGenerating(count int, category string) string {
	return fmt.Sprintf(
		"🎮 Setting up trivia game!\n📊 Questions: %d\n📚 Category: %s\n\n🤖 Generating all questions... Please wait!",
		count,
		entities.CategoryTitle(category),
	)
}

// renderReady announces the generated batch and the imminent start.
func renderReady(count int, category string, startDelay time.Duration) string {
	return fmt.Sprintf(
		"✅ All questions generated!\n📊 Questions: %d\n📚 Category: %s\n\n🚀 Starting in %d seconds...",
		count,
		entities.CategoryTitle(category),
		int(startDelay.Seconds()),
	)
}

// renderQuestion formats an open question.
func renderQuestion(number, total int, text string, window time.Duration) string {
	return fmt.Sprintf(
		"❓ <b>Question %d/%d</b>\n\n%s\n\n⏱️ You have %d seconds to answer!",
		number,
		total,
		html.EscapeString(text),
		int(window.Seconds()),
	)
}

// renderHints re-sends the question with every hint revealed so far.
func renderHints(number, total int, text string, hints []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❓ <b>Question %d/%d</b>\n\n%s\n", number, total, html.EscapeString(text))
	for i, hint := range hints {
		fmt.Fprintf(&b, "\n💡 Hint %d: %s", i+1, html.EscapeString(hint))
	}
	return b.String()
}

// renderAnswerAccepted congratulates the first correct answer.
func renderAnswerAccepted(username, officialAnswer string, points int, remaining time.Duration) string {
	return fmt.Sprintf(
		"🎉 Correct! <b>%s</b> got it right!\nAnswer: %s\nPoints earned: %d pts (+%.1fs remaining)",
		html.EscapeString(username),
		html.EscapeString(officialAnswer),
		points,
		remaining.Seconds(),
	)
}

// renderTimeout reveals the official answer after the window closed.
func renderTimeout(officialAnswer string) string {
	return fmt.Sprintf("⏰ Time's up! The correct answer was: <b>%s</b>", html.EscapeString(officialAnswer))
}

// renderFinalStandings formats the game-end leaderboard.
func renderFinalStandings(standings []game.Standing, early bool, questionsCompleted, total int) string {
	var b strings.Builder

	switch {
	case len(standings) == 0 && early:
		b.WriteString("🛑 Game ended early - no points were scored!")
	case len(standings) == 0:
		b.WriteString("🤷‍♂️ No one scored any points this round! Better luck next time!")
	default:
		if early {
			b.WriteString("🛑 <b>GAME ENDED EARLY</b> 🏆\n\n")
		} else {
			b.WriteString("🏆 <b>FINAL LEADERBOARD</b> 🏆\n\n")
		}
		for i, s := range standings {
			medal := fmt.Sprintf("%d.", i+1)
			if i < len(medals) {
				medal = medals[i]
			}
			fmt.Fprintf(&b, "%s <b>%s</b> - %d pts\n", medal, html.EscapeString(s.Username), s.Points)
		}
	}

	b.WriteString("\n")
	if early {
		fmt.Fprintf(&b, "Questions completed: %d/%d\n", questionsCompleted, total)
	}
	b.WriteString("🎮 Thanks for playing!\nUse /start to play again.")

	return b.String()
}

// renderStats formats one user's cumulative stats.
func renderStats(entry *entities.ScoreLedgerEntry) string {
	return fmt.Sprintf(
		"📊 <b>Your Stats</b> 📊\n\n🎮 Games played: %d\n🎯 Total points: %d\n📈 Average per game: %.1f\n🕒 Last played: %s",
		entry.GamesPlayed,
		entry.TotalPoints,
		entry.AveragePoints(),
		entry.LastPlayed.Format("2006-01-02"),
	)
}

// renderLeaderboard formats the chat's all-time top players.
func renderLeaderboard(entries []entities.ScoreLedgerEntry) string {
	var b strings.Builder
	b.WriteString("🏆 <b>CHAT LEADERBOARD</b> 🏆\n\n")

	for i, e := range entries {
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		fmt.Fprintf(&b, "%s <b>%s</b> - %d pts (%d games)\n", medal, html.EscapeString(e.Username), e.TotalPoints, e.GamesPlayed)
	}

	return b.String()
}
