package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
	"github.com/quizairium/trivia-bot/internal/game"
)

func TestRenderQuestionEscapesHTML(t *testing.T) {
	text := renderQuestion(1, 5, "Who wrote <Hamlet>?", 30*time.Second)

	assert.Contains(t, text, "Question 1/5")
	assert.Contains(t, text, "&lt;Hamlet&gt;")
	assert.Contains(t, text, "30 seconds")
}

func TestRenderHintsCumulative(t *testing.T) {
	text := renderHints(2, 5, "Which river flows through Cairo?", []string{"It is in Africa", "Its delta is in Egypt"})

	assert.Contains(t, text, "Hint 1: It is in Africa")
	assert.Contains(t, text, "Hint 2: Its delta is in Egypt")
}

func TestRenderFinalStandingsMedals(t *testing.T) {
	standings := []game.Standing{
		{Username: "Alice", Points: 9},
		{Username: "Bob", Points: 5},
		{Username: "Carol", Points: 2},
		{Username: "Dave", Points: 1},
	}

	text := renderFinalStandings(standings, false, 5, 5)

	assert.Contains(t, text, "FINAL LEADERBOARD")
	assert.Contains(t, text, "🥇 <b>Alice</b> - 9 pts")
	assert.Contains(t, text, "🥉 <b>Carol</b> - 2 pts")
	assert.Contains(t, text, "4. <b>Dave</b> - 1 pts")
	assert.NotContains(t, text, "Questions completed")
}

func TestRenderFinalStandingsEarlyEnd(t *testing.T) {
	text := renderFinalStandings(nil, true, 2, 5)

	assert.Contains(t, text, "no points were scored")
	assert.Contains(t, text, "Questions completed: 2/5")
}

func TestRenderStats(t *testing.T) {
	entry := &entities.ScoreLedgerEntry{
		Username:    "Alice",
		TotalPoints: 21,
		GamesPlayed: 2,
		LastPlayed:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	text := renderStats(entry)

	assert.Contains(t, text, "Games played: 2")
	assert.Contains(t, text, "Total points: 21")
	assert.Contains(t, text, "Average per game: 10.5")
	assert.Contains(t, text, "2026-08-01")
}

func TestRenderLeaderboard(t *testing.T) {
	entries := []entities.ScoreLedgerEntry{
		{Username: "Alice", TotalPoints: 40, GamesPlayed: 4},
		{Username: "Bob & Co", TotalPoints: 12, GamesPlayed: 3},
	}

	text := renderLeaderboard(entries)

	assert.Contains(t, text, "CHAT LEADERBOARD")
	assert.Contains(t, text, "🥇 <b>Alice</b> - 40 pts (4 games)")
	assert.Contains(t, text, "Bob &amp; Co")
}
