package generator

import (
	"fmt"
	"strconv"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

// fallbackQuestions is the fixed rotation used when the provider fails
// outright. Deliberately trivial: a degraded game beats no game.
var fallbackQuestions = []entities.QuestionRecord{
	{
		Text:              "What is the capital of France?",
		OfficialAnswer:    "Paris",
		AcceptableAnswers: []string{"paris"},
	},
	{
		Text:              "What is 2 + 2?",
		OfficialAnswer:    "4",
		AcceptableAnswers: []string{"4", "four"},
	},
	{
		Text:              "What color do you get when you mix red and blue?",
		OfficialAnswer:    "Purple",
		AcceptableAnswers: []string{"purple", "violet"},
	},
}

// fallbackBatch builds a batch of the requested size by cycling the fixed
// rotation.
func fallbackBatch(count int) entities.QuestionBatch {
	batch := make(entities.QuestionBatch, 0, count)
	for i := 0; i < count; i++ {
		batch = append(batch, fallbackQuestions[i%len(fallbackQuestions)])
	}
	return batch
}

// fillerQuestion pads a short provider batch. The arithmetic depends only
// on the slot index, so padding is deterministic.
func fillerQuestion(index int) entities.QuestionRecord {
	answer := strconv.Itoa(2 + index)
	return entities.QuestionRecord{
		Text:              fmt.Sprintf("What is 2 + %d?", index),
		OfficialAnswer:    answer,
		AcceptableAnswers: []string{answer},
	}
}
