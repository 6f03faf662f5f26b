package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

const systemPrompt = "You are a question generator for a university trivia club. Always respond with valid JSON only."

const promptTemplate = `Generate %d university challenge questions in the %s category.

Return a JSON object with exactly this structure:
{
    "questions": [
        {
            "question": "The question here",
            "official_answer": "The main correct answer",
            "acceptable_answers": ["answer1", "answer2", "answer3"],
            "hints": ["a vague hint", "a more revealing hint"]
        }
    ]
}

The acceptable_answers should include the official answer plus alternative ways to express the same answer (different spellings, abbreviations, etc.). Make sure all answers are lowercase for easier matching. Each question gets two hints, ordered from vague to revealing, neither of which states the answer outright.

Make the questions as difficult as you would expect in the University Challenge. Ensure all %d questions are unique and varied within the category.`

// chatCompleter is the slice of the OpenAI client the service uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds provider tunables.
type Config struct {
	Model       string        // chat model name
	Timeout     time.Duration // per-call deadline
	UseFallback bool          // serve the fixed batch instead of failing
}

// Service generates question batches through the OpenAI chat completion
// API. Whatever the provider returns, the batch handed out has exactly the
// requested length: short responses are padded with deterministic fillers,
// long ones are truncated, and outright failures yield the fixed fallback
// rotation when the fallback policy is on.
type Service struct {
	client chatCompleter
	cfg    Config
	logger *zap.Logger
}

func New(apiKey string, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		client: openai.NewClient(apiKey),
		cfg:    cfg,
		logger: logger,
	}
}

// payload mirrors the JSON the model is asked to produce.
type payload struct {
	Questions []struct {
		Question          string   `json:"question"`
		OfficialAnswer    string   `json:"official_answer"`
		AcceptableAnswers []string `json:"acceptable_answers"`
		Hints             []string `json:"hints"`
	} `json:"questions"`
}

// Generate requests count questions for the category and shapes the result
// into a valid batch.
func (s *Service) Generate(ctx context.Context, category string, count int) (entities.QuestionBatch, error) {
	batch, err := s.request(ctx, category, count)
	if err != nil {
		if s.cfg.UseFallback {
			s.logger.Warn("question generation failed, serving fallback batch",
				zap.String("category", category),
				zap.Error(err),
			)
			return fallbackBatch(count), nil
		}
		return nil, err
	}

	if len(batch) < count {
		s.logger.Warn("provider returned short batch, padding with fillers",
			zap.Int("requested", count),
			zap.Int("got", len(batch)),
		)
		for len(batch) < count {
			batch = append(batch, fillerQuestion(len(batch)))
		}
	}

	return batch[:count], nil
}

func (s *Service) request(ctx context.Context, category string, count int) (entities.QuestionBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, count, entities.CategoryTitle(category), count)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   3000,
		Temperature: 0.95,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var p payload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &p); err != nil {
		return nil, fmt.Errorf("decode questions payload: %w", err)
	}

	if len(p.Questions) == 0 {
		return nil, fmt.Errorf("questions payload is empty")
	}

	batch := make(entities.QuestionBatch, 0, len(p.Questions))
	for _, q := range p.Questions {
		rec := entities.QuestionRecord{
			Text:              q.Question,
			OfficialAnswer:    q.OfficialAnswer,
			AcceptableAnswers: q.AcceptableAnswers,
			Hints:             q.Hints,
		}.Normalize()

		// A record with no usable acceptable answers would be unwinnable.
		if len(rec.AcceptableAnswers) == 0 {
			if official := entities.NormalizeAnswer(rec.OfficialAnswer); official != "" {
				rec.AcceptableAnswers = []string{official}
			} else {
				continue
			}
		}

		batch = append(batch, rec)
	}

	return batch, nil
}
