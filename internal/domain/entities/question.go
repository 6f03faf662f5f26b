package entities

import "strings"

// QuestionRecord is a single trivia question with its accepted answers.
// Records are immutable once the batch is built; AcceptableAnswers are
// stored in normalized form (see NormalizeAnswer).
type QuestionRecord struct {
	Text              string   // question text shown to the chat
	OfficialAnswer    string   // canonical answer revealed on timeout
	AcceptableAnswers []string // normalized strings considered correct
	Hints             []string // optional, revealed one by one before timeout
}

// QuestionBatch is the full ordered set of questions for one game.
type QuestionBatch []QuestionRecord

// NormalizeAnswer lower-cases a string, trims surrounding whitespace and
// strips a single leading "the". The same normalization is applied to
// provider answers at batch build time and to user submissions at match
// time, so matching is plain string equality.
func NormalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "the ")
	return strings.TrimSpace(s)
}

// Matches reports whether an already-normalized submission is in the
// acceptable set.
func (q QuestionRecord) Matches(normalized string) bool {
	for _, a := range q.AcceptableAnswers {
		if a == normalized {
			return true
		}
	}
	return false
}

// Normalize returns a copy of the record with its acceptable answers
// normalized. The official answer keeps its original casing for display.
func (q QuestionRecord) Normalize() QuestionRecord {
	normalized := make([]string, 0, len(q.AcceptableAnswers))
	for _, a := range q.AcceptableAnswers {
		if n := NormalizeAnswer(a); n != "" {
			normalized = append(normalized, n)
		}
	}
	q.AcceptableAnswers = normalized
	return q
}
