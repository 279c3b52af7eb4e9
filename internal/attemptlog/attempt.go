// Package attemptlog derives the metadata attached to every attempt and
// interaction a learner produces. Logs are append-only: functions here build
// new entries or return extended copies and never modify existing ones.
package attemptlog

import (
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

const (
	highConfidenceUnder = 5 * time.Second
	lowConfidenceOver   = 15 * time.Second
	lowConfidenceAfter  = 2
)

// Attempt describes one answer mutation on a question.
type Attempt struct {
	Question          *models.Question
	Answer            models.Answer
	Type              models.AttemptType
	At                time.Time
	QuestionStartedAt time.Time
	TimeSpent         time.Duration
	IsCorrect         *bool
	TimedOut          bool
}

// NewEntry builds the log entry for a, given the question's history so far.
func NewEntry(history []models.AttemptLogEntry, a Attempt) models.AttemptLogEntry {
	serialized := a.Answer.Serialize()
	attemptNumber := len(history) + 1

	return models.AttemptLogEntry{
		AnswerSerialized:    serialized,
		TimeSpentMs:         a.TimeSpent.Milliseconds(),
		Timestamp:           a.At,
		AttemptType:         a.Type,
		HesitationTimeMs:    Hesitation(history, a.QuestionStartedAt, a.At).Milliseconds(),
		IsSignificantChange: IsSignificantChange(history, serialized),
		QuestionPhase:       InferPhase(a.Question, a.Answer),
		Confidence:          EstimateConfidence(attemptNumber, a.TimeSpent/time.Duration(attemptNumber)),
		IsCorrect:           a.IsCorrect,
		TimedOut:            a.TimedOut,
	}
}

// Append returns history extended by entry. The input slice is not shared
// with the result.
func Append(history []models.AttemptLogEntry, entry models.AttemptLogEntry) []models.AttemptLogEntry {
	out := make([]models.AttemptLogEntry, len(history), len(history)+1)
	copy(out, history)
	return append(out, entry)
}

// Hesitation is the time since the previous attempt on the question, or
// since the question was displayed for the first attempt.
func Hesitation(history []models.AttemptLogEntry, questionStartedAt, now time.Time) time.Duration {
	since := questionStartedAt
	if n := len(history); n > 0 {
		since = history[n-1].Timestamp
	}
	if now.Before(since) {
		return 0
	}
	return now.Sub(since)
}

// IsSignificantChange reports whether serialized differs from the previous
// attempt. The first attempt is always significant.
func IsSignificantChange(history []models.AttemptLogEntry, serialized string) bool {
	if len(history) == 0 {
		return true
	}
	return history[len(history)-1].AnswerSerialized != serialized
}

// InferPhase guesses what the learner is doing from the shape of the answer.
// An empty multi-answer choice counts as thinking rather than reading.
func InferPhase(q *models.Question, answer models.Answer) models.QuestionPhase {
	if q != nil && q.Type == models.MultipleChoice && q.MultiAnswer && len(answer.Choices) == 0 {
		return models.PhaseThinking
	}
	if answer.IsEmpty() {
		return models.PhaseReading
	}
	if q != nil && q.Type == models.ReOrder && len(answer.Order) < len(q.ReorderItems) {
		return models.PhaseAnswering
	}
	return models.PhaseReviewing
}

func EstimateConfidence(attemptNumber int, timePerAttempt time.Duration) models.Confidence {
	switch {
	case attemptNumber == 1 && timePerAttempt < highConfidenceUnder:
		return models.ConfidenceHigh
	case attemptNumber > lowConfidenceAfter || timePerAttempt > lowConfidenceOver:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}

// TimeByPhase attributes each entry's hesitation to the phase it was logged in.
func TimeByPhase(history []models.AttemptLogEntry) map[models.QuestionPhase]int64 {
	out := make(map[models.QuestionPhase]int64)
	for _, entry := range history {
		out[entry.QuestionPhase] += entry.HesitationTimeMs
	}
	return out
}
