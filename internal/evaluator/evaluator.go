// Package evaluator decides whether a learner's answer is correct. Every
// function here is pure: an unknown question type or an answer of the wrong
// shape is simply incorrect, never an error.
package evaluator

import (
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// IsCorrect dispatches on the question type.
func IsCorrect(q *models.Question, answer models.Answer) bool {
	return isCorrect(q, answer, 0)
}

func isCorrect(q *models.Question, answer models.Answer, depth int) bool {
	if q == nil || answer.Type != q.Type {
		return false
	}

	switch q.Type {
	case models.MultipleChoice:
		return evaluateMultipleChoice(q, answer)
	case models.Identification:
		return evaluateIdentification(q, answer)
	case models.ReOrder:
		return evaluateReOrder(q, answer)
	case models.Matching:
		return evaluateMatching(q, answer)
	case models.ReadingPassage:
		if depth > 0 {
			return false
		}
		parts := evaluateParts(q, answer)
		if len(parts) == 0 {
			return false
		}
		for _, ok := range parts {
			if !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EvaluateParts grades each sub-question of a reading passage independently.
// The result is keyed by sub-question id; it is nil for other question types.
func EvaluateParts(q *models.Question, answer models.Answer) map[string]bool {
	if q == nil || q.Type != models.ReadingPassage || answer.Type != models.ReadingPassage {
		return nil
	}
	return evaluateParts(q, answer)
}

func evaluateParts(q *models.Question, answer models.Answer) map[string]bool {
	results := make(map[string]bool, len(q.SubQuestions))
	for i := range q.SubQuestions {
		sub := &q.SubQuestions[i]
		part, ok := answer.Parts[sub.ID]
		if !ok {
			part = models.EmptyAnswer(sub)
		}
		results[sub.ID] = isCorrect(sub, part, 1)
	}
	return results
}

func evaluateReOrder(q *models.Question, answer models.Answer) bool {
	expected := q.ExpectedOrder()
	if len(expected) == 0 || len(answer.Order) != len(expected) {
		return false
	}
	for i := range expected {
		if answer.Order[i] != expected[i] {
			return false
		}
	}
	return true
}

// evaluateMatching only checks that every row has both a left and a right
// selection; the chosen pairing itself is not compared.
func evaluateMatching(q *models.Question, answer models.Answer) bool {
	rows := len(q.Pairs)
	if rows == 0 {
		return false
	}

	left, right := 0, 0
	for row, sel := range answer.Matches {
		if row < 0 || row >= rows {
			continue
		}
		if sel.Left != "" {
			left++
		}
		if sel.Right != "" {
			right++
		}
	}
	return left == rows && right == rows
}
