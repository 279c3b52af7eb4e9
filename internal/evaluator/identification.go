package evaluator

import (
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

func evaluateIdentification(q *models.Question, answer models.Answer) bool {
	if q.Answer == nil || len(q.Answer.Values) == 0 {
		return false
	}

	settings := q.Settings()
	n := normalizer{
		caseSensitive: settings.CaseSensitive,
		stripAccents:  settings.AccentInsensitive,
	}

	if isMultiBlank(q) {
		if len(answer.Blanks) != len(q.Answer.Values) {
			return false
		}
		for i, expected := range q.Answer.Values {
			if !matchesAny(answer.Blanks[i], blankAcceptable(q, i, expected, settings), n) {
				return false
			}
		}
		return true
	}

	given := answer.Text
	if given == "" && len(answer.Blanks) == 1 {
		given = answer.Blanks[0]
	}

	acceptable := append([]string{}, q.Answer.Values...)
	acceptable = append(acceptable, settings.AltAnswers...)
	for _, alts := range q.Alternates {
		acceptable = append(acceptable, alts...)
	}
	return matchesAny(given, acceptable, n)
}

// isMultiBlank reports whether the question expects one answer per blank.
func isMultiBlank(q *models.Question) bool {
	return q.Answer.List && len(q.Answer.Values) > 1
}

// blankAcceptable is the acceptable set for one blank: its primary answer,
// the question-wide alternates and the alternates authored for that blank.
func blankAcceptable(q *models.Question, i int, primary string, settings models.FillSettings) []string {
	acceptable := []string{primary}
	acceptable = append(acceptable, settings.AltAnswers...)
	if i < len(q.Alternates) {
		acceptable = append(acceptable, q.Alternates[i]...)
	}
	return acceptable
}

func matchesAny(given string, acceptable []string, n normalizer) bool {
	g := n.apply(given)
	if g == "" {
		return false
	}
	for _, candidate := range acceptable {
		if n.apply(candidate) == g {
			return true
		}
	}
	return false
}
