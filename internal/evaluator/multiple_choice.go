package evaluator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

func evaluateMultipleChoice(q *models.Question, answer models.Answer) bool {
	if q.Answer == nil || len(q.Answer.Values) == 0 || len(q.Options) == 0 {
		return false
	}

	n := normalizer{caseSensitive: q.Settings().CaseSensitive}
	expected := resolveTokens(q.Answer.Values, q.Options, n)
	given := resolveTokens(answer.Choices, q.Options, n)

	if q.MultiAnswer {
		return equalSets(expected, given)
	}

	if len(given) != 1 {
		return false
	}
	for _, value := range expected {
		if value == given[0] {
			return true
		}
	}
	return false
}

func resolveTokens(tokens, options []string, n normalizer) []string {
	resolved := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.TrimSpace(token) == "" {
			continue
		}
		resolved = append(resolved, resolveToken(token, options, n))
	}
	return resolved
}

// resolveToken maps an authored or given token to the normalized text of the
// option it denotes. A token may be the option text itself, a letter (A is
// the first option, case-insensitive) or a numeric index. Literal option text
// wins over the other forms; numbers are read as 0-based first and 1-based
// when the 0-based reading is out of range. Unresolvable tokens are returned
// normalized so they can still match nothing or each other.
func resolveToken(token string, options []string, n normalizer) string {
	trimmed := strings.TrimSpace(token)
	normalized := n.apply(trimmed)

	for _, option := range options {
		if n.apply(option) == normalized {
			return normalized
		}
	}

	if idx, ok := letterIndex(trimmed); ok && idx < len(options) {
		return n.apply(options[idx])
	}

	if num, err := strconv.Atoi(trimmed); err == nil {
		if num >= 0 && num < len(options) {
			return n.apply(options[num])
		}
		if num >= 1 && num <= len(options) {
			return n.apply(options[num-1])
		}
	}

	return normalized
}

func letterIndex(s string) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	c := s[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	default:
		return 0, false
	}
}

// equalSets compares the key's distinct values with the given selection.
// The selection is not deduplicated, so picking an option twice never matches.
func equalSets(expected, given []string) bool {
	expected = dedupeSorted(expected)
	given = append([]string{}, given...)
	sort.Strings(given)
	if len(expected) == 0 || len(expected) != len(given) {
		return false
	}
	for i := range expected {
		if expected[i] != given[i] {
			return false
		}
	}
	return true
}

func dedupeSorted(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	j := 0
	for i, v := range out {
		if i > 0 && v == out[j-1] {
			continue
		}
		out[j] = v
		j++
	}
	return out[:j]
}
