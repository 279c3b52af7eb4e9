package models

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// MatchSelection is the learner's choice for one matching row.
type MatchSelection struct {
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
}

// Answer is the learner's answer for one question. It is a tagged variant:
// Type selects which of the shape fields is in use.
type Answer struct {
	Type QuestionType `json:"type"`

	// identification
	Text   string   `json:"text,omitempty"`
	Blanks []string `json:"blanks,omitempty"`

	// multiple-choice
	Choices []string `json:"choices,omitempty"`

	// matching, keyed by row index
	Matches map[int]MatchSelection `json:"matches,omitempty"`

	// re-order
	Order []string `json:"order,omitempty"`

	// reading-passage, keyed by sub-question id
	Parts map[string]Answer `json:"parts,omitempty"`
}

// EmptyAnswer seeds the type-appropriate empty answer for q.
func EmptyAnswer(q *Question) Answer {
	switch q.Type {
	case Identification:
		if q.Answer != nil && q.Answer.List && len(q.Answer.Values) > 1 {
			return Answer{Type: Identification, Blanks: make([]string, len(q.Answer.Values))}
		}
		return Answer{Type: Identification, Text: ""}
	case MultipleChoice:
		return Answer{Type: MultipleChoice, Choices: []string{}}
	case Matching:
		return Answer{Type: Matching, Matches: map[int]MatchSelection{}}
	case ReOrder:
		return Answer{Type: ReOrder, Order: []string{}}
	case ReadingPassage:
		parts := make(map[string]Answer, len(q.SubQuestions))
		for i := range q.SubQuestions {
			sub := &q.SubQuestions[i]
			parts[sub.ID] = EmptyAnswer(sub)
		}
		return Answer{Type: ReadingPassage, Parts: parts}
	default:
		return Answer{Type: q.Type}
	}
}

func TextAnswer(text string) Answer {
	return Answer{Type: Identification, Text: text}
}

func BlanksAnswer(blanks ...string) Answer {
	return Answer{Type: Identification, Blanks: blanks}
}

func ChoiceAnswer(choices ...string) Answer {
	return Answer{Type: MultipleChoice, Choices: choices}
}

func OrderAnswer(ids ...string) Answer {
	return Answer{Type: ReOrder, Order: ids}
}

func MatchingAnswer(matches map[int]MatchSelection) Answer {
	return Answer{Type: Matching, Matches: matches}
}

func PassageAnswer(parts map[string]Answer) Answer {
	return Answer{Type: ReadingPassage, Parts: parts}
}

// IsEmpty reports whether the learner has not yet provided anything.
func (a Answer) IsEmpty() bool {
	switch a.Type {
	case Identification:
		if strings.TrimSpace(a.Text) != "" {
			return false
		}
		for _, blank := range a.Blanks {
			if strings.TrimSpace(blank) != "" {
				return false
			}
		}
		return true
	case MultipleChoice:
		return len(a.Choices) == 0
	case Matching:
		for _, m := range a.Matches {
			if m.Left != "" || m.Right != "" {
				return false
			}
		}
		return true
	case ReOrder:
		return len(a.Order) == 0
	case ReadingPassage:
		for _, part := range a.Parts {
			if !part.IsEmpty() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Clone returns a deep copy so stored answers never alias caller slices.
func (a Answer) Clone() Answer {
	out := Answer{Type: a.Type, Text: a.Text}
	if a.Blanks != nil {
		out.Blanks = append([]string{}, a.Blanks...)
	}
	if a.Choices != nil {
		out.Choices = append([]string{}, a.Choices...)
	}
	if a.Order != nil {
		out.Order = append([]string{}, a.Order...)
	}
	if a.Matches != nil {
		out.Matches = make(map[int]MatchSelection, len(a.Matches))
		for k, v := range a.Matches {
			out.Matches[k] = v
		}
	}
	if a.Parts != nil {
		out.Parts = make(map[string]Answer, len(a.Parts))
		for k, v := range a.Parts {
			out.Parts[k] = v.Clone()
		}
	}
	return out
}

// Serialize renders the answer as a stable string for attempt logs. Equal
// answers always serialize identically.
func (a Answer) Serialize() string {
	switch a.Type {
	case Identification:
		if a.Blanks != nil {
			return mustJSON(a.Blanks)
		}
		return a.Text
	case MultipleChoice:
		return mustJSON(nonNil(a.Choices))
	case ReOrder:
		return mustJSON(nonNil(a.Order))
	case Matching:
		rows := make([]int, 0, len(a.Matches))
		for row := range a.Matches {
			rows = append(rows, row)
		}
		sort.Ints(rows)
		var b strings.Builder
		b.WriteByte('{')
		for i, row := range rows {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(strconv.Itoa(row)))
			b.WriteByte(':')
			b.WriteString(mustJSON(a.Matches[row]))
		}
		b.WriteByte('}')
		return b.String()
	case ReadingPassage:
		// encoding/json sorts map keys
		parts := make(map[string]string, len(a.Parts))
		for id, part := range a.Parts {
			parts[id] = part.Serialize()
		}
		return mustJSON(parts)
	default:
		return ""
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// StudentAnswer is the per-question working record of a session.
type StudentAnswer struct {
	QuestionID  string          `json:"questionId"`
	Answer      Answer          `json:"answer"`
	IsCorrect   *bool           `json:"isCorrect,omitempty"`
	SubResults  map[string]bool `json:"subResults,omitempty"`
	Attempts    int             `json:"attempts"`
	TimeSpentMs int64           `json:"timeSpentMs"`
	TimedOut    bool            `json:"timedOut"`
}

// Correct reports a confirmed correct answer; unanswered counts as incorrect.
func (s StudentAnswer) Correct() bool {
	return s.IsCorrect != nil && *s.IsCorrect
}

// SeedAnswers creates one empty StudentAnswer per question.
func SeedAnswers(questions []Question) []StudentAnswer {
	answers := make([]StudentAnswer, len(questions))
	for i := range questions {
		answers[i] = StudentAnswer{
			QuestionID: questions[i].ID,
			Answer:     EmptyAnswer(&questions[i]),
		}
	}
	return answers
}
