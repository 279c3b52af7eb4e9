package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type QuestionType string

const (
	Identification QuestionType = "identification"
	MultipleChoice QuestionType = "multiple-choice"
	Matching       QuestionType = "matching"
	ReOrder        QuestionType = "re-order"
	ReadingPassage QuestionType = "reading-passage"
)

// QuestionTypes lists every supported question type in authoring order.
var QuestionTypes = []QuestionType{
	Identification,
	MultipleChoice,
	Matching,
	ReOrder,
	ReadingPassage,
}

func (t QuestionType) IsValid() bool {
	for _, valid := range QuestionTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// FillSettings controls how free-text answers are normalized before comparison.
type FillSettings struct {
	CaseSensitive     bool     `json:"caseSensitive"`
	AccentInsensitive bool     `json:"accentInsensitive"`
	AltAnswers        []string `json:"altAnswers,omitempty"`
	Hint              string   `json:"hint,omitempty"`
}

type MatchPair struct {
	Left       string `json:"left"`
	Right      string `json:"right"`
	LeftImage  string `json:"leftImage,omitempty"`
	RightImage string `json:"rightImage,omitempty"`
}

type ReorderItem struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Question is a tagged union keyed by Type. Only the fields belonging to the
// tag are meaningful; the rest stay at their zero value.
type Question struct {
	ID           string        `json:"id" validate:"required"`
	Type         QuestionType  `json:"type" validate:"required,question_type"`
	Question     string        `json:"question" validate:"required"`
	Images       []string      `json:"images,omitempty"`
	TTSAudio     string        `json:"ttsAudio,omitempty"`
	FillSettings *FillSettings `json:"fillSettings,omitempty"`

	// multiple-choice
	Options     []string `json:"options,omitempty"`
	MultiAnswer bool     `json:"multiAnswer,omitempty"`

	// multiple-choice and identification
	Answer *AnswerKey `json:"answer,omitempty"`

	// identification: accepted alternates per blank
	Alternates [][]string `json:"alternates,omitempty"`

	// matching
	Pairs []MatchPair `json:"pairs,omitempty"`

	// re-order
	ReorderItems []ReorderItem `json:"reorderItems,omitempty"`
	Order        []string      `json:"order,omitempty"`

	// reading-passage
	Passage      string     `json:"passage,omitempty"`
	SubQuestions []Question `json:"subQuestions,omitempty" validate:"omitempty,dive"`
}

// Settings returns the question's fill settings, or the defaults
// (case-insensitive, accent-sensitive, no alternates) when none were authored.
func (q *Question) Settings() FillSettings {
	if q.FillSettings == nil {
		return FillSettings{}
	}
	return *q.FillSettings
}

// ExpectedOrder returns the authored order, falling back to the natural order
// of the re-order items.
func (q *Question) ExpectedOrder() []string {
	if len(q.Order) > 0 {
		return q.Order
	}
	order := make([]string, len(q.ReorderItems))
	for i, item := range q.ReorderItems {
		order[i] = item.ID
	}
	return order
}

// HasDefinedAnswer reports whether the question carries enough authored data
// to be graded.
func (q *Question) HasDefinedAnswer() bool {
	switch q.Type {
	case MultipleChoice, Identification:
		return q.Answer != nil && q.Answer.HasValue()
	case Matching:
		return len(q.Pairs) > 0
	case ReOrder:
		return len(q.Order) > 0 || len(q.ReorderItems) > 0
	case ReadingPassage:
		return len(q.SubQuestions) > 0
	default:
		return false
	}
}

// GradableItems is the number of scored items the question contributes:
// one per sub-question for passages, one otherwise.
func (q *Question) GradableItems() int {
	if q.Type == ReadingPassage {
		return len(q.SubQuestions)
	}
	return 1
}

// AnswerKey is an authored answer that may be written as a string, a number
// or a list of either. List records whether the author used the list form.
type AnswerKey struct {
	Values []string
	List   bool
}

func NewAnswerKey(value string) *AnswerKey {
	return &AnswerKey{Values: []string{value}}
}

func NewAnswerKeyList(values ...string) *AnswerKey {
	return &AnswerKey{Values: values, List: true}
}

// HasValue reports whether at least one key value is not blank.
func (k *AnswerKey) HasValue() bool {
	for _, v := range k.Values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		k.Values, k.List = nil, false
		return nil
	}

	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid answer list: %w", err)
		}
		values := make([]string, 0, len(raw))
		for _, item := range raw {
			value, err := scalarString(item)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		k.Values, k.List = values, true
		return nil
	}

	value, err := scalarString(data)
	if err != nil {
		return err
	}
	k.Values, k.List = []string{value}, false
	return nil
}

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	if k.List {
		if k.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(k.Values)
	}
	if len(k.Values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(k.Values[0])
}

func scalarString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", fmt.Errorf("unsupported answer value: %s", string(data))
}
