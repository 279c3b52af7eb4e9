package evaluator

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

func multipleChoice(options []string, answer *models.AnswerKey, multi bool) *models.Question {
	return &models.Question{
		ID:          "mc",
		Type:        models.MultipleChoice,
		Question:    "Pick",
		Options:     options,
		Answer:      answer,
		MultiAnswer: multi,
	}
}

func TestMultipleChoice_LetterAnswerMatchesOptionText(t *testing.T) {
	q := multipleChoice([]string{"2", "3", "4"}, models.NewAnswerKey("B"), false)

	assert.True(t, IsCorrect(q, models.ChoiceAnswer("3")))
	assert.False(t, IsCorrect(q, models.ChoiceAnswer("2")))
}

func TestMultipleChoice_RepresentationInvariance(t *testing.T) {
	options := []string{"Paris", "Rome", "Madrid", "Berlin"}
	letters := []string{"A", "B", "C", "D"}

	for target := range options {
		forms := []string{options[target], letters[target], string(rune('a' + target)), strconv.Itoa(target)}

		for _, expectedForm := range forms {
			q := multipleChoice(options, models.NewAnswerKey(expectedForm), false)
			for given := range options {
				for _, givenForm := range []string{options[given], letters[given]} {
					assert.Equal(t, given == target, IsCorrect(q, models.ChoiceAnswer(givenForm)),
						"expected %q given %q", expectedForm, givenForm)
				}
			}
		}
	}
}

func TestMultipleChoice_OneBasedIndexFallback(t *testing.T) {
	q := multipleChoice([]string{"x", "y", "z"}, models.NewAnswerKey("3"), false)

	assert.True(t, IsCorrect(q, models.ChoiceAnswer("z")))
	assert.True(t, IsCorrect(q, models.ChoiceAnswer("C")))
}

func TestMultipleChoice_CaseSensitivity(t *testing.T) {
	q := multipleChoice([]string{"Apple", "apple pie"}, models.NewAnswerKey("Apple"), false)
	assert.True(t, IsCorrect(q, models.ChoiceAnswer("  APPLE ")))

	q.FillSettings = &models.FillSettings{CaseSensitive: true}
	assert.False(t, IsCorrect(q, models.ChoiceAnswer("APPLE")))
	assert.True(t, IsCorrect(q, models.ChoiceAnswer("Apple")))
}

func TestMultipleChoice_MultiAnswerComparesSets(t *testing.T) {
	q := multipleChoice([]string{"red", "green", "blue"}, models.NewAnswerKeyList("A", "2"), true)

	tests := []struct {
		name  string
		given []string
		want  bool
	}{
		{"same order", []string{"red", "blue"}, true},
		{"reversed with letters", []string{"C", "a"}, true},
		{"duplicated selection", []string{"red", "red", "blue"}, false},
		{"same option in two forms", []string{"red", "A", "blue"}, false},
		{"subset", []string{"red"}, false},
		{"superset", []string{"red", "green", "blue"}, false},
		{"empty", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrect(q, models.ChoiceAnswer(tt.given...)))
		})
	}
}

func TestMultipleChoice_KeyListingAnOptionTwice(t *testing.T) {
	q := multipleChoice([]string{"red", "green", "blue"}, models.NewAnswerKeyList("A", "red", "C"), true)

	assert.True(t, IsCorrect(q, models.ChoiceAnswer("red", "blue")))
	assert.False(t, IsCorrect(q, models.ChoiceAnswer("red", "red", "blue")))
}

func TestMultipleChoice_SingleAnswerRejectsSeveralChoices(t *testing.T) {
	q := multipleChoice([]string{"a", "b"}, models.NewAnswerKey("a"), false)
	assert.False(t, IsCorrect(q, models.ChoiceAnswer("a", "b")))
	assert.False(t, IsCorrect(q, models.ChoiceAnswer()))
}

func identification(answer *models.AnswerKey, settings *models.FillSettings) *models.Question {
	return &models.Question{
		ID:           "id",
		Type:         models.Identification,
		Question:     "Name it",
		Answer:       answer,
		FillSettings: settings,
	}
}

func TestIdentification_AltAnswers(t *testing.T) {
	q := identification(models.NewAnswerKey("cat"), &models.FillSettings{
		CaseSensitive: false,
		AltAnswers:    []string{"Cat", "CATS"},
	})

	assert.True(t, IsCorrect(q, models.TextAnswer("CAT")))
	assert.False(t, IsCorrect(q, models.TextAnswer("dog")))

	for _, literal := range []string{"cat", "Cat", "CATS", " cats "} {
		assert.True(t, IsCorrect(q, models.TextAnswer(literal)), literal)
	}
	for _, other := range []string{"", "ca", "cat s", "kitten"} {
		assert.False(t, IsCorrect(q, models.TextAnswer(other)), other)
	}
}

func TestIdentification_CaseSensitive(t *testing.T) {
	q := identification(models.NewAnswerKey("Paris"), &models.FillSettings{CaseSensitive: true})

	assert.True(t, IsCorrect(q, models.TextAnswer("Paris")))
	assert.False(t, IsCorrect(q, models.TextAnswer("paris")))
}

func TestIdentification_AccentInsensitive(t *testing.T) {
	q := identification(models.NewAnswerKey("café"), nil)
	assert.False(t, IsCorrect(q, models.TextAnswer("cafe")))

	q.FillSettings = &models.FillSettings{AccentInsensitive: true}
	assert.True(t, IsCorrect(q, models.TextAnswer("cafe")))
	assert.True(t, IsCorrect(q, models.TextAnswer("CAFÉ")))
	assert.False(t, IsCorrect(q, models.TextAnswer("cafes")))
}

func TestIdentification_MultiBlankAlternatesApplyPerBlank(t *testing.T) {
	q := identification(models.NewAnswerKeyList("red", "blue"), &models.FillSettings{
		AltAnswers: []string{"colour"},
	})
	q.Alternates = [][]string{{"crimson"}, {"navy"}}

	tests := []struct {
		name   string
		blanks []string
		want   bool
	}{
		{"primaries", []string{"red", "blue"}, true},
		{"per-blank alternates", []string{"crimson", "navy"}, true},
		{"question-wide alternate in each blank", []string{"colour", "colour"}, true},
		{"alternate in the wrong blank", []string{"navy", "crimson"}, false},
		{"swapped primaries", []string{"blue", "red"}, false},
		{"missing blank", []string{"red"}, false},
		{"empty blank", []string{"red", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrect(q, models.BlanksAnswer(tt.blanks...)))
		})
	}
}

func reorder(items []string, order []string) *models.Question {
	q := &models.Question{ID: "ro", Type: models.ReOrder, Question: "Sort", Order: order}
	for _, id := range items {
		q.ReorderItems = append(q.ReorderItems, models.ReorderItem{ID: id, Content: id})
	}
	return q
}

func TestReOrder_ExactOrderOnly(t *testing.T) {
	q := reorder([]string{"a", "b", "c"}, []string{"b", "a", "c"})

	assert.False(t, IsCorrect(q, models.OrderAnswer("a", "b", "c")))
	assert.True(t, IsCorrect(q, models.OrderAnswer("b", "a", "c")))
	assert.False(t, IsCorrect(q, models.OrderAnswer("b", "a")))
	assert.False(t, IsCorrect(q, models.OrderAnswer("b", "a", "c", "c")))
}

func TestReOrder_AllPermutations(t *testing.T) {
	q := reorder([]string{"a", "b", "c"}, nil)
	permutations := [][]string{
		{"a", "b", "c"}, {"a", "c", "b"}, {"b", "a", "c"},
		{"b", "c", "a"}, {"c", "a", "b"}, {"c", "b", "a"},
	}

	for i, p := range permutations {
		assert.Equal(t, i == 0, IsCorrect(q, models.OrderAnswer(p...)), "%v", p)
	}
}

func TestMatching_CompletionRule(t *testing.T) {
	q := &models.Question{
		ID:       "m",
		Type:     models.Matching,
		Question: "Match",
		Pairs: []models.MatchPair{
			{Left: "dog", Right: "bark"},
			{Left: "cat", Right: "meow"},
		},
	}

	complete := models.MatchingAnswer(map[int]models.MatchSelection{
		0: {Left: "dog", Right: "meow"},
		1: {Left: "cat", Right: "bark"},
	})
	partial := models.MatchingAnswer(map[int]models.MatchSelection{
		0: {Left: "dog", Right: "bark"},
		1: {Left: "cat"},
	})
	outOfRange := models.MatchingAnswer(map[int]models.MatchSelection{
		0: {Left: "dog", Right: "bark"},
		5: {Left: "cat", Right: "meow"},
	})

	assert.True(t, IsCorrect(q, complete))
	assert.False(t, IsCorrect(q, partial))
	assert.False(t, IsCorrect(q, outOfRange))
}

func passage() *models.Question {
	return &models.Question{
		ID:       "p",
		Type:     models.ReadingPassage,
		Question: "Read",
		Passage:  "The cat sat on the mat.",
		SubQuestions: []models.Question{
			{ID: "p1", Type: models.Identification, Question: "Who sat?", Answer: models.NewAnswerKey("cat")},
			{ID: "p2", Type: models.MultipleChoice, Question: "Where?", Options: []string{"mat", "hat"}, Answer: models.NewAnswerKey("A")},
			{ID: "p3", Type: models.ReOrder, Question: "Order", ReorderItems: []models.ReorderItem{{ID: "x"}, {ID: "y"}}},
		},
	}
}

func TestReadingPassage_EvaluatesPartsIndependently(t *testing.T) {
	q := passage()
	answer := models.PassageAnswer(map[string]models.Answer{
		"p1": models.TextAnswer("cat"),
		"p2": models.ChoiceAnswer("hat"),
		"p3": models.OrderAnswer("x", "y"),
	})

	parts := EvaluateParts(q, answer)
	assert.Equal(t, map[string]bool{"p1": true, "p2": false, "p3": true}, parts)
	assert.False(t, IsCorrect(q, answer))

	answer.Parts["p2"] = models.ChoiceAnswer("mat")
	assert.True(t, IsCorrect(q, answer))
}

func TestReadingPassage_MissingPartIsIncorrect(t *testing.T) {
	q := passage()
	parts := EvaluateParts(q, models.PassageAnswer(map[string]models.Answer{"p1": models.TextAnswer("cat")}))

	assert.True(t, parts["p1"])
	assert.False(t, parts["p2"])
	assert.False(t, parts["p3"])
}

func TestReadingPassage_NestedPassageIsIncorrect(t *testing.T) {
	inner := passage()
	outer := &models.Question{ID: "outer", Type: models.ReadingPassage, SubQuestions: []models.Question{*inner}}
	answer := models.PassageAnswer(map[string]models.Answer{
		"p": models.PassageAnswer(map[string]models.Answer{"p1": models.TextAnswer("cat")}),
	})

	assert.Equal(t, map[string]bool{"p": false}, EvaluateParts(outer, answer))
}

func TestIsCorrect_NeverPanicsOnMismatchedInput(t *testing.T) {
	q := multipleChoice([]string{"a"}, models.NewAnswerKey("a"), false)

	assert.False(t, IsCorrect(q, models.TextAnswer("a")))
	assert.False(t, IsCorrect(nil, models.TextAnswer("a")))
	assert.False(t, IsCorrect(&models.Question{Type: "essay"}, models.Answer{Type: "essay"}))
	assert.False(t, IsCorrect(&models.Question{Type: models.Identification}, models.TextAnswer("x")))
	assert.Nil(t, EvaluateParts(q, models.ChoiceAnswer("a")))
}
