package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// ExerciseValidator checks that an exercise can be played and graded. Every
// problem is reported with the path of the offending field.
type ExerciseValidator struct {
	structValidator *validator.Validate
}

func NewExerciseValidator(structValidator *validator.Validate) *ExerciseValidator {
	return &ExerciseValidator{structValidator: structValidator}
}

// Validate returns ValidationErrors listing every problem, or nil.
func (v *ExerciseValidator) Validate(exercise *models.Exercise) error {
	if exercise == nil {
		return errors.ValidationErrors{{Field: "exercise", Message: "is required", Rule: "required"}}
	}

	var problems errors.ValidationErrors
	if err := v.structValidator.Struct(exercise); err != nil {
		problems = append(problems, errors.ToValidationErrors(err)...)
	}

	seen := make(map[string]string, len(exercise.Questions))
	for i := range exercise.Questions {
		path := fmt.Sprintf("questions[%d]", i)
		q := &exercise.Questions[i]
		problems = append(problems, v.validateQuestion(path, q, 0)...)

		if q.ID == "" {
			continue
		}
		if first, dup := seen[q.ID]; dup {
			problems = append(problems, errors.ValidationError{
				Field:   path + ".id",
				Message: "duplicates " + first + ".id",
				Value:   q.ID,
				Rule:    "unique",
			})
			continue
		}
		seen[q.ID] = path
	}

	if len(problems) > 0 {
		return problems
	}
	return nil
}

// ValidateAssignment checks the assignment document's struct tags.
func (v *ExerciseValidator) ValidateAssignment(assignment *models.AssignedExercise) error {
	if err := v.structValidator.Struct(assignment); err != nil {
		if ves := errors.ToValidationErrors(err); len(ves) > 0 {
			return ves
		}
		return err
	}
	return nil
}

func (v *ExerciseValidator) validateQuestion(path string, q *models.Question, depth int) errors.ValidationErrors {
	var problems errors.ValidationErrors
	add := func(field, message, rule string, value any) {
		problems = append(problems, errors.ValidationError{
			Field:   path + "." + field,
			Message: message,
			Value:   value,
			Rule:    rule,
		})
	}

	if !q.Type.IsValid() {
		// the struct tags already reported it
		return nil
	}

	switch q.Type {
	case models.MultipleChoice:
		if len(q.Options) == 0 {
			add("options", "must not be empty", "required", nil)
		}
	case models.Matching:
		if len(q.Pairs) == 0 {
			add("pairs", "must not be empty", "required", nil)
		}
	case models.ReOrder:
		if len(q.ReorderItems) == 0 {
			add("reorderItems", "must not be empty", "required", nil)
			break
		}
		problems = append(problems, validateOrder(path, q)...)
	case models.ReadingPassage:
		if depth > 0 {
			add("type", "reading passages cannot be nested", "nesting", q.Type)
			return problems
		}
		for j := range q.SubQuestions {
			problems = append(problems, v.validateQuestion(fmt.Sprintf("%s.subQuestions[%d]", path, j), &q.SubQuestions[j], depth+1)...)
		}
	}

	if !q.HasDefinedAnswer() {
		switch q.Type {
		case models.MultipleChoice, models.Identification:
			add("answer", "is required", "required", nil)
		case models.ReadingPassage:
			add("subQuestions", "must not be empty", "required", nil)
		}
		return problems
	}
	if q.Type == models.Identification && q.Answer.List && len(q.Answer.Values) > 1 {
		problems = append(problems, validateBlanks(path, q)...)
	}
	return problems
}

// validateBlanks checks that every blank of a multi-blank question can be
// answered, either by its key value or by an alternate.
func validateBlanks(path string, q *models.Question) errors.ValidationErrors {
	var problems errors.ValidationErrors
	for i, value := range q.Answer.Values {
		if strings.TrimSpace(value) != "" || anyNonBlank(q.Settings().AltAnswers) {
			continue
		}
		if i < len(q.Alternates) && anyNonBlank(q.Alternates[i]) {
			continue
		}
		problems = append(problems, errors.ValidationError{
			Field:   fmt.Sprintf("%s.answer[%d]", path, i),
			Message: "must not be blank",
			Rule:    "required",
			Value:   value,
		})
	}
	return problems
}

func anyNonBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// validateOrder checks that an authored order is a permutation of the items.
func validateOrder(path string, q *models.Question) errors.ValidationErrors {
	if len(q.Order) == 0 {
		return nil
	}

	items := make(map[string]bool, len(q.ReorderItems))
	for _, item := range q.ReorderItems {
		items[item.ID] = true
	}

	used := make(map[string]bool, len(q.Order))
	for _, id := range q.Order {
		if !items[id] || used[id] {
			return errors.ValidationErrors{{
				Field:   path + ".order",
				Message: "must list every item id exactly once",
				Value:   q.Order,
				Rule:    "permutation",
			}}
		}
		used[id] = true
	}
	if len(used) != len(items) {
		return errors.ValidationErrors{{
			Field:   path + ".order",
			Message: "must list every item id exactly once",
			Value:   q.Order,
			Rule:    "permutation",
		}}
	}
	return nil
}
