package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/session"
)

type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// Validator combines struct tag validation with the structural rules for
// exercises that tags cannot express.
type Validator struct {
	structValidator   *validator.Validate
	exerciseValidator *ExerciseValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		exerciseValidator: NewExerciseValidator(structValidator),
	}
}

// ValidateStruct checks struct tags and returns ValidationErrors on failure.
func (v *Validator) ValidateStruct(s any) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ves := errors.ToValidationErrors(err); len(ves) > 0 {
			return ves
		}
		return err
	}
	return nil
}

func (v *Validator) Exercise() *ExerciseValidator {
	return v.exerciseValidator
}

func registerCustomValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("question_type", validateQuestionType)
	_ = validate.RegisterValidation("interaction_type", validateInteractionType)
	_ = validate.RegisterValidation("session_mode", validateSessionMode)

	// report json names so paths match the documents
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateInteractionType(fl validator.FieldLevel) bool {
	value := models.InteractionType(fl.Field().String())
	for _, t := range models.InteractionTypes {
		if t == value {
			return true
		}
	}
	return false
}

func validateSessionMode(fl validator.FieldLevel) bool {
	return session.Mode(fl.Field().String()).IsValid()
}
