package services

import (
	"errors"

	"github.com/SAP-F-2025/exercise-service/internal/attemptlog"
	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionLoading     = errors.New("session is still loading")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrAssignmentNotFound = errors.New("assigned exercise not found")
	ErrResultNotFound     = errors.New("result not found")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrExerciseNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, session.ErrClosed) ||
		errors.Is(err, session.ErrNoAudio)
}

// IsValidation checks if error represents a malformed exercise
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed) || apperrors.IsValidation(err)
}

// IsBadRequest checks if the caller sent something the session cannot use
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, session.ErrAnswerType) ||
		errors.Is(err, session.ErrNotMultipleChoice) ||
		errors.Is(err, session.ErrUnknownEvent) ||
		errors.Is(err, attemptlog.ErrUnknownInteraction)
}

// IsConflict checks if the request does not fit the session's current state
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionLoading) ||
		errors.Is(err, session.ErrInvalidTransition) ||
		errors.Is(err, session.ErrPreviousUnavailable) ||
		errors.Is(err, session.ErrModeAction) ||
		errors.Is(err, session.ErrInactive) ||
		errors.Is(err, session.ErrAudioInterrupted)
}

// IsEligibility checks if the assignment refused the session
func IsEligibility(err error) bool {
	return apperrors.IsEligibility(err)
}

// IsRetryable checks if the caller may retry without restarting the session
func IsRetryable(err error) bool {
	return apperrors.IsRetryable(err)
}
