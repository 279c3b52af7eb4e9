package errors

import (
	"errors"
	"fmt"
	"time"
)

// AssignmentClosedError is returned when an assignment no longer accepts work.
type AssignmentClosedError struct {
	AssignedExerciseID string `json:"assigned_exercise_id"`
	Status             string `json:"status"`
}

func (e *AssignmentClosedError) Error() string {
	return fmt.Sprintf("assignment %s is not accepting submissions (status %s)", e.AssignedExerciseID, e.Status)
}

// DeadlinePassedError is returned when the deadline has passed and late
// submissions are not allowed.
type DeadlinePassedError struct {
	AssignedExerciseID string    `json:"assigned_exercise_id"`
	Deadline           time.Time `json:"deadline"`
}

func (e *DeadlinePassedError) Error() string {
	return fmt.Sprintf("assignment %s deadline passed at %s", e.AssignedExerciseID, e.Deadline.Format(time.RFC3339))
}

// LoadError wraps a failed read of an exercise or assignment.
type LoadError struct {
	Path      string `json:"path"`
	Retryable bool   `json:"retryable"`
	Err       error  `json:"-"`
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SubmissionError wraps a failed write of the result record. The session
// keeps its answers so the caller can retry.
type SubmissionError struct {
	ResultID string `json:"result_id"`
	Stage    string `json:"stage"` // "result" or "assignment"
	Err      error  `json:"-"`
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to submit result %s (%s): %v", e.ResultID, e.Stage, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func NewLoadError(path string, retryable bool, err error) *LoadError {
	return &LoadError{Path: path, Retryable: retryable, Err: err}
}

func NewSubmissionError(resultID, stage string, err error) *SubmissionError {
	return &SubmissionError{ResultID: resultID, Stage: stage, Err: err}
}

// IsRetryable reports whether the caller may retry the operation without
// restarting the session.
func IsRetryable(err error) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Retryable
	}
	var se *SubmissionError
	return errors.As(err, &se)
}

// IsEligibility reports whether err is a terminal assignment eligibility failure.
func IsEligibility(err error) bool {
	var closed *AssignmentClosedError
	var late *DeadlinePassedError
	return errors.As(err, &closed) || errors.As(err, &late)
}

// IsValidation reports whether err describes a malformed exercise or request.
func IsValidation(err error) bool {
	var ves ValidationErrors
	if errors.As(err, &ves) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}
