package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/session"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

// LoadRequest names what to load. Exactly one of ExerciseID or
// AssignedExerciseID is needed; when both are set they must agree.
type LoadRequest struct {
	SessionID          string
	StudentID          string
	ExerciseID         string
	AssignedExerciseID string
}

// ExerciseLoader reads exercises and assignments, validates them and checks
// whether the assignment still accepts work.
type ExerciseLoader struct {
	repo      repositories.DataRepository
	validator *validator.Validator
	source    timer.Source
	logger    *ServiceLogger
}

func NewExerciseLoader(repo repositories.DataRepository, v *validator.Validator, source timer.Source, logger *ServiceLogger) *ExerciseLoader {
	if source == nil {
		source = timer.System{}
	}
	return &ExerciseLoader{
		repo:      repo,
		validator: v,
		source:    source,
		logger:    logger,
	}
}

func (l *ExerciseLoader) LoadExercise(ctx context.Context, exerciseID string) (*models.Exercise, error) {
	start := time.Now()
	path := repositories.ExercisePath(exerciseID)

	exercise, err := l.loadExercise(ctx, path)
	l.logger.LogOperation(ctx, "load_exercise", "", exerciseID, "exercise", time.Since(start), err)
	return exercise, err
}

func (l *ExerciseLoader) loadExercise(ctx context.Context, path string) (*models.Exercise, error) {
	exercise, err := repositories.ReadJSON[models.Exercise](ctx, l.repo, path)
	if err != nil {
		return nil, readError(path, ErrExerciseNotFound, err)
	}

	if err := l.validator.Exercise().Validate(exercise); err != nil {
		var ves apperrors.ValidationErrors
		if errors.As(err, &ves) {
			l.logger.LogValidationError(ctx, "load_exercise", exercise.ID, ves)
		}
		return nil, err
	}
	return exercise, nil
}

func (l *ExerciseLoader) LoadAssignment(ctx context.Context, assignedExerciseID string) (*models.AssignedExercise, error) {
	start := time.Now()
	path := repositories.AssignmentPath(assignedExerciseID)

	assignment, err := repositories.ReadJSON[models.AssignedExercise](ctx, l.repo, path)
	if err != nil {
		err = readError(path, ErrAssignmentNotFound, err)
	} else {
		err = l.validator.Exercise().ValidateAssignment(assignment)
	}

	l.logger.LogOperation(ctx, "load_assignment", "", assignedExerciseID, "assigned_exercise", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Load resolves everything a session needs and returns its context. For
// assignments it refuses closed ones and, unless late work is accepted, ones
// past their deadline.
func (l *ExerciseLoader) Load(ctx context.Context, req LoadRequest) (*session.Context, error) {
	if req.ExerciseID == "" && req.AssignedExerciseID == "" {
		return nil, fmt.Errorf("%w: exercise_id or assigned_exercise_id is required", ErrBadRequest)
	}

	var assignment *models.AssignedExercise
	exerciseID := req.ExerciseID
	late := false

	if req.AssignedExerciseID != "" {
		var err error
		assignment, err = l.LoadAssignment(ctx, req.AssignedExerciseID)
		if err != nil {
			return nil, err
		}
		if exerciseID != "" && exerciseID != assignment.ExerciseID {
			return nil, fmt.Errorf("%w: assignment %s is for exercise %s", ErrBadRequest, assignment.ID, assignment.ExerciseID)
		}
		exerciseID = assignment.ExerciseID

		late, err = CheckEligibility(assignment, l.source.Now())
		if err != nil {
			return nil, err
		}
	}

	exercise, err := l.LoadExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sc := session.NewContext(sessionID, req.StudentID, exercise, assignment, late, l.source.Now())
	sc.ResultID = uuid.NewString()
	return sc, nil
}

// CheckEligibility reports whether work on the assignment is late, or why
// it is not accepted at all.
func CheckEligibility(assignment *models.AssignedExercise, now time.Time) (late bool, err error) {
	if assignment.AcceptingStatus != models.AcceptingOpen {
		return false, &apperrors.AssignmentClosedError{
			AssignedExerciseID: assignment.ID,
			Status:             string(assignment.AcceptingStatus),
		}
	}

	late = assignment.IsPastDeadline(now)
	if late && !assignment.AcceptLateSubmissions {
		return false, &apperrors.DeadlinePassedError{
			AssignedExerciseID: assignment.ID,
			Deadline:           *assignment.Deadline,
		}
	}
	return late, nil
}

// readError classifies a repository failure. A missing or undecodable
// document will not appear on retry; anything else might.
func readError(path string, notFound error, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NewLoadError(path, false, fmt.Errorf("%w: %w", notFound, err))
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.NewLoadError(path, false, err)
	}
	if errors.Is(err, repositories.ErrMalformed) {
		return apperrors.NewLoadError(path, false, fmt.Errorf("%w: %w", ErrValidationFailed, err))
	}
	return apperrors.NewLoadError(path, true, err)
}
