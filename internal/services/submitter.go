package services

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/session"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
)

const (
	stageResult     = "result"
	stageAssignment = "assignment"
)

// ResultSubmitter writes the result record, marks the assignment completed
// and announces both. It implements session.Submitter.
type ResultSubmitter struct {
	repo      repositories.DataRepository
	publisher events.EventPublisher
	source    timer.Source
	logger    *ServiceLogger
}

func NewResultSubmitter(repo repositories.DataRepository, publisher events.EventPublisher, source timer.Source, logger *ServiceLogger) *ResultSubmitter {
	if source == nil {
		source = timer.System{}
	}
	return &ResultSubmitter{
		repo:      repo,
		publisher: publisher,
		source:    source,
		logger:    logger,
	}
}

// Submit writes the result under its session-fixed id, so a retry after a
// partial failure overwrites rather than duplicates. Event publishing is
// best effort and never fails the submission.
func (r *ResultSubmitter) Submit(ctx context.Context, s session.State) (*models.ExerciseResult, error) {
	start := time.Now()
	now := r.source.Now()
	result := BuildResult(s, now)

	err := r.persist(ctx, s.Context, result, now)
	r.logger.LogOperation(ctx, "submit_result", s.Context.SessionID, result.ResultID, "result", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.publishSubmitted(ctx, result)
	return result, nil
}

func (r *ResultSubmitter) persist(ctx context.Context, sc *session.Context, result *models.ExerciseResult, now time.Time) error {
	path := repositories.ResultPath(result.ExerciseID, result.ResultID)
	if err := repositories.WriteJSON(ctx, r.repo, path, result); err != nil {
		return apperrors.NewSubmissionError(result.ResultID, stageResult, err)
	}

	if sc.Assignment == nil {
		return nil
	}
	if err := r.completeAssignment(ctx, sc.Assignment, result.ResultID, now); err != nil {
		return apperrors.NewSubmissionError(result.ResultID, stageAssignment, err)
	}
	return nil
}

// completeAssignment re-reads the assignment so fields changed since the
// session started are kept.
func (r *ResultSubmitter) completeAssignment(ctx context.Context, loaded *models.AssignedExercise, resultID string, now time.Time) error {
	path := repositories.AssignmentPath(loaded.ID)

	current, err := repositories.ReadJSON[models.AssignedExercise](ctx, r.repo, path)
	if errors.Is(err, repositories.ErrNotFound) {
		copied := *loaded
		current = &copied
	} else if err != nil {
		return err
	}

	completedAt := now.UTC()
	current.Completed = true
	current.ResultID = resultID
	current.CompletedAt = &completedAt

	if err := repositories.WriteJSON(ctx, r.repo, path, current); err != nil {
		return err
	}

	r.publish(ctx, events.NewEvent(events.EventAssignmentCompleted, events.AssignmentCompletedEvent{
		AssignedExerciseID: current.ID,
		ExerciseID:         current.ExerciseID,
		ClassID:            current.ClassID,
		ResultID:           resultID,
		CompletedAt:        completedAt,
	}, now))
	return nil
}

func (r *ResultSubmitter) publishSubmitted(ctx context.Context, result *models.ExerciseResult) {
	r.publish(ctx, events.NewEvent(events.EventResultSubmitted, events.ResultSubmittedEvent{
		ResultID:           result.ResultID,
		ExerciseID:         result.ExerciseID,
		AssignedExerciseID: result.AssignedExerciseID,
		StudentID:          result.StudentID,
		SessionID:          result.SessionID,
		ScorePercentage:    result.ScorePercentage,
		CorrectItems:       result.CorrectItems,
		GradableItems:      result.GradableItems,
		TotalTimeSpentMs:   result.TotalTimeSpentMs,
		IsLateSubmission:   result.AssignmentMetadata != nil && result.AssignmentMetadata.IsLateSubmission,
		SubmittedAt:        result.SubmittedAt,
	}, r.source.Now()))
}

func (r *ResultSubmitter) publish(ctx context.Context, event *events.Event) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn(ctx, "Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}
