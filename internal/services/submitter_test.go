package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

func TestResultSubmitter_WritesResultAndCompletesAssignment(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryRepository()
	stored := openAssignment("as-1")
	stored.ClassID = "class-renamed"
	seed(t, repo, repositories.AssignmentPath("as-1"), stored)

	publisher := events.NewMockEventPublisher(discardSlog())
	clock := timer.NewManual(t0)
	submitter := NewResultSubmitter(repo, publisher, clock, testServiceLogger())

	result, err := submitter.Submit(ctx, finishedState(t, openAssignment("as-1"), false))
	require.NoError(t, err)
	assert.Equal(t, "res-1", result.ResultID)
	assert.Equal(t, "2025-03-01T09:00:00Z", result.SubmittedAt)

	saved, err := repositories.ReadJSON[models.ExerciseResult](ctx, repo, repositories.ResultPath("ex-1", "res-1"))
	require.NoError(t, err)
	assert.Equal(t, 75, saved.ScorePercentage)
	assert.Len(t, saved.QuestionResults, 2)

	assignment, err := repositories.ReadJSON[models.AssignedExercise](ctx, repo, repositories.AssignmentPath("as-1"))
	require.NoError(t, err)
	assert.True(t, assignment.Completed)
	assert.Equal(t, "res-1", assignment.ResultID)
	require.NotNil(t, assignment.CompletedAt)
	assert.True(t, t0.Equal(*assignment.CompletedAt))
	assert.Equal(t, "class-renamed", assignment.ClassID)

	completed := publisher.EventsOfType(events.EventAssignmentCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "res-1", completed[0].Data.(events.AssignmentCompletedEvent).ResultID)

	submitted := publisher.EventsOfType(events.EventResultSubmitted)
	require.Len(t, submitted, 1)
	data := submitted[0].Data.(events.ResultSubmittedEvent)
	assert.Equal(t, 75, data.ScorePercentage)
	assert.Equal(t, "sess-1", data.SessionID)
}

func TestResultSubmitter_WithoutAssignment(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryRepository()
	publisher := events.NewMockEventPublisher(discardSlog())
	submitter := NewResultSubmitter(repo, publisher, timer.NewManual(t0), testServiceLogger())

	_, err := submitter.Submit(ctx, finishedState(t, nil, false))
	require.NoError(t, err)

	paths, err := repo.ListPaths(ctx, "results/", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"results/ex-1/res-1"}, paths)
	assert.Empty(t, publisher.EventsOfType(events.EventAssignmentCompleted))
	assert.Len(t, publisher.EventsOfType(events.EventResultSubmitted), 1)
}

func TestResultSubmitter_ResultWriteFailure(t *testing.T) {
	repo := newFaultyRepository()
	repo.failWrites = []string{"results/"}
	publisher := events.NewMockEventPublisher(discardSlog())
	submitter := NewResultSubmitter(repo, publisher, timer.NewManual(t0), testServiceLogger())

	_, err := submitter.Submit(context.Background(), finishedState(t, openAssignment("as-1"), false))
	require.Error(t, err)

	var se *apperrors.SubmissionError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "result", se.Stage)
	assert.Equal(t, "res-1", se.ResultID)
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestResultSubmitter_AssignmentFailureThenRetry(t *testing.T) {
	ctx := context.Background()
	repo := newFaultyRepository()
	repo.failWrites = []string{"assignedExercises/"}
	seed(t, repo.MemoryRepository, repositories.AssignmentPath("as-1"), openAssignment("as-1"))
	submitter := NewResultSubmitter(repo, nil, timer.NewManual(t0), testServiceLogger())
	state := finishedState(t, openAssignment("as-1"), false)

	_, err := submitter.Submit(ctx, state)
	var se *apperrors.SubmissionError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "assignment", se.Stage)

	repo.failWrites = nil
	result, err := submitter.Submit(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "res-1", result.ResultID)

	paths, err := repo.ListPaths(ctx, "results/", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"results/ex-1/res-1"}, paths)
}

func TestResultSubmitter_PublishFailureIsNotFatal(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("*events.Event")).Return(errors.New("broker down"))

	submitter := NewResultSubmitter(repositories.NewMemoryRepository(), publisher, timer.NewManual(t0), testServiceLogger())
	result, err := submitter.Submit(context.Background(), finishedState(t, nil, false))

	require.NoError(t, err)
	assert.Equal(t, "res-1", result.ResultID)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
