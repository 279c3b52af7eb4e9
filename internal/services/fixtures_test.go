package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func discardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServiceLogger() *ServiceLogger {
	return NewServiceLogger(discardSlog(), LogConfig{Service: "exercise-service", Component: "test"})
}

// passageExercise has one multiple-choice question and one reading passage
// with three parts, four gradable items in total.
func passageExercise() *models.Exercise {
	return &models.Exercise{
		ID:    "ex-1",
		Title: "The cat",
		Questions: []models.Question{
			{
				ID:       "q1",
				Type:     models.MultipleChoice,
				Question: "2 + 1 = ?",
				Options:  []string{"2", "3", "4"},
				Answer:   models.NewAnswerKey("B"),
				TTSAudio: "tts/q1.mp3",
			},
			{
				ID:       "q2",
				Type:     models.ReadingPassage,
				Question: "Read and answer",
				Passage:  "The cat sat on the mat.",
				SubQuestions: []models.Question{
					{ID: "p1", Type: models.Identification, Question: "Who sat?", Answer: models.NewAnswerKey("cat")},
					{ID: "p2", Type: models.MultipleChoice, Question: "Where?", Options: []string{"mat", "hat"}, Answer: models.NewAnswerKey("A")},
					{ID: "p3", Type: models.Identification, Question: "On what?", Answer: models.NewAnswerKey("mat")},
				},
			},
		},
	}
}

func openAssignment(id string) *models.AssignedExercise {
	return &models.AssignedExercise{
		ID:              id,
		ExerciseID:      "ex-1",
		ClassID:         "class-7",
		AcceptingStatus: models.AcceptingOpen,
	}
}

func seed(t *testing.T, repo repositories.DataRepository, path string, v any) {
	t.Helper()
	require.NoError(t, repositories.WriteJSON(context.Background(), repo, path, v))
}

func newTestLoader(repo repositories.DataRepository, clock *timer.Manual) *ExerciseLoader {
	return NewExerciseLoader(repo, validator.New(), clock, testServiceLogger())
}

var errStoreDown = errors.New("store down")

// faultyRepository fails reads or writes whose path starts with one of the
// configured prefixes.
type faultyRepository struct {
	*repositories.MemoryRepository
	failReads  []string
	failWrites []string
}

func newFaultyRepository() *faultyRepository {
	return &faultyRepository{MemoryRepository: repositories.NewMemoryRepository()}
}

func (f *faultyRepository) Read(ctx context.Context, path string) ([]byte, error) {
	if hasAnyPrefix(path, f.failReads) {
		return nil, errStoreDown
	}
	return f.MemoryRepository.Read(ctx, path)
}

func (f *faultyRepository) Write(ctx context.Context, path string, data []byte) error {
	if hasAnyPrefix(path, f.failWrites) {
		return errStoreDown
	}
	return f.MemoryRepository.Write(ctx, path, data)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
