package services

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exercise-service/internal/attemptlog"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/session"
)

// ScorePercentage rounds 100*correct/gradable half away from zero. An
// exercise with nothing gradable scores zero.
func ScorePercentage(correct, gradable int) int {
	if gradable <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(gradable)))
}

// CountCorrect returns correct and gradable item counts. Reading passages
// contribute one item per sub-question.
func CountCorrect(exercise *models.Exercise, answers []models.StudentAnswer) (correct, gradable int) {
	for i := range exercise.Questions {
		q := &exercise.Questions[i]
		gradable += q.GradableItems()
		if i >= len(answers) {
			continue
		}

		if q.Type == models.ReadingPassage {
			for _, sub := range q.SubQuestions {
				if answers[i].SubResults[sub.ID] {
					correct++
				}
			}
			continue
		}
		if answers[i].Correct() {
			correct++
		}
	}
	return correct, gradable
}

// BuildResult assembles the result record for a session that reached its
// results screen.
func BuildResult(s session.State, submittedAt time.Time) *models.ExerciseResult {
	sc := s.Context
	exercise := sc.Exercise

	resultID := sc.ResultID
	if resultID == "" {
		resultID = uuid.NewString()
	}

	correct, gradable := CountCorrect(exercise, s.Answers)
	result := &models.ExerciseResult{
		ResultID:           resultID,
		ExerciseID:         exercise.ID,
		AssignedExerciseID: sc.AssignedExerciseID(),
		StudentID:          sc.StudentID,
		SessionID:          sc.SessionID,
		ScorePercentage:    ScorePercentage(correct, gradable),
		CorrectItems:       correct,
		GradableItems:      gradable,
		TotalQuestions:     len(exercise.Questions),
		QuestionResults:    make([]models.QuestionResult, 0, len(s.Answers)),
		AssignmentMetadata: assignmentMetadata(sc),
		StartedAt:          sc.StartedAt.UTC(),
		SubmittedAt:        submittedAt.UTC().Format(time.RFC3339),
	}

	for i, answer := range s.Answers {
		qr := questionResult(&exercise.Questions[i], answer)
		if i < len(s.Attempts) {
			qr.AttemptHistory = append(qr.AttemptHistory, s.Attempts[i]...)
			qr.TimeByPhaseMs = attemptlog.TimeByPhase(s.Attempts[i])
		}
		if i < len(s.Interactions) {
			qr.InteractionCounts = attemptlog.CountInteractions(s.Interactions[i])
		}
		result.TotalTimeSpentMs += answer.TimeSpentMs
		result.QuestionResults = append(result.QuestionResults, qr)
	}
	return result
}

func questionResult(q *models.Question, answer models.StudentAnswer) models.QuestionResult {
	qr := models.QuestionResult{
		QuestionID:        answer.QuestionID,
		QuestionType:      q.Type,
		IsCorrect:         answer.Correct(),
		TimedOut:          answer.TimedOut,
		Attempts:          answer.Attempts,
		TimeSpentMs:       answer.TimeSpentMs,
		TimeByPhaseMs:     attemptlog.TimeByPhase(nil),
		AttemptHistory:    []models.AttemptLogEntry{},
		InteractionCounts: attemptlog.CountInteractions(nil),
		FinalAnswer:       answer.Answer.Serialize(),
	}
	if len(answer.SubResults) > 0 {
		qr.SubResults = make(map[string]bool, len(answer.SubResults))
		for id, ok := range answer.SubResults {
			qr.SubResults[id] = ok
		}
	}
	return qr
}

func assignmentMetadata(sc *session.Context) *models.AssignmentMetadata {
	if sc.Assignment == nil {
		return nil
	}
	a := sc.Assignment
	return &models.AssignmentMetadata{
		AssignedExerciseID:    a.ID,
		ClassID:               a.ClassID,
		Deadline:              a.Deadline,
		AcceptLateSubmissions: a.AcceptLateSubmissions,
		IsLateSubmission:      sc.IsLateSubmission,
	}
}
