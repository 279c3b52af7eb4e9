package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
)

const (
	summarySheet   = "Summary"
	questionsSheet = "Questions"
	attemptsSheet  = "Attempts"
	resultsSheet   = "Results"

	timeLayout = "2006-01-02 15:04:05"
)

// ExportService renders stored result records as Excel workbooks.
type ExportService struct {
	repo   repositories.DataRepository
	logger *ServiceLogger
}

func NewExportService(repo repositories.DataRepository, logger *ServiceLogger) *ExportService {
	return &ExportService{repo: repo, logger: logger}
}

// LoadResult reads one stored result record.
func (s *ExportService) LoadResult(ctx context.Context, exerciseID, resultID string) (*models.ExerciseResult, error) {
	result, err := repositories.ReadJSON[models.ExerciseResult](ctx, s.repo, repositories.ResultPath(exerciseID, resultID))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrResultNotFound, exerciseID, resultID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	return result, nil
}

// ExportResult writes one result as a workbook with summary, per-question
// and attempt-history sheets.
func (s *ExportService) ExportResult(ctx context.Context, exerciseID, resultID string) ([]byte, error) {
	start := time.Now()
	data, err := s.exportResult(ctx, exerciseID, resultID)
	s.logger.LogOperation(ctx, "export_result", "", resultID, "result", time.Since(start), err)
	return data, err
}

func (s *ExportService) exportResult(ctx context.Context, exerciseID, resultID string) ([]byte, error) {
	result, err := s.LoadResult(ctx, exerciseID, resultID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeRows(f, summarySheet, summaryRows(result)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(questionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeRows(f, questionsSheet, questionRows(result)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(attemptsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeRows(f, attemptsSheet, attemptRows(result)); err != nil {
		return nil, err
	}

	return toBytes(f)
}

// ExportExerciseResults writes one row per stored result of the exercise.
func (s *ExportService) ExportExerciseResults(ctx context.Context, exerciseID string) ([]byte, error) {
	start := time.Now()
	data, err := s.exportExerciseResults(ctx, exerciseID)
	s.logger.LogOperation(ctx, "export_exercise_results", "", exerciseID, "exercise", time.Since(start), err)
	return data, err
}

func (s *ExportService) exportExerciseResults(ctx context.Context, exerciseID string) ([]byte, error) {
	paths, err := repositories.ListPaths(ctx, s.repo, repositories.ResultsPrefix(exerciseID), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	rows := [][]interface{}{{
		"Result ID", "Student ID", "Assigned Exercise", "Score (%)", "Correct", "Gradable",
		"Time Spent (s)", "Late", "Started At", "Submitted At",
	}}
	for _, path := range paths {
		result, err := repositories.ReadJSON[models.ExerciseResult](ctx, s.repo, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, []interface{}{
			result.ResultID,
			result.StudentID,
			deref(result.AssignedExerciseID),
			result.ScorePercentage,
			result.CorrectItems,
			result.GradableItems,
			float64(result.TotalTimeSpentMs) / 1000,
			result.AssignmentMetadata != nil && result.AssignmentMetadata.IsLateSubmission,
			formatTime(result.StartedAt),
			result.SubmittedAt,
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeRows(f, resultsSheet, rows); err != nil {
		return nil, err
	}
	return toBytes(f)
}

func summaryRows(r *models.ExerciseResult) [][]interface{} {
	rows := [][]interface{}{
		{"Result ID", r.ResultID},
		{"Exercise ID", r.ExerciseID},
		{"Assigned Exercise ID", deref(r.AssignedExerciseID)},
		{"Student ID", r.StudentID},
		{"Score (%)", r.ScorePercentage},
		{"Correct Items", r.CorrectItems},
		{"Gradable Items", r.GradableItems},
		{"Total Questions", r.TotalQuestions},
		{"Total Time Spent (s)", float64(r.TotalTimeSpentMs) / 1000},
		{"Started At", formatTime(r.StartedAt)},
		{"Submitted At", r.SubmittedAt},
	}
	if m := r.AssignmentMetadata; m != nil {
		deadline := ""
		if m.Deadline != nil {
			deadline = formatTime(*m.Deadline)
		}
		rows = append(rows,
			[]interface{}{"Class ID", m.ClassID},
			[]interface{}{"Deadline", deadline},
			[]interface{}{"Late Submission", m.IsLateSubmission},
		)
	}
	return rows
}

func questionRows(r *models.ExerciseResult) [][]interface{} {
	rows := [][]interface{}{{
		"#", "Question ID", "Type", "Correct", "Sub-results", "Timed Out", "Attempts",
		"Time Spent (s)", "Reading (ms)", "Thinking (ms)", "Answering (ms)", "Reviewing (ms)",
		"Interactions", "Final Answer",
	}}
	for i, q := range r.QuestionResults {
		interactions := 0
		for _, n := range q.InteractionCounts {
			interactions += n
		}
		rows = append(rows, []interface{}{
			i + 1,
			q.QuestionID,
			string(q.QuestionType),
			q.IsCorrect,
			formatSubResults(q.SubResults),
			q.TimedOut,
			q.Attempts,
			float64(q.TimeSpentMs) / 1000,
			q.TimeByPhaseMs[models.PhaseReading],
			q.TimeByPhaseMs[models.PhaseThinking],
			q.TimeByPhaseMs[models.PhaseAnswering],
			q.TimeByPhaseMs[models.PhaseReviewing],
			interactions,
			q.FinalAnswer,
		})
	}
	return rows
}

func attemptRows(r *models.ExerciseResult) [][]interface{} {
	rows := [][]interface{}{{
		"Question ID", "Attempt", "Type", "Answer", "Time Spent (ms)", "Hesitation (ms)",
		"Phase", "Confidence", "Significant", "Correct", "Timed Out", "Timestamp",
	}}
	for _, q := range r.QuestionResults {
		for i, a := range q.AttemptHistory {
			correct := ""
			if a.IsCorrect != nil {
				correct = fmt.Sprint(*a.IsCorrect)
			}
			rows = append(rows, []interface{}{
				q.QuestionID,
				i + 1,
				string(a.AttemptType),
				a.AnswerSerialized,
				a.TimeSpentMs,
				a.HesitationTimeMs,
				string(a.QuestionPhase),
				string(a.Confidence),
				a.IsSignificantChange,
				correct,
				a.TimedOut,
				formatTime(a.Timestamp),
			})
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func formatSubResults(sub map[string]bool) string {
	if len(sub) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sub))
	for k := range sub {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%t", k, sub[k])
	}
	return strings.Join(parts, ", ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
