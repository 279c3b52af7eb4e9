package models

import (
	"time"
)

// ExerciseResult is the persisted result record. Other systems read it, so
// field names and json tags are a stable contract.
type ExerciseResult struct {
	ResultID           string              `json:"resultId"`
	ExerciseID         string              `json:"exerciseId"`
	AssignedExerciseID *string             `json:"assignedExerciseId,omitempty"`
	StudentID          string              `json:"studentId,omitempty"`
	SessionID          string              `json:"sessionId,omitempty"`
	ScorePercentage    int                 `json:"scorePercentage"`
	CorrectItems       int                 `json:"correctItems"`
	GradableItems      int                 `json:"gradableItems"`
	TotalQuestions     int                 `json:"totalQuestions"`
	TotalTimeSpentMs   int64               `json:"totalTimeSpentMs"`
	QuestionResults    []QuestionResult    `json:"questionResults"`
	AssignmentMetadata *AssignmentMetadata `json:"assignmentMetadata"`
	StartedAt          time.Time           `json:"startedAt"`
	SubmittedAt        string              `json:"submittedAt"` // RFC 3339
}

type QuestionResult struct {
	QuestionID        string                  `json:"questionId"`
	QuestionType      QuestionType            `json:"questionType"`
	IsCorrect         bool                    `json:"isCorrect"`
	SubResults        map[string]bool         `json:"subResults,omitempty"`
	TimedOut          bool                    `json:"timedOut"`
	Attempts          int                     `json:"attempts"`
	TimeSpentMs       int64                   `json:"timeSpentMs"`
	TimeByPhaseMs     map[QuestionPhase]int64 `json:"timeByPhaseMs"`
	AttemptHistory    []AttemptLogEntry       `json:"attemptHistory"`
	InteractionCounts map[InteractionType]int `json:"interactionCounts"`
	FinalAnswer       string                  `json:"finalAnswer"`
}

type AssignmentMetadata struct {
	AssignedExerciseID    string     `json:"assignedExerciseId"`
	ClassID               string     `json:"classId,omitempty"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	AcceptLateSubmissions bool       `json:"acceptLateSubmissions"`
	IsLateSubmission      bool       `json:"isLateSubmission"`
}
