package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSessionStarted      EventType = "session.started"
	EventQuestionTimedOut    EventType = "question.timed_out"
	EventResultSubmitted     EventType = "result.submitted"
	EventAssignmentCompleted EventType = "assignment.completed"
)

const (
	eventSource  = "exercise-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every domain event.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewEvent(eventType EventType, data any, at time.Time) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: at.UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type SessionStartedEvent struct {
	SessionID          string  `json:"session_id"`
	ExerciseID         string  `json:"exercise_id"`
	AssignedExerciseID *string `json:"assigned_exercise_id,omitempty"`
	StudentID          string  `json:"student_id,omitempty"`
	Mode               string  `json:"mode"`
	IsLateSubmission   bool    `json:"is_late_submission"`
}

type QuestionTimedOutEvent struct {
	SessionID  string `json:"session_id"`
	ExerciseID string `json:"exercise_id"`
	QuestionID string `json:"question_id"`
}

type ResultSubmittedEvent struct {
	ResultID           string  `json:"result_id"`
	ExerciseID         string  `json:"exercise_id"`
	AssignedExerciseID *string `json:"assigned_exercise_id,omitempty"`
	StudentID          string  `json:"student_id,omitempty"`
	SessionID          string  `json:"session_id"`
	ScorePercentage    int     `json:"score_percentage"`
	CorrectItems       int     `json:"correct_items"`
	GradableItems      int     `json:"gradable_items"`
	TotalTimeSpentMs   int64   `json:"total_time_spent_ms"`
	IsLateSubmission   bool    `json:"is_late_submission"`
	SubmittedAt        string  `json:"submitted_at"`
}

type AssignmentCompletedEvent struct {
	AssignedExerciseID string    `json:"assigned_exercise_id"`
	ExerciseID         string    `json:"exercise_id"`
	ClassID            string    `json:"class_id,omitempty"`
	StudentID          string    `json:"student_id,omitempty"`
	ResultID           string    `json:"result_id"`
	CompletedAt        time.Time `json:"completed_at"`
}
