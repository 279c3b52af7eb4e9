package models

import (
	"time"
)

type AcceptingStatus string

const (
	AcceptingOpen   AcceptingStatus = "open"
	AcceptingClosed AcceptingStatus = "closed"
)

type Exercise struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Questions   []Question `json:"questions" validate:"required,min=1,dive"`

	// TimeLimitPerItem is in seconds and applies to every question.
	TimeLimitPerItem *int `json:"timeLimitPerItem,omitempty" validate:"omitnil,min=1"`

	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// TimeLimit returns the per-question limit, or zero when the exercise is untimed.
func (e *Exercise) TimeLimit() time.Duration {
	if e.TimeLimitPerItem == nil || *e.TimeLimitPerItem <= 0 {
		return 0
	}
	return time.Duration(*e.TimeLimitPerItem) * time.Second
}

// GradableItems counts passage sub-questions individually.
func (e *Exercise) GradableItems() int {
	total := 0
	for i := range e.Questions {
		total += e.Questions[i].GradableItems()
	}
	return total
}

type AssignedExercise struct {
	ID                    string          `json:"id" validate:"required"`
	ExerciseID            string          `json:"exerciseId" validate:"required"`
	ClassID               string          `json:"classId,omitempty"`
	Deadline              *time.Time      `json:"deadline,omitempty"`
	AcceptLateSubmissions bool            `json:"acceptLateSubmissions"`
	AcceptingStatus       AcceptingStatus `json:"acceptingStatus"`

	// Written back when a result is submitted.
	Completed   bool       `json:"completed"`
	ResultID    string     `json:"resultId,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsPastDeadline reports whether now is after the deadline. Assignments
// without a deadline are never late.
func (a *AssignedExercise) IsPastDeadline(now time.Time) bool {
	return a.Deadline != nil && now.After(*a.Deadline)
}
