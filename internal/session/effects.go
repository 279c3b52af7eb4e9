package session

import (
	"time"
)

// Effect is work Reduce asks the engine to carry out.
type Effect interface {
	effectName() string
}

type FeedbackKind string

const (
	FeedbackCorrect FeedbackKind = "correct"
	FeedbackWrong   FeedbackKind = "wrong"
	FeedbackTimesUp FeedbackKind = "times_up"
)

type StartTimer struct{}

type StopTimer struct{}

// Schedule delivers Event after Delay unless the session ends first.
type Schedule struct {
	Delay time.Duration
	Event Event
}

// Feedback tells the presentation layer what to show.
type Feedback struct {
	Kind       FeedbackKind
	QuestionID string
}

type StopAudio struct{}

// PersistResult asks for the result record to be built and written.
type PersistResult struct{}

func (StartTimer) effectName() string    { return "start_timer" }
func (StopTimer) effectName() string     { return "stop_timer" }
func (Schedule) effectName() string      { return "schedule" }
func (Feedback) effectName() string      { return "feedback" }
func (StopAudio) effectName() string     { return "stop_audio" }
func (PersistResult) effectName() string { return "persist_result" }
