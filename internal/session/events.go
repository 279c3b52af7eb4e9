package session

import (
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// Event is an input to Reduce.
type Event interface {
	eventName() string
}

// Loaded seeds the answers and presents the first question.
type Loaded struct{}

// AnswerChanged replaces the stored answer for the current question.
type AnswerChanged struct {
	Answer models.Answer
}

// OptionTapped is a tap on a multiple-choice option. Single-answer questions
// are evaluated on the spot; multi-answer questions toggle the option.
type OptionTapped struct {
	Option string
}

// Submitted evaluates the current answer in practice mode.
type Submitted struct{}

// Finished evaluates the current answer in level mode.
type Finished struct{}

// FeedbackDone ends the feedback display shown for question Index.
type FeedbackDone struct {
	Index int
}

// TimeUpDone ends the time's-up display shown for question Index.
type TimeUpDone struct {
	Index int
}

type Tick struct{}

type WentBack struct{}

type InteractionRecorded struct {
	Type   models.InteractionType
	Target string
	Data   map[string]any
}

type Deactivated struct{}

type Activated struct{}

// ResultRequested starts result submission from the Results screen.
type ResultRequested struct{}

type ResultSaved struct {
	Result *models.ExerciseResult
}

type ResultFailed struct {
	Err error
}

func (Loaded) eventName() string              { return "loaded" }
func (AnswerChanged) eventName() string       { return "answer_changed" }
func (OptionTapped) eventName() string        { return "option_tapped" }
func (Submitted) eventName() string           { return "submitted" }
func (Finished) eventName() string            { return "finished" }
func (FeedbackDone) eventName() string        { return "feedback_done" }
func (TimeUpDone) eventName() string          { return "time_up_done" }
func (Tick) eventName() string                { return "tick" }
func (WentBack) eventName() string            { return "went_back" }
func (InteractionRecorded) eventName() string { return "interaction_recorded" }
func (Deactivated) eventName() string         { return "deactivated" }
func (Activated) eventName() string           { return "activated" }
func (ResultRequested) eventName() string     { return "result_requested" }
func (ResultSaved) eventName() string         { return "result_saved" }
func (ResultFailed) eventName() string        { return "result_failed" }
