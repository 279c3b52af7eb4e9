// Package session drives one learner through one exercise. Reduce holds every
// progression, evaluation and logging decision as a pure function; Engine
// feeds it events one at a time and carries out the effects it returns.
package session

import (
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
)

type Status string

const (
	StatusLoading         Status = "loading"
	StatusPresenting      Status = "presenting"
	StatusCorrectFeedback Status = "correct_feedback"
	StatusWrongFeedback   Status = "wrong_feedback"
	StatusTimedOut        Status = "timed_out"
	StatusResults         Status = "results"
	StatusSubmitting      Status = "submitting"
	StatusDone            Status = "done"
)

// Mode selects the navigation rules. Level mode hides Previous and replaces
// Submit with a single Finish action.
type Mode string

const (
	ModePractice Mode = "practice"
	ModeLevel    Mode = "level"
)

func (m Mode) IsValid() bool {
	return m == ModePractice || m == ModeLevel
}

// State is the full working set of a session. Reduce never modifies a State
// in place; slices are copied before they change, so an old State stays
// valid after later events.
type State struct {
	Context *Context
	Mode    Mode
	Status  Status
	Index   int
	Active  bool

	Answers      []models.StudentAnswer
	Attempts     [][]models.AttemptLogEntry
	Interactions [][]models.InteractionLogEntry

	Clock timer.Clock

	// TimeoutRecorded guards the current question against a second timeout.
	TimeoutRecorded bool

	Submitting bool
	ResultID   string
	LastError  string
}

// NewState returns a session waiting for its Loaded event.
func NewState(sc *Context, mode Mode) State {
	if !mode.IsValid() {
		mode = ModePractice
	}
	return State{Context: sc, Mode: mode, Status: StatusLoading}
}

func (s State) Exercise() *models.Exercise {
	return s.Context.Exercise
}

func (s State) TimeLimit() time.Duration {
	return s.Context.Exercise.TimeLimit()
}

// Current returns the focused question, or nil before loading.
func (s State) Current() *models.Question {
	if s.Status == StatusLoading || s.Index < 0 || s.Index >= len(s.Context.Exercise.Questions) {
		return nil
	}
	return &s.Context.Exercise.Questions[s.Index]
}

func (s State) isLast() bool {
	return s.Index == len(s.Context.Exercise.Questions)-1
}

// CanGoPrevious reports whether Previous is currently accepted.
func (s State) CanGoPrevious() bool {
	return s.Mode != ModeLevel && s.Status == StatusPresenting && s.Index > 0
}

// timing reports whether the question timer should be running.
func (s State) timing() bool {
	if !s.Active || s.TimeLimit() <= 0 {
		return false
	}
	switch s.Status {
	case StatusPresenting, StatusWrongFeedback:
		return true
	default:
		return false
	}
}

func (s State) withAnswer(i int, sa models.StudentAnswer) State {
	answers := make([]models.StudentAnswer, len(s.Answers))
	copy(answers, s.Answers)
	answers[i] = sa
	s.Answers = answers
	return s
}
