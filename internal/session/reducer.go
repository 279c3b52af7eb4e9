package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/attemptlog"
	"github.com/SAP-F-2025/exercise-service/internal/evaluator"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
)

var (
	ErrInvalidTransition   = errors.New("event not allowed in current state")
	ErrPreviousUnavailable = errors.New("previous question is not available")
	ErrAnswerType          = errors.New("answer type does not match question type")
	ErrNotMultipleChoice   = errors.New("current question is not multiple-choice")
	ErrModeAction          = errors.New("action not available in this mode")
	ErrUnknownEvent        = errors.New("unknown event")
)

// Env carries what Reduce needs from outside the state.
type Env struct {
	Now           time.Time
	FeedbackDelay time.Duration
	TimesUpDelay  time.Duration
}

// Reduce applies e to s. On error s is returned unchanged with no effects.
func Reduce(s State, e Event, env Env) (State, []Effect, error) {
	next, effects, err := reduce(s, e, env)
	if err != nil {
		return s, nil, err
	}
	if next.timing() && !s.timing() && !hasEffect[StartTimer](effects) {
		effects = append(effects, StartTimer{})
	}
	return next, effects, nil
}

func reduce(s State, e Event, env Env) (State, []Effect, error) {
	switch ev := e.(type) {
	case Loaded:
		return load(s, env)
	case AnswerChanged:
		return changeAnswer(s, ev.Answer, env)
	case OptionTapped:
		return tapOption(s, ev.Option, env)
	case Submitted:
		if s.Mode == ModeLevel {
			return s, nil, ErrModeAction
		}
		return submit(s, env)
	case Finished:
		if s.Mode != ModeLevel {
			return s, nil, ErrModeAction
		}
		return submit(s, env)
	case FeedbackDone:
		return feedbackDone(s, ev.Index, env)
	case TimeUpDone:
		if s.Status != StatusTimedOut || ev.Index != s.Index {
			return s, nil, nil
		}
		return advance(s, env)
	case Tick:
		return tick(s, env)
	case WentBack:
		return goBack(s, env)
	case InteractionRecorded:
		return recordInteraction(s, ev, env)
	case Deactivated:
		return deactivate(s)
	case Activated:
		return activate(s)
	case ResultRequested:
		return requestResult(s)
	case ResultSaved:
		if s.Status != StatusSubmitting {
			return s, nil, invalid(s, e)
		}
		s.Status = StatusDone
		s.Submitting = false
		s.LastError = ""
		if ev.Result != nil {
			s.ResultID = ev.Result.ResultID
		}
		return s, []Effect{StopTimer{}, StopAudio{}}, nil
	case ResultFailed:
		if s.Status != StatusSubmitting {
			return s, nil, invalid(s, e)
		}
		s.Status = StatusResults
		s.Submitting = false
		if ev.Err != nil {
			s.LastError = ev.Err.Error()
		}
		return s, nil, nil
	default:
		return s, nil, ErrUnknownEvent
	}
}

func invalid(s State, e Event) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, e.eventName(), s.Status)
}

func load(s State, env Env) (State, []Effect, error) {
	if s.Status != StatusLoading {
		return s, nil, invalid(s, Loaded{})
	}
	questions := s.Exercise().Questions

	s.Answers = models.SeedAnswers(questions)
	s.Attempts = make([][]models.AttemptLogEntry, len(questions))
	s.Interactions = make([][]models.InteractionLogEntry, len(questions))
	s.Clock = timer.Start(env.Now)
	s.Index = 0
	s.Active = true
	s.Status = StatusPresenting
	return s, nil, nil
}

func changeAnswer(s State, answer models.Answer, env Env) (State, []Effect, error) {
	if s.Status != StatusPresenting {
		return s, nil, invalid(s, AnswerChanged{})
	}
	q := s.Current()
	if answer.Type != q.Type {
		return s, nil, ErrAnswerType
	}

	sa := s.Answers[s.Index]
	sa.Answer = answer.Clone()
	s = s.withAnswer(s.Index, sa)

	attemptType := models.AttemptChange
	if len(s.Attempts[s.Index]) == 0 {
		attemptType = models.AttemptInitial
	}
	s = s.logAttempt(sa.Answer, attemptType, nil, false, env)
	return s, nil, nil
}

func tapOption(s State, option string, env Env) (State, []Effect, error) {
	if s.Status != StatusPresenting {
		return s, nil, invalid(s, OptionTapped{})
	}
	q := s.Current()
	if q.Type != models.MultipleChoice {
		return s, nil, ErrNotMultipleChoice
	}

	if q.MultiAnswer {
		return changeAnswer(s, toggleChoice(s.Answers[s.Index].Answer, option), env)
	}

	tapped := models.ChoiceAnswer(option)
	correct := evaluator.IsCorrect(q, tapped)

	sa := s.Answers[s.Index]
	sa.Attempts++
	sa.IsCorrect = &correct

	if !correct {
		// The stored answer keeps its previous value.
		s = s.withAnswer(s.Index, sa)
		s = s.logAttempt(tapped, models.AttemptChange, &correct, false, env)
		return wrongFeedback(s, q, env)
	}

	sa.Answer = tapped
	s = s.withAnswer(s.Index, sa)
	s = s.logAttempt(tapped, models.AttemptFinal, &correct, false, env)
	s.Clock = s.Clock.Freeze(env.Now)

	next, effects, err := advance(s, env)
	if err != nil {
		return s, nil, err
	}
	return next, append([]Effect{Feedback{Kind: FeedbackCorrect, QuestionID: q.ID}}, effects...), nil
}

func toggleChoice(answer models.Answer, option string) models.Answer {
	out := answer.Clone()
	out.Type = models.MultipleChoice
	for i, c := range out.Choices {
		if c == option {
			out.Choices = append(out.Choices[:i], out.Choices[i+1:]...)
			return out
		}
	}
	out.Choices = append(out.Choices, option)
	return out
}

func submit(s State, env Env) (State, []Effect, error) {
	if s.Status != StatusPresenting {
		return s, nil, invalid(s, Submitted{})
	}
	q := s.Current()
	sa := s.Answers[s.Index]

	correct := evaluator.IsCorrect(q, sa.Answer)
	sa.Attempts++
	sa.IsCorrect = &correct
	if q.Type == models.ReadingPassage {
		sa.SubResults = evaluator.EvaluateParts(q, sa.Answer)
	}
	s = s.withAnswer(s.Index, sa)

	if !correct {
		s = s.logAttempt(sa.Answer, models.AttemptChange, &correct, false, env)
		return wrongFeedback(s, q, env)
	}

	s = s.logAttempt(sa.Answer, models.AttemptFinal, &correct, false, env)
	s.Clock = s.Clock.Freeze(env.Now)
	s.Status = StatusCorrectFeedback
	return s, []Effect{
		Feedback{Kind: FeedbackCorrect, QuestionID: q.ID},
		Schedule{Delay: env.FeedbackDelay, Event: FeedbackDone{Index: s.Index}},
	}, nil
}

func wrongFeedback(s State, q *models.Question, env Env) (State, []Effect, error) {
	s.Status = StatusWrongFeedback
	return s, []Effect{
		Feedback{Kind: FeedbackWrong, QuestionID: q.ID},
		Schedule{Delay: env.FeedbackDelay, Event: FeedbackDone{Index: s.Index}},
	}, nil
}

func feedbackDone(s State, index int, env Env) (State, []Effect, error) {
	if index != s.Index {
		return s, nil, nil
	}
	switch s.Status {
	case StatusWrongFeedback:
		s.Status = StatusPresenting
		return s, nil, nil
	case StatusCorrectFeedback:
		return advance(s, env)
	default:
		// superseded, e.g. by a timeout during wrong feedback
		return s, nil, nil
	}
}

func tick(s State, env Env) (State, []Effect, error) {
	if !s.timing() || s.TimeoutRecorded || !s.Clock.Expired(s.TimeLimit(), env.Now) {
		return s, nil, nil
	}

	q := s.Current()
	incorrect := false
	sa := s.Answers[s.Index]
	sa.Answer = models.EmptyAnswer(q)
	sa.IsCorrect = &incorrect
	sa.TimedOut = true
	sa.Attempts++
	if q.Type == models.ReadingPassage {
		sa.SubResults = make(map[string]bool, len(q.SubQuestions))
		for _, sub := range q.SubQuestions {
			sa.SubResults[sub.ID] = false
		}
	}
	s = s.withAnswer(s.Index, sa)
	s = s.logAttempt(sa.Answer, models.AttemptFinal, &incorrect, true, env)

	s.Clock = s.Clock.Freeze(env.Now)
	s.TimeoutRecorded = true
	s.Status = StatusTimedOut
	return s, []Effect{
		StopAudio{},
		Feedback{Kind: FeedbackTimesUp, QuestionID: q.ID},
		Schedule{Delay: env.TimesUpDelay, Event: TimeUpDone{Index: s.Index}},
	}, nil
}

// advance commits the current question's time and moves to the next
// question, or to Results after the last one.
func advance(s State, env Env) (State, []Effect, error) {
	s = s.commitTime(env.Now)

	if s.isLast() {
		s.Status = StatusResults
		return s, []Effect{StopTimer{}, StopAudio{}}, nil
	}
	return s.focus(s.Index+1, env.Now), []Effect{StopAudio{}}, nil
}

func goBack(s State, env Env) (State, []Effect, error) {
	if s.Mode == ModeLevel {
		return s, nil, ErrModeAction
	}
	if !s.CanGoPrevious() {
		return s, nil, ErrPreviousUnavailable
	}

	from := s.Current()
	s = s.commitTime(env.Now)
	s = s.focus(s.Index-1, env.Now)

	entry, err := attemptlog.NewInteraction(models.InteractionNavigation, from.ID, map[string]any{"direction": "previous"}, env.Now)
	if err == nil {
		s = s.appendInteraction(s.Index, entry)
	}
	return s, []Effect{StopAudio{}}, nil
}

func recordInteraction(s State, ev InteractionRecorded, env Env) (State, []Effect, error) {
	if s.Status == StatusLoading || s.Status == StatusDone {
		return s, nil, invalid(s, ev)
	}
	entry, err := attemptlog.NewInteraction(ev.Type, ev.Target, ev.Data, env.Now)
	if err != nil {
		return s, nil, err
	}
	return s.appendInteraction(s.Index, entry), nil, nil
}

func deactivate(s State) (State, []Effect, error) {
	if !s.Active {
		return s, nil, nil
	}
	s.Active = false
	return s, []Effect{StopTimer{}, StopAudio{}}, nil
}

func activate(s State) (State, []Effect, error) {
	if s.Active || s.Status == StatusLoading {
		return s, nil, nil
	}
	s.Active = true
	return s, nil, nil
}

func requestResult(s State) (State, []Effect, error) {
	switch {
	case s.Submitting, s.Status == StatusDone:
		return s, nil, nil
	case s.Status != StatusResults:
		return s, nil, invalid(s, ResultRequested{})
	}
	s.Status = StatusSubmitting
	s.Submitting = true
	s.LastError = ""
	return s, []Effect{PersistResult{}}, nil
}

// commitTime adds the frozen or live elapsed time of the current question to
// its cumulative total.
func (s State) commitTime(now time.Time) State {
	sa := s.Answers[s.Index]
	sa.TimeSpentMs += s.Clock.Elapsed(now).Milliseconds()
	return s.withAnswer(s.Index, sa)
}

func (s State) focus(index int, now time.Time) State {
	s.Index = index
	s.Clock = s.Clock.Reset(now)
	// A question that already timed out or was answered correctly is not
	// timed again on revisit.
	sa := s.Answers[index]
	s.TimeoutRecorded = sa.TimedOut || sa.Correct()
	s.Status = StatusPresenting
	return s
}

func (s State) logAttempt(answer models.Answer, attemptType models.AttemptType, isCorrect *bool, timedOut bool, env Env) State {
	history := s.Attempts[s.Index]
	entry := attemptlog.NewEntry(history, attemptlog.Attempt{
		Question:          s.Current(),
		Answer:            answer,
		Type:              attemptType,
		At:                env.Now,
		QuestionStartedAt: s.Clock.QuestionStartedAt,
		TimeSpent:         s.Clock.Elapsed(env.Now),
		IsCorrect:         isCorrect,
		TimedOut:          timedOut,
	})

	attempts := make([][]models.AttemptLogEntry, len(s.Attempts))
	copy(attempts, s.Attempts)
	attempts[s.Index] = attemptlog.Append(history, entry)
	s.Attempts = attempts
	return s
}

func (s State) appendInteraction(index int, entry models.InteractionLogEntry) State {
	interactions := make([][]models.InteractionLogEntry, len(s.Interactions))
	copy(interactions, s.Interactions)
	interactions[index] = attemptlog.AppendInteraction(interactions[index], entry)
	s.Interactions = interactions
	return s
}
