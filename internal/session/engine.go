package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

var (
	ErrClosed           = errors.New("session closed")
	ErrNoAudio          = errors.New("current question has no audio")
	ErrInactive         = errors.New("session is inactive")
	ErrAudioInterrupted = errors.New("question changed during playback")
)

// Submitter builds and persists the result record for a finished session.
type Submitter interface {
	Submit(ctx context.Context, s State) (*models.ExerciseResult, error)
}

// AudioPlayer plays one text-to-speech reference at a time.
type AudioPlayer interface {
	Play(ctx context.Context, ref string) error
	Stop(ctx context.Context) error
}

type Config struct {
	FeedbackDelay time.Duration
	TimesUpDelay  time.Duration
	TickInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		FeedbackDelay: time.Second,
		TimesUpDelay:  1500 * time.Millisecond,
		TickInterval:  100 * time.Millisecond,
	}
}

type Deps struct {
	Source    timer.Source
	Scheduler timer.Scheduler
	Audio     AudioPlayer
	Submitter Submitter
	Logger    utils.Logger

	// OnEffect, when set, sees every effect after the engine has handled it.
	// It runs under the engine lock and must not block or call the engine.
	OnEffect func(Effect)
}

// Engine owns one session. All events go through a single mutex, so state
// changes happen one at a time in arrival order; I/O runs outside it.
type Engine struct {
	cfg  Config
	deps Deps

	mu      sync.Mutex
	state   State
	result  *models.ExerciseResult
	loop    *timer.Loop
	pending map[int]func()
	nextID  int
	closed  bool
}

func NewEngine(sc *Context, mode Mode, cfg Config, deps Deps) *Engine {
	defaults := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.TimesUpDelay <= 0 {
		cfg.TimesUpDelay = defaults.TimesUpDelay
	}
	if cfg.FeedbackDelay < 0 {
		cfg.FeedbackDelay = 0
	}
	if deps.Source == nil {
		deps.Source = timer.System{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = timer.System{}
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}

	return &Engine{
		cfg:     cfg,
		deps:    deps,
		state:   NewState(sc, mode),
		pending: make(map[int]func()),
	}
}

// Start presents the first question.
func (e *Engine) Start() error {
	return e.dispatch(Loaded{})
}

func (e *Engine) SetAnswer(answer models.Answer) error {
	return e.dispatch(AnswerChanged{Answer: answer})
}

func (e *Engine) TapOption(option string) error {
	return e.dispatch(OptionTapped{Option: option})
}

func (e *Engine) Submit() error {
	return e.dispatch(Submitted{})
}

func (e *Engine) Finish() error {
	return e.dispatch(Finished{})
}

func (e *Engine) Previous() error {
	return e.dispatch(WentBack{})
}

func (e *Engine) RecordInteraction(t models.InteractionType, target string, data map[string]any) error {
	return e.dispatch(InteractionRecorded{Type: t, Target: target, Data: data})
}

// Tick checks the current question against its time limit.
func (e *Engine) Tick() {
	_ = e.dispatch(Tick{})
}

// Deactivate stops the timer and audio when the learner leaves the screen.
// Answers are kept.
func (e *Engine) Deactivate() error {
	return e.dispatch(Deactivated{})
}

func (e *Engine) Activate() error {
	return e.dispatch(Activated{})
}

// PlayAudio plays the current question's text-to-speech reference. Playback
// that ends up belonging to a question the session has already left is
// stopped and reported as ErrAudioInterrupted.
func (e *Engine) PlayAudio(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if !e.state.Active {
		e.mu.Unlock()
		return ErrInactive
	}
	if s := e.state.Status; s != StatusPresenting && s != StatusWrongFeedback {
		e.mu.Unlock()
		return fmt.Errorf("%w: play audio while %s", ErrInvalidTransition, s)
	}
	index := e.state.Index
	q := e.state.Current()
	e.mu.Unlock()

	if e.deps.Audio == nil || q == nil || q.TTSAudio == "" {
		return ErrNoAudio
	}
	if err := e.deps.Audio.Play(ctx, q.TTSAudio); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.state.Active || e.state.Index != index {
		e.stopAudioLocked()
		return ErrAudioInterrupted
	}
	return nil
}

// SubmitResult writes the result record once. A call made while another is
// writing does nothing and returns a nil result and nil error; a call after
// a successful write returns the stored result.
func (e *Engine) SubmitResult(ctx context.Context) (*models.ExerciseResult, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if e.state.Status == StatusDone && e.result != nil {
		result := e.result
		e.mu.Unlock()
		return result, nil
	}
	effects, err := e.applyLocked(ResultRequested{})
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if !hasEffect[PersistResult](effects) {
		e.mu.Unlock()
		return nil, nil
	}
	snapshot := e.state
	e.mu.Unlock()

	result, submitErr := e.deps.Submitter.Submit(ctx, snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	if submitErr != nil {
		if _, err := e.applyLocked(ResultFailed{Err: submitErr}); err != nil {
			e.deps.Logger.Error("Failed to record submission failure", "session_id", snapshot.Context.SessionID, "error", err)
		}
		return nil, submitErr
	}
	e.result = result
	if _, err := e.applyLocked(ResultSaved{Result: result}); err != nil {
		return nil, err
	}
	return result, nil
}

// State returns the current state. Callers must treat it as read-only.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Result returns the submitted result, or nil before submission.
func (e *Engine) Result() *models.ExerciseResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Close cancels the timer and every scheduled event and stops audio. The
// in-memory state stays readable.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopTimerLocked()
	e.cancelPendingLocked()
	e.stopAudioLocked()
}

func (e *Engine) dispatch(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.applyLocked(ev)
	return err
}

func (e *Engine) applyLocked(ev Event) ([]Effect, error) {
	if e.closed {
		return nil, ErrClosed
	}
	next, effects, err := Reduce(e.state, ev, Env{
		Now:           e.deps.Source.Now(),
		FeedbackDelay: e.cfg.FeedbackDelay,
		TimesUpDelay:  e.cfg.TimesUpDelay,
	})
	if err != nil {
		return nil, err
	}
	e.state = next
	for _, effect := range effects {
		e.runLocked(effect)
	}
	return effects, nil
}

func (e *Engine) runLocked(effect Effect) {
	switch ef := effect.(type) {
	case StartTimer:
		if e.loop == nil || !e.loop.Running() {
			e.loop = timer.StartLoop(context.Background(), e.deps.Scheduler, e.cfg.TickInterval, e.Tick)
		}
	case StopTimer:
		e.stopTimerLocked()
	case Schedule:
		e.scheduleLocked(ef.Delay, ef.Event)
	case StopAudio:
		e.stopAudioLocked()
	case Feedback, PersistResult:
		// handled by the caller or the OnEffect hook
	}
	if e.deps.OnEffect != nil {
		e.deps.OnEffect(effect)
	}
}

func (e *Engine) scheduleLocked(delay time.Duration, ev Event) {
	e.nextID++
	id := e.nextID
	e.pending[id] = e.deps.Scheduler.AfterFunc(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.pending, id)
		if _, err := e.applyLocked(ev); err != nil && !errors.Is(err, ErrClosed) {
			e.deps.Logger.Warn("Scheduled event rejected", "event", ev.eventName(), "error", err)
		}
	})
}

func (e *Engine) stopTimerLocked() {
	if e.loop != nil {
		e.loop.Stop()
		e.loop = nil
	}
}

func (e *Engine) cancelPendingLocked() {
	for id, cancel := range e.pending {
		cancel()
		delete(e.pending, id)
	}
}

func (e *Engine) stopAudioLocked() {
	if e.deps.Audio == nil {
		return
	}
	if err := e.deps.Audio.Stop(context.Background()); err != nil {
		e.deps.Logger.Warn("Failed to stop audio", "error", err)
	}
}

func hasEffect[T Effect](effects []Effect) bool {
	for _, effect := range effects {
		if _, ok := effect.(T); ok {
			return true
		}
	}
	return false
}
