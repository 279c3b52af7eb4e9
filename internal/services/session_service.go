package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/audio"
	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/session"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

type StartSessionRequest struct {
	SessionID          string       `json:"session_id,omitempty" validate:"omitempty,max=128"`
	StudentID          string       `json:"student_id,omitempty"`
	ExerciseID         string       `json:"exercise_id,omitempty" validate:"required_without=AssignedExerciseID"`
	AssignedExerciseID string       `json:"assigned_exercise_id,omitempty" validate:"required_without=ExerciseID"`
	Mode               session.Mode `json:"mode,omitempty" validate:"omitempty,session_mode"`
}

type SessionServiceConfig struct {
	Engine  session.Config
	IdleTTL time.Duration
}

type SessionDeps struct {
	Loader    *ExerciseLoader
	Submitter session.Submitter
	Publisher events.EventPublisher
	Audio     audio.Service
	Source    timer.Source
	Scheduler timer.Scheduler
	Logger    utils.Logger
}

type sessionEntry struct {
	engine   *session.Engine
	lastSeen time.Time
}

// SessionService keeps the live sessions of this process and routes calls
// to their engines. A session id that is still loading is reserved, so a
// second start for it is rejected rather than loaded twice.
type SessionService struct {
	cfg    SessionServiceConfig
	deps   SessionDeps
	logger *ServiceLogger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionService(cfg SessionServiceConfig, deps SessionDeps) *SessionService {
	if deps.Source == nil {
		deps.Source = timer.System{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = timer.System{}
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}
	return &SessionService{
		cfg:  cfg,
		deps: deps,
		logger: NewServiceLogger(utils.ToSlogLogger(deps.Logger), LogConfig{
			Service:   "exercise-service",
			Component: "session",
		}),
		sessions: make(map[string]*sessionEntry),
	}
}

// Start loads the exercise, presents its first question and registers the
// session.
func (s *SessionService) Start(ctx context.Context, req StartSessionRequest) (session.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.start(ctx, req)
	s.logger.LogOperation(ctx, "start_session", snapshot.SessionID, req.ExerciseID+req.AssignedExerciseID, "session", time.Since(start), err)
	return snapshot, err
}

func (s *SessionService) start(ctx context.Context, req StartSessionRequest) (session.Snapshot, error) {
	if req.Mode == "" {
		req.Mode = session.ModePractice
	}
	if !req.Mode.IsValid() {
		return session.Snapshot{}, fmt.Errorf("%w: unknown mode %q", ErrBadRequest, req.Mode)
	}

	if req.SessionID != "" {
		if err := s.reserve(req.SessionID); err != nil {
			return session.Snapshot{}, err
		}
	}

	sc, err := s.deps.Loader.Load(ctx, LoadRequest{
		SessionID:          req.SessionID,
		StudentID:          req.StudentID,
		ExerciseID:         req.ExerciseID,
		AssignedExerciseID: req.AssignedExerciseID,
	})
	if err != nil {
		s.release(req.SessionID)
		return session.Snapshot{}, err
	}

	engine := s.newEngine(sc, req.Mode)
	if err := engine.Start(); err != nil {
		engine.Close()
		s.release(req.SessionID)
		return session.Snapshot{}, err
	}

	s.mu.Lock()
	s.sessions[sc.SessionID] = &sessionEntry{engine: engine, lastSeen: s.deps.Source.Now()}
	s.mu.Unlock()

	s.publish(ctx, events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:          sc.SessionID,
		ExerciseID:         sc.Exercise.ID,
		AssignedExerciseID: sc.AssignedExerciseID(),
		StudentID:          sc.StudentID,
		Mode:               string(req.Mode),
		IsLateSubmission:   sc.IsLateSubmission,
	})
	return engine.Snapshot(), nil
}

func (s *SessionService) newEngine(sc *session.Context, mode session.Mode) *session.Engine {
	logger := s.deps.Logger.With("session_id", sc.SessionID)

	var player session.AudioPlayer
	if s.deps.Audio != nil {
		player = audio.NewPlayer(s.deps.Audio, logger)
	}

	return session.NewEngine(sc, mode, s.cfg.Engine, session.Deps{
		Source:    s.deps.Source,
		Scheduler: s.deps.Scheduler,
		Audio:     player,
		Submitter: s.deps.Submitter,
		Logger:    logger,
		OnEffect:  s.effectHook(sc),
	})
}

// effectHook publishes timeouts. It runs under the engine lock, so the
// publish happens on its own goroutine.
func (s *SessionService) effectHook(sc *session.Context) func(session.Effect) {
	return func(effect session.Effect) {
		fb, ok := effect.(session.Feedback)
		if !ok || fb.Kind != session.FeedbackTimesUp {
			return
		}
		go s.publish(context.Background(), events.EventQuestionTimedOut, events.QuestionTimedOutEvent{
			SessionID:  sc.SessionID,
			ExerciseID: sc.Exercise.ID,
			QuestionID: fb.QuestionID,
		})
	}
}

func (s *SessionService) reserve(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.sessions[sessionID]; ok {
		if entry.engine == nil {
			return ErrSessionLoading
		}
		return fmt.Errorf("%w: session %s already exists", ErrConflict, sessionID)
	}
	s.sessions[sessionID] = &sessionEntry{}
	return nil
}

func (s *SessionService) release(sessionID string) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[sessionID]; ok && entry.engine == nil {
		delete(s.sessions, sessionID)
	}
}

func (s *SessionService) engine(sessionID string) (*session.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if entry.engine == nil {
		return nil, ErrSessionLoading
	}
	entry.lastSeen = s.deps.Source.Now()
	return entry.engine, nil
}

// apply runs op against the session and returns the resulting snapshot.
func (s *SessionService) apply(ctx context.Context, operation, sessionID string, op func(*session.Engine) error) (session.Snapshot, error) {
	start := time.Now()

	engine, err := s.engine(sessionID)
	if err == nil {
		err = op(engine)
	}

	var resourceID string
	var snapshot session.Snapshot
	if engine != nil {
		snapshot = engine.Snapshot()
		if snapshot.Question != nil {
			resourceID = snapshot.Question.ID
		}
	}
	s.logger.LogOperation(ctx, operation, sessionID, resourceID, "question", time.Since(start), err)
	return snapshot, err
}

func (s *SessionService) Snapshot(ctx context.Context, sessionID string) (session.Snapshot, error) {
	engine, err := s.engine(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return engine.Snapshot(), nil
}

func (s *SessionService) SetAnswer(ctx context.Context, sessionID string, answer models.Answer) (session.Snapshot, error) {
	return s.apply(ctx, "set_answer", sessionID, func(e *session.Engine) error {
		return e.SetAnswer(answer)
	})
}

func (s *SessionService) TapOption(ctx context.Context, sessionID, option string) (session.Snapshot, error) {
	return s.apply(ctx, "tap_option", sessionID, func(e *session.Engine) error {
		return e.TapOption(option)
	})
}

func (s *SessionService) Submit(ctx context.Context, sessionID string) (session.Snapshot, error) {
	return s.apply(ctx, "submit_answer", sessionID, func(e *session.Engine) error {
		return e.Submit()
	})
}

func (s *SessionService) Finish(ctx context.Context, sessionID string) (session.Snapshot, error) {
	return s.apply(ctx, "finish_question", sessionID, func(e *session.Engine) error {
		return e.Finish()
	})
}

func (s *SessionService) Previous(ctx context.Context, sessionID string) (session.Snapshot, error) {
	return s.apply(ctx, "previous_question", sessionID, func(e *session.Engine) error {
		return e.Previous()
	})
}

func (s *SessionService) RecordInteraction(ctx context.Context, sessionID string, t models.InteractionType, target string, data map[string]any) (session.Snapshot, error) {
	return s.apply(ctx, "record_interaction", sessionID, func(e *session.Engine) error {
		return e.RecordInteraction(t, target, data)
	})
}

func (s *SessionService) PlayAudio(ctx context.Context, sessionID string) (session.Snapshot, error) {
	return s.apply(ctx, "play_audio", sessionID, func(e *session.Engine) error {
		return e.PlayAudio(ctx)
	})
}

func (s *SessionService) Deactivate(ctx context.Context, sessionID string) (session.Snapshot, error) {
	return s.apply(ctx, "deactivate", sessionID, func(e *session.Engine) error {
		return e.Deactivate()
	})
}

func (s *SessionService) Activate(ctx context.Context, sessionID string) (session.Snapshot, error) {
	return s.apply(ctx, "activate", sessionID, func(e *session.Engine) error {
		return e.Activate()
	})
}

// SubmitResult writes the session's result record. Repeating the call after
// success returns the same record; a call made while another submission is
// still being written returns a nil result and nil error.
func (s *SessionService) SubmitResult(ctx context.Context, sessionID string) (*models.ExerciseResult, error) {
	engine, err := s.engine(sessionID)
	if err != nil {
		return nil, err
	}
	return engine.SubmitResult(ctx)
}

// Close ends a session and forgets it.
func (s *SessionService) Close(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	if ok && entry.engine != nil {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if entry.engine == nil {
		return ErrSessionLoading
	}
	entry.engine.Close()
	s.logger.Debug(ctx, "Session closed", "session_id", sessionID)
	return nil
}

// EvictIdle closes sessions untouched for longer than the idle TTL and
// returns how many it removed.
func (s *SessionService) EvictIdle(ctx context.Context) int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.deps.Source.Now().Add(-s.cfg.IdleTTL)

	var idle []*session.Engine
	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.engine != nil && entry.lastSeen.Before(cutoff) {
			idle = append(idle, entry.engine)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, engine := range idle {
		engine.Close()
	}
	if len(idle) > 0 {
		s.logger.Debug(ctx, "Evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

// StartJanitor evicts idle sessions every interval until ctx is done or
// the returned loop is stopped.
func (s *SessionService) StartJanitor(ctx context.Context, interval time.Duration) *timer.Loop {
	return timer.StartLoop(ctx, s.deps.Scheduler, interval, func() {
		s.EvictIdle(ctx)
	})
}

// Shutdown closes every session.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	entries := s.sessions
	s.sessions = make(map[string]*sessionEntry)
	s.mu.Unlock()

	for _, entry := range entries {
		if entry.engine != nil {
			entry.engine.Close()
		}
	}
}

// Count returns the number of registered sessions, including ones loading.
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, data any) {
	if s.deps.Publisher == nil {
		return
	}
	event := events.NewEvent(eventType, data, s.deps.Source.Now())
	if err := s.deps.Publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "Failed to publish event", "event_type", eventType, "event_id", event.ID, "error", err)
	}
}
