package session

import (
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// Snapshot is a read-only view of a session for the presentation layer.
type Snapshot struct {
	SessionID        string                `json:"sessionId"`
	ExerciseID       string                `json:"exerciseId"`
	Mode             Mode                  `json:"mode"`
	Status           Status                `json:"status"`
	Index            int                   `json:"index"`
	TotalQuestions   int                   `json:"totalQuestions"`
	Question         *QuestionView         `json:"question,omitempty"`
	Answer           *models.StudentAnswer `json:"answer,omitempty"`
	ElapsedMs        int64                 `json:"elapsedMs"`
	TotalElapsedMs   int64                 `json:"totalElapsedMs"`
	RemainingMs      *int64                `json:"remainingMs,omitempty"`
	CanGoPrevious    bool                  `json:"canGoPrevious"`
	CanFinish        bool                  `json:"canFinish"`
	Active           bool                  `json:"active"`
	IsLateSubmission bool                  `json:"isLateSubmission"`
	ResultID         string                `json:"resultId,omitempty"`
	LastError        string                `json:"lastError,omitempty"`
}

// Snapshot renders the current state as seen at the engine's current time.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	s := e.state
	e.mu.Unlock()

	now := e.deps.Source.Now()
	snap := Snapshot{
		SessionID:        s.Context.SessionID,
		ExerciseID:       s.Exercise().ID,
		Mode:             s.Mode,
		Status:           s.Status,
		Index:            s.Index,
		TotalQuestions:   len(s.Exercise().Questions),
		CanGoPrevious:    s.CanGoPrevious(),
		CanFinish:        s.Mode == ModeLevel && s.Status == StatusPresenting,
		Active:           s.Active,
		IsLateSubmission: s.Context.IsLateSubmission,
		ResultID:         s.ResultID,
		LastError:        s.LastError,
	}
	if s.Status == StatusLoading {
		return snap
	}

	snap.TotalElapsedMs = s.Clock.Total(now).Milliseconds()
	if q := s.Current(); q != nil && s.Index < len(s.Answers) {
		view := s.Context.Present(q)
		answer := s.Answers[s.Index]
		answer.Answer = answer.Answer.Clone()
		snap.Question = &view
		snap.Answer = &answer
		snap.ElapsedMs = s.Clock.Elapsed(now).Milliseconds()
	}
	if limit := s.TimeLimit(); limit > 0 {
		remaining := s.Clock.Remaining(limit, now).Milliseconds()
		snap.RemainingMs = &remaining
	}
	return snap
}
