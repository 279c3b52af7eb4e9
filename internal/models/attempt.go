package models

import (
	"time"
)

type AttemptType string

const (
	AttemptInitial AttemptType = "initial"
	AttemptChange  AttemptType = "change"
	AttemptFinal   AttemptType = "final"
)

type QuestionPhase string

const (
	PhaseReading   QuestionPhase = "reading"
	PhaseThinking  QuestionPhase = "thinking"
	PhaseAnswering QuestionPhase = "answering"
	PhaseReviewing QuestionPhase = "reviewing"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// AttemptLogEntry is appended on every answer mutation and never modified.
type AttemptLogEntry struct {
	AnswerSerialized    string        `json:"answerSerialized"`
	TimeSpentMs         int64         `json:"timeSpentMs"`
	Timestamp           time.Time     `json:"timestamp"`
	AttemptType         AttemptType   `json:"attemptType"`
	HesitationTimeMs    int64         `json:"hesitationTimeMs"`
	IsSignificantChange bool          `json:"isSignificantChange"`
	QuestionPhase       QuestionPhase `json:"questionPhase"`
	Confidence          Confidence    `json:"confidence"`
	IsCorrect           *bool         `json:"isCorrect,omitempty"`
	TimedOut            bool          `json:"timedOut,omitempty"`
}

type InteractionType string

const (
	InteractionOptionHover  InteractionType = "option_hover"
	InteractionOptionClick  InteractionType = "option_click"
	InteractionHelpUsed     InteractionType = "help_used"
	InteractionNavigation   InteractionType = "navigation"
	InteractionAnswerChange InteractionType = "answer_change"
)

var InteractionTypes = []InteractionType{
	InteractionOptionHover,
	InteractionOptionClick,
	InteractionHelpUsed,
	InteractionNavigation,
	InteractionAnswerChange,
}

// InteractionLogEntry records a low-weight UI event for analytics only.
type InteractionLogEntry struct {
	Type      InteractionType `json:"type"`
	Target    string          `json:"target,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      map[string]any  `json:"data,omitempty"`
}
