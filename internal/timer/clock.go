// Package timer tracks per-question and whole-session elapsed time and
// drives the periodic tick that detects a question running out of time.
package timer

import (
	"time"
)

// Clock is the timing state of a session. It is a value: every transition
// returns a new Clock and leaves the receiver untouched.
type Clock struct {
	SessionStartedAt  time.Time      `json:"sessionStartedAt"`
	QuestionStartedAt time.Time      `json:"questionStartedAt"`
	FrozenElapsed     *time.Duration `json:"frozenElapsed,omitempty"`
}

// Start begins a session and its first question at now.
func Start(now time.Time) Clock {
	return Clock{SessionStartedAt: now, QuestionStartedAt: now}
}

// Freeze pins the current question's elapsed time at now. Freezing an
// already frozen clock keeps the first value.
func (c Clock) Freeze(now time.Time) Clock {
	if c.FrozenElapsed != nil {
		return c
	}
	elapsed := c.Elapsed(now)
	c.FrozenElapsed = &elapsed
	return c
}

// Reset starts timing a new question at now.
func (c Clock) Reset(now time.Time) Clock {
	c.QuestionStartedAt = now
	c.FrozenElapsed = nil
	return c
}

func (c Clock) Frozen() bool {
	return c.FrozenElapsed != nil
}

// Elapsed is the time spent on the current question, frozen or live.
func (c Clock) Elapsed(now time.Time) time.Duration {
	if c.FrozenElapsed != nil {
		return *c.FrozenElapsed
	}
	if now.Before(c.QuestionStartedAt) {
		return 0
	}
	return now.Sub(c.QuestionStartedAt)
}

// Total is the time since the session started.
func (c Clock) Total(now time.Time) time.Duration {
	if now.Before(c.SessionStartedAt) {
		return 0
	}
	return now.Sub(c.SessionStartedAt)
}

// Remaining returns max(0, limit - elapsed). A zero limit means untimed and
// always reports zero; callers check the limit first.
func (c Clock) Remaining(limit time.Duration, now time.Time) time.Duration {
	if limit <= 0 {
		return 0
	}
	remaining := limit - c.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether a timed question has used up its limit.
func (c Clock) Expired(limit time.Duration, now time.Time) bool {
	return limit > 0 && c.Elapsed(now) >= limit
}
