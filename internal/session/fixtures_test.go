package session

import (
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleExercise(limitSeconds int) *models.Exercise {
	ex := &models.Exercise{
		ID:    "ex-1",
		Title: "Animals and numbers",
		Questions: []models.Question{
			{
				ID:       "q1",
				Type:     models.MultipleChoice,
				Question: "2 + 1 = ?",
				Options:  []string{"2", "3", "4"},
				Answer:   models.NewAnswerKey("B"),
				TTSAudio: "tts/q1.mp3",
			},
			{
				ID:       "q2",
				Type:     models.Identification,
				Question: "Which animal meows?",
				Answer:   models.NewAnswerKey("cat"),
				FillSettings: &models.FillSettings{
					AltAnswers: []string{"Cat", "CATS"},
				},
				TTSAudio: "tts/q2.mp3",
			},
			{
				ID:       "q3",
				Type:     models.ReOrder,
				Question: "Put in order",
				ReorderItems: []models.ReorderItem{
					{ID: "a", Content: "A"},
					{ID: "b", Content: "B"},
					{ID: "c", Content: "C"},
				},
				Order: []string{"b", "a", "c"},
			},
		},
	}
	if limitSeconds > 0 {
		ex.TimeLimitPerItem = &limitSeconds
	}
	return ex
}

func newTestContext(ex *models.Exercise) *Context {
	return NewContext("sess-1", "student-1", ex, nil, false, t0)
}

func envAt(d time.Duration) Env {
	return Env{Now: t0.Add(d), FeedbackDelay: time.Second, TimesUpDelay: 1500 * time.Millisecond}
}

func mustReduce(s State, e Event, env Env) (State, []Effect) {
	next, effects, err := Reduce(s, e, env)
	if err != nil {
		panic(err)
	}
	return next, effects
}

func loaded(ex *models.Exercise, mode Mode) State {
	s, _ := mustReduce(NewState(newTestContext(ex), mode), Loaded{}, envAt(0))
	return s
}
