package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/timer"
)

type fakeAudio struct {
	mu     sync.Mutex
	calls  []string
	onPlay func()
}

func (f *fakeAudio) Play(_ context.Context, ref string) error {
	f.mu.Lock()
	f.calls = append(f.calls, "play:"+ref)
	onPlay := f.onPlay
	f.mu.Unlock()
	if onPlay != nil {
		onPlay()
	}
	return nil
}

func (f *fakeAudio) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop")
	return nil
}

func (f *fakeAudio) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type blockingSubmitter struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) Submit(_ context.Context, s State) (*models.ExerciseResult, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return &models.ExerciseResult{ResultID: "res-1", ExerciseID: s.Exercise().ID}, nil
}

type flakySubmitter struct {
	failures int
	calls    int
}

func (f *flakySubmitter) Submit(_ context.Context, s State) (*models.ExerciseResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("write failed")
	}
	return &models.ExerciseResult{ResultID: "res-2", ExerciseID: s.Exercise().ID}, nil
}

func newTestEngine(ex *models.Exercise, mode Mode, submitter Submitter) (*Engine, *timer.Manual, *fakeAudio) {
	clock := timer.NewManual(t0)
	audio := &fakeAudio{}
	e := NewEngine(newTestContext(ex), mode, Config{
		FeedbackDelay: time.Second,
		TimesUpDelay:  1500 * time.Millisecond,
		TickInterval:  100 * time.Millisecond,
	}, Deps{
		Source:    clock,
		Scheduler: clock,
		Audio:     audio,
		Submitter: submitter,
	})
	return e, clock, audio
}

func TestEngine_TimeoutAutoAdvancesAfterDelay(t *testing.T) {
	e, clock, _ := newTestEngine(sampleExercise(10), ModePractice, nil)
	require.NoError(t, e.Start())

	clock.Advance(9900 * time.Millisecond)
	assert.Equal(t, StatusPresenting, e.State().Status)
	assert.Equal(t, int64(100), *e.Snapshot().RemainingMs)

	clock.Advance(100 * time.Millisecond)
	s := e.State()
	assert.Equal(t, StatusTimedOut, s.Status)
	assert.Equal(t, 0, s.Index)
	assert.True(t, s.Answers[0].TimedOut)
	assert.False(t, s.Answers[0].Correct())
	assert.Equal(t, int64(0), *e.Snapshot().RemainingMs)

	clock.Advance(1499 * time.Millisecond)
	assert.Equal(t, StatusTimedOut, e.State().Status)

	clock.Advance(time.Millisecond)
	s = e.State()
	assert.Equal(t, StatusPresenting, s.Status)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, int64(10000), s.Answers[0].TimeSpentMs)

	timeouts := 0
	for _, entry := range s.Attempts[0] {
		if entry.TimedOut {
			timeouts++
		}
	}
	assert.Equal(t, 1, timeouts)
}

func TestEngine_WrongFeedbackReturnsAfterDelay(t *testing.T) {
	e, clock, _ := newTestEngine(sampleExercise(0), ModePractice, nil)
	require.NoError(t, e.Start())

	require.NoError(t, e.TapOption("2"))
	assert.Equal(t, StatusWrongFeedback, e.State().Status)
	assert.ErrorIs(t, e.TapOption("3"), ErrInvalidTransition)

	clock.Advance(time.Second)
	assert.Equal(t, StatusPresenting, e.State().Status)

	require.NoError(t, e.TapOption("3"))
	assert.Equal(t, 1, e.State().Index)
}

func TestEngine_SubmitResultOnlyWritesOnce(t *testing.T) {
	ex := &models.Exercise{ID: "ex-1", Questions: sampleExercise(0).Questions[:1]}
	submitter := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	e, _, _ := newTestEngine(ex, ModePractice, submitter)
	require.NoError(t, e.Start())
	require.NoError(t, e.TapOption("3"))
	require.Equal(t, StatusResults, e.State().Status)

	type outcome struct {
		result *models.ExerciseResult
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		r, err := e.SubmitResult(context.Background())
		first <- outcome{r, err}
	}()

	<-submitter.entered
	assert.Equal(t, StatusSubmitting, e.State().Status)

	pending, err := e.SubmitResult(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Equal(t, StatusSubmitting, e.State().Status)

	close(submitter.release)
	got := <-first
	require.NoError(t, got.err)
	assert.Equal(t, "res-1", got.result.ResultID)

	again, err := e.SubmitResult(context.Background())
	require.NoError(t, err)
	assert.Same(t, got.result, again)

	assert.Equal(t, int32(1), submitter.calls.Load())
	assert.Equal(t, StatusDone, e.State().Status)
	assert.Equal(t, "res-1", e.Snapshot().ResultID)
}

func TestEngine_FailedSubmissionKeepsAnswers(t *testing.T) {
	ex := &models.Exercise{ID: "ex-1", Questions: sampleExercise(0).Questions[:1]}
	submitter := &flakySubmitter{failures: 1}
	e, _, _ := newTestEngine(ex, ModePractice, submitter)
	require.NoError(t, e.Start())
	require.NoError(t, e.TapOption("3"))

	_, err := e.SubmitResult(context.Background())
	require.Error(t, err)

	s := e.State()
	assert.Equal(t, StatusResults, s.Status)
	assert.Equal(t, "write failed", s.LastError)
	assert.True(t, s.Answers[0].Correct())

	result, err := e.SubmitResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "res-2", result.ResultID)
	assert.Equal(t, 2, submitter.calls)
}

func TestEngine_SubmitResultBeforeResults(t *testing.T) {
	e, _, _ := newTestEngine(sampleExercise(0), ModePractice, &flakySubmitter{})
	require.NoError(t, e.Start())

	_, err := e.SubmitResult(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEngine_AudioStopsOnQuestionChange(t *testing.T) {
	e, _, audio := newTestEngine(sampleExercise(0), ModePractice, nil)
	require.NoError(t, e.Start())

	require.NoError(t, e.PlayAudio(context.Background()))
	require.NoError(t, e.TapOption("3"))
	require.NoError(t, e.PlayAudio(context.Background()))

	assert.Equal(t, []string{"play:tts/q1.mp3", "stop", "play:tts/q2.mp3"}, audio.Calls())

	require.NoError(t, e.SetAnswer(models.TextAnswer("cat")))
	require.NoError(t, e.Submit())
	require.NoError(t, e.Deactivate())
	assert.Equal(t, "stop", audio.Calls()[len(audio.Calls())-1])
}

func TestEngine_PlayAudioWithoutReference(t *testing.T) {
	e, clock, _ := newTestEngine(sampleExercise(0), ModePractice, nil)
	require.NoError(t, e.Start())
	require.NoError(t, e.TapOption("3"))
	require.NoError(t, e.SetAnswer(models.TextAnswer("cat")))
	require.NoError(t, e.Submit())
	clock.Advance(time.Second)
	require.Equal(t, 2, e.State().Index)

	assert.ErrorIs(t, e.PlayAudio(context.Background()), ErrNoAudio)

	e.Close()
	assert.ErrorIs(t, e.PlayAudio(context.Background()), ErrClosed)
}

func TestEngine_PlayAudioRequiresActivePresentingSession(t *testing.T) {
	e, clock, audio := newTestEngine(sampleExercise(0), ModePractice, nil)
	require.NoError(t, e.Start())

	require.NoError(t, e.Deactivate())
	assert.ErrorIs(t, e.PlayAudio(context.Background()), ErrInactive)

	require.NoError(t, e.Activate())
	require.NoError(t, e.TapOption("3"))
	require.NoError(t, e.SetAnswer(models.TextAnswer("cat")))
	require.NoError(t, e.Submit())
	require.Equal(t, StatusCorrectFeedback, e.State().Status)
	assert.ErrorIs(t, e.PlayAudio(context.Background()), ErrInvalidTransition)

	clock.Advance(time.Second)
	for _, call := range audio.Calls() {
		assert.NotContains(t, call, "play:")
	}
}

func TestEngine_PlayAudioStopsWhenQuestionChangesMidway(t *testing.T) {
	e, _, audio := newTestEngine(sampleExercise(0), ModePractice, nil)
	require.NoError(t, e.Start())

	audio.onPlay = func() {
		audio.onPlay = nil
		require.NoError(t, e.TapOption("3"))
	}

	assert.ErrorIs(t, e.PlayAudio(context.Background()), ErrAudioInterrupted)
	assert.Equal(t, 1, e.State().Index)

	calls := audio.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "play:tts/q1.mp3", calls[0])
	assert.Equal(t, "stop", calls[len(calls)-1])
}

func TestEngine_DeactivateStopsTheTimer(t *testing.T) {
	e, clock, _ := newTestEngine(sampleExercise(10), ModePractice, nil)
	require.NoError(t, e.Start())
	require.NoError(t, e.SetAnswer(models.ChoiceAnswer("3")))

	require.NoError(t, e.Deactivate())
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(30 * time.Second)
	s := e.State()
	assert.Equal(t, StatusPresenting, s.Status)
	assert.Equal(t, []string{"3"}, s.Answers[0].Answer.Choices)

	require.NoError(t, e.Activate())
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, StatusTimedOut, e.State().Status)
}

func TestEngine_CloseCancelsScheduledWork(t *testing.T) {
	e, clock, _ := newTestEngine(sampleExercise(10), ModePractice, nil)
	require.NoError(t, e.Start())
	require.NoError(t, e.TapOption("2"))
	require.Greater(t, clock.Pending(), 0)

	e.Close()
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(time.Minute)
	assert.Equal(t, StatusWrongFeedback, e.State().Status)
	assert.ErrorIs(t, e.Submit(), ErrClosed)
}

func TestEngine_SnapshotHidesAnswerKey(t *testing.T) {
	e, _, _ := newTestEngine(sampleExercise(0), ModePractice, nil)

	snap := e.Snapshot()
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Nil(t, snap.Question)

	require.NoError(t, e.Start())
	snap = e.Snapshot()
	require.NotNil(t, snap.Question)
	assert.Equal(t, "q1", snap.Question.ID)
	assert.Equal(t, []string{"2", "3", "4"}, snap.Question.Options)
	assert.Nil(t, snap.RemainingMs)
	assert.False(t, snap.CanGoPrevious)
	assert.Equal(t, 3, snap.TotalQuestions)
}
