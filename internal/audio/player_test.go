package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

type MockService struct {
	mock.Mock
	calls     []string
	callbacks []func(Status)
}

func (m *MockService) Play(ctx context.Context, ref string, onStatus func(Status)) error {
	m.calls = append(m.calls, "play:"+ref)
	m.callbacks = append(m.callbacks, onStatus)
	args := m.Called(ctx, ref)
	if args.Error(0) == nil {
		onStatus(StatusPlaying)
	}
	return args.Error(0)
}

func (m *MockService) Stop(ctx context.Context) error {
	m.calls = append(m.calls, "stop")
	args := m.Called(ctx)
	return args.Error(0)
}

func TestPlayer_StopsBeforePlaying(t *testing.T) {
	ctx := context.Background()
	svc := new(MockService)
	svc.On("Play", ctx, mock.Anything).Return(nil)
	svc.On("Stop", ctx).Return(nil)

	p := NewPlayer(svc, utils.NewNopLogger())
	require.NoError(t, p.Play(ctx, "a.mp3"))
	require.NoError(t, p.Play(ctx, "b.mp3"))

	assert.Equal(t, []string{"play:a.mp3", "stop", "play:b.mp3"}, svc.calls)
	ref, status := p.Current()
	assert.Equal(t, "b.mp3", ref)
	assert.Equal(t, StatusPlaying, status)
}

func TestPlayer_StaleCallbacksAreIgnored(t *testing.T) {
	ctx := context.Background()
	svc := new(MockService)
	svc.On("Play", ctx, mock.Anything).Return(nil)
	svc.On("Stop", ctx).Return(nil)

	p := NewPlayer(svc, utils.NewNopLogger())
	require.NoError(t, p.Play(ctx, "a.mp3"))
	require.NoError(t, p.Play(ctx, "b.mp3"))

	svc.callbacks[0](StatusFinished)
	_, status := p.Current()
	assert.Equal(t, StatusPlaying, status)

	svc.callbacks[1](StatusFinished)
	_, status = p.Current()
	assert.Equal(t, StatusFinished, status)

	require.NoError(t, p.Play(ctx, "c.mp3"))
	assert.Equal(t, []string{"play:a.mp3", "stop", "play:b.mp3", "play:c.mp3"}, svc.calls)
}

func TestPlayer_StopWhenIdleIsNoop(t *testing.T) {
	svc := new(MockService)
	p := NewPlayer(svc, utils.NewNopLogger())

	require.NoError(t, p.Stop(context.Background()))
	svc.AssertNotCalled(t, "Stop", mock.Anything)
}

func TestPlayer_PlayErrors(t *testing.T) {
	ctx := context.Background()
	svc := new(MockService)
	svc.On("Play", ctx, "broken.mp3").Return(errors.New("decoder failed"))

	p := NewPlayer(svc, utils.NewNopLogger())
	assert.ErrorIs(t, p.Play(ctx, ""), ErrNoAudio)
	assert.Error(t, p.Play(ctx, "broken.mp3"))

	_, status := p.Current()
	assert.Equal(t, StatusError, status)
}
