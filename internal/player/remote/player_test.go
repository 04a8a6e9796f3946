package remote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sharetube/multiview/internal/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ player.Player = (*Player)(nil)

type fakeSender struct {
	messages []map[string]any
	err      error
}

func (f *fakeSender) WriteJSON(v any) error {
	if f.err != nil {
		return f.err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	f.messages = append(f.messages, m)

	return nil
}

func (f *fakeSender) lastPayload(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, f.messages)
	last := f.messages[len(f.messages)-1]
	assert.Equal(t, "PLAYER_COMMAND", last["type"])

	payload, ok := last["payload"].(map[string]any)
	require.True(t, ok)

	return payload
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestCommandsAreSent(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	p := New("dQw4w9WgXcQ", sender)

	require.NoError(t, p.Play(ctx))
	payload := sender.lastPayload(t)
	assert.Equal(t, "dQw4w9WgXcQ", payload["video_id"])
	assert.Equal(t, CommandPlay, payload["command"])
	assert.NotContains(t, payload, "seconds")

	require.NoError(t, p.Mute(ctx))
	assert.Equal(t, CommandMute, sender.lastPayload(t)["command"])
	assert.True(t, p.State().IsMuted)

	require.NoError(t, p.Unmute(ctx))
	assert.Equal(t, CommandUnmute, sender.lastPayload(t)["command"])
	assert.False(t, p.State().IsMuted)

	require.NoError(t, p.SeekTo(ctx, 12.5, true))
	payload = sender.lastPayload(t)
	assert.Equal(t, CommandSeek, payload["command"])
	assert.Equal(t, 12.5, payload["seconds"])
	assert.Equal(t, true, payload["allow_seek_ahead"])

	require.NoError(t, p.Pause(ctx))
	assert.Equal(t, CommandPause, sender.lastPayload(t)["command"])
	assert.Len(t, sender.messages, 5)
}

func TestCurrentTimeExtrapolation(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := New("a", &fakeSender{}, WithClock(clock.now))

	p.Report(State{
		CurrentTime:  10,
		IsPlaying:    true,
		PlaybackRate: 2,
		UpdatedAt:    clock.t,
	})

	clock.t = clock.t.Add(3 * time.Second)
	current, err := p.CurrentTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16.0, current)

	require.NoError(t, p.Pause(ctx))
	clock.t = clock.t.Add(10 * time.Second)
	current, err = p.CurrentTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16.0, current, "paused player must not advance")
}

func TestSeekUpdatesCachedTime(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := New("a", &fakeSender{}, WithClock(clock.now))
	p.Report(State{CurrentTime: 30, UpdatedAt: clock.t})

	require.NoError(t, p.SeekTo(ctx, 45, true))
	current, err := p.CurrentTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45.0, current)
}

func TestReportDefaults(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := New("a", &fakeSender{}, WithClock(clock.now))

	p.Report(State{CurrentTime: 5, IsMuted: true, Volume: 40})
	state := p.State()
	assert.Equal(t, 1.0, state.PlaybackRate)
	assert.Equal(t, clock.t, state.UpdatedAt)
	assert.True(t, state.IsMuted)
	assert.Equal(t, 40, state.Volume)
}

func TestSendFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	errClosed := errors.New("connection closed")
	p := New("a", &fakeSender{err: errClosed})

	err := p.Play(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errClosed)
	assert.False(t, p.State().IsPlaying)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := &fakeSender{}
	p := New("a", sender)

	assert.ErrorIs(t, p.Play(ctx), context.Canceled)
	_, err := p.CurrentTime(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.messages)
}
