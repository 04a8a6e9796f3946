package player

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type seekCall struct {
	seconds        float64
	allowSeekAhead bool
}

type mockPlayer struct {
	currentTime float64
	failWith    error

	plays   int
	pauses  int
	mutes   int
	unmutes int
	seeks   []seekCall
}

func (m *mockPlayer) Play(context.Context) error {
	m.plays++
	return m.failWith
}

func (m *mockPlayer) Pause(context.Context) error {
	m.pauses++
	return m.failWith
}

func (m *mockPlayer) Mute(context.Context) error {
	m.mutes++
	return m.failWith
}

func (m *mockPlayer) Unmute(context.Context) error {
	m.unmutes++
	return m.failWith
}

func (m *mockPlayer) CurrentTime(context.Context) (float64, error) {
	return m.currentTime, m.failWith
}

func (m *mockPlayer) SeekTo(_ context.Context, seconds float64, allowSeekAhead bool) error {
	m.seeks = append(m.seeks, seekCall{seconds: seconds, allowSeekAhead: allowSeekAhead})
	m.currentTime = seconds
	return m.failWith
}

func TestRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	a1, a2, b := &mockPlayer{}, &mockPlayer{}, &mockPlayer{}

	_, replaced := r.Register("a", a1)
	assert.False(t, replaced)
	r.Register("b", b)

	prev, replaced := r.Register("a", a2)
	assert.True(t, replaced, "re-registering must replace")
	assert.Same(t, a1, prev, "replaced handle must be returned")

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a2, got, "last write must win")

	assert.True(t, r.Unregister("b"))
	assert.False(t, r.Unregister("b"), "second unregister must be a no-op")
	assert.False(t, r.Unregister("missing"))

	assert.Equal(t, []string{"a"}, r.IDs())
	assert.Equal(t, 1, r.Len())
}

func TestHandlesReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("a", &mockPlayer{})

	handles := r.Handles()
	delete(handles, "a")

	assert.Equal(t, 1, r.Len(), "mutating the copy must not touch the registry")
}

func TestToggleSyncSeek(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.SyncSeek())

	assert.True(t, r.ToggleSyncSeek())
	assert.False(t, r.ToggleSyncSeek())
	assert.False(t, r.SyncSeek(), "double toggle must restore the flag")

	r.SetSyncSeek(true)
	assert.True(t, r.SyncSeek(), "flag does not depend on registry contents")
}

func TestPlayPauseAll(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	a, b := &mockPlayer{}, &mockPlayer{}
	r.Register("a", a)
	r.Register("b", b)

	require.NoError(t, r.PlayAll(ctx))
	require.NoError(t, r.PauseAll(ctx))

	for _, p := range []*mockPlayer{a, b} {
		assert.Equal(t, 1, p.plays)
		assert.Equal(t, 1, p.pauses)
	}
}

func TestBroadcastOnEmptyRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	assert.NoError(t, r.PlayAll(ctx))
	assert.NoError(t, r.MuteAll(ctx))
	assert.NoError(t, r.UnmuteExclusive(ctx, "a"))
	assert.NoError(t, r.SeekOffsetAll(ctx, 5))
}

func TestMuteAllThenUnmuteExclusive(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	a, b, c := &mockPlayer{}, &mockPlayer{}, &mockPlayer{}
	r.Register("a", a)
	r.Register("b", b)
	r.Register("c", c)

	require.NoError(t, r.MuteAll(ctx))
	for _, p := range []*mockPlayer{a, b, c} {
		assert.Equal(t, 1, p.mutes)
		assert.Equal(t, 0, p.unmutes)
	}

	require.NoError(t, r.UnmuteExclusive(ctx, "b"))
	assert.Equal(t, 1, b.unmutes)
	assert.Equal(t, 1, b.mutes, "target must not be muted again")
	assert.Equal(t, 2, a.mutes)
	assert.Equal(t, 2, c.mutes)
	assert.Equal(t, 0, a.unmutes)
	assert.Equal(t, 0, c.unmutes)
}

func TestUnmuteExclusiveUnknownTarget(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	a, b := &mockPlayer{}, &mockPlayer{}
	r.Register("a", a)
	r.Register("b", b)

	require.NoError(t, r.UnmuteExclusive(ctx, "zzz"))
	for _, p := range []*mockPlayer{a, b} {
		assert.Equal(t, 1, p.mutes)
		assert.Equal(t, 0, p.unmutes)
	}
}

func TestSeekOffsetAll(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	a := &mockPlayer{currentTime: 10}
	b := &mockPlayer{currentTime: 20}
	r.Register("a", a)
	r.Register("b", b)

	require.NoError(t, r.SeekOffsetAll(ctx, 5))
	assert.Equal(t, []seekCall{{seconds: 15, allowSeekAhead: true}}, a.seeks)
	assert.Equal(t, []seekCall{{seconds: 25, allowSeekAhead: true}}, b.seeks)

	require.NoError(t, r.SeekOffsetAll(ctx, -30))
	assert.Equal(t, -15.0, a.seeks[1].seconds, "negative targets are not clamped")
}

func TestSeekOffsetAllZeroKeepsPosition(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	a := &mockPlayer{currentTime: 42.5}
	r.Register("a", a)

	require.NoError(t, r.SeekOffsetAll(ctx, 0))
	assert.Equal(t, 42.5, a.currentTime)
}

func TestSeekOffsetAllIgnoresSyncSeek(t *testing.T) {
	ctx := context.Background()
	for _, syncSeek := range []bool{false, true} {
		r := NewRegistry()
		r.SetSyncSeek(syncSeek)
		a, b := &mockPlayer{}, &mockPlayer{currentTime: 1}
		r.Register("a", a)
		r.Register("b", b)

		require.NoError(t, r.SeekOffsetAll(ctx, 2))
		assert.Len(t, a.seeks, 1)
		assert.Len(t, b.seeks, 1)
	}
}

func TestBroadcastContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	errBroken := errors.New("broken widget")
	a := &mockPlayer{failWith: errBroken}
	b := &mockPlayer{}
	c := &mockPlayer{failWith: errBroken}
	r.Register("a", a)
	r.Register("b", b)
	r.Register("c", c)

	err := r.PlayAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBroken)
	assert.Len(t, multierr.Errors(err), 2, "every failing handle must be reported")
	assert.Equal(t, 1, b.plays, "healthy handle must still be played")
	assert.Equal(t, 1, c.plays, "handles after a failure must still be played")

	err = r.SeekOffsetAll(ctx, 1)
	require.Error(t, err)
	assert.Empty(t, a.seeks, "no seek without a current time")
	assert.Len(t, b.seeks, 1)
}
