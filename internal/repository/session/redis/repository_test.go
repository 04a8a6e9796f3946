package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/multiview/internal/repository/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Hour), s
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRepo(t)

	_, err := r.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	require.NoError(t, r.SetSession(ctx, &session.SetSessionParams{
		SessionId: "s1",
		CreatedAt: 1700000000,
	}))
	assert.ErrorIs(t, r.SetSession(ctx, &session.SetSessionParams{SessionId: "s1"}), session.ErrSessionAlreadyExists)
	assert.Equal(t, time.Hour, s.TTL("session:s1"))

	got, err := r.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.Session{CreatedAt: 1700000000, SyncSeek: false}, got)

	require.NoError(t, r.UpdateSyncSeek(ctx, &session.UpdateSyncSeekParams{SessionId: "s1", SyncSeek: true}))
	got, err = r.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.SyncSeek)

	assert.ErrorIs(t, r.UpdateSyncSeek(ctx, &session.UpdateSyncSeekParams{SessionId: "nope"}), session.ErrSessionNotFound)
}

func TestPlayers(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRepo(t)

	assert.ErrorIs(t, r.AddPlayer(ctx, &session.AddPlayerParams{SessionId: "s1", VideoId: "a"}), session.ErrSessionNotFound)

	require.NoError(t, r.SetSession(ctx, &session.SetSessionParams{SessionId: "s1"}))
	require.NoError(t, r.AddPlayer(ctx, &session.AddPlayerParams{SessionId: "s1", VideoId: "b"}))
	require.NoError(t, r.AddPlayer(ctx, &session.AddPlayerParams{SessionId: "s1", VideoId: "a"}))
	require.NoError(t, r.AddPlayer(ctx, &session.AddPlayerParams{SessionId: "s1", VideoId: "a"}))
	assert.Equal(t, time.Hour, s.TTL("session:s1:players"))

	ids, err := r.GetPlayerIds(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, r.RemovePlayer(ctx, &session.RemovePlayerParams{SessionId: "s1", VideoId: "a"}))
	require.NoError(t, r.RemovePlayer(ctx, &session.RemovePlayerParams{SessionId: "s1", VideoId: "missing"}))

	ids, err = r.GetPlayerIds(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRepo(t)

	require.NoError(t, r.SetSession(ctx, &session.SetSessionParams{SessionId: "s1"}))
	s.FastForward(30 * time.Minute)
	require.NoError(t, r.TouchSession(ctx, "s1"))
	s.FastForward(45 * time.Minute)

	_, err := r.GetSession(ctx, "s1")
	require.NoError(t, err, "touch must extend the lifetime")

	require.NoError(t, r.ExpireSession(ctx, &session.ExpireSessionParams{
		SessionId: "s1",
		ExpireAt:  time.Now().Add(time.Minute),
	}))
	s.FastForward(2 * time.Minute)

	_, err = r.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, r.TouchSession(ctx, "s1"), session.ErrSessionNotFound)
}
