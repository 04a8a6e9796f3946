package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharetube/multiview/internal/repository/session"
)

func (r repo) getSessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (r repo) SetSession(ctx context.Context, params *session.SetSessionParams) error {
	funcName := "session.redis.SetSession"
	slog.DebugContext(ctx, funcName, "params", params)

	sessionKey := r.getSessionKey(params.SessionId)
	created, err := r.rc.HSetNX(ctx, sessionKey, "created_at", params.CreatedAt).Result()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	if !created {
		slog.InfoContext(ctx, funcName, "error", session.ErrSessionAlreadyExists)
		return session.ErrSessionAlreadyExists
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, sessionKey, "sync_seek", params.SyncSeek)
	r.expireAll(ctx, pipe, params.SessionId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (r repo) GetSession(ctx context.Context, sessionId string) (session.Session, error) {
	funcName := "session.redis.GetSession"
	slog.DebugContext(ctx, funcName, "session_id", sessionId)

	res := r.rc.HGetAll(ctx, r.getSessionKey(sessionId))
	if err := res.Err(); err != nil {
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	if len(res.Val()) == 0 {
		slog.InfoContext(ctx, funcName, "error", session.ErrSessionNotFound)
		return session.Session{}, session.ErrSessionNotFound
	}

	var s session.Session
	if err := res.Scan(&s); err != nil {
		return session.Session{}, fmt.Errorf("failed to scan session: %w", err)
	}

	return s, nil
}

func (r repo) UpdateSyncSeek(ctx context.Context, params *session.UpdateSyncSeekParams) error {
	funcName := "session.redis.UpdateSyncSeek"
	slog.DebugContext(ctx, funcName, "params", params)

	exists, err := r.exists(ctx, params.SessionId)
	if err != nil {
		return fmt.Errorf("failed to check if session exists: %w", err)
	}
	if !exists {
		return session.ErrSessionNotFound
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, r.getSessionKey(params.SessionId), "sync_seek", params.SyncSeek)
	r.expireAll(ctx, pipe, params.SessionId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to update sync seek: %w", err)
	}

	return nil
}

// TouchSession extends the lifetime of every key of the session.
func (r repo) TouchSession(ctx context.Context, sessionId string) error {
	exists, err := r.exists(ctx, sessionId)
	if err != nil {
		return fmt.Errorf("failed to check if session exists: %w", err)
	}
	if !exists {
		return session.ErrSessionNotFound
	}

	pipe := r.rc.TxPipeline()
	r.expireAll(ctx, pipe, sessionId)

	return r.executePipe(ctx, pipe)
}

func (r repo) ExpireSession(ctx context.Context, params *session.ExpireSessionParams) error {
	pipe := r.rc.TxPipeline()
	pipe.ExpireAt(ctx, r.getSessionKey(params.SessionId), params.ExpireAt)
	pipe.ExpireAt(ctx, r.getPlayersKey(params.SessionId), params.ExpireAt)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}

	return nil
}
