package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharetube/multiview/internal/repository/session"
	"golang.org/x/exp/slices"
)

func (r repo) getPlayersKey(sessionId string) string {
	return "session:" + sessionId + ":players"
}

func (r repo) AddPlayer(ctx context.Context, params *session.AddPlayerParams) error {
	slog.DebugContext(ctx, "session.redis.AddPlayer", "params", params)

	exists, err := r.exists(ctx, params.SessionId)
	if err != nil {
		return fmt.Errorf("failed to check if session exists: %w", err)
	}
	if !exists {
		return session.ErrSessionNotFound
	}

	pipe := r.rc.TxPipeline()
	pipe.SAdd(ctx, r.getPlayersKey(params.SessionId), params.VideoId)
	r.expireAll(ctx, pipe, params.SessionId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to add player: %w", err)
	}

	return nil
}

func (r repo) RemovePlayer(ctx context.Context, params *session.RemovePlayerParams) error {
	slog.DebugContext(ctx, "session.redis.RemovePlayer", "params", params)

	pipe := r.rc.TxPipeline()
	pipe.SRem(ctx, r.getPlayersKey(params.SessionId), params.VideoId)
	r.expireAll(ctx, pipe, params.SessionId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}

	return nil
}

func (r repo) GetPlayerIds(ctx context.Context, sessionId string) ([]string, error) {
	ids, err := r.rc.SMembers(ctx, r.getPlayersKey(sessionId)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player ids: %w", err)
	}
	slices.Sort(ids)

	return ids, nil
}
