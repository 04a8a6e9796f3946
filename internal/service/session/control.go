package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharetube/multiview/internal/player"
	sessionrepo "github.com/sharetube/multiview/internal/repository/session"
)

// The broadcast operations below return a usable response even when they also
// return an error: the error only lists the handles that failed.

func (s *service) PlayAll(ctx context.Context, params *BroadcastParams) (PlayersUpdatedResponse, error) {
	return s.broadcast(ctx, params.SessionId, "play all", func(r *player.Registry) error {
		return r.PlayAll(ctx)
	})
}

func (s *service) PauseAll(ctx context.Context, params *BroadcastParams) (PlayersUpdatedResponse, error) {
	return s.broadcast(ctx, params.SessionId, "pause all", func(r *player.Registry) error {
		return r.PauseAll(ctx)
	})
}

func (s *service) MuteAll(ctx context.Context, params *BroadcastParams) (PlayersUpdatedResponse, error) {
	return s.broadcast(ctx, params.SessionId, "mute all", func(r *player.Registry) error {
		return r.MuteAll(ctx)
	})
}

func (s *service) UnmuteExclusive(ctx context.Context, params *UnmuteExclusiveParams) (PlayersUpdatedResponse, error) {
	return s.broadcast(ctx, params.SessionId, "unmute exclusive", func(r *player.Registry) error {
		return r.UnmuteExclusive(ctx, params.VideoId)
	})
}

// SeekOffsetAll seeks every player regardless of the sync-seek flag.
func (s *service) SeekOffsetAll(ctx context.Context, params *SeekOffsetAllParams) (PlayersUpdatedResponse, error) {
	return s.broadcast(ctx, params.SessionId, "seek offset all", func(r *player.Registry) error {
		return r.SeekOffsetAll(ctx, params.Offset)
	})
}

func (s *service) ToggleSyncSeek(ctx context.Context, params *BroadcastParams) (ToggleSyncSeekResponse, error) {
	live, err := s.getLive(params.SessionId)
	if err != nil {
		return ToggleSyncSeekResponse{}, err
	}

	syncSeek := live.registry.ToggleSyncSeek()

	s.keepAlive(ctx, live)
	if err := s.sessionRepo.UpdateSyncSeek(ctx, &sessionrepo.UpdateSyncSeekParams{
		SessionId: params.SessionId,
		SyncSeek:  syncSeek,
	}); err != nil {
		slog.WarnContext(ctx, "failed to update sync seek", "error", err)
	}

	return ToggleSyncSeekResponse{
		SyncSeek: syncSeek,
		Clients:  live.clientList(),
	}, nil
}

func (s *service) broadcast(ctx context.Context, sessionId, op string, fn func(*player.Registry) error) (PlayersUpdatedResponse, error) {
	live, err := s.getLive(sessionId)
	if err != nil {
		return PlayersUpdatedResponse{}, err
	}

	opErr := fn(live.registry)
	s.keepAlive(ctx, live)

	resp := PlayersUpdatedResponse{
		Clients: live.clientList(),
		State:   live.state(),
	}

	if opErr != nil {
		slog.WarnContext(ctx, "broadcast partially failed", "op", op, "error", opErr)
		return resp, fmt.Errorf("failed to %s: %w", op, opErr)
	}

	return resp, nil
}
