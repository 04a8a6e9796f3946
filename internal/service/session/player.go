package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharetube/multiview/internal/player/remote"
	sessionrepo "github.com/sharetube/multiview/internal/repository/session"
)

// RegisterPlayer registers a handle for a player embedded by the given client.
// A player already registered under the same video id is replaced.
func (s *service) RegisterPlayer(ctx context.Context, params *RegisterPlayerParams) (PlayersUpdatedResponse, error) {
	live, err := s.getLive(params.SessionId)
	if err != nil {
		return PlayersUpdatedResponse{}, err
	}

	live.mu.Lock()
	client, ok := live.clients[params.ClientId]
	if !ok {
		live.mu.Unlock()
		return PlayersUpdatedResponse{}, ErrClientNotFound
	}

	if _, exists := live.registry.Get(params.VideoId); !exists && live.registry.Len() >= s.playersLimit {
		live.mu.Unlock()
		return PlayersUpdatedResponse{}, ErrPlayersLimitReached
	}

	handle := remote.New(params.VideoId, client, remote.WithClock(s.now))
	if _, replaced := live.registry.Register(params.VideoId, handle); replaced {
		slog.InfoContext(ctx, "player handle replaced",
			"video_id", params.VideoId,
			"previous_owner_id", live.owners[params.VideoId],
		)
	}
	live.owners[params.VideoId] = params.ClientId
	live.mu.Unlock()

	if err := s.sessionRepo.AddPlayer(ctx, &sessionrepo.AddPlayerParams{
		SessionId: params.SessionId,
		VideoId:   params.VideoId,
	}); err != nil {
		slog.WarnContext(ctx, "failed to add player", "error", err)
	}

	return PlayersUpdatedResponse{
		Clients: live.clientList(),
		State:   live.state(),
	}, nil
}

// UnregisterPlayer removes the handle for the video id. Unknown ids are ignored.
func (s *service) UnregisterPlayer(ctx context.Context, params *UnregisterPlayerParams) (PlayersUpdatedResponse, error) {
	live, err := s.getLive(params.SessionId)
	if err != nil {
		return PlayersUpdatedResponse{}, err
	}

	live.mu.Lock()
	removed := live.registry.Unregister(params.VideoId)
	delete(live.owners, params.VideoId)
	delete(live.videoData, params.VideoId)
	live.mu.Unlock()

	if removed {
		if err := s.sessionRepo.RemovePlayer(ctx, &sessionrepo.RemovePlayerParams{
			SessionId: params.SessionId,
			VideoId:   params.VideoId,
		}); err != nil {
			slog.WarnContext(ctx, "failed to remove player", "error", err)
		}
	}

	return PlayersUpdatedResponse{
		Clients: live.clientList(),
		State:   live.state(),
	}, nil
}

type stateReporter interface {
	Report(remote.State)
}

// ReportPlayerState stores the state reported by the client embedding the player.
func (s *service) ReportPlayerState(ctx context.Context, params *ReportPlayerStateParams) error {
	live, err := s.getLive(params.SessionId)
	if err != nil {
		return err
	}

	live.mu.Lock()
	handle, ok := live.registry.Get(params.VideoId)
	owner := live.owners[params.VideoId]
	live.mu.Unlock()

	if !ok {
		return ErrPlayerNotFound
	}
	if owner != params.ClientId {
		return ErrNotPlayerOwner
	}

	reporter, ok := handle.(stateReporter)
	if !ok {
		return fmt.Errorf("player %s does not accept state reports", params.VideoId)
	}
	reporter.Report(params.State)

	s.keepAlive(ctx, live)

	return nil
}

// ResolveVideoData looks up metadata for a registered player that has none yet.
// Updated is false when there was nothing to look up or the player went away meanwhile.
func (s *service) ResolveVideoData(ctx context.Context, params *ResolveVideoDataParams) (ResolveVideoDataResponse, error) {
	if s.videoData == nil {
		return ResolveVideoDataResponse{}, nil
	}

	live, err := s.getLive(params.SessionId)
	if err != nil {
		return ResolveVideoDataResponse{}, err
	}

	live.mu.Lock()
	_, registered := live.owners[params.VideoId]
	_, cached := live.videoData[params.VideoId]
	live.mu.Unlock()

	if !registered {
		return ResolveVideoDataResponse{}, ErrPlayerNotFound
	}
	if cached {
		return ResolveVideoDataResponse{}, nil
	}

	videoData, err := s.videoData.Get(ctx, params.VideoId)
	if err != nil {
		return ResolveVideoDataResponse{}, fmt.Errorf("failed to get video data: %w", err)
	}

	live.mu.Lock()
	_, registered = live.owners[params.VideoId]
	if registered {
		live.videoData[params.VideoId] = videoData
	}
	live.mu.Unlock()

	if !registered {
		return ResolveVideoDataResponse{}, nil
	}

	return ResolveVideoDataResponse{
		Updated: true,
		PlayersUpdatedResponse: PlayersUpdatedResponse{
			Clients: live.clientList(),
			State:   live.state(),
		},
	}, nil
}
