package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sharetube/multiview/internal/repository/connection"
	sessionrepo "github.com/sharetube/multiview/internal/repository/session"
)

func (s *service) CreateSession(ctx context.Context, params *CreateSessionParams) (CreateSessionResponse, error) {
	sessionId := uuid.NewString()
	if err := s.sessionRepo.SetSession(ctx, &sessionrepo.SetSessionParams{
		SessionId: sessionId,
		CreatedAt: s.now().Unix(),
		SyncSeek:  params.SyncSeek,
	}); err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to set session: %w", err)
	}

	slog.InfoContext(ctx, "session created", "session_id", sessionId)

	return CreateSessionResponse{SessionId: sessionId}, nil
}

// GetSessionState reports the live state, or the stored one when no client of the
// session is connected to this server. Disconnecting clients unregister their players,
// so a stored session normally lists none; the player ids are only present while the
// session is live on another server sharing the same redis.
func (s *service) GetSessionState(ctx context.Context, sessionId string) (State, error) {
	if live, err := s.getLive(sessionId); err == nil {
		return live.state(), nil
	}

	stored, err := s.sessionRepo.GetSession(ctx, sessionId)
	if err != nil {
		if errors.Is(err, sessionrepo.ErrSessionNotFound) {
			return State{}, ErrSessionNotFound
		}
		return State{}, fmt.Errorf("failed to get session: %w", err)
	}

	videoIds, err := s.sessionRepo.GetPlayerIds(ctx, sessionId)
	if err != nil {
		return State{}, fmt.Errorf("failed to get player ids: %w", err)
	}

	players := make([]PlayerInfo, 0, len(videoIds))
	for _, videoId := range videoIds {
		players = append(players, PlayerInfo{VideoId: videoId})
	}

	return State{
		SessionId: sessionId,
		SyncSeek:  stored.SyncSeek,
		Players:   players,
	}, nil
}

func (s *service) ConnectClient(ctx context.Context, params *ConnectClientParams) (ConnectClientResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.sessions[params.SessionId]
	if !ok {
		stored, err := s.sessionRepo.GetSession(ctx, params.SessionId)
		if err != nil {
			if errors.Is(err, sessionrepo.ErrSessionNotFound) {
				return ConnectClientResponse{}, ErrSessionNotFound
			}
			return ConnectClientResponse{}, fmt.Errorf("failed to get session: %w", err)
		}

		live = newLiveSession(params.SessionId, stored.CreatedAt, stored.SyncSeek)
	}

	live.mu.Lock()
	if len(live.clients) >= s.clientsLimit {
		live.mu.Unlock()
		return ConnectClientResponse{}, ErrClientsLimitReached
	}

	client := connection.NewClient(uuid.NewString(), params.SessionId, params.Conn, s.writeTimeout)
	if err := s.connRepo.Add(client); err != nil {
		live.mu.Unlock()
		return ConnectClientResponse{}, fmt.Errorf("failed to add connection: %w", err)
	}
	live.clients[client.Id] = client
	live.mu.Unlock()

	s.sessions[params.SessionId] = live

	s.keepAlive(ctx, live)

	slog.InfoContext(ctx, "client connected", "session_id", params.SessionId, "client_id", client.Id)

	return ConnectClientResponse{
		Client: client,
		State:  live.state(),
	}, nil
}

// DisconnectClient closes the client connection and unregisters every player the client embedded.
func (s *service) DisconnectClient(ctx context.Context, params *DisconnectClientParams) (DisconnectClientResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.sessions[params.SessionId]
	if !ok {
		return DisconnectClientResponse{}, ErrSessionNotFound
	}

	live.mu.Lock()
	if _, ok := live.clients[params.ClientId]; !ok {
		live.mu.Unlock()
		return DisconnectClientResponse{}, ErrClientNotFound
	}
	delete(live.clients, params.ClientId)

	var unregistered []string
	for _, videoId := range live.registry.IDs() {
		if live.owners[videoId] != params.ClientId {
			continue
		}

		live.registry.Unregister(videoId)
		delete(live.owners, videoId)
		delete(live.videoData, videoId)
		unregistered = append(unregistered, videoId)
	}
	isClosed := len(live.clients) == 0
	live.mu.Unlock()

	if err := s.connRepo.Remove(params.ClientId); err != nil && !errors.Is(err, connection.ErrNotFound) {
		slog.WarnContext(ctx, "failed to remove connection", "error", err)
	}

	for _, videoId := range unregistered {
		if err := s.sessionRepo.RemovePlayer(ctx, &sessionrepo.RemovePlayerParams{
			SessionId: params.SessionId,
			VideoId:   videoId,
		}); err != nil {
			slog.WarnContext(ctx, "failed to remove player", "video_id", videoId, "error", err)
		}
	}

	if isClosed {
		delete(s.sessions, params.SessionId)

		s.keepAlive(ctx, live)
		if err := s.sessionRepo.ExpireSession(ctx, &sessionrepo.ExpireSessionParams{
			SessionId: params.SessionId,
			ExpireAt:  s.now().Add(s.emptySessionExp),
		}); err != nil {
			slog.WarnContext(ctx, "failed to expire session", "error", err)
		}
	}

	slog.InfoContext(ctx, "client disconnected",
		"session_id", params.SessionId,
		"client_id", params.ClientId,
		"unregistered", unregistered,
		"session_closed", isClosed,
	)

	return DisconnectClientResponse{
		Clients:              live.clientList(),
		State:                live.state(),
		UnregisteredVideoIds: unregistered,
		IsSessionClosed:      isClosed,
	}, nil
}

func (s *service) getLive(sessionId string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.sessions[sessionId]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return live, nil
}

// KeepAlive refreshes the stored record of a session with connected clients.
func (s *service) KeepAlive(ctx context.Context, params *KeepAliveParams) error {
	live, err := s.getLive(params.SessionId)
	if err != nil {
		return err
	}

	s.keepAlive(ctx, live)

	return nil
}

// keepAlive extends the stored record of a live session. A record that expired while
// clients stayed connected is written again from the live state, so the session can
// still outlive its last client by the empty session expiration.
func (s *service) keepAlive(ctx context.Context, live *liveSession) {
	err := s.sessionRepo.TouchSession(ctx, live.id)
	if err == nil {
		return
	}
	if !errors.Is(err, sessionrepo.ErrSessionNotFound) {
		slog.WarnContext(ctx, "failed to touch session", "session_id", live.id, "error", err)
		return
	}

	if err := s.sessionRepo.SetSession(ctx, &sessionrepo.SetSessionParams{
		SessionId: live.id,
		CreatedAt: live.createdAt,
		SyncSeek:  live.registry.SyncSeek(),
	}); err != nil && !errors.Is(err, sessionrepo.ErrSessionAlreadyExists) {
		slog.WarnContext(ctx, "failed to restore session", "session_id", live.id, "error", err)
		return
	}

	for _, videoId := range live.registry.IDs() {
		if err := s.sessionRepo.AddPlayer(ctx, &sessionrepo.AddPlayerParams{
			SessionId: live.id,
			VideoId:   videoId,
		}); err != nil {
			slog.WarnContext(ctx, "failed to restore player", "video_id", videoId, "error", err)
		}
	}

	slog.InfoContext(ctx, "session record restored", "session_id", live.id)
}
