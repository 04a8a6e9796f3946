package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/player/remote"
	"github.com/sharetube/multiview/internal/service/session"
	"github.com/sharetube/multiview/pkg/ctxlogger"
	"github.com/sharetube/multiview/pkg/rest"
)

const (
	closeSessionNotFound = 4004
	closeLimitReached    = 4029
)

func (c controller) connectSession(w http.ResponseWriter, r *http.Request) {
	sessionId := chi.URLParam(r, "session-id")

	if _, err := c.sessionService.GetSessionState(r.Context(), sessionId); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "session not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get session state", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get session"})
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	connectResp, err := c.sessionService.ConnectClient(r.Context(), &session.ConnectClientParams{
		SessionId: sessionId,
		Conn:      conn,
	})
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to connect client", "error", err)

		code := websocket.CloseInternalServerErr
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			code = closeSessionNotFound
		case errors.Is(err, session.ErrClientsLimitReached):
			code = closeLimitReached
		}
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()), time.Now().Add(5*time.Second))
		return
	}
	client := connectResp.Client

	ctx := context.WithValue(r.Context(), sessionIdCtxKey, sessionId)
	ctx = context.WithValue(ctx, clientIdCtxKey, client.Id)
	ctx = context.WithValue(ctx, clientCtxKey, client)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", sessionId))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("client_id", client.Id))

	defer c.disconnect(context.WithoutCancel(ctx), sessionId, client.Id)

	if err := c.writeToClient(ctx, client, &Output{
		Type: "CONNECTED",
		Payload: map[string]any{
			"client_id": client.Id,
			"session":   connectResp.State,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write connected message", "error", err)
		return
	}

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, sessionId, clientId string) {
	disconnectResp, err := c.sessionService.DisconnectClient(ctx, &session.DisconnectClientParams{
		SessionId: sessionId,
		ClientId:  clientId,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect client", "error", err)
		return
	}

	if len(disconnectResp.UnregisteredVideoIds) == 0 {
		return
	}

	if err := c.broadcastPlayersUpdated(ctx, &session.PlayersUpdatedResponse{
		Clients: disconnectResp.Clients,
		State:   disconnectResp.State,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast players updated", "error", err)
	}
}

func (c controller) handleAlive(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if err := c.sessionService.KeepAlive(ctx, &session.KeepAliveParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to keep session alive: %w", err)
	}

	return nil
}

type RegisterPlayerInput struct {
	VideoId string `json:"video_id" validate:"required,max=64,printascii"`
}

func (c controller) handleRegisterPlayer(ctx context.Context, _ *websocket.Conn, input RegisterPlayerInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	registerPlayerResp, err := c.sessionService.RegisterPlayer(ctx, &session.RegisterPlayerParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		ClientId:  c.getClientIdFromCtx(ctx),
		VideoId:   input.VideoId,
	})
	if err != nil {
		return fmt.Errorf("failed to register player: %w", err)
	}

	broadcastErr := c.broadcastPlayersUpdated(ctx, &registerPlayerResp)

	// started after the broadcast so the enriched list always arrives last
	go c.resolveVideoData(context.WithoutCancel(ctx), c.getSessionIdFromCtx(ctx), input.VideoId)

	if broadcastErr != nil {
		return fmt.Errorf("failed to broadcast players updated: %w", broadcastErr)
	}

	return nil
}

// resolveVideoData runs outside the read loop so a slow lookup does not hold back the
// client's next messages.
func (c controller) resolveVideoData(ctx context.Context, sessionId, videoId string) {
	resolveResp, err := c.sessionService.ResolveVideoData(ctx, &session.ResolveVideoDataParams{
		SessionId: sessionId,
		VideoId:   videoId,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to resolve video data", "video_id", videoId, "error", err)
		return
	}
	if !resolveResp.Updated {
		return
	}

	if err := c.broadcastPlayersUpdated(ctx, &resolveResp.PlayersUpdatedResponse); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast players updated", "error", err)
	}
}

type UnregisterPlayerInput struct {
	VideoId string `json:"video_id" validate:"required,max=64,printascii"`
}

func (c controller) handleUnregisterPlayer(ctx context.Context, _ *websocket.Conn, input UnregisterPlayerInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	unregisterPlayerResp, err := c.sessionService.UnregisterPlayer(ctx, &session.UnregisterPlayerParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		VideoId:   input.VideoId,
	})
	if err != nil {
		return fmt.Errorf("failed to unregister player: %w", err)
	}

	if err := c.broadcastPlayersUpdated(ctx, &unregisterPlayerResp); err != nil {
		return fmt.Errorf("failed to broadcast players updated: %w", err)
	}

	return nil
}

type UpdatePlayerStateInput struct {
	VideoId      string  `json:"video_id" validate:"required,max=64,printascii"`
	CurrentTime  float64 `json:"current_time" validate:"gte=0"`
	IsPlaying    bool    `json:"is_playing"`
	PlaybackRate float64 `json:"playback_rate" validate:"gte=0,lte=16"`
	IsMuted      bool    `json:"is_muted"`
	Volume       int     `json:"volume" validate:"gte=0,lte=100"`
}

// handleUpdatePlayerState stores a state report from the client embedding the player.
// Reports are not broadcast; they reach other clients with the next players update.
func (c controller) handleUpdatePlayerState(ctx context.Context, _ *websocket.Conn, input UpdatePlayerStateInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	if err := c.sessionService.ReportPlayerState(ctx, &session.ReportPlayerStateParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		ClientId:  c.getClientIdFromCtx(ctx),
		VideoId:   input.VideoId,
		State: remote.State{
			CurrentTime:  input.CurrentTime,
			IsPlaying:    input.IsPlaying,
			PlaybackRate: input.PlaybackRate,
			IsMuted:      input.IsMuted,
			Volume:       input.Volume,
		},
	}); err != nil {
		return fmt.Errorf("failed to report player state: %w", err)
	}

	return nil
}

func (c controller) handlePlayAll(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	playAllResp, err := c.sessionService.PlayAll(ctx, &session.BroadcastParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	return c.finishBroadcast(ctx, &playAllResp, err)
}

func (c controller) handlePauseAll(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	pauseAllResp, err := c.sessionService.PauseAll(ctx, &session.BroadcastParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	return c.finishBroadcast(ctx, &pauseAllResp, err)
}

func (c controller) handleMuteAll(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	muteAllResp, err := c.sessionService.MuteAll(ctx, &session.BroadcastParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	return c.finishBroadcast(ctx, &muteAllResp, err)
}

type UnmuteExclusiveInput struct {
	VideoId string `json:"video_id" validate:"required,max=64,printascii"`
}

func (c controller) handleUnmuteExclusive(ctx context.Context, _ *websocket.Conn, input UnmuteExclusiveInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	unmuteResp, err := c.sessionService.UnmuteExclusive(ctx, &session.UnmuteExclusiveParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		VideoId:   input.VideoId,
	})
	return c.finishBroadcast(ctx, &unmuteResp, err)
}

type SeekOffsetAllInput struct {
	Offset float64 `json:"offset" validate:"gte=-86400,lte=86400"`
}

func (c controller) handleSeekOffsetAll(ctx context.Context, _ *websocket.Conn, input SeekOffsetAllInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	seekResp, err := c.sessionService.SeekOffsetAll(ctx, &session.SeekOffsetAllParams{
		SessionId: c.getSessionIdFromCtx(ctx),
		Offset:    input.Offset,
	})
	return c.finishBroadcast(ctx, &seekResp, err)
}

func (c controller) handleToggleSyncSeek(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	toggleResp, err := c.sessionService.ToggleSyncSeek(ctx, &session.BroadcastParams{
		SessionId: c.getSessionIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to toggle sync seek: %w", err)
	}

	if err := c.broadcast(ctx, toggleResp.Clients, &Output{
		Type: "SYNC_SEEK_UPDATED",
		Payload: map[string]any{
			"sync_seek": toggleResp.SyncSeek,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast sync seek updated: %w", err)
	}

	return nil
}

// finishBroadcast publishes the players state after a bulk operation, including a
// partially failed one, and then reports the operation error to the sender.
func (c controller) finishBroadcast(ctx context.Context, resp *session.PlayersUpdatedResponse, opErr error) error {
	if err := c.broadcastPlayersUpdated(ctx, resp); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast players updated", "error", err)
	}

	return opErr
}
