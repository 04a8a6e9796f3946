package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/service/session"
	"github.com/sharetube/multiview/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw(), c.loggerWSMw())
	mux.HandleError(c.handleWSError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// registry
	wsrouter.Handle(mux, "REGISTER_PLAYER", c.handleRegisterPlayer)
	wsrouter.Handle(mux, "UNREGISTER_PLAYER", c.handleUnregisterPlayer)
	wsrouter.Handle(mux, "UPDATE_PLAYER_STATE", c.handleUpdatePlayerState)

	// bulk control
	wsrouter.Handle(mux, "PLAY_ALL", c.handlePlayAll)
	wsrouter.Handle(mux, "PAUSE_ALL", c.handlePauseAll)
	wsrouter.Handle(mux, "MUTE_ALL", c.handleMuteAll)
	wsrouter.Handle(mux, "UNMUTE_EXCLUSIVE", c.handleUnmuteExclusive)
	wsrouter.Handle(mux, "SEEK_OFFSET_ALL", c.handleSeekOffsetAll)
	wsrouter.Handle(mux, "TOGGLE_SYNC_SEEK", c.handleToggleSyncSeek)

	return mux
}

func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	client := c.getClientFromCtx(ctx)
	if client == nil {
		return
	}

	if isRejection(err) {
		c.logger.InfoContext(ctx, "rejected websocket message", "error", err)
	} else {
		c.logger.WarnContext(ctx, "failed to handle websocket message", "error", err)
	}

	if err := c.writeToClient(ctx, client, &Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message_type": wsrouter.GetMessageTypeFromCtx(ctx),
			"message":      err.Error(),
		},
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to write error", "error", err)
	}
}

func isRejection(err error) bool {
	return errors.Is(err, ErrValidationError) ||
		errors.Is(err, wsrouter.ErrInvalidPayload) ||
		errors.Is(err, wsrouter.ErrUnknownMessageType) ||
		errors.Is(err, session.ErrPlayerNotFound) ||
		errors.Is(err, session.ErrNotPlayerOwner) ||
		errors.Is(err, session.ErrPlayersLimitReached)
}
