package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/service/session"
	"github.com/sharetube/multiview/pkg/validator"
	"github.com/sharetube/multiview/pkg/wsrouter"
)

type iSessionService interface {
	CreateSession(context.Context, *session.CreateSessionParams) (session.CreateSessionResponse, error)
	GetSessionState(context.Context, string) (session.State, error)
	ConnectClient(context.Context, *session.ConnectClientParams) (session.ConnectClientResponse, error)
	DisconnectClient(context.Context, *session.DisconnectClientParams) (session.DisconnectClientResponse, error)
	KeepAlive(context.Context, *session.KeepAliveParams) error
	RegisterPlayer(context.Context, *session.RegisterPlayerParams) (session.PlayersUpdatedResponse, error)
	UnregisterPlayer(context.Context, *session.UnregisterPlayerParams) (session.PlayersUpdatedResponse, error)
	ReportPlayerState(context.Context, *session.ReportPlayerStateParams) error
	ResolveVideoData(context.Context, *session.ResolveVideoDataParams) (session.ResolveVideoDataResponse, error)
	PlayAll(context.Context, *session.BroadcastParams) (session.PlayersUpdatedResponse, error)
	PauseAll(context.Context, *session.BroadcastParams) (session.PlayersUpdatedResponse, error)
	MuteAll(context.Context, *session.BroadcastParams) (session.PlayersUpdatedResponse, error)
	UnmuteExclusive(context.Context, *session.UnmuteExclusiveParams) (session.PlayersUpdatedResponse, error)
	SeekOffsetAll(context.Context, *session.SeekOffsetAllParams) (session.PlayersUpdatedResponse, error)
	ToggleSyncSeek(context.Context, *session.BroadcastParams) (session.ToggleSyncSeekResponse, error)
}

type controller struct {
	sessionService iSessionService
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	logger         *slog.Logger
	wsmux          *wsrouter.WSRouter
}

func NewController(sessionService iSessionService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessionService: sessionService,
		validate:       validator.NewValidator(),
		logger:         logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
