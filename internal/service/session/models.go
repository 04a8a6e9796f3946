package session

import (
	"github.com/sharetube/multiview/internal/player/remote"
	"github.com/sharetube/multiview/internal/repository/connection"
	"github.com/sharetube/multiview/pkg/ytvideodata"
)

type PlayerInfo struct {
	VideoId   string                 `json:"video_id"`
	OwnerId   string                 `json:"owner_id,omitempty"`
	State     *remote.State          `json:"state,omitempty"`
	VideoData *ytvideodata.VideoData `json:"video_data,omitempty"`
}

type State struct {
	SessionId string       `json:"session_id"`
	SyncSeek  bool         `json:"sync_seek"`
	Players   []PlayerInfo `json:"players"`
	// IsLive is false when the session has no connected clients on this server.
	IsLive bool `json:"is_live"`
}

type CreateSessionParams struct {
	SyncSeek bool
}

type CreateSessionResponse struct {
	SessionId string
}

type KeepAliveParams struct {
	SessionId string
}

type ConnectClientParams struct {
	SessionId string
	Conn      connection.Conn
}

type ConnectClientResponse struct {
	Client *connection.Client
	State  State
}

type DisconnectClientParams struct {
	SessionId string
	ClientId  string
}

type DisconnectClientResponse struct {
	Clients              []*connection.Client
	State                State
	UnregisteredVideoIds []string
	IsSessionClosed      bool
}

type RegisterPlayerParams struct {
	SessionId string
	ClientId  string
	VideoId   string
}

type UnregisterPlayerParams struct {
	SessionId string
	VideoId   string
}

type PlayersUpdatedResponse struct {
	Clients []*connection.Client
	State   State
}

type ReportPlayerStateParams struct {
	SessionId string
	ClientId  string
	VideoId   string
	State     remote.State
}

type BroadcastParams struct {
	SessionId string
}

type UnmuteExclusiveParams struct {
	SessionId string
	VideoId   string
}

type SeekOffsetAllParams struct {
	SessionId string
	Offset    float64
}

type ToggleSyncSeekResponse struct {
	SyncSeek bool
	Clients  []*connection.Client
}

type ResolveVideoDataParams struct {
	SessionId string
	VideoId   string
}

type ResolveVideoDataResponse struct {
	PlayersUpdatedResponse
	Updated bool
}
