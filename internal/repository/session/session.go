package session

import "time"

type Session struct {
	CreatedAt int64 `redis:"created_at"`
	SyncSeek  bool  `redis:"sync_seek"`
}

type SetSessionParams struct {
	SessionId string
	CreatedAt int64
	SyncSeek  bool
}

type UpdateSyncSeekParams struct {
	SessionId string
	SyncSeek  bool
}

type AddPlayerParams struct {
	SessionId string
	VideoId   string
}

type RemovePlayerParams struct {
	SessionId string
	VideoId   string
}

type ExpireSessionParams struct {
	SessionId string
	ExpireAt  time.Time
}
