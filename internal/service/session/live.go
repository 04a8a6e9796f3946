package session

import (
	"sync"

	"github.com/sharetube/multiview/internal/player"
	"github.com/sharetube/multiview/internal/player/remote"
	"github.com/sharetube/multiview/internal/repository/connection"
	"github.com/sharetube/multiview/pkg/ytvideodata"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// liveSession is a session with at least one connected client on this server.
type liveSession struct {
	id        string
	createdAt int64
	registry  *player.Registry
	// video id -> id of the client embedding the player
	owners    map[string]string
	videoData map[string]*ytvideodata.VideoData
	clients   map[string]*connection.Client
	mu        sync.Mutex
}

func newLiveSession(id string, createdAt int64, syncSeek bool) *liveSession {
	registry := player.NewRegistry()
	registry.SetSyncSeek(syncSeek)

	return &liveSession{
		id:        id,
		createdAt: createdAt,
		registry:  registry,
		owners:    make(map[string]string),
		videoData: make(map[string]*ytvideodata.VideoData),
		clients:   make(map[string]*connection.Client),
	}
}

func (l *liveSession) clientList() []*connection.Client {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := maps.Keys(l.clients)
	slices.Sort(ids)

	clients := make([]*connection.Client, 0, len(ids))
	for _, id := range ids {
		clients = append(clients, l.clients[id])
	}

	return clients
}

func (l *liveSession) state() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.registry.IDs()
	players := make([]PlayerInfo, 0, len(ids))
	for _, videoId := range ids {
		info := PlayerInfo{
			VideoId:   videoId,
			OwnerId:   l.owners[videoId],
			VideoData: l.videoData[videoId],
		}

		if p, ok := l.registry.Get(videoId); ok {
			if rp, ok := p.(*remote.Player); ok {
				state := rp.State()
				info.State = &state
			}
		}

		players = append(players, info)
	}

	return State{
		SessionId: l.id,
		SyncSeek:  l.registry.SyncSeek(),
		Players:   players,
		IsLive:    true,
	}
}
