package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sharetube/multiview/internal/repository/connection"
	sessionrepo "github.com/sharetube/multiview/internal/repository/session"
	"github.com/sharetube/multiview/pkg/ytvideodata"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrNotPlayerOwner      = errors.New("player is embedded by another client")
	ErrClientsLimitReached = errors.New("clients limit reached")
	ErrPlayersLimitReached = errors.New("players limit reached")
)

type iSessionRepo interface {
	SetSession(context.Context, *sessionrepo.SetSessionParams) error
	GetSession(context.Context, string) (sessionrepo.Session, error)
	UpdateSyncSeek(context.Context, *sessionrepo.UpdateSyncSeekParams) error
	TouchSession(context.Context, string) error
	ExpireSession(context.Context, *sessionrepo.ExpireSessionParams) error
	AddPlayer(context.Context, *sessionrepo.AddPlayerParams) error
	RemovePlayer(context.Context, *sessionrepo.RemovePlayerParams) error
	GetPlayerIds(context.Context, string) ([]string, error)
}

type iConnRepo interface {
	Add(*connection.Client) error
	Remove(string) error
}

type iVideoDataGetter interface {
	Get(ctx context.Context, videoId string) (*ytvideodata.VideoData, error)
}

type Config struct {
	ClientsLimit int
	PlayersLimit int
	// EmptySessionExp is how long a session outlives its last client.
	EmptySessionExp time.Duration
	WriteTimeout    time.Duration
}

type Option func(*service)

func WithVideoData(g iVideoDataGetter) Option {
	return func(s *service) {
		s.videoData = g
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	sessionRepo iSessionRepo
	connRepo    iConnRepo
	videoData   iVideoDataGetter
	now         func() time.Time

	clientsLimit    int
	playersLimit    int
	emptySessionExp time.Duration
	writeTimeout    time.Duration

	sessions map[string]*liveSession
	mu       sync.Mutex
}

func NewService(sessionRepo iSessionRepo, connRepo iConnRepo, cfg *Config, opts ...Option) *service {
	s := &service{
		sessionRepo:     sessionRepo,
		connRepo:        connRepo,
		now:             time.Now,
		clientsLimit:    cfg.ClientsLimit,
		playersLimit:    cfg.PlayersLimit,
		emptySessionExp: cfg.EmptySessionExp,
		writeTimeout:    cfg.WriteTimeout,
		sessions:        make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}
