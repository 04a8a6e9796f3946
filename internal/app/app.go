package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/multiview/internal/controller"
	"github.com/sharetube/multiview/internal/repository/connection/inmemory"
	sessionRedis "github.com/sharetube/multiview/internal/repository/session/redis"
	"github.com/sharetube/multiview/internal/service/session"
	"github.com/sharetube/multiview/pkg/ctxlogger"
	"github.com/sharetube/multiview/pkg/redisclient"
	"github.com/sharetube/multiview/pkg/ytvideodata"
)

type AppConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	LogLevel        string        `json:"log_level"`
	RedisPort       int           `json:"redis_port"`
	RedisHost       string        `json:"redis_host"`
	RedisPassword   string        `json:"-"`
	SessionExp      time.Duration `json:"session_exp"`
	EmptySessionExp time.Duration `json:"empty_session_exp"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ClientsLimit    int           `json:"clients_limit"`
	PlayersLimit    int           `json:"players_limit"`
	VideoMetadata   bool          `json:"video_metadata"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.ClientsLimit < 1 {
		return fmt.Errorf("clients limit must be greater than 0")
	}
	if cfg.PlayersLimit < 1 {
		return fmt.Errorf("players limit must be greater than 0")
	}
	if cfg.SessionExp <= 0 {
		return fmt.Errorf("session expiration must be positive")
	}
	if cfg.EmptySessionExp <= 0 || cfg.EmptySessionExp > cfg.SessionExp {
		return fmt.Errorf("empty session expiration must be positive and not exceed session expiration")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("write timeout must not be negative")
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newHandler wires repositories, the session service and the controller on top of rc.
func newHandler(rc *redis.Client, logger *slog.Logger, cfg *AppConfig) http.Handler {
	sessionRepo := sessionRedis.NewRepo(rc, cfg.SessionExp)
	connectionRepo := inmemory.NewRepo()

	var opts []session.Option
	if cfg.VideoMetadata {
		opts = append(opts, session.WithVideoData(ytvideodata.New()))
	}

	sessionService := session.NewService(sessionRepo, connectionRepo, &session.Config{
		ClientsLimit:    cfg.ClientsLimit,
		PlayersLimit:    cfg.PlayersLimit,
		EmptySessionExp: cfg.EmptySessionExp,
		WriteTimeout:    cfg.WriteTimeout,
	}, opts...)

	return controller.NewController(sessionService, logger).GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: newHandler(rc, logger, cfg),
	}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	slog.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
