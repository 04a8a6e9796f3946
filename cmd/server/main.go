package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/multiview/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	clientsLimit = configVar[int]{
		envKey:       "SERVER_CLIENTS_LIMIT",
		flagKey:      "clients-limit",
		defaultValue: 8,
		usage:        "Maximum number of connected clients per session",
	}
	playersLimit = configVar[int]{
		envKey:       "SERVER_PLAYERS_LIMIT",
		flagKey:      "players-limit",
		defaultValue: 16,
		usage:        "Maximum number of registered players per session",
	}
	sessionExp = configVar[time.Duration]{
		envKey:       "SERVER_SESSION_EXP",
		flagKey:      "session-exp",
		defaultValue: 24 * time.Hour,
		usage:        "Lifetime of a session record, refreshed on activity",
	}
	emptySessionExp = configVar[time.Duration]{
		envKey:       "SERVER_EMPTY_SESSION_EXP",
		flagKey:      "empty-session-exp",
		defaultValue: 10 * time.Minute,
		usage:        "How long a session outlives its last client",
	}
	writeTimeout = configVar[time.Duration]{
		envKey:       "SERVER_WRITE_TIMEOUT",
		flagKey:      "write-timeout",
		defaultValue: 5 * time.Second,
		usage:        "Websocket write timeout",
	}
	videoMetadata = configVar[bool]{
		envKey:       "SERVER_VIDEO_METADATA",
		flagKey:      "video-metadata",
		defaultValue: true,
		usage:        "Resolve video title and thumbnail on register",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func (v configVar[T]) bind() {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Int(clientsLimit.flagKey, clientsLimit.defaultValue, clientsLimit.usage)
	pflag.Int(playersLimit.flagKey, playersLimit.defaultValue, playersLimit.usage)
	pflag.Duration(sessionExp.flagKey, sessionExp.defaultValue, sessionExp.usage)
	pflag.Duration(emptySessionExp.flagKey, emptySessionExp.defaultValue, emptySessionExp.usage)
	pflag.Duration(writeTimeout.flagKey, writeTimeout.defaultValue, writeTimeout.usage)
	pflag.Bool(videoMetadata.flagKey, videoMetadata.defaultValue, videoMetadata.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	port.bind()
	host.bind()
	logLevel.bind()
	clientsLimit.bind()
	playersLimit.bind()
	sessionExp.bind()
	emptySessionExp.bind()
	writeTimeout.bind()
	videoMetadata.bind()
	redisPort.bind()
	redisHost.bind()
	redisPassword.bind()

	return &app.AppConfig{
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		ClientsLimit:    viper.GetInt(clientsLimit.flagKey),
		PlayersLimit:    viper.GetInt(playersLimit.flagKey),
		SessionExp:      viper.GetDuration(sessionExp.flagKey),
		EmptySessionExp: viper.GetDuration(emptySessionExp.flagKey),
		WriteTimeout:    viper.GetDuration(writeTimeout.flagKey),
		VideoMetadata:   viper.GetBool(videoMetadata.flagKey),
		RedisPort:       viper.GetInt(redisPort.flagKey),
		RedisHost:       viper.GetString(redisHost.flagKey),
		RedisPassword:   viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
