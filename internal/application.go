package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/config"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-solo/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-solo/transport/rest"
	"github.com/rocketscienceinc/tictactoe-solo/transport/websocket"
)

const (
	minEvictInterval = time.Second
	maxEvictInterval = time.Minute
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	publisher, closePublisher, err := newResultPublisher(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closePublisher()

	sessionRepo := repository.NewSessionRepository()
	gameManager := usecase.NewGameManager(logger, sessionRepo, publisher, usecase.WithSessionTTL(conf.SessionTTL))

	go runJanitor(ctx, log, gameManager, evictInterval(conf.SessionTTL))

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, gameManager)); httpErr != nil {
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newResultPublisher publishes finished games to Redis when it is enabled, and to the log otherwise.
func newResultPublisher(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.ResultPublisher, func(), error) {
	log := logger.With("component", "app")

	if !conf.Redis.Enabled {
		log.Info("Redis disabled, game results go to the log")
		return repository.NewLogResultPublisher(logger), func() {}, nil
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewResultPublisher(redisStorage, conf.Redis.Channel), closeStorage, nil
}

type evictor interface {
	EvictIdle(ctx context.Context) (int, error)
}

// runJanitor evicts idle sessions until ctx is done.
func runJanitor(ctx context.Context, log *slog.Logger, sessions evictor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.EvictIdle(ctx); err != nil {
				log.Error("failed to evict idle sessions", "error", err)
			}
		}
	}
}

func evictInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return maxEvictInterval
	}

	return max(min(ttl/2, maxEvictInterval), minEvictInterval)
}
