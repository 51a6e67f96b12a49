package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const DefaultResultChannel = "tictactoe:results"

type ResultPublisher interface {
	Publish(ctx context.Context, result *entity.GameResult) error
}

// redisResults fans finished games out over Redis Pub/Sub. Nothing is stored.
type redisResults struct {
	client  *redis.Client
	channel string
}

func NewResultPublisher(client *redis.Client, channel string) ResultPublisher {
	if channel == "" {
		channel = DefaultResultChannel
	}

	return &redisResults{
		client:  client,
		channel: channel,
	}
}

func (that *redisResults) Publish(ctx context.Context, result *entity.GameResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal game result: %w", err)
	}

	if err = that.client.Publish(ctx, that.channel, resultJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game result: %w", err)
	}

	return nil
}

// logResults is used when Redis is disabled.
type logResults struct {
	logger *slog.Logger
}

func NewLogResultPublisher(logger *slog.Logger) ResultPublisher {
	return &logResults{
		logger: logger.With("component", "results"),
	}
}

func (that *logResults) Publish(_ context.Context, result *entity.GameResult) error {
	that.logger.Info("game finished",
		"sessionID", result.SessionID,
		"winner", result.Winner,
		"gamesPlayed", result.Stats.GamesPlayed,
	)

	return nil
}
