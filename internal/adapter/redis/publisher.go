// Package redis publishes alert records on a Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/couchcryptid/pest-risk/internal/config"
	"github.com/couchcryptid/pest-risk/internal/domain"
)

// Publisher sends each alert record as a JSON message to a channel.
// It implements pipeline.Sink.
type Publisher struct {
	client  *goredis.Client
	channel string
}

// NewPublisher connects to the configured Redis server and verifies it with
// PING.
func NewPublisher(ctx context.Context, cfg *config.Config) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Publisher{client: client, channel: cfg.RedisChannel}, nil
}

func (p *Publisher) Name() string { return "redis" }

// Write publishes the records through one pipeline round trip.
func (p *Publisher) Write(ctx context.Context, records []domain.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, rec := range records {
		payload, err := alertPayload(rec)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, p.channel, payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// alertPayload is the message body subscribers receive: the record plus its
// display risk label.
func alertPayload(rec domain.AlertRecord) ([]byte, error) {
	payload, err := json.Marshal(struct {
		domain.AlertRecord
		RiskLabel string `json:"risk_label"`
	}{rec, rec.Tier().Label()})
	if err != nil {
		return nil, fmt.Errorf("marshal alert: %w", err)
	}
	return payload, nil
}
