package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
)

// EventTypeSnapshotUpdated is published after every persisted sweep.
const EventTypeSnapshotUpdated = "SNAPSHOT_UPDATED"

// SnapshotUpdatedPayload is the stream payload for a completed sweep.
type SnapshotUpdatedPayload struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Timestamp     time.Time `json:"timestamp"`
	TakenAt       time.Time `json:"taken_at"`
	TotalListings int       `json:"total_listings"`
	Competitors   int       `json:"competitors"`
}

// RedisClient is the subset of the Redis API the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher announces completed sweeps on a Redis stream so downstream
// consumers (reporting, alerting) can react without polling the store.
type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishSnapshotUpdated emits one event for the given snapshot. Publish
// failures are reported to the caller but must not fail the sweep.
func (p *Publisher) PublishSnapshotUpdated(ctx context.Context, snapshot *models.Snapshot) error {
	payload := SnapshotUpdatedPayload{
		EventID:       uuid.New().String(),
		EventType:     EventTypeSnapshotUpdated,
		Timestamp:     time.Now().UTC(),
		TakenAt:       snapshot.TakenAt,
		TotalListings: snapshot.TotalListings(),
		Competitors:   len(snapshot.Competitors),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":       string(data),
			"type":       payload.EventType,
			"timestamp":  fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
			"event_id":   payload.EventID,
			"event_type": payload.EventType,
		},
	}
	if _, err := p.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("event published",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"listings", payload.TotalListings)
	return nil
}
