// Package redis forwards study events to a Redis pub/sub channel so other
// processes (dashboards, the studyctl watch command) can follow along.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/redact"
)

// client is the part of *goredis.Client the notifier uses.
type client interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *goredis.PubSub
	Close() error
}

// Notifier publishes every event it handles as JSON on one channel.
type Notifier struct {
	rdb     client
	channel string
	logger  *slog.Logger
}

var _ events.EventHandler = (*Notifier)(nil)

// NewNotifier connects to Redis and verifies the connection with a ping.
func NewNotifier(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (*Notifier, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Channel == "" {
		return nil, errors.New("redis channel is required")
	}
	if log == nil {
		log = slog.Default()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newNotifier(rdb, cfg.Channel, log), nil
}

func newNotifier(rdb client, channel string, log *slog.Logger) *Notifier {
	return &Notifier{
		rdb:     rdb,
		channel: channel,
		logger:  log.With("component", "redis_notifier", "channel", channel),
	}
}

// HandleEvent implements events.EventHandler.
func (n *Notifier) HandleEvent(ctx context.Context, event *events.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, raw).Err(); err != nil {
		n.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.Type,
			"error", redact.Error(err))
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Listen subscribes to the channel and calls onEvent for every decodable
// event until ctx is done.
func (n *Notifier) Listen(ctx context.Context, onEvent func(*events.Event)) error {
	if onEvent == nil {
		return errors.New("onEvent callback required")
	}
	sub := n.rdb.Subscribe(ctx, n.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var event events.Event
			if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
				n.logger.WarnContext(ctx, "bad event payload", "error", err)
				continue
			}
			onEvent(&event)
		}
	}
}

// Close closes the Redis client.
func (n *Notifier) Close() error {
	return n.rdb.Close()
}
