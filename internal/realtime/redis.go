package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/moonwavetravel/backend/internal/domain"
)

// DefaultChannel is the Redis pub/sub channel used when none is configured.
const DefaultChannel = "moonwave:changes"

// RedisBroker shares change events between API instances over Redis pub/sub.
// Publish sends to Redis only; a pump goroutine relays everything received on
// the channel, including this instance's own events, into a local Hub that
// serves Subscribe.
type RedisBroker struct {
	rdb     *redis.Client
	channel string
	pubsub  *redis.PubSub
	hub     *Hub
	logger  *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRedisBroker subscribes to channel and starts relaying. The subscription is
// confirmed before returning, so a broken connection fails here.
func NewRedisBroker(ctx context.Context, rdb *redis.Client, channel string, logger *slog.Logger) (*RedisBroker, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	ps := rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("realtime.NewRedisBroker: subscribe %s: %w", channel, err)
	}

	b := &RedisBroker{
		rdb:     rdb,
		channel: channel,
		pubsub:  ps,
		hub:     NewHub(logger),
		logger:  logger,
	}
	b.wg.Add(1)
	go b.pump(ps.Channel())
	return b, nil
}

// Subscribe registers f on the local hub.
func (b *RedisBroker) Subscribe(f Filter) (*Subscription, error) {
	return b.hub.Subscribe(f)
}

// Publish sends ev to every instance listening on the channel.
func (b *RedisBroker) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("realtime.RedisBroker.Publish: encode: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("realtime.RedisBroker.Publish: %w", err)
	}
	return nil
}

// Ping checks the Redis connection and the local hub.
func (b *RedisBroker) Ping(ctx context.Context) error {
	if err := b.hub.Ping(ctx); err != nil {
		return err
	}
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("realtime.RedisBroker.Ping: %w", err)
	}
	return nil
}

// Close stops the pump and closes all local subscriptions.
// The Redis client stays open; it belongs to the caller.
func (b *RedisBroker) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.pubsub.Close()
		b.wg.Wait()
		_ = b.hub.Close()
	})
	return err
}

func (b *RedisBroker) pump(msgs <-chan *redis.Message) {
	defer b.wg.Done()
	for msg := range msgs {
		var ev domain.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			b.logger.Warn("discarding malformed change event", "channel", msg.Channel, "error", err)
			continue
		}
		if err := b.hub.Publish(context.Background(), ev); err != nil {
			return
		}
	}
}
