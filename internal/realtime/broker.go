package realtime

import (
	"context"

	"github.com/moonwavetravel/backend/internal/domain"
)

// Broker is implemented by Hub and RedisBroker.
type Broker interface {
	Subscribe(f Filter) (*Subscription, error)
	Publish(ctx context.Context, ev domain.ChangeEvent) error
	Close() error
	// Ping reports whether the broker can still deliver events.
	Ping(ctx context.Context) error
}

var (
	_ Broker = (*Hub)(nil)
	_ Broker = (*RedisBroker)(nil)
)
