package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/realtime"
	"github.com/moonwavetravel/backend/testutil"
)

func TestRedisBroker_FanOutAcrossInstances(t *testing.T) {
	rdb := testutil.NewRedisClient(t)
	ctx := context.Background()
	channel := "moonwave:test:" + uuid.NewString()

	a, err := realtime.NewRedisBroker(ctx, rdb, channel, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	b, err := realtime.NewRedisBroker(ctx, rdb, channel, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, a.Ping(ctx))

	trip := uuid.New()
	sub, err := b.Subscribe(realtime.ByTrip(domain.TablePlans, trip))
	require.NoError(t, err)

	ev := domain.ChangeEvent{
		Table:    domain.TablePlans,
		Kind:     domain.ChangeInsert,
		RecordID: uuid.New(),
		TripID:   trip,
		At:       time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, a.Publish(ctx, ev))

	got := receive(t, sub)
	assert.Equal(t, ev.RecordID, got.RecordID)
	assert.True(t, ev.At.Equal(got.At))
}
