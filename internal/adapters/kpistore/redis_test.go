package kpistore

import (
	"context"
	"freightflow/internal/kpi"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisCountersSnapshot(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	c := NewRedisCounters(client, "")

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, kpi.Snapshot{}, snap)

	require.NoError(t, c.Record(ctx, true, 10.0))
	require.NoError(t, c.Record(ctx, false, 5.0))

	snap, err = c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, snap.DelayPct)
	assert.InDelta(t, 15.0, snap.MoneySaved, 1e-9)
	assert.Equal(t, 2, snap.Routes)
}

func TestRedisCountersInstancesAreIsolated(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	a := NewRedisCounters(client, "")
	b := NewRedisCounters(client, "")
	assert.NotEqual(t, a.Key(), b.Key())

	require.NoError(t, a.Record(ctx, true, 1))
	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Routes)

	assert.Equal(t, "1", mr.HGet(a.Key(), "routes"))
}

func TestRedisCountersConcurrentRecords(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	c := NewRedisCounters(client, "freightflow:kpi:test")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Record(ctx, i%4 == 0, 0.5))
		}(i)
	}
	wg.Wait()

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Routes)
	assert.Equal(t, 0.25, snap.DelayPct)
	assert.InDelta(t, 10.0, snap.MoneySaved, 1e-9)
}

func TestRedisCountersBackTracker(t *testing.T) {
	client, _ := newTestClient(t)
	tracker := kpi.NewCumulative(NewRedisCounters(client, ""))
	assert.Equal(t, kpi.ModeCumulative, tracker.Mode())
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	require.Error(t, err)
}
