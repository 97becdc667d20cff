package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdoc/clinic-platform/internal/appointments"
)

func newTestCache(t *testing.T) (*AppointmentCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAppointmentCache(client, time.Minute), mr
}

func TestAppointmentCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	appts := []appointments.Appointment{
		{ID: "a1", Date: "2024-03-11", StartTime: "09:00", EndTime: "09:50", Status: appointments.StatusScheduled},
		{ID: "a2", Date: "2024-03-12", StartTime: "10:00", EndTime: "11:00", Status: appointments.StatusConfirmed},
	}
	require.NoError(t, c.Set(ctx, "dr-1", appts))

	got, ok := c.Get(ctx, "dr-1")
	require.True(t, ok, "expected cache hit")
	assert.Equal(t, appts, got)
}

func TestAppointmentCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Get(context.Background(), "dr-unknown")
	assert.False(t, ok, "expected cache miss for unknown clinician")
}

func TestAppointmentCacheKeysAreScopedPerClinician(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dr-1", []appointments.Appointment{{ID: "a1"}}))

	_, ok := c.Get(ctx, "dr-2")
	assert.False(t, ok, "expected miss for a different clinician")
}

func TestAppointmentCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dr-1", []appointments.Appointment{{ID: "a1"}}))
	require.NoError(t, c.Invalidate(ctx, "dr-1"))

	_, ok := c.Get(ctx, "dr-1")
	assert.False(t, ok, "expected miss after invalidation")
}

func TestAppointmentCacheEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dr-1", []appointments.Appointment{{ID: "a1"}}))
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "dr-1")
	assert.False(t, ok, "expected miss after TTL expiry")
}

func TestAppointmentCacheCorruptPayloadIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("calendar:appointments:dr-1", "{not json"))

	_, ok := c.Get(context.Background(), "dr-1")
	assert.False(t, ok, "corrupt payload must fall through to the store")
}

func TestNilAppointmentCacheIsNoOp(t *testing.T) {
	var c *AppointmentCache
	ctx := context.Background()

	_, ok := c.Get(ctx, "dr-1")
	assert.False(t, ok, "nil cache must always miss")
	assert.NoError(t, c.Set(ctx, "dr-1", nil))
	assert.NoError(t, c.Invalidate(ctx, "dr-1"))
}
