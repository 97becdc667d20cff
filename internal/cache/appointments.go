// Package cache holds the Redis snapshot cache for calendar reads.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowdoc/clinic-platform/internal/appointments"
)

const defaultTTL = 5 * time.Minute

// AppointmentCache caches the joined appointment list per clinician.
// A nil *AppointmentCache is a valid no-op cache, so callers can run
// without Redis configured.
type AppointmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAppointmentCache creates a cache over the given Redis client.
func NewAppointmentCache(client *redis.Client, ttl time.Duration) *AppointmentCache {
	if client == nil {
		panic("cache: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &AppointmentCache{client: client, ttl: ttl}
}

func appointmentsKey(clinicianID string) string {
	return fmt.Sprintf("calendar:appointments:%s", clinicianID)
}

// Get returns the cached appointment list for the clinician. The second
// return value is false on a miss, a decode failure or any Redis error;
// the caller falls through to the store in all three cases.
func (c *AppointmentCache) Get(ctx context.Context, clinicianID string) ([]appointments.Appointment, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, appointmentsKey(clinicianID)).Bytes()
	if err != nil {
		return nil, false
	}
	var appts []appointments.Appointment
	if err := json.Unmarshal(data, &appts); err != nil {
		return nil, false
	}
	return appts, true
}

// Set stores the appointment list under the configured TTL.
func (c *AppointmentCache) Set(ctx context.Context, clinicianID string, appts []appointments.Appointment) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(appts)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal appointments: %w", err)
	}
	if err := c.client.Set(ctx, appointmentsKey(clinicianID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to store appointments: %w", err)
	}
	return nil
}

// Invalidate drops the cached list after a mutation.
func (c *AppointmentCache) Invalidate(ctx context.Context, clinicianID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, appointmentsKey(clinicianID)).Err(); err != nil {
		return fmt.Errorf("cache: failed to invalidate appointments: %w", err)
	}
	return nil
}
