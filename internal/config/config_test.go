package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreTimeout != 10*time.Second {
		t.Errorf("StoreTimeout = %s, want 10s", cfg.StoreTimeout)
	}
	if cfg.CalendarDayStart != "08:00" {
		t.Errorf("CalendarDayStart = %q, want 08:00", cfg.CalendarDayStart)
	}
	if cfg.DefaultViewType != "week" {
		t.Errorf("DefaultViewType = %q, want week", cfg.DefaultViewType)
	}
	if cfg.RecordNumberSuffix != "PSI" {
		t.Errorf("RecordNumberSuffix = %q, want PSI", cfg.RecordNumberSuffix)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("RateLimitBurst = %d, want 20", cfg.RateLimitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("CALENDAR_DAY_START", "07:30")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Errorf("StoreTimeout = %s, want 3s", cfg.StoreTimeout)
	}
	if cfg.CalendarDayStart != "07:30" {
		t.Errorf("CalendarDayStart = %q, want 07:30", cfg.CalendarDayStart)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS should be true")
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Errorf("RateLimitPerSecond = %v, want 2.5", cfg.RateLimitPerSecond)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.com" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "not-a-duration")
	t.Setenv("RATE_LIMIT_BURST", "abc")

	cfg := Load()

	if cfg.StoreTimeout != 10*time.Second {
		t.Errorf("StoreTimeout = %s, want default 10s", cfg.StoreTimeout)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("RateLimitBurst = %d, want default 20", cfg.RateLimitBurst)
	}
}
