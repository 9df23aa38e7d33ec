package config

import (
	"testing"
	"time"
)

func TestLoadReadsRequiredAndDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "catalog")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "kinosite")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("DB_AUTO_MIGRATE", "off")

	cfg := Load()
	if cfg.Port != "8080" || cfg.DBName != "kinosite" || cfg.DBPass != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AccessTTLMin != 15 || cfg.RefreshTTLDays != 7 || cfg.BcryptCost != 4 {
		t.Fatalf("unexpected numeric values: %+v", cfg)
	}
	if cfg.AutoMigrate {
		t.Fatal("DB_AUTO_MIGRATE=off should disable migrations")
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"yes", false, true},
		{"ON", false, true},
		{"0", true, false},
		{"False", true, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		t.Setenv("X_FLAG", tc.val)
		if got := envBool("X_FLAG", tc.def); got != tc.want {
			t.Errorf("envBool(%q, %v) = %v, want %v", tc.val, tc.def, got, tc.want)
		}
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 {
		t.Fatalf("capacity/refill not clamped: %+v", cfg)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("ttl = %s, want 10s", cfg.TTL)
	}
}

func TestLoadQueueConfigFallsBackToAMQPURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	cfg := LoadQueueConfig()
	if cfg.URL != "amqp://u:p@broker:5672/" {
		t.Fatalf("url = %q", cfg.URL)
	}
	if cfg.Queue != "catalog.changed" {
		t.Fatalf("queue = %q", cfg.Queue)
	}
}
