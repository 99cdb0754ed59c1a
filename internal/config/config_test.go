package config

import (
	"testing"
	"time"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "test-access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredSecrets(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, want 5432", cfg.DBPort)
	}
	if cfg.DBName != "identityhub" {
		t.Errorf("DBName = %q, want identityhub", cfg.DBName)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 168h", cfg.RefreshTokenTTL)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = false, want true")
	}
	if cfg.MaxRequestBodySize != 1<<20 {
		t.Errorf("MaxRequestBodySize = %d, want %d", cfg.MaxRequestBodySize, 1<<20)
	}
	if !cfg.SecurityHeaders.Enabled {
		t.Error("SecurityHeaders.Enabled = false, want true")
	}
	if cfg.SecurityHeaders.ContentTypeOptions != "nosniff" {
		t.Errorf("SecurityHeaders.ContentTypeOptions = %q, want nosniff", cfg.SecurityHeaders.ContentTypeOptions)
	}
	if cfg.SecurityHeaders.FrameOptions != "DENY" {
		t.Errorf("SecurityHeaders.FrameOptions = %q, want DENY", cfg.SecurityHeaders.FrameOptions)
	}
	if cfg.SecurityHeaders.HSTSMaxAge != 0 {
		t.Errorf("SecurityHeaders.HSTSMaxAge = %d, want 0", cfg.SecurityHeaders.HSTSMaxAge)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 5m", cfg.AccessTokenTTL)
	}
	want := []string{"https://app.example.com", "https://staging.example.com"}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = true, want false")
	}
}

func TestLoadSecretValidation(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
	}{
		{"missing access secret", "", "refresh-secret"},
		{"missing refresh secret", "access-secret", ""},
		{"identical secrets", "same-secret", "same-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ACCESS_TOKEN_SECRET", tt.accessSecret)
			t.Setenv("REFRESH_TOKEN_SECRET", tt.refreshSecret)

			if _, err := Load(); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want default 8080", cfg.ServerPort)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want default 15m", cfg.AccessTokenTTL)
	}
}
