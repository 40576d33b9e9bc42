package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":5000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":5000")
	}
	if cfg.AccessTokenTTL != "2h" {
		t.Errorf("AccessTokenTTL = %q, want %q", cfg.AccessTokenTTL, "2h")
	}
	if cfg.RefreshTokenTTL != "720h" {
		t.Errorf("RefreshTokenTTL = %q, want %q", cfg.RefreshTokenTTL, "720h")
	}
	if cfg.OTPMaxAttempts != 5 {
		t.Errorf("OTPMaxAttempts = %d, want 5", cfg.OTPMaxAttempts)
	}
	if cfg.OTPExpiryWindow() != 5*time.Minute {
		t.Errorf("OTPExpiryWindow = %v, want 5m", cfg.OTPExpiryWindow())
	}
	if cfg.OTPResendWindow() != 60*time.Second {
		t.Errorf("OTPResendWindow = %v, want 60s", cfg.OTPResendWindow())
	}
	if cfg.DevMode {
		t.Error("DevMode should default to false")
	}
	if cfg.AnalysisWorkers != 4 || cfg.AnalysisQueueSize != 64 {
		t.Errorf("analysis pool defaults = %d/%d, want 4/64", cfg.AnalysisWorkers, cfg.AnalysisQueueSize)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()
	if _, err := Load(); err == nil {
		t.Fatal("Load without JWT_SECRET should fail")
	}
}

func TestLoad_DevModeInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("DEV_MODE", "true")
	os.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Fatal("Load with DEV_MODE in production should fail")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("ACCESS_TOKEN_TTL", "30m")
	os.Setenv("OTP_RESEND_INTERVAL", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.AccessTTL() != 30*time.Minute {
		t.Errorf("AccessTTL = %v, want 30m", cfg.AccessTTL())
	}
	if cfg.OTPResendWindow() != 10*time.Second {
		t.Errorf("OTPResendWindow = %v, want 10s", cfg.OTPResendWindow())
	}
}

func TestTTL_FallbackOnGarbage(t *testing.T) {
	cfg := &Config{AccessTokenTTL: "not-a-duration", RefreshTokenTTL: "-1h"}
	if cfg.AccessTTL() != 2*time.Hour {
		t.Errorf("AccessTTL fallback = %v, want 2h", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 720*time.Hour {
		t.Errorf("RefreshTTL fallback = %v, want 720h", cfg.RefreshTTL())
	}
}
