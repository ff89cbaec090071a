package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ContentMode != ContentModeStatic {
		t.Errorf("Expected default content mode static, got %s", cfg.ContentMode)
	}
	if cfg.SuppressionWindow != 5*time.Minute {
		t.Errorf("Expected default suppression window 5m, got %v", cfg.SuppressionWindow)
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("CONTENT_MODE", "GENERATED")
	t.Setenv("SUPPRESSION_WINDOW", "30s")
	t.Setenv("STRAVA_VERIFY_TOKEN", "hemmelig")

	cfg := LoadConfig()

	if cfg.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Port)
	}
	if cfg.ContentMode != ContentModeGenerated {
		t.Errorf("Expected content mode generated, got %s", cfg.ContentMode)
	}
	if cfg.SuppressionWindow != 30*time.Second {
		t.Errorf("Expected 30s suppression window, got %v", cfg.SuppressionWindow)
	}
	if cfg.VerifyToken != "hemmelig" {
		t.Errorf("Expected verify token from env, got %s", cfg.VerifyToken)
	}
}

func TestLoadConfig_InvalidWindowFallsBack(t *testing.T) {
	t.Setenv("SUPPRESSION_WINDOW", "soon-ish")

	cfg := LoadConfig()
	if cfg.SuppressionWindow != 5*time.Minute {
		t.Errorf("Expected fallback to 5m, got %v", cfg.SuppressionWindow)
	}
}

func TestNewService_DegradesWithoutCredentials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{
		Port:              "8080",
		ContentMode:       ContentModeGenerated,
		SuppressionWindow: time.Minute,
	}

	svc := NewService(context.Background(), cfg, logger)

	if svc.Generator != nil {
		t.Error("Expected no generator without API keys")
	}
	if svc.Selector == nil {
		t.Fatal("Selector must always be available")
	}
	if svc.Tokens == nil || svc.Guard == nil || svc.Strava == nil {
		t.Error("Core dependencies must be wired even without credentials")
	}
}
