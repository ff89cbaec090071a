// Package bootstrap wires up configuration, logging and the shared service
// dependencies used by the webhook handlers.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/oyvindhk/strava-retitler/pkg/content"
	"github.com/oyvindhk/strava-retitler/pkg/dedupe"
	"github.com/oyvindhk/strava-retitler/pkg/infrastructure/oauth"
	"github.com/oyvindhk/strava-retitler/pkg/llm"
	"github.com/oyvindhk/strava-retitler/pkg/strava"
)

// Content selection modes.
const (
	ContentModeStatic    = "static"
	ContentModeGenerated = "generated"
)

// Config holds all environment configuration, read once at startup.
// A missing credential is never fatal; components degrade individually.
type Config struct {
	Port string

	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string
	StravaAccessToken  string
	VerifyToken        string

	ContentMode  string
	LLMProvider  string
	LLMModel     string
	OpenAIAPIKey string
	GeminiAPIKey string

	SuppressionWindow time.Duration

	SentryDSN   string
	Environment string
}

// Service holds the initialized shared dependencies, injected into handlers
// instead of living as package-level state.
type Service struct {
	Config    *Config
	Logger    *slog.Logger
	Tokens    *oauth.TokenCache
	Guard     *dedupe.Guard
	Strava    *strava.Client
	Selector  content.Selector
	Generator llm.Client
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mode := strings.ToLower(os.Getenv("CONTENT_MODE"))
	if mode != ContentModeGenerated {
		mode = ContentModeStatic
	}

	window := 5 * time.Minute
	if raw := os.Getenv("SUPPRESSION_WINDOW"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			window = parsed
		} else {
			slog.Warn("Invalid SUPPRESSION_WINDOW, using default", "value", raw, "default", window)
		}
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "production"
	}

	return &Config{
		Port:               port,
		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaRefreshToken: os.Getenv("STRAVA_REFRESH_TOKEN"),
		StravaAccessToken:  os.Getenv("STRAVA_ACCESS_TOKEN"),
		VerifyToken:        os.Getenv("STRAVA_VERIFY_TOKEN"),
		ContentMode:        mode,
		LLMProvider:        strings.ToLower(os.Getenv("LLM_PROVIDER")),
		LLMModel:           os.Getenv("LLM_MODEL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		SuppressionWindow:  window,
		SentryDSN:          os.Getenv("SENTRY_DSN"),
		Environment:        env,
	}
}

// GetSlogHandlerOptions returns standard handler options for Cloud Logging
// compatible output (message/severity keys).
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler wraps a slog.Handler to prepend [component] to the message
// when a "component" attribute is present.
type ComponentHandler struct {
	slog.Handler
	component string
}

// WithGroup implements slog.Handler.
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{Handler: h.Handler.WithGroup(name), component: h.component}
}

// WithAttrs implements slog.Handler.
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	comp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			comp = a.Value.String()
		}
	}
	return &ComponentHandler{Handler: h.Handler.WithAttrs(attrs), component: comp}
}

// Handle implements slog.Handler.
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false
		}
		return true
	})

	if comp != "" {
		rec := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", comp, r.Message), r.PC)
		r.Attrs(func(a slog.Attr) bool {
			rec.AddAttrs(a)
			return true
		})
		r = rec
	}

	return h.Handler.Handle(ctx, r)
}

// NewLogger creates a configured logger instance. Log level comes from the
// LOG_LEVEL environment variable, defaulting to info.
func NewLogger(serviceName string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, GetSlogHandlerOptions(level))
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// NewService initializes all shared dependencies from the given config.
// Missing credentials are logged; the affected component degrades rather
// than failing startup.
func NewService(ctx context.Context, cfg *Config, logger *slog.Logger) *Service {
	if cfg.VerifyToken == "" {
		logger.Warn("STRAVA_VERIFY_TOKEN not set, subscription verification will reject all requests")
	}

	tokens := oauth.NewTokenCache(oauth.RefreshConfig{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RefreshToken: cfg.StravaRefreshToken,
	}, cfg.StravaAccessToken, logger)

	guard := dedupe.NewGuard(cfg.SuppressionWindow)

	stravaClient := strava.NewClient(&oauth.Transport{Source: tokens})

	var generator llm.Client
	if cfg.ContentMode == ContentModeGenerated || cfg.OpenAIAPIKey != "" || cfg.GeminiAPIKey != "" {
		client, err := llm.New(llm.Config{
			Provider:     cfg.LLMProvider,
			Model:        cfg.LLMModel,
			OpenAIAPIKey: cfg.OpenAIAPIKey,
			GeminiAPIKey: cfg.GeminiAPIKey,
		})
		if err != nil {
			logger.Warn("Text generator unavailable, content selection will fall back to the static bank", "error", err)
		} else {
			generator = client
		}
	}

	bank := content.NewStaticBank()
	var selector content.Selector = bank
	if cfg.ContentMode == ContentModeGenerated {
		selector = content.NewGenerated(generator, bank, logger)
	}

	logger.Info("Service initialized",
		"content_mode", cfg.ContentMode,
		"suppression_window", cfg.SuppressionWindow.String(),
		"generator_enabled", generator != nil,
	)

	return &Service{
		Config:    cfg,
		Logger:    logger,
		Tokens:    tokens,
		Guard:     guard,
		Strava:    stravaClient,
		Selector:  selector,
		Generator: generator,
	}
}
