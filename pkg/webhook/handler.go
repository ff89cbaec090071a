// Package webhook implements the Strava webhook endpoints: the one-shot
// subscription verification handshake and the event handler that fetches,
// retitles and updates activities.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oyvindhk/strava-retitler/pkg/content"
	"github.com/oyvindhk/strava-retitler/pkg/dedupe"
	"github.com/oyvindhk/strava-retitler/pkg/infrastructure/httputil"
	"github.com/oyvindhk/strava-retitler/pkg/infrastructure/oauth"
	"github.com/oyvindhk/strava-retitler/pkg/infrastructure/sentry"
	"github.com/oyvindhk/strava-retitler/pkg/llm"
	"github.com/oyvindhk/strava-retitler/pkg/strava"
)

// namePlaceholder is used when the fetched activity has no name.
const namePlaceholder = "Ukjent aktivitet"

// ActivityAPI is the outbound Strava surface the handler needs.
type ActivityAPI interface {
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	UpdateActivity(ctx context.Context, activityID int64, update *strava.ActivityUpdate) (*strava.Activity, error)
}

// Handler orchestrates webhook verification and event processing.
type Handler struct {
	VerifyToken string
	Tokens      oauth.TokenSource
	Guard       *dedupe.Guard
	Activities  ActivityAPI
	Selector    content.Selector
	Generator   llm.Client // optional, for the generator probe endpoint
	Logger      *slog.Logger
}

// Routes returns the router for all webhook endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/api/strava-webhook", h.Verify)
	r.Post("/api/strava-webhook", h.Event)
	r.Get("/api/generator-test", h.GeneratorTest)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	return r
}

// Verify handles the subscription verification handshake: echo the
// challenge when the mode is "subscribe" and the verify token matches.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && h.VerifyToken != "" && token == h.VerifyToken {
		h.Logger.Info("Webhook subscription verified")
		writeJSON(w, http.StatusOK, map[string]string{"hub.challenge": challenge})
		return
	}

	h.Logger.Warn("Webhook verification rejected", "mode", mode)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid verify token"})
}

// Event handles an inbound push notification. Only the activity fetch may
// surface a failure upstream; once the fetch succeeds the response is 200
// "OK" regardless of the update outcome, so Strava never retries because of
// a failure in the write-back half of the pipeline.
func (h *Handler) Event(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.Logger.With("event_id", uuid.NewString())

	var event strava.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		logger.Warn("Failed to parse webhook body", "error", err)
		writeText(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	logger.Info("Received Strava webhook",
		"object_type", event.ObjectType,
		"object_id", event.ObjectID,
		"aspect_type", event.AspectType,
	)

	if event.ObjectType != strava.ObjectTypeActivity {
		writeText(w, http.StatusOK, "ignored")
		return
	}

	if event.ObjectID == 0 {
		writeText(w, http.StatusBadRequest, "no activity id")
		return
	}

	key := dedupe.EventKey(event.ObjectID, event.AspectType)
	if h.Guard.Seen(key) {
		logger.Info("Duplicate event, skipping", "key", key)
		writeText(w, http.StatusOK, "duplicate")
		return
	}

	if event.AspectType != strava.AspectCreate && event.AspectType != strava.AspectUpdate {
		writeText(w, http.StatusOK, "ignored")
		return
	}

	if _, ok := h.Tokens.Token(ctx); !ok {
		logger.Error("No Strava access token available")
		writeText(w, http.StatusUnauthorized, "token missing")
		return
	}

	activity, err := h.Activities.GetActivity(ctx, event.ObjectID)
	if err != nil {
		logger.Error("Failed to fetch activity", "activity_id", event.ObjectID, "error", err)
		sentry.CaptureException(err, map[string]interface{}{"activity_id": event.ObjectID}, logger)

		status := http.StatusBadGateway
		var httpErr *httputil.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.StatusCode
		}
		writeText(w, status, "fetch failed")
		return
	}

	stats := content.Stats{
		Name:          activity.Name,
		DistanceKm:    activity.Distance / 1000,
		MovingTimeMin: float64(activity.MovingTime) / 60,
	}
	if stats.Name == "" {
		stats.Name = namePlaceholder
	}

	pair := h.Selector.Pick(ctx, stats)
	logger.Info("Updating activity",
		"activity_id", event.ObjectID,
		"title", pair.Title,
		"distance_km", stats.DistanceKm,
		"moving_time_min", stats.MovingTimeMin,
	)

	if _, err := h.Activities.UpdateActivity(ctx, event.ObjectID, &strava.ActivityUpdate{
		Name:        pair.Title,
		Description: pair.Description,
	}); err != nil {
		// Logged only; the webhook caller still gets 200 "OK".
		logger.Error("Failed to update activity", "activity_id", event.ObjectID, "error", err)
		sentry.CaptureException(err, map[string]interface{}{"activity_id": event.ObjectID}, logger)
	} else {
		logger.Info("Activity updated", "activity_id", event.ObjectID)
	}

	writeText(w, http.StatusOK, "OK")
}

// GeneratorTest probes the configured text generator with a trivial prompt.
func (h *Handler) GeneratorTest(w http.ResponseWriter, r *http.Request) {
	if h.Generator == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "text generator not configured"})
		return
	}

	text, err := h.Generator.Complete(r.Context(), llm.Request{
		Prompt:    "Si hei på norsk",
		MaxTokens: 60,
	})
	if err != nil {
		h.Logger.Error("Generator probe failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if len(text) > 300 {
		text = text[:300]
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  h.Generator.Model(),
		"text":   text,
	})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
