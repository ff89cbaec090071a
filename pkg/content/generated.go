package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/oyvindhk/strava-retitler/pkg/llm"
)

const (
	// anchorProbability is the chance of constraining the title to a fixed
	// anchor quote, leaving only the description to the generator.
	anchorProbability = 0.7

	// titleMaxLen is the title length cap applied in the parse fallback.
	titleMaxLen = 60

	genTemperature = 0.8
	genMaxTokens   = 300
)

// anchorQuotes are the fixed titles used when the anchor branch is taken.
var anchorQuotes = []string{
	"Jeg trodde pushups var noe man kjøper på Rema.",
	"Det ser flatt ut på kartet, men kartet lyver!",
	"Dette er ikke tur – dette er terapi med bakker.",
}

// Generated produces the Pair through an ordered degradation chain:
// generated JSON, then first-line parse fallback, then the static bank.
// Pick never fails.
type Generated struct {
	client   llm.Client
	fallback *StaticBank
	logger   *slog.Logger

	// test seams; default to math/rand/v2
	chance func() float64
	intn   func(int) int
}

// NewGenerated creates a generating selector. A nil client is allowed and
// sends every pick straight to the static fallback.
func NewGenerated(client llm.Client, fallback *StaticBank, logger *slog.Logger) *Generated {
	return &Generated{
		client:   client,
		fallback: fallback,
		logger:   logger.With("component", "content-generator"),
		chance:   rand.Float64,
		intn:     rand.IntN,
	}
}

// Pick returns a generated Pair, degrading to the parse fallback and
// finally to the static bank.
func (g *Generated) Pick(ctx context.Context, stats Stats) Pair {
	if g.client == nil {
		g.logger.Warn("No text generator configured, using static bank")
		return g.fallback.Pick(ctx, stats)
	}

	anchor := ""
	if g.chance() < anchorProbability {
		anchor = anchorQuotes[g.intn(len(anchorQuotes))]
	}

	raw, err := g.client.Complete(ctx, llm.Request{
		Prompt:      buildPrompt(stats, anchor),
		Temperature: genTemperature,
		MaxTokens:   genMaxTokens,
	})
	if err != nil {
		g.logger.Error("Text generation failed, using static bank", "error", err)
		return g.fallback.Pick(ctx, stats)
	}

	pair, ok := parsePair(raw)
	if !ok {
		g.logger.Warn("Generated text was not valid JSON, using first-line fallback")
		return parseFallback(raw)
	}

	if anchor != "" {
		pair.Title = anchor
	}
	return pair
}

func buildPrompt(stats Stats, anchor string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You write Strava activity titles and descriptions in Norwegian, in a dry, bureaucratic deadpan tone.

Activity: %s
Distance: %.2f km
Moving time: %.1f minutes

`, stats.Name, stats.DistanceKm, stats.MovingTimeMin)

	if anchor != "" {
		fmt.Fprintf(&b, "The title must be exactly: %q\nWrite only a matching description (1-2 sentences).\n", anchor)
	} else {
		b.WriteString("Write a short humorous title (max 60 characters) and a matching description (1-2 sentences).\n")
	}

	b.WriteString(`Respond with JSON only, no markdown: {"title": "...", "description": "..."}`)
	return b.String()
}

// parsePair attempts to read the expected {title, description} JSON from the
// raw model output, tolerating markdown code fences.
func parsePair(raw string) (Pair, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Pair{}, false
	}
	if parsed.Title == "" && parsed.Description == "" {
		return Pair{}, false
	}

	return Pair{Title: parsed.Title, Description: parsed.Description}, true
}

// parseFallback salvages unparseable output: the first line becomes the
// title, capped at titleMaxLen runes, and the trimmed text the description.
func parseFallback(raw string) Pair {
	trimmed := strings.TrimSpace(raw)

	firstLine, _, _ := strings.Cut(trimmed, "\n")
	title := []rune(strings.TrimSpace(firstLine))
	if len(title) > titleMaxLen {
		title = title[:titleMaxLen]
	}

	return Pair{Title: string(title), Description: trimmed}
}
