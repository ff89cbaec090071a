package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/oyvindhk/strava-retitler/pkg/llm"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.prompts = append(f.prompts, req.Prompt)
	return f.response, f.err
}

func (f *fakeLLM) Model() string { return "fake" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerated(client llm.Client, anchored bool) *Generated {
	g := NewGenerated(client, NewStaticBankFrom([]string{"bank-title"}, []string{"bank-desc"}), discardLogger())
	if anchored {
		g.chance = func() float64 { return 0.0 }
		g.intn = func(int) int { return 0 }
	} else {
		g.chance = func() float64 { return 1.0 }
	}
	return g
}

func TestGenerated_ParsesStructuredResponse(t *testing.T) {
	client := &fakeLLM{response: `{"title": "Flott tur", "description": "Helt greit."}`}
	g := newTestGenerated(client, false)

	pair := g.Pick(context.Background(), Stats{Name: "Morning Run", DistanceKm: 5.0, MovingTimeMin: 30.0})
	if pair.Title != "Flott tur" {
		t.Errorf("Expected parsed title, got %q", pair.Title)
	}
	if pair.Description != "Helt greit." {
		t.Errorf("Expected parsed description, got %q", pair.Description)
	}
}

func TestGenerated_PromptCarriesActivityStats(t *testing.T) {
	client := &fakeLLM{response: `{"title": "x", "description": "y"}`}
	g := newTestGenerated(client, false)

	g.Pick(context.Background(), Stats{Name: "Morning Run", DistanceKm: 5.0, MovingTimeMin: 30.0})

	if len(client.prompts) != 1 {
		t.Fatalf("Expected one generation call, got %d", len(client.prompts))
	}
	prompt := client.prompts[0]
	for _, want := range []string{"Morning Run", "5.00 km", "30.0 minutes"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGenerated_ToleratesCodeFences(t *testing.T) {
	client := &fakeLLM{response: "```json\n{\"title\": \"Fenced\", \"description\": \"Body\"}\n```"}
	g := newTestGenerated(client, false)

	pair := g.Pick(context.Background(), Stats{})
	if pair.Title != "Fenced" || pair.Description != "Body" {
		t.Errorf("Expected fenced JSON to parse, got %+v", pair)
	}
}

func TestGenerated_ParseFallback(t *testing.T) {
	raw := "En veldig lang og fullstendig uparserbar tittel som bare fortsetter og fortsetter uten stans\nAndre linje her."
	client := &fakeLLM{response: raw}
	g := newTestGenerated(client, false)

	pair := g.Pick(context.Background(), Stats{})

	firstLine, _, _ := strings.Cut(raw, "\n")
	wantTitle := string([]rune(firstLine)[:60])
	if pair.Title != wantTitle {
		t.Errorf("Expected first line truncated to 60 runes:\n got %q\nwant %q", pair.Title, wantTitle)
	}
	if pair.Description != strings.TrimSpace(raw) {
		t.Errorf("Expected trimmed raw text as description, got %q", pair.Description)
	}
}

func TestGenerated_ErrorFallsBackToBank(t *testing.T) {
	client := &fakeLLM{err: errors.New("connection refused")}
	g := newTestGenerated(client, false)

	pair := g.Pick(context.Background(), Stats{})
	if pair.Title != "bank-title" || pair.Description != "bank-desc" {
		t.Errorf("Expected static fallback pair, got %+v", pair)
	}
}

func TestGenerated_NilClientFallsBackToBank(t *testing.T) {
	g := newTestGenerated(nil, false)

	pair := g.Pick(context.Background(), Stats{})
	if pair.Title != "bank-title" || pair.Description != "bank-desc" {
		t.Errorf("Expected static fallback pair, got %+v", pair)
	}
}

func TestGenerated_AnchorConstrainsTitle(t *testing.T) {
	client := &fakeLLM{response: `{"title": "ignored", "description": "Generert beskrivelse."}`}
	g := newTestGenerated(client, true)

	pair := g.Pick(context.Background(), Stats{})
	if pair.Title != anchorQuotes[0] {
		t.Errorf("Expected anchor quote as title, got %q", pair.Title)
	}
	if pair.Description != "Generert beskrivelse." {
		t.Errorf("Expected generated description, got %q", pair.Description)
	}

	if !strings.Contains(client.prompts[0], anchorQuotes[0]) {
		t.Error("Prompt should carry the anchor quote")
	}
}
