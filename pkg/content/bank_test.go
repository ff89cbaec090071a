package content

import (
	"context"
	"testing"
)

func TestStaticBank_AllElementsReachable(t *testing.T) {
	titles := []string{"t1", "t2", "t3"}
	descriptions := []string{"d1", "d2", "d3"}
	bank := NewStaticBankFrom(titles, descriptions)

	seenTitles := map[string]bool{}
	seenDescriptions := map[string]bool{}
	for i := 0; i < 1000; i++ {
		pair := bank.Pick(context.Background(), Stats{})
		seenTitles[pair.Title] = true
		seenDescriptions[pair.Description] = true
	}

	for _, title := range titles {
		if !seenTitles[title] {
			t.Errorf("Title %q was never selected", title)
		}
	}
	for _, desc := range descriptions {
		if !seenDescriptions[desc] {
			t.Errorf("Description %q was never selected", desc)
		}
	}
}

func TestStaticBank_IndependentDraws(t *testing.T) {
	// With paired draws the title index would always match the description
	// index; independent draws must eventually produce a mismatch.
	titles := []string{"t0", "t1"}
	descriptions := []string{"d0", "d1"}
	bank := NewStaticBankFrom(titles, descriptions)

	for i := 0; i < 1000; i++ {
		pair := bank.Pick(context.Background(), Stats{})
		if pair.Title == "t0" && pair.Description == "d1" {
			return
		}
	}
	t.Error("Title and description appear to be drawn in lockstep")
}

func TestStaticBank_DefaultBanksNonEmpty(t *testing.T) {
	bank := NewStaticBank()
	pair := bank.Pick(context.Background(), Stats{})
	if pair.Title == "" || pair.Description == "" {
		t.Errorf("Default bank produced an empty pair: %+v", pair)
	}
}
