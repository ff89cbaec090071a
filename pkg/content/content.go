// Package content selects the (title, description) pair written back to an
// activity, either from a static phrase bank or from a text-generation call
// that degrades to the bank on any failure.
package content

import "context"

// Pair is the title and description written back to the activity record.
type Pair struct {
	Title       string
	Description string
}

// Stats carries the activity details that parameterize generation.
type Stats struct {
	Name          string
	DistanceKm    float64
	MovingTimeMin float64
}

// Selector returns a usable Pair for the given activity. Implementations
// never fail: every degradation path ends in a concrete Pair.
type Selector interface {
	Pick(ctx context.Context, stats Stats) Pair
}
