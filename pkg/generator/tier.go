// Package generator runs the ordered tier chain that turns a
// GenerationContext into a slug.
package generator

import (
	"context"

	"github.com/dtnitsch/linkslug/models"
)

// Tier is one stage of the chain. Attempt returns nil when the tier has
// nothing to offer; errors are logged inside the tier, never returned.
type Tier interface {
	Name() models.Tier
	// Transient tiers depend on a remote capability and may produce a
	// different result when attempted again.
	Transient() bool
	Attempt(ctx context.Context, gc *models.GenerationContext) *models.Candidate
}

// Recorder observes tier outcomes. pkg/metrics provides the Prometheus one.
type Recorder interface {
	TierOutcome(tier models.Tier, outcome string)
}

// Tier outcomes reported to the Recorder.
const (
	OutcomeAccepted    = "accepted"
	OutcomeProvisional = "provisional"
	OutcomeRejected    = "rejected"
	OutcomeEmpty       = "empty"
)

type nopRecorder struct{}

func (nopRecorder) TierOutcome(models.Tier, string) {}
