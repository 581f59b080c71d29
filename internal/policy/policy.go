package policy

import (
	"context"

	"github.com/opscore/support-sim/internal/models"
)

// Store fetches policy documents by title. A nil document with a nil error
// means the title is unknown; callers substitute the default policy.
type Store interface {
	Fetch(ctx context.Context, title string) (*models.PolicyDocument, error)
}

// DefaultPolicy is the hardcoded substitute used when the policy store is
// unreachable or has no document for the requested title.
func DefaultPolicy() *models.PolicyDocument {
	return &models.PolicyDocument{
		Title: "general-support",
		Procedures: []string{
			"Greet the customer and acknowledge the issue",
			"Collect store, date, and amount before acting",
			"Offer a concrete correction with a timeframe",
			"Confirm resolution before closing",
		},
		Policies: models.PolicyDetails{
			Timeframes:   []string{"3 business days", "24 hours"},
			Requirements: []string{"receipt or transaction id", "account email"},
		},
		Templates: []string{
			"I can re-credit the adjustment within 3 business days.",
		},
		EscalationTriggers: []string{"supervisor", "chargeback", "legal"},
	}
}
