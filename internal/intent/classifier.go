package intent

import (
	"strings"
)

const DefaultIntent = "general_inquiry"

// Category pairs an intent label with the keywords that vote for it.
// Declaration order matters: ties keep the earliest category.
type Category struct {
	Label    string
	Keywords []string
}

// Classifier assigns a coarse intent label to free text by counting keyword
// hits. It is intentionally crude; callers must tolerate misclassification.
type Classifier struct {
	categories []Category
}

func NewClassifier(categories []Category) *Classifier {
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	return &Classifier{categories: categories}
}

// Classify returns the label whose keyword set has the strictly greatest
// number of case-insensitive substring matches in text. Empty text and
// zero-hit text both yield general_inquiry.
func (c *Classifier) Classify(text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultIntent
	}

	lowered := strings.ToLower(text)

	best := DefaultIntent
	bestScore := 0
	for _, category := range c.categories {
		score := 0
		for _, keyword := range category.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				score++
			}
		}
		if score > bestScore {
			best = category.Label
			bestScore = score
		}
	}

	return best
}

// Categories returns the declaration-ordered category labels.
func (c *Classifier) Categories() []string {
	labels := make([]string, 0, len(c.categories))
	for _, category := range c.categories {
		labels = append(labels, category.Label)
	}
	return labels
}

// DefaultCategories covers the loyalty-support domain the simulator targets.
func DefaultCategories() []Category {
	return []Category{
		{
			Label:    "missing_points",
			Keywords: []string{"missing", "points", "didn't receive", "not credited", "purchase", "receipt"},
		},
		{
			Label:    "account_access",
			Keywords: []string{"login", "password", "locked", "sign in", "access", "account"},
		},
		{
			Label:    "reward_redemption",
			Keywords: []string{"redeem", "reward", "voucher", "coupon", "gift card", "expired"},
		},
		{
			Label:    "billing_issue",
			Keywords: []string{"charge", "billing", "refund", "double", "invoice", "payment"},
		},
		{
			Label:    "detail_request",
			Keywords: []string{"provide", "more information", "can you share", "which store", "when did"},
		},
	}
}
