package details

import (
	"math/rand"
)

// Table supplies synthetic issue details per intent category, used when the
// agent under test asks the simulated customer for more information.
type Table struct {
	rng     *rand.Rand
	entries map[string][]string
}

func NewTable(rng *rand.Rand) *Table {
	return &Table{
		rng:     rng,
		entries: defaultEntries(),
	}
}

// Pick returns one detail string for the category, or a generic fallback for
// categories without a dedicated entry.
func (t *Table) Pick(category string) string {
	options := t.entries[category]
	if len(options) == 0 {
		options = t.entries["general_inquiry"]
	}
	return options[t.rng.Intn(len(options))]
}

func defaultEntries() map[string][]string {
	return map[string][]string{
		"missing_points": {
			"I made a purchase at Maple Street Market for $45.20 on Tuesday and the points never showed up.",
			"I spent $112.85 at Harbor Grocery last Friday, receipt number 88213, and got zero points.",
			"The transaction was at Westgate Pharmacy, $23.99, paid with my linked card, no points credited.",
		},
		"account_access": {
			"My email is on file, I reset the password twice and it still says my account is locked.",
			"I get an 'account suspended' banner every time I sign in, and I never received any warning email.",
		},
		"reward_redemption": {
			"I tried to redeem the $10 gift card yesterday and it errored out, but 2,000 points were deducted.",
			"The voucher code REWARD-2291 shows as expired even though the email said it was valid until next month.",
		},
		"billing_issue": {
			"I was charged twice for the same order, $67.40 each, on my statement dated the 14th.",
			"There's a $4.99 subscription fee on my card that I never signed up for.",
		},
		"general_inquiry": {
			"It happened three days ago and I haven't heard anything back since.",
			"This has been going on for about a week now.",
		},
	}
}
