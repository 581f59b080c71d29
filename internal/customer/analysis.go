package customer

import (
	"regexp"
	"strings"
)

// MessageAnalysis is what the customer inferred from one agent message.
type MessageAnalysis struct {
	AsksForDetails      bool
	OffersSolution      bool
	Acknowledges        bool
	Timeline            string
	AsksToWait          bool
	MentionsEscalation  bool
	IndicatesResolution bool
	IsGeneric           bool
}

var timelinePattern = regexp.MustCompile(`(?i)(\d+)\s*(business day|minute|hour|day|week)s?`)

var (
	detailKeywords = []string{
		"provide", "more information", "more details", "can you share",
		"could you share", "which store", "when did", "what was the",
	}
	solutionKeywords = []string{
		"i can ", "i'll ", "i will ", "we can ", "we'll ", "we will ",
		"re-credit", "open a ticket", "reset your", "issue a refund",
	}
	acknowledgeKeywords = []string{"understand", "sorry", "apologize"}
	waitKeywords        = []string{"please wait", "bear with", "hold on", "be patient", "give us some time"}
	escalationKeywords  = []string{"supervisor", "manager", "escalate"}
	resolutionKeywords  = []string{"resolved", "fixed", "credited"}
	boilerplatePhrases  = []string{
		"here to help", "value your", "thank you for contacting",
		"how can i help", "we appreciate", "is there anything else",
	}
)

const genericLengthLimit = 80

// Analyze runs the keyword heuristics over one agent message.
// Pure function; deliberately crude, the state machine tolerates misses.
func Analyze(text string) MessageAnalysis {
	lowered := strings.ToLower(text)

	analysis := MessageAnalysis{
		AsksForDetails:      containsAny(lowered, detailKeywords),
		OffersSolution:      containsAny(lowered, solutionKeywords),
		Acknowledges:        containsAny(lowered, acknowledgeKeywords),
		AsksToWait:          containsAny(lowered, waitKeywords),
		MentionsEscalation:  containsAny(lowered, escalationKeywords),
		IndicatesResolution: containsAny(lowered, resolutionKeywords),
	}

	if match := timelinePattern.FindString(text); match != "" {
		analysis.Timeline = match
	}

	// Short boilerplate with no substance reads as a generic brush-off.
	if len(text) < genericLengthLimit && containsAny(lowered, boilerplatePhrases) &&
		!analysis.AsksForDetails && !analysis.OffersSolution && !analysis.IndicatesResolution {
		analysis.IsGeneric = true
	}

	return analysis
}

func containsAny(lowered string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
