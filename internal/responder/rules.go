package responder

import (
	"context"
	"strings"

	"github.com/opscore/support-sim/internal/generator"
	"github.com/opscore/support-sim/internal/intent"
	"github.com/opscore/support-sim/internal/models"
)

// rule maps trigger keywords in the customer message to an agent situation.
// First matching rule wins.
type rule struct {
	keywords  []string
	situation generator.Situation
}

// RuleResponder is the local keyword-triggered agent. It is the terminal
// fallback for every other responder, so it never fails.
type RuleResponder struct {
	rules      []rule
	gen        *generator.TemplateGenerator
	classifier *intent.Classifier
}

func NewRuleResponder(gen *generator.TemplateGenerator, classifier *intent.Classifier) *RuleResponder {
	return &RuleResponder{
		rules: []rule{
			{
				keywords:  []string{"works for me", "sounds reasonable", "please proceed", "go with that", "thank"},
				situation: generator.SituationOfferSolution,
			},
			{
				keywords:  []string{"supervisor", "manager", "frustrating", "going in circles"},
				situation: generator.SituationAcknowledge,
			},
			{
				keywords:  []string{"$", "receipt", "store", "transaction", "statement", "voucher code"},
				situation: generator.SituationOfferSolution,
			},
			{
				keywords:  []string{"how long", "timeframe", "when should", "concrete"},
				situation: generator.SituationOfferSolution,
			},
			{
				keywords:  []string{"hello", "hi ", "help with", "issue", "problem", "missing", "charged", "locked", "redeem"},
				situation: generator.SituationAskDetails,
			},
		},
		gen:        gen,
		classifier: classifier,
	}
}

func (r *RuleResponder) Respond(ctx context.Context, message string, _ string) (Reply, error) {
	lowered := strings.ToLower(message)

	situation := generator.SituationGenericReply
	confidence := 0.5
	for _, rule := range r.rules {
		if matchesAny(lowered, rule.keywords) {
			situation = rule.situation
			confidence = 0.9
			break
		}
	}

	// A customer accepting the offered fix gets the confirmation message.
	if situation == generator.SituationOfferSolution && matchesAny(lowered, []string{"works for me", "sounds reasonable", "please proceed", "go with that", "thank"}) {
		return Reply{
			Text:       "Great — I've applied the correction and your issue is now resolved. The points have been credited.",
			Intent:     r.classifier.Classify(message),
			Confidence: confidence,
		}, nil
	}

	text, err := r.gen.Respond(ctx, generator.Prompt{
		Role:      models.SpeakerAgent,
		Situation: situation,
	})
	if err != nil {
		text = "Thanks for the information, let me look into that for you."
	}

	return Reply{
		Text:       text,
		Intent:     r.classifier.Classify(message),
		Confidence: confidence,
	}, nil
}

func matchesAny(lowered string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
