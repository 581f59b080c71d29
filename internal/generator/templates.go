package generator

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/opscore/support-sim/internal/models"
)

// TemplateGenerator picks uniformly among the canned options for a role and
// situation. Deterministic given a fixed random source.
type TemplateGenerator struct {
	rng       *rand.Rand
	templates map[models.Speaker]map[Situation][]string
	openers   map[string][]string
}

func NewTemplateGenerator(rng *rand.Rand) *TemplateGenerator {
	return &TemplateGenerator{
		rng:       rng,
		templates: defaultTemplates(),
		openers:   defaultOpeners(),
	}
}

func (g *TemplateGenerator) Respond(_ context.Context, p Prompt) (string, error) {
	if p.Situation == SituationStateIssue {
		return g.opener(p.Category), nil
	}

	options := g.templates[p.Role][p.Situation]
	if len(options) == 0 {
		options = g.templates[p.Role][SituationContinue]
	}
	if len(options) == 0 {
		return "Could you tell me more about that?", nil
	}

	text := options[g.rng.Intn(len(options))]

	switch p.Situation {
	case SituationProvideDetails:
		if p.Details != "" {
			text = fmt.Sprintf(text, p.Details)
		}
	case SituationAcknowledgeTimeline:
		if p.Timeline != "" {
			text = fmt.Sprintf(text, p.Timeline)
		}
	}

	return text, nil
}

func (g *TemplateGenerator) opener(category string) string {
	options := g.openers[category]
	if len(options) == 0 {
		options = g.openers["general_inquiry"]
	}
	return options[g.rng.Intn(len(options))]
}

// defaultOpeners are the customer's first statement of the problem, vague on
// purpose: the agent is supposed to have to ask for specifics.
func defaultOpeners() map[string][]string {
	return map[string][]string{
		"missing_points": {
			"Hi, my loyalty points are missing from a recent purchase.",
			"I have a problem: points from my last purchase were never credited.",
		},
		"account_access": {
			"I can't sign in, my account seems to be locked.",
			"I'm having an issue with my login, it keeps rejecting my password.",
		},
		"reward_redemption": {
			"I tried to redeem a reward and it failed, but my points are gone.",
			"There's a problem with a voucher code I tried to use.",
		},
		"billing_issue": {
			"I think I was charged incorrectly on my last statement.",
			"I have a billing issue: there's a charge I don't recognize.",
		},
		"general_inquiry": {
			"I have a question about my account, can you help with it?",
			"I need some help with an issue on my account.",
		},
	}
}

func defaultTemplates() map[models.Speaker]map[Situation][]string {
	return map[models.Speaker]map[Situation][]string{
		models.SpeakerCustomer: {
			SituationProvideDetails: {
				"Sure. %s",
				"Of course, here is what happened: %s",
				"Happy to share. %s",
			},
			SituationAcceptSolution: {
				"Okay, that sounds reasonable. Let's try that.",
				"Alright, I'll go with that. Please proceed.",
				"Fine, that works for me.",
			},
			SituationSkeptical: {
				"I'm not sure that will actually fix it. Can you explain how?",
				"I've heard that before and it didn't help. Is there anything else?",
				"Are you certain that resolves my issue and not just a workaround?",
			},
			SituationRequestSpecifics: {
				"That's quite generic. Can you give me specific steps for my case?",
				"I need something concrete, not a canned answer. What exactly will you do?",
				"Please be specific: what does that mean for my account?",
			},
			SituationAskTimeframe: {
				"How long will that take exactly?",
				"Can you give me a concrete timeframe?",
				"When should I expect this to be done?",
			},
			SituationAcknowledgeTimeline: {
				"Alright, %s it is. If it's not sorted by then I expect this escalated.",
				"Fine, I'll wait %s, but if nothing changes I want a supervisor involved.",
			},
			SituationGratitude: {
				"Thank you, that resolves my issue. I appreciate the help.",
				"Great, that's exactly what I needed. Thanks!",
				"Perfect, thanks for sorting that out.",
			},
			SituationEscalate: {
				"This is going nowhere. I want to speak to a supervisor.",
				"Please escalate this to your manager right now.",
			},
			SituationFrustrated: {
				"Honestly, this is getting frustrating. We keep going in circles.",
				"I've spent way too long on this already. Can we get somewhere?",
			},
			SituationContinue: {
				"Okay. What do you need from me next?",
				"Understood. What happens now?",
				"Go on, I'm listening.",
			},
		},
		models.SpeakerAgent: {
			SituationGreeting: {
				"Hello! Thanks for contacting support. How can I help you today?",
				"Hi there, you've reached customer support. What can I do for you?",
			},
			SituationAskDetails: {
				"Can you provide more information about your purchase, such as the store and amount?",
				"Could you share a few details so I can look into this — store, date, and amount?",
			},
			SituationOfferSolution: {
				"I can re-credit the missing points to your account within 3 business days.",
				"I'll open a correction ticket so the points post to your balance.",
			},
			SituationAcknowledge: {
				"I understand how inconvenient that is, and I'm sorry for the trouble.",
				"Sorry about that — I can see why that's frustrating.",
			},
			SituationGenericReply: {
				"I'm here to help.",
				"Thanks for reaching out. We value your feedback.",
			},
		},
	}
}
