package generator

import (
	"context"

	"github.com/opscore/support-sim/internal/models"
)

// Situation tags select which family of canned or prompted responses applies.
type Situation string

const (
	SituationGreeting            Situation = "greeting"
	SituationStateIssue          Situation = "state_issue"
	SituationProvideDetails      Situation = "provide_details"
	SituationAcceptSolution      Situation = "accept_solution"
	SituationSkeptical           Situation = "skeptical"
	SituationRequestSpecifics    Situation = "request_specifics"
	SituationAskTimeframe        Situation = "ask_timeframe"
	SituationAcknowledgeTimeline Situation = "acknowledge_timeline"
	SituationGratitude           Situation = "gratitude"
	SituationEscalate            Situation = "escalate"
	SituationFrustrated          Situation = "frustrated"
	SituationContinue            Situation = "continue"

	SituationAskDetails    Situation = "ask_details"
	SituationOfferSolution Situation = "offer_solution"
	SituationAcknowledge   Situation = "acknowledge"
	SituationGenericReply  Situation = "generic_reply"
)

// Prompt carries everything a strategy needs to produce one utterance.
type Prompt struct {
	Role        models.Speaker
	Situation   Situation
	Persona     string
	Category    string
	State       models.ConversationState
	LastMessage string
	Hints       []string
	Details     string
	Timeline    string
}

// Generator produces one utterance for the given role and situation.
// Implementations must never return an empty string alongside a nil error.
type Generator interface {
	Respond(ctx context.Context, p Prompt) (string, error)
}
