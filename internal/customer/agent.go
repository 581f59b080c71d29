package customer

import (
	"context"
	"math/rand"

	"github.com/opscore/support-sim/internal/details"
	"github.com/opscore/support-sim/internal/generator"
	"github.com/opscore/support-sim/internal/models"
	"github.com/rs/zerolog"
)

const (
	frustrationRelief  = 0.2
	frustrationPenalty = 0.3
	acceptProbability  = 0.7
)

// Expectation labels describe what the customer is waiting for next.
const (
	ExpectSolution     = "solution"
	ExpectResolution   = "resolution"
	ExpectSpecificHelp = "specific_help"
	ExpectTimeline     = "timeline"
	ExpectSupervisor   = "supervisor"
	ExpectNothing      = "none"
	ExpectReply        = "agent_reply"
)

// Persona is a named behavioral profile for the simulated customer.
type Persona struct {
	Name               string  `yaml:"name"`
	Description        string  `yaml:"description"`
	InitialFrustration float64 `yaml:"initial_frustration"`
}

// Reaction is the outcome of one customer turn.
type Reaction struct {
	Response        string
	State           models.ConversationState
	ShouldContinue  bool
	NextExpectation string
}

// Agent owns one conversation's customer state. Not safe for concurrent use;
// a conversation drives exactly one agent.
type Agent struct {
	persona  Persona
	category string
	maxTurns int

	state  models.ConversationState
	memory *models.ConversationMemory

	gen       generator.Generator
	fallback  *generator.TemplateGenerator
	detailTab *details.Table
	rng       *rand.Rand
	logger    *zerolog.Logger
}

func NewAgent(
	persona Persona,
	category string,
	maxTurns int,
	gen generator.Generator,
	fallback *generator.TemplateGenerator,
	detailTab *details.Table,
	rng *rand.Rand,
	logger *zerolog.Logger,
) *Agent {
	return &Agent{
		persona:  persona,
		category: category,
		maxTurns: maxTurns,
		state: models.ConversationState{
			FrustrationLevel: clamp(persona.InitialFrustration),
		},
		memory:    models.NewConversationMemory(),
		gen:       gen,
		fallback:  fallback,
		detailTab: detailTab,
		rng:       rng,
		logger:    logger,
	}
}

// State returns a snapshot copy of the current conversation state.
func (a *Agent) State() models.ConversationState {
	return a.state
}

// React processes one agent message: analyze it, update state, and produce
// the customer's next utterance. Generation failures fall back to templates,
// so a conversation never aborts here.
func (a *Agent) React(ctx context.Context, agentMessage string) Reaction {
	a.state.Turn++

	analysis := Analyze(agentMessage)
	a.applyStateUpdates(agentMessage, analysis)

	situation, prompt := a.selectSituation(analysis)
	prompt.Role = models.SpeakerCustomer
	prompt.Situation = situation
	prompt.Persona = a.persona.Description
	prompt.State = a.state
	prompt.LastMessage = agentMessage

	response, err := a.gen.Respond(ctx, prompt)
	if err != nil || response == "" {
		a.logger.Warn().Err(err).Str("situation", string(situation)).
			Msg("customer generation failed, using template fallback")
		response, _ = a.fallback.Respond(ctx, prompt)
	}

	return Reaction{
		Response:        response,
		State:           a.state,
		ShouldContinue:  !a.state.Satisfied && a.state.Turn < a.maxTurns,
		NextExpectation: a.expectationFor(situation),
	}
}

func (a *Agent) applyStateUpdates(agentMessage string, analysis MessageAnalysis) {
	if analysis.Acknowledges || analysis.OffersSolution {
		a.state.FrustrationLevel = clamp(a.state.FrustrationLevel - frustrationRelief)
	}
	// The opening greeting is allowed to be boilerplate without penalty.
	if a.state.Turn > 1 && (analysis.IsGeneric || (analysis.AsksToWait && analysis.Timeline == "")) {
		a.state.FrustrationLevel = clamp(a.state.FrustrationLevel + frustrationPenalty)
	}

	// The agent offering to escalate answers the customer's demand. The
	// pressure resets and can build up again if nothing improves.
	if analysis.MentionsEscalation && a.state.EscalationRequested {
		a.state.EscalationRequested = false
		a.state.WaitingForAction = true
		a.state.FrustrationLevel = clamp(a.state.FrustrationLevel - frustrationRelief)
	}

	if analysis.AsksForDetails {
		a.state.WaitingForAction = false
	}
	if analysis.OffersSolution {
		a.state.ReceivedSolution = true
		a.memory.SolutionsOffered = append(a.memory.SolutionsOffered, agentMessage)
	}
	if analysis.Timeline != "" {
		a.memory.LastTimeline = analysis.Timeline
	}
	if analysis.IndicatesResolution {
		a.state.Satisfied = true
		a.state.SolutionAccepted = true
	}
}

// selectSituation walks the reaction priority ladder; order matters, a
// detail request outranks everything else in the message.
func (a *Agent) selectSituation(analysis MessageAnalysis) (generator.Situation, generator.Prompt) {
	var prompt generator.Prompt

	switch {
	case analysis.AsksForDetails && !a.state.HasProvidedDetails:
		a.state.HasProvidedDetails = true
		detail := a.detailTab.Pick(a.category)
		a.memory.DetailsShared[a.category] = detail
		prompt.Details = detail
		return generator.SituationProvideDetails, prompt

	case analysis.OffersSolution:
		if a.state.SolutionAccepted {
			return generator.SituationAcceptSolution, prompt
		}
		if a.rng.Float64() < acceptProbability {
			a.state.SolutionAccepted = true
			a.state.WaitingForAction = true
			return generator.SituationAcceptSolution, prompt
		}
		return generator.SituationSkeptical, prompt

	case analysis.IsGeneric && a.state.Turn > 1:
		return generator.SituationRequestSpecifics, prompt

	case analysis.AsksToWait:
		if a.memory.LastTimeline != "" {
			prompt.Timeline = a.memory.LastTimeline
			return generator.SituationAcknowledgeTimeline, prompt
		}
		return generator.SituationAskTimeframe, prompt

	case analysis.IndicatesResolution:
		return generator.SituationGratitude, prompt

	case a.state.FrustrationLevel > 0.7 && !analysis.MentionsEscalation:
		if !a.state.EscalationRequested {
			a.state.EscalationRequested = true
			return generator.SituationEscalate, prompt
		}
		return generator.SituationFrustrated, prompt

	// The first agent message with nothing actionable in it is the greeting;
	// the customer opens by stating the problem.
	case a.state.Turn == 1:
		prompt.Category = a.category
		return generator.SituationStateIssue, prompt

	default:
		return generator.SituationContinue, prompt
	}
}

func (a *Agent) expectationFor(situation generator.Situation) string {
	if a.state.Satisfied {
		return ExpectNothing
	}

	switch situation {
	case generator.SituationProvideDetails:
		return ExpectSolution
	case generator.SituationAcceptSolution:
		return ExpectResolution
	case generator.SituationSkeptical, generator.SituationRequestSpecifics:
		return ExpectSpecificHelp
	case generator.SituationAskTimeframe:
		return ExpectTimeline
	case generator.SituationAcknowledgeTimeline:
		return ExpectResolution
	case generator.SituationEscalate:
		return ExpectSupervisor
	default:
		return ExpectReply
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
