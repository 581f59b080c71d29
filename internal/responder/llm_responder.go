package responder

import (
	"context"
	"strings"

	"github.com/opscore/support-sim/internal/llm"
	"github.com/opscore/support-sim/internal/models"
	"github.com/rs/zerolog"
)

const (
	responderTemperature = 0.7
	responderMaxTokens   = 300
)

// LLMResponder plays the support agent with a text-generation model,
// optionally grounded in a policy document. Any model failure falls back
// to the rule-based responder and is logged as a warning.
type LLMResponder struct {
	client   llm.Client
	policy   *models.PolicyDocument
	fallback Responder
	logger   *zerolog.Logger
}

func NewLLMResponder(client llm.Client, policy *models.PolicyDocument, fallback Responder, logger *zerolog.Logger) *LLMResponder {
	return &LLMResponder{
		client:   client,
		policy:   policy,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *LLMResponder) Respond(ctx context.Context, message string, sessionID string) (Reply, error) {
	resp, err := r.client.Generate(ctx, llm.Request{
		Prompt:       "Customer message: \"" + message + "\"\nWrite your next support reply.",
		SystemPrompt: r.systemPrompt(),
		MaxTokens:    responderMaxTokens,
		Temperature:  responderTemperature,
	})
	if err != nil || resp == nil || strings.TrimSpace(resp.Content) == "" {
		r.logger.Warn().Err(err).Str("session_id", sessionID).
			Msg("agent generation failed, using rule-based responder")
		return r.fallback.Respond(ctx, message, sessionID)
	}

	return Reply{Text: strings.TrimSpace(resp.Content)}, nil
}

func (r *LLMResponder) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a customer-support agent for a loyalty rewards program. ")
	b.WriteString("Be concise, ask for missing details, and offer concrete fixes.\n")

	if r.policy != nil {
		b.WriteString("Follow this policy: " + r.policy.Title + "\n")
		for _, procedure := range r.policy.Procedures {
			b.WriteString("- " + procedure + "\n")
		}
		if len(r.policy.Policies.Timeframes) > 0 {
			b.WriteString("Valid timeframes: " + strings.Join(r.policy.Policies.Timeframes, ", ") + "\n")
		}
	}
	b.WriteString("Reply with a single chat message without a role label.")

	return b.String()
}
