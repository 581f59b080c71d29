package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/opscore/support-sim/internal/llm"
	"github.com/opscore/support-sim/internal/models"
	"github.com/rs/zerolog"
)

const (
	customerTemperature = 0.9
	agentTemperature    = 0.7
	maxResponseTokens   = 300
)

// LLMGenerator asks a text-generation model for the next utterance and falls
// back to canned templates when the call fails. The fallback is mandatory:
// a generation error never propagates past this boundary.
type LLMGenerator struct {
	client   llm.Client
	fallback *TemplateGenerator
	logger   *zerolog.Logger
}

func NewLLMGenerator(client llm.Client, fallback *TemplateGenerator, logger *zerolog.Logger) *LLMGenerator {
	return &LLMGenerator{
		client:   client,
		fallback: fallback,
		logger:   logger,
	}
}

func (g *LLMGenerator) Respond(ctx context.Context, p Prompt) (string, error) {
	temperature := agentTemperature
	if p.Role == models.SpeakerCustomer {
		temperature = customerTemperature
	}

	resp, err := g.client.Generate(ctx, llm.Request{
		Prompt:       buildUserPrompt(p),
		SystemPrompt: buildSystemPrompt(p),
		MaxTokens:    maxResponseTokens,
		Temperature:  temperature,
	})
	if err != nil {
		g.logger.Warn().
			Err(err).
			Str("role", string(p.Role)).
			Str("situation", string(p.Situation)).
			Msg("generation failed, falling back to templates")
		return g.fallback.Respond(ctx, p)
	}

	text := stripRolePrefix(resp.Content)
	if text == "" {
		g.logger.Warn().
			Str("role", string(p.Role)).
			Msg("model returned empty text, falling back to templates")
		return g.fallback.Respond(ctx, p)
	}

	return text, nil
}

func buildSystemPrompt(p Prompt) string {
	var b strings.Builder

	if p.Role == models.SpeakerCustomer {
		b.WriteString("You are a customer contacting a loyalty-program support desk.\n")
	} else {
		b.WriteString("You are a customer-support agent for a loyalty program.\n")
	}
	if p.Persona != "" {
		b.WriteString("Persona: " + p.Persona + "\n")
	}

	fmt.Fprintf(&b, "Conversation state: turn %d, frustration %.1f, details provided %t, solution received %t.\n",
		p.State.Turn, p.State.FrustrationLevel, p.State.HasProvidedDetails, p.State.ReceivedSolution)
	b.WriteString("Reply with a single short chat message. Do not prefix your reply with a role label.")

	return b.String()
}

func buildUserPrompt(p Prompt) string {
	var b strings.Builder

	if p.LastMessage != "" {
		b.WriteString("The other party just said: \"" + p.LastMessage + "\"\n")
	}
	fmt.Fprintf(&b, "Situation: %s.\n", p.Situation)
	for _, hint := range p.Hints {
		b.WriteString("Hint: " + hint + "\n")
	}
	if p.Details != "" {
		b.WriteString("Include these details in your reply: " + p.Details + "\n")
	}
	if p.Timeline != "" {
		b.WriteString("The promised timeframe was: " + p.Timeline + "\n")
	}
	b.WriteString("Write your next message.")

	return b.String()
}

// stripRolePrefix drops leading self-referential labels like "Customer:" that
// models tend to prepend despite instructions.
func stripRolePrefix(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"Customer:", "Agent:", "Support:", "Assistant:"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return text
}
