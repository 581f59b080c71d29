package generator

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/opscore/support-sim/internal/llm"
	"github.com/opscore/support-sim/internal/models"
	"github.com/rs/zerolog"
)

type mockLLMClient struct {
	response    *llm.Response
	err         error
	lastRequest llm.Request
	calls       int
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.calls++
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockLLMClient) GenerateWithRetry(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return m.Generate(ctx, req)
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newLLMGenerator(client llm.Client) *LLMGenerator {
	fallback := NewTemplateGenerator(rand.New(rand.NewSource(1)))
	return NewLLMGenerator(client, fallback, newTestLogger())
}

func TestLLMGenerator_Success(t *testing.T) {
	mock := &mockLLMClient{response: &llm.Response{Content: "I still haven't received my points."}}
	g := newLLMGenerator(mock)

	text, err := g.Respond(context.Background(), Prompt{
		Role:      models.SpeakerCustomer,
		Situation: SituationContinue,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "I still haven't received my points." {
		t.Errorf("unexpected response: %q", text)
	}
}

func TestLLMGenerator_FallbackOnError(t *testing.T) {
	mock := &mockLLMClient{err: errors.New("connection reset")}
	g := newLLMGenerator(mock)

	text, err := g.Respond(context.Background(), Prompt{
		Role:      models.SpeakerCustomer,
		Situation: SituationSkeptical,
	})
	if err != nil {
		t.Fatalf("fallback must not surface the generation error, got: %v", err)
	}
	if text == "" {
		t.Error("fallback must return a non-empty response")
	}
}

func TestLLMGenerator_FallbackOnEmptyContent(t *testing.T) {
	mock := &mockLLMClient{response: &llm.Response{Content: "   "}}
	g := newLLMGenerator(mock)

	text, err := g.Respond(context.Background(), Prompt{
		Role:      models.SpeakerCustomer,
		Situation: SituationGratitude,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Error("expected templated fallback for empty model output")
	}
}

func TestLLMGenerator_TemperaturePerRole(t *testing.T) {
	mock := &mockLLMClient{response: &llm.Response{Content: "ok"}}
	g := newLLMGenerator(mock)

	_, _ = g.Respond(context.Background(), Prompt{Role: models.SpeakerCustomer, Situation: SituationContinue})
	if mock.lastRequest.Temperature != customerTemperature {
		t.Errorf("expected customer temperature %.1f, got %.1f", customerTemperature, mock.lastRequest.Temperature)
	}

	_, _ = g.Respond(context.Background(), Prompt{Role: models.SpeakerAgent, Situation: SituationGenericReply})
	if mock.lastRequest.Temperature != agentTemperature {
		t.Errorf("expected agent temperature %.1f, got %.1f", agentTemperature, mock.lastRequest.Temperature)
	}
}

func TestLLMGenerator_SystemPromptCarriesStateAndPersona(t *testing.T) {
	mock := &mockLLMClient{response: &llm.Response{Content: "ok"}}
	g := newLLMGenerator(mock)

	_, _ = g.Respond(context.Background(), Prompt{
		Role:      models.SpeakerCustomer,
		Situation: SituationContinue,
		Persona:   "Impatient frequent shopper",
		State:     models.ConversationState{Turn: 3, FrustrationLevel: 0.5},
	})

	system := mock.lastRequest.SystemPrompt
	if !strings.Contains(system, "Impatient frequent shopper") {
		t.Errorf("persona missing from system prompt: %q", system)
	}
	if !strings.Contains(system, "turn 3") {
		t.Errorf("state snapshot missing from system prompt: %q", system)
	}
}

func TestStripRolePrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Customer: where are my points?", "where are my points?"},
		{"Agent: happy to help", "happy to help"},
		{"  Support: checking now ", "checking now"},
		{"no prefix here", "no prefix here"},
	}

	for _, tc := range cases {
		if got := stripRolePrefix(tc.in); got != tc.want {
			t.Errorf("stripRolePrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
