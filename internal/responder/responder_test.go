package responder

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opscore/support-sim/internal/generator"
	"github.com/opscore/support-sim/internal/intent"
	"github.com/opscore/support-sim/internal/llm"
	"github.com/rs/zerolog"
)

type mockLLMClient struct {
	response *llm.Response
	err      error
}

func (m *mockLLMClient) Generate(_ context.Context, _ llm.Request) (*llm.Response, error) {
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

func newRules() *RuleResponder {
	gen := generator.NewTemplateGenerator(rand.New(rand.NewSource(1)))
	return NewRuleResponder(gen, intent.NewClassifier(nil))
}

func TestRuleResponder_AsksForDetailsOnIssue(t *testing.T) {
	rules := newRules()

	reply, err := rules.Respond(context.Background(), "My points are missing from last week", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text == "" {
		t.Fatal("expected non-empty reply")
	}
	if reply.Intent != "missing_points" {
		t.Errorf("expected intent missing_points, got %s", reply.Intent)
	}
	if reply.Confidence != 0.9 {
		t.Errorf("expected rule-match confidence 0.9, got %f", reply.Confidence)
	}
}

func TestRuleResponder_ResolvesOnAcceptance(t *testing.T) {
	rules := newRules()

	reply, err := rules.Respond(context.Background(), "Fine, that works for me.", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(strings.ToLower(reply.Text), "resolved") {
		t.Errorf("expected resolution confirmation, got %q", reply.Text)
	}
}

func TestRuleResponder_GenericFallthrough(t *testing.T) {
	rules := newRules()

	reply, err := rules.Respond(context.Background(), "hmm", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Confidence != 0.5 {
		t.Errorf("expected default confidence 0.5, got %f", reply.Confidence)
	}
}

func TestLLMResponder_Success(t *testing.T) {
	mock := &mockLLMClient{response: &llm.Response{Content: "Could you share the receipt number?"}}
	r := NewLLMResponder(mock, nil, newRules(), newTestLogger())

	reply, err := r.Respond(context.Background(), "My points are missing", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "Could you share the receipt number?" {
		t.Errorf("unexpected reply: %q", reply.Text)
	}
}

func TestLLMResponder_FallsBackToRules(t *testing.T) {
	mock := &mockLLMClient{err: errors.New("quota exceeded")}
	r := NewLLMResponder(mock, nil, newRules(), newTestLogger())

	reply, err := r.Respond(context.Background(), "My points are missing", "s1")
	if err != nil {
		t.Fatalf("fallback must absorb the model error, got: %v", err)
	}
	if reply.Text == "" {
		t.Error("expected rule-based reply after model failure")
	}
}

func TestWidgetResponder_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Happy to assist.","intent":"greeting","confidence":0.82}`))
	}))
	defer server.Close()

	widget := NewWidgetResponder(server.URL, time.Second, newRules(), newTestLogger())

	reply, err := widget.Respond(context.Background(), "hello", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "Happy to assist." {
		t.Errorf("unexpected reply: %q", reply.Text)
	}
	if reply.Confidence != 0.82 {
		t.Errorf("expected confidence 0.82, got %f", reply.Confidence)
	}
}

func TestWidgetResponder_FallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	widget := NewWidgetResponder(server.URL, time.Second, newRules(), newTestLogger())

	reply, err := widget.Respond(context.Background(), "My points are missing", "s1")
	if err != nil {
		t.Fatalf("fallback must absorb the widget error, got: %v", err)
	}
	if reply.Text == "" {
		t.Error("expected rule-based reply after widget failure")
	}
}

func TestWidgetResponder_FallsBackWhenUnreachable(t *testing.T) {
	widget := NewWidgetResponder("http://127.0.0.1:1", 100*time.Millisecond, newRules(), newTestLogger())

	reply, err := widget.Respond(context.Background(), "My points are missing", "s1")
	if err != nil {
		t.Fatalf("fallback must absorb the transport error, got: %v", err)
	}
	if reply.Text == "" {
		t.Error("expected rule-based reply when widget is unreachable")
	}
}
