package metrics

import (
	"testing"

	"github.com/opscore/support-sim/internal/models"
)

func TestSuccessRate_Empty(t *testing.T) {
	rate, defined := SuccessRate(nil)

	if defined {
		t.Error("expected undefined success rate for empty input")
	}
	if rate != 0 {
		t.Errorf("expected 0, got %f", rate)
	}
}

func TestSuccessRate(t *testing.T) {
	results := []models.ConversationResult{
		{Success: true},
		{Success: false},
		{Success: true},
		{Success: true},
	}

	rate, defined := SuccessRate(results)
	if !defined {
		t.Fatal("expected defined rate")
	}
	if rate != 0.75 {
		t.Errorf("expected 0.75, got %f", rate)
	}
}

func TestAverageTurns(t *testing.T) {
	results := []models.ConversationResult{
		{TotalTurns: 2},
		{TotalTurns: 4},
		{TotalTurns: 6},
	}

	if avg := AverageTurns(results); avg != 4.0 {
		t.Errorf("expected 4.0, got %f", avg)
	}
	if avg := AverageTurns(nil); avg != 0 {
		t.Errorf("expected 0 for empty input, got %f", avg)
	}
}

func TestAverageResponseTimeMs(t *testing.T) {
	results := []models.ConversationResult{
		{Turns: []models.Turn{{ResponseTimeMs: 100}, {ResponseTimeMs: 300}}},
		{Turns: []models.Turn{{ResponseTimeMs: 200}, {}}},
	}

	if avg := AverageResponseTimeMs(results); avg != 200.0 {
		t.Errorf("expected 200.0, got %f", avg)
	}
}

func TestIntentFrequency_SortedDescFirstSeenTies(t *testing.T) {
	results := []models.ConversationResult{
		{Turns: []models.Turn{
			{Intent: "missing_points"},
			{Intent: "billing_issue"},
			{Intent: "missing_points"},
			{Intent: "account_access"},
		}},
	}

	frequency := IntentFrequency(results)

	if len(frequency) != 3 {
		t.Fatalf("expected 3 intents, got %d", len(frequency))
	}
	if frequency[0].Intent != "missing_points" || frequency[0].Count != 2 {
		t.Errorf("unexpected top intent: %+v", frequency[0])
	}
	// billing_issue and account_access tie at 1; first-seen order wins.
	if frequency[1].Intent != "billing_issue" || frequency[2].Intent != "account_access" {
		t.Errorf("tie-break broken: %+v", frequency)
	}
}

func TestErrorSummary(t *testing.T) {
	results := []models.ConversationResult{
		{Errors: []string{"widget unreachable", "panic: boom"}},
		{Errors: []string{"widget unreachable"}},
	}

	summary := ErrorSummary(results)

	if len(summary) != 2 {
		t.Fatalf("expected 2 distinct errors, got %d", len(summary))
	}
	if summary[0].Error != "widget unreachable" || summary[0].Count != 2 {
		t.Errorf("unexpected top error: %+v", summary[0])
	}
}
