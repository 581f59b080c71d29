package mcpadapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opscore/support-sim/internal/models"
	"github.com/opscore/support-sim/internal/orchestrator"
)

// SimulateConversationInput is the MCP tool input schema for a single
// conversation (matches HTTP API field names).
type SimulateConversationInput struct {
	Issue    string `json:"issue" jsonschema:"customer issue text to open the conversation with"`
	Persona  string `json:"persona,omitempty" jsonschema:"customer persona name (default: first configured persona)"`
	MaxTurns int    `json:"max_turns,omitempty" jsonschema:"maximum customer turns before giving up"`
}

// RunTestSuiteInput is the MCP tool input schema for a full test suite.
type RunTestSuiteInput struct {
	Categories               []string `json:"categories" jsonschema:"issue categories to test"`
	Persona                  string   `json:"persona,omitempty" jsonschema:"customer persona name"`
	ConversationsPerCategory int      `json:"conversations_per_category,omitempty" jsonschema:"conversations per category (default: 1)"`
	MaxTurns                 int      `json:"max_turns,omitempty" jsonschema:"maximum customer turns per conversation"`
}

// NewSimulateConversationHandler returns a tool handler that runs one
// conversation to completion. Pass the returned function to mcp.AddTool.
func NewSimulateConversationHandler(orch *orchestrator.Orchestrator) func(context.Context, *mcp.CallToolRequest, SimulateConversationInput) (*mcp.CallToolResult, models.TestReport, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SimulateConversationInput) (*mcp.CallToolResult, models.TestReport, error) {
		return SimulateConversation(ctx, orch, req, input)
	}
}

// SimulateConversation classifies the issue and drives a single conversation
// synchronously, returning its one-conversation report.
func SimulateConversation(
	ctx context.Context,
	orch *orchestrator.Orchestrator,
	req *mcp.CallToolRequest,
	input SimulateConversationInput,
) (*mcp.CallToolResult, models.TestReport, error) {
	report := orch.RunSuite(ctx, uuid.NewString(), models.SuiteConfig{
		Categories:               []string{orch.ClassifyIssue(input.Issue)},
		Persona:                  input.Persona,
		ConversationsPerCategory: 1,
		MaxTurns:                 input.MaxTurns,
	})

	return nil, *report, nil
}

// NewRunTestSuiteHandler returns a tool handler that runs a whole suite and
// returns the aggregated report. Pass the returned function to mcp.AddTool.
func NewRunTestSuiteHandler(orch *orchestrator.Orchestrator) func(context.Context, *mcp.CallToolRequest, RunTestSuiteInput) (*mcp.CallToolResult, models.TestReport, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RunTestSuiteInput) (*mcp.CallToolResult, models.TestReport, error) {
		return RunTestSuite(ctx, orch, req, input)
	}
}

// RunTestSuite drives every configured conversation synchronously.
func RunTestSuite(
	ctx context.Context,
	orch *orchestrator.Orchestrator,
	req *mcp.CallToolRequest,
	input RunTestSuiteInput,
) (*mcp.CallToolResult, models.TestReport, error) {
	conversations := input.ConversationsPerCategory
	if conversations <= 0 {
		conversations = 1
	}

	report := orch.RunSuite(ctx, uuid.NewString(), models.SuiteConfig{
		Categories:               input.Categories,
		Persona:                  input.Persona,
		ConversationsPerCategory: conversations,
		MaxTurns:                 input.MaxTurns,
	})

	return nil, *report, nil
}
