package models

import (
	"time"
)

type Speaker string

const (
	SpeakerCustomer Speaker = "customer"
	SpeakerAgent    Speaker = "agent"
)

// TerminationReason is recorded verbatim on every finished conversation.
// A loop that runs out of turns without the satisfied flag ever firing is
// reported as max_turns_reached; there is no separate wall-clock timeout.
type TerminationReason string

const (
	ReasonCustomerSatisfied TerminationReason = "customer_satisfied"
	ReasonMaxTurnsReached   TerminationReason = "max_turns_reached"
	ReasonError             TerminationReason = "error"
)

type TestStatus string

const (
	TestStatusRunning   TestStatus = "running"
	TestStatusCompleted TestStatus = "completed"
	TestStatusCancelled TestStatus = "cancelled"
)

// ConversationState is owned by a single customer agent for the lifetime of
// one conversation. Turn strictly increases, FrustrationLevel stays in [0,1],
// and once Satisfied is set the conversation is terminal.
type ConversationState struct {
	Turn                int     `json:"turn"`
	Satisfied           bool    `json:"satisfied"`
	FrustrationLevel    float64 `json:"frustration_level"`
	HasProvidedDetails  bool    `json:"has_provided_details"`
	ReceivedSolution    bool    `json:"received_solution"`
	SolutionAccepted    bool    `json:"solution_accepted"`
	WaitingForAction    bool    `json:"waiting_for_action"`
	EscalationRequested bool    `json:"escalation_requested"`
}

// ConversationMemory holds what the customer remembers within one
// conversation. Append-only while the conversation runs, discarded after.
type ConversationMemory struct {
	SolutionsOffered []string          `json:"solutions_offered"`
	LastTimeline     string            `json:"last_timeline"`
	DetailsShared    map[string]string `json:"details_shared"`
}

func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{
		DetailsShared: make(map[string]string),
	}
}

// Turn is one recorded message exchange unit. Immutable once appended.
type Turn struct {
	TurnNumber     int       `json:"turn_number"`
	Timestamp      time.Time `json:"timestamp"`
	Speaker        Speaker   `json:"speaker"`
	Message        string    `json:"message"`
	Intent         string    `json:"intent,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	ResponseTimeMs int64     `json:"response_time_ms,omitempty"`
}

type ConversationResult struct {
	ConversationID string            `json:"conversation_id"`
	Category       string            `json:"category"`
	Persona        string            `json:"persona"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	TotalTurns     int               `json:"total_turns"`
	Success        bool              `json:"success"`
	Reason         TerminationReason `json:"reason"`
	Errors         []string          `json:"errors"`
	Turns          []Turn            `json:"turns"`
}

type IntentCount struct {
	Intent string `json:"intent"`
	Count  int    `json:"count"`
}

type ErrorCount struct {
	Error string `json:"error"`
	Count int    `json:"count"`
}

// SuiteConfig is the caller-supplied shape of one test run.
type SuiteConfig struct {
	Categories               []string `json:"categories"`
	Persona                  string   `json:"persona,omitempty"`
	ConversationsPerCategory int      `json:"conversations_per_category"`
	MaxTurns                 int      `json:"max_turns"`
}

type TestReport struct {
	TestID                    string               `json:"test_id"`
	StartTime                 time.Time            `json:"start_time"`
	EndTime                   time.Time            `json:"end_time"`
	Configuration             SuiteConfig          `json:"configuration"`
	TotalConversations        int                  `json:"total_conversations"`
	SuccessfulConversations   int                  `json:"successful_conversations"`
	FailedConversations       int                  `json:"failed_conversations"`
	SuccessRate               float64              `json:"success_rate"`
	SuccessRateDefined        bool                 `json:"success_rate_defined"`
	AverageConversationLength float64              `json:"average_conversation_length"`
	AverageResponseTimeMs     float64              `json:"average_response_time_ms"`
	CommonIntents             []IntentCount        `json:"common_intents"`
	ErrorSummary              []ErrorCount         `json:"error_summary"`
	Conversations             []ConversationResult `json:"conversations"`
}

// PolicyDocument is the read-only output of the policy store collaborator.
type PolicyDocument struct {
	Title              string        `json:"title"`
	Procedures         []string      `json:"procedures"`
	Policies           PolicyDetails `json:"policies"`
	Templates          []string      `json:"templates"`
	EscalationTriggers []string      `json:"escalation_triggers"`
}

type PolicyDetails struct {
	Timeframes   []string `json:"timeframes"`
	Requirements []string `json:"requirements"`
}

// TestSession tracks one in-flight or finished suite run.
type TestSession struct {
	TestID    string      `json:"test_id"`
	Status    TestStatus  `json:"status"`
	Config    SuiteConfig `json:"configuration"`
	StartTime time.Time   `json:"start_time"`
	Completed int         `json:"completed_conversations"`
}
