package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opscore/support-sim/internal/customer"
	"github.com/opscore/support-sim/internal/intent"
	"github.com/opscore/support-sim/internal/logstream"
	"github.com/opscore/support-sim/internal/models"
	"github.com/opscore/support-sim/internal/responder"
	"github.com/rs/zerolog"
)

// Config identifies one conversation run and sets its pacing.
type Config struct {
	TestID         string
	Category       string
	Persona        string
	MaxTurns       int
	InterTurnDelay time.Duration
}

// Driver orchestrates one full conversation between the simulated customer
// and the agent under test. It exclusively owns the turn log.
type Driver struct {
	customer   *customer.Agent
	agent      responder.Responder
	classifier *intent.Classifier
	stream     *logstream.Broadcaster
	cfg        Config
	logger     *zerolog.Logger
}

func NewDriver(
	cust *customer.Agent,
	agent responder.Responder,
	classifier *intent.Classifier,
	stream *logstream.Broadcaster,
	cfg Config,
	logger *zerolog.Logger,
) *Driver {
	return &Driver{
		customer:   cust,
		agent:      agent,
		classifier: classifier,
		stream:     stream,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run drives the conversation to a definite outcome. Every termination path
// finalizes the result; a panic inside a turn is recorded as an error and
// ends the conversation as failed instead of crashing the caller.
func (d *Driver) Run(ctx context.Context, initialAgentMessage string) (result models.ConversationResult) {
	result = models.ConversationResult{
		ConversationID: uuid.NewString(),
		Category:       d.cfg.Category,
		Persona:        d.cfg.Persona,
		StartTime:      time.Now(),
		Errors:         []string{},
		Turns:          []models.Turn{},
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("conversation_id", result.ConversationID).
				Interface("panic", r).Msg("conversation aborted by panic")
			result.Errors = append(result.Errors, fmt.Sprintf("panic: %v", r))
			d.finalize(&result, false, models.ReasonError)
		}
	}()

	agentMessage := initialAgentMessage
	d.recordAgentTurn(&result, responder.Reply{Text: agentMessage, Intent: d.classifier.Classify(agentMessage)}, 0)

	for {
		// Cancellation takes effect between turns only.
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "conversation cancelled")
			d.finalize(&result, false, models.ReasonError)
			return result
		}

		started := time.Now()
		reaction := d.customer.React(ctx, agentMessage)
		d.recordCustomerTurn(&result, reaction, time.Since(started))

		if reaction.State.Satisfied {
			d.finalize(&result, true, models.ReasonCustomerSatisfied)
			return result
		}
		if !reaction.ShouldContinue {
			d.finalize(&result, false, models.ReasonMaxTurnsReached)
			return result
		}

		// Human-pace delay; also keeps the responder backend within rate limits.
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "conversation cancelled")
			d.finalize(&result, false, models.ReasonError)
			return result
		case <-time.After(d.cfg.InterTurnDelay):
		}

		started = time.Now()
		reply, err := d.agent.Respond(ctx, reaction.Response, result.ConversationID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("agent responder failed: %v", err))
			d.finalize(&result, false, models.ReasonError)
			return result
		}
		if reply.Intent == "" {
			reply.Intent = d.classifier.Classify(reply.Text)
		}
		d.recordAgentTurn(&result, reply, time.Since(started))

		agentMessage = reply.Text
	}
}

func (d *Driver) recordCustomerTurn(result *models.ConversationResult, reaction customer.Reaction, elapsed time.Duration) {
	turn := models.Turn{
		TurnNumber:     len(result.Turns) + 1,
		Timestamp:      time.Now(),
		Speaker:        models.SpeakerCustomer,
		Message:        reaction.Response,
		Intent:         d.classifier.Classify(reaction.Response),
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	result.Turns = append(result.Turns, turn)
	result.TotalTurns = reaction.State.Turn

	d.logger.Info().
		Str("conversation_id", result.ConversationID).
		Int("turn", turn.TurnNumber).
		Str("speaker", string(turn.Speaker)).
		Float64("frustration", reaction.State.FrustrationLevel).
		Str("expectation", reaction.NextExpectation).
		Msg("customer turn recorded")
	d.emit("info", "customer: "+reaction.Response, map[string]string{
		"conversation_id": result.ConversationID,
		"expectation":     reaction.NextExpectation,
	})
}

func (d *Driver) recordAgentTurn(result *models.ConversationResult, reply responder.Reply, elapsed time.Duration) {
	turn := models.Turn{
		TurnNumber:     len(result.Turns) + 1,
		Timestamp:      time.Now(),
		Speaker:        models.SpeakerAgent,
		Message:        reply.Text,
		Intent:         reply.Intent,
		Confidence:     reply.Confidence,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	result.Turns = append(result.Turns, turn)

	d.logger.Info().
		Str("conversation_id", result.ConversationID).
		Int("turn", turn.TurnNumber).
		Str("speaker", string(turn.Speaker)).
		Str("intent", turn.Intent).
		Msg("agent turn recorded")
	d.emit("info", "agent: "+reply.Text, map[string]string{
		"conversation_id": result.ConversationID,
	})
}

func (d *Driver) finalize(result *models.ConversationResult, success bool, reason models.TerminationReason) {
	result.EndTime = time.Now()
	result.Success = success
	result.Reason = reason

	d.logger.Info().
		Str("conversation_id", result.ConversationID).
		Bool("success", success).
		Str("reason", string(reason)).
		Int("total_turns", result.TotalTurns).
		Msg("conversation finished")
	d.emit("info", fmt.Sprintf("conversation finished: %s", reason), map[string]string{
		"conversation_id": result.ConversationID,
		"success":         fmt.Sprintf("%t", success),
	})
}

func (d *Driver) emit(level, message string, metadata map[string]string) {
	if d.stream == nil || d.cfg.TestID == "" {
		return
	}
	d.stream.Emit(d.cfg.TestID, level, message, metadata)
}
