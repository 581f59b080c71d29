package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/opscore/support-sim/internal/config"
	"github.com/opscore/support-sim/internal/customer"
	"github.com/opscore/support-sim/internal/details"
	"github.com/opscore/support-sim/internal/driver"
	"github.com/opscore/support-sim/internal/generator"
	"github.com/opscore/support-sim/internal/intent"
	"github.com/opscore/support-sim/internal/llm"
	"github.com/opscore/support-sim/internal/logstream"
	"github.com/opscore/support-sim/internal/metrics"
	"github.com/opscore/support-sim/internal/models"
	"github.com/opscore/support-sim/internal/policy"
	"github.com/opscore/support-sim/internal/responder"
	"github.com/opscore/support-sim/internal/store"
	"github.com/rs/zerolog"
)

// ResponderMode selects the agent-under-test backend.
type ResponderMode string

const (
	ModeRules  ResponderMode = "rules"
	ModeLLM    ResponderMode = "llm"
	ModeWidget ResponderMode = "widget"
)

// Finished sessions stay queryable for this long after their report is
// persisted, then get swept from the registry.
const sessionRetention = time.Hour

// Deps are the injected collaborators. LLMClient and PolicyStore are
// optional; without them the orchestrator runs fully local simulations.
type Deps struct {
	Classifier    *intent.Classifier
	LLMClient     llm.Client
	PolicyStore   policy.Store
	Sessions      *store.SessionStore
	Reports       store.ReportStore
	Stream        *logstream.Broadcaster
	ResponderMode ResponderMode
	WidgetURL     string
	WidgetTimeout time.Duration
	Seed          int64
}

// Orchestrator runs test suites: many conversations across categories,
// strictly sequentially, aggregated into a TestReport.
type Orchestrator struct {
	cfg    *config.SimConfig
	deps   Deps
	logger *zerolog.Logger
}

func New(cfg *config.SimConfig, deps Deps, logger *zerolog.Logger) *Orchestrator {
	if deps.ResponderMode == "" {
		deps.ResponderMode = ModeRules
	}
	if deps.WidgetTimeout == 0 {
		deps.WidgetTimeout = 10 * time.Second
	}
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
}

// StartSuite registers a session and runs the suite in the background,
// returning the test id immediately.
func (o *Orchestrator) StartSuite(cfg models.SuiteConfig) string {
	testID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	o.deps.Sessions.Register(models.TestSession{
		TestID:    testID,
		Status:    models.TestStatusRunning,
		Config:    cfg,
		StartTime: time.Now(),
	}, cancel)

	go func() {
		defer cancel()
		o.RunSuite(ctx, testID, cfg)
	}()

	return testID
}

// ClassifyIssue maps free-form issue text to a category label.
func (o *Orchestrator) ClassifyIssue(issue string) string {
	return o.deps.Classifier.Classify(issue)
}

// StartConversation runs a single autonomous conversation for the given
// issue text, reported as a suite of one.
func (o *Orchestrator) StartConversation(issue string, persona string, maxTurns int) string {
	category := o.ClassifyIssue(issue)
	return o.StartSuite(models.SuiteConfig{
		Categories:               []string{category},
		Persona:                  persona,
		ConversationsPerCategory: 1,
		MaxTurns:                 maxTurns,
	})
}

// RunSuite drives every configured conversation sequentially and produces
// the final report. Per-conversation failures are recorded and the loop
// continues; only cancellation stops the suite early.
func (o *Orchestrator) RunSuite(ctx context.Context, testID string, cfg models.SuiteConfig) *models.TestReport {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = o.cfg.Simulation.MaxTurns
	}

	o.logger.Info().
		Str("test_id", testID).
		Strs("categories", cfg.Categories).
		Int("conversations_per_category", cfg.ConversationsPerCategory).
		Int("max_turns", cfg.MaxTurns).
		Msg("starting test suite")
	o.emit(testID, "info", "test suite started", nil)

	startTime := time.Now()
	var results []models.ConversationResult

	cancelled := false
	conversationIndex := 0
suite:
	for _, category := range cfg.Categories {
		for i := 0; i < cfg.ConversationsPerCategory; i++ {
			if ctx.Err() != nil {
				cancelled = true
				break suite
			}

			result := o.runOne(ctx, testID, category, cfg, conversationIndex)
			results = append(results, result)
			conversationIndex++
			o.deps.Sessions.UpdateProgress(testID, conversationIndex)

			select {
			case <-ctx.Done():
				cancelled = true
				break suite
			case <-time.After(time.Duration(o.cfg.Simulation.InterConversationDelayMs) * time.Millisecond):
			}
		}
	}

	report := o.buildReport(testID, startTime, cfg, results)

	if err := o.deps.Reports.Save(context.Background(), report); err != nil {
		o.logger.Warn().Err(err).Str("test_id", testID).Msg("failed to persist report")
	}

	status := models.TestStatusCompleted
	if cancelled {
		status = models.TestStatusCancelled
	}
	o.deps.Sessions.SetStatus(testID, status)
	if pruned := o.deps.Sessions.Prune(sessionRetention); pruned > 0 {
		o.logger.Debug().Int("pruned", pruned).Msg("swept expired sessions")
	}

	o.logger.Info().
		Str("test_id", testID).
		Int("total", report.TotalConversations).
		Int("successful", report.SuccessfulConversations).
		Bool("success_rate_defined", report.SuccessRateDefined).
		Msg("test suite finished")
	o.emit(testID, "info", "test suite finished", map[string]string{"status": string(status)})

	return report
}

func (o *Orchestrator) runOne(ctx context.Context, testID, category string, cfg models.SuiteConfig, index int) models.ConversationResult {
	persona := o.cfg.Persona(cfg.Persona)
	rng := o.newRand(index)

	templates := generator.NewTemplateGenerator(rng)
	var gen generator.Generator = templates
	if o.deps.LLMClient != nil {
		gen = generator.NewLLMGenerator(o.deps.LLMClient, templates, o.logger)
	}

	cust := customer.NewAgent(
		persona, category, cfg.MaxTurns,
		gen, templates, details.NewTable(rng), rng, o.logger,
	)

	agent := o.buildResponder(ctx, category, templates)

	d := driver.NewDriver(cust, agent, o.deps.Classifier, o.deps.Stream, driver.Config{
		TestID:         testID,
		Category:       category,
		Persona:        persona.Name,
		MaxTurns:       cfg.MaxTurns,
		InterTurnDelay: time.Duration(o.cfg.Simulation.InterTurnDelayMs) * time.Millisecond,
	}, o.logger)

	return d.Run(ctx, o.cfg.Simulation.InitialAgentMessage)
}

// buildResponder assembles the agent under test. The rule-based responder is
// always constructed; the llm and widget backends use it as their fallback.
func (o *Orchestrator) buildResponder(ctx context.Context, category string, templates *generator.TemplateGenerator) responder.Responder {
	rules := responder.NewRuleResponder(templates, o.deps.Classifier)

	switch o.deps.ResponderMode {
	case ModeLLM:
		if o.deps.LLMClient == nil {
			return rules
		}
		return responder.NewLLMResponder(o.deps.LLMClient, o.loadPolicy(ctx, category), rules, o.logger)
	case ModeWidget:
		if o.deps.WidgetURL == "" {
			return rules
		}
		return responder.NewWidgetResponder(o.deps.WidgetURL, o.deps.WidgetTimeout, rules, o.logger)
	default:
		return rules
	}
}

func (o *Orchestrator) loadPolicy(ctx context.Context, category string) *models.PolicyDocument {
	if o.deps.PolicyStore == nil {
		return nil
	}

	title := o.cfg.PolicyTitle(category)
	if title == "" {
		title = category
	}

	doc, err := o.deps.PolicyStore.Fetch(ctx, title)
	if err != nil {
		o.logger.Warn().Err(err).Str("title", title).Msg("policy load failed")
		return policy.DefaultPolicy()
	}
	return doc
}

func (o *Orchestrator) buildReport(testID string, startTime time.Time, cfg models.SuiteConfig, results []models.ConversationResult) *models.TestReport {
	successful := 0
	for _, result := range results {
		if result.Success {
			successful++
		}
	}

	rate, defined := metrics.SuccessRate(results)

	return &models.TestReport{
		TestID:                    testID,
		StartTime:                 startTime,
		EndTime:                   time.Now(),
		Configuration:             cfg,
		TotalConversations:        len(results),
		SuccessfulConversations:   successful,
		FailedConversations:       len(results) - successful,
		SuccessRate:               rate,
		SuccessRateDefined:        defined,
		AverageConversationLength: metrics.AverageTurns(results),
		AverageResponseTimeMs:     metrics.AverageResponseTimeMs(results),
		CommonIntents:             metrics.IntentFrequency(results),
		ErrorSummary:              metrics.ErrorSummary(results),
		Conversations:             results,
	}
}

// newRand returns the per-conversation random source. A configured seed
// makes whole suites reproducible; otherwise each conversation gets an
// independent time-based source.
func (o *Orchestrator) newRand(index int) *rand.Rand {
	if o.deps.Seed != 0 {
		return rand.New(rand.NewSource(o.deps.Seed + int64(index)))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (o *Orchestrator) emit(testID, level, message string, metadata map[string]string) {
	if o.deps.Stream == nil {
		return
	}
	o.deps.Stream.Emit(testID, level, message, metadata)
}
