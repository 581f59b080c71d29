package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/opscore/support-sim/internal/config"
	"github.com/opscore/support-sim/internal/intent"
	"github.com/opscore/support-sim/internal/llm"
	"github.com/opscore/support-sim/internal/llm/bedrock"
	"github.com/opscore/support-sim/internal/llm/gpt"
	"github.com/opscore/support-sim/internal/logstream"
	"github.com/opscore/support-sim/internal/orchestrator"
	"github.com/opscore/support-sim/internal/policy"
	redisconn "github.com/opscore/support-sim/internal/redis"
	"github.com/opscore/support-sim/internal/store"
	"github.com/rs/zerolog"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	ResponderMode   string
	WidgetURL       string
	RedisAddr       string
	RedisPassword   string
	Seed            int64
	ReportTTLHours  int
	LogLevel        string
}

type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	SimConfig    *config.SimConfig
	Sessions     *store.SessionStore
	Reports      store.ReportStore
	Stream       *logstream.Broadcaster
	Logger       *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", ""),
		ResponderMode:   getEnv("RESPONDER_MODE", "rules"),
		WidgetURL:       getEnv("WIDGET_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		Seed:            getEnvInt64("SIM_SEED", 0),
		ReportTTLHours:  int(getEnvInt64("REPORT_TTL_HOURS", 72)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// Wire assembles the full simulator. Redis and LLM backends are optional:
// without REDIS_ADDR reports stay in memory and policies use the built-in
// default, and without a configured provider all generation is template-based.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	simCfg, err := config.LoadSimConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation config: %w", err)
	}

	classifier := intent.NewClassifier(categoriesFrom(simCfg))

	var llmClient llm.Client
	if cfg.DefaultProvider != "" {
		llmClient, err = createLLMClient(ctx, cfg.DefaultProvider, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	sessions := store.NewSessionStore()
	stream := logstream.NewBroadcaster(logger)

	var reports store.ReportStore = store.NewMemoryReportStore()
	var policyStore policy.Store
	if cfg.RedisAddr != "" {
		client, err := redisconn.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, 5)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		reports = store.NewRedisReportStore(client, time.Duration(cfg.ReportTTLHours)*time.Hour, logger)
		policyStore = policy.NewCachedStore(policy.NewRedisStore(client, logger), policy.DefaultTTL, logger)
	}

	orch := orchestrator.New(simCfg, orchestrator.Deps{
		Classifier:    classifier,
		LLMClient:     llmClient,
		PolicyStore:   policyStore,
		Sessions:      sessions,
		Reports:       reports,
		Stream:        stream,
		ResponderMode: orchestrator.ResponderMode(cfg.ResponderMode),
		WidgetURL:     cfg.WidgetURL,
		Seed:          cfg.Seed,
	}, logger)

	return &Dependencies{
		Orchestrator: orch,
		SimConfig:    simCfg,
		Sessions:     sessions,
		Reports:      reports,
		Stream:       stream,
		Logger:       logger,
	}, nil
}

func categoriesFrom(simCfg *config.SimConfig) []intent.Category {
	categories := make([]intent.Category, 0, len(simCfg.Categories))
	for _, category := range simCfg.Categories {
		categories = append(categories, intent.Category{
			Label:    category.Label,
			Keywords: category.Keywords,
		})
	}
	return categories
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.Client, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	}
}
