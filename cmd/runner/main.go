package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/opscore/support-sim/internal/models"
	"github.com/opscore/support-sim/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	categories := flag.String("categories", "", "Comma-separated issue categories to test")
	persona := flag.String("persona", "", "Customer persona name (default: first configured persona)")
	count := flag.Int("count", 1, "Conversations per category")
	maxTurns := flag.Int("max-turns", 0, "Maximum customer turns per conversation (0 = configured default)")
	output := flag.String("output", "", "Output file for the JSON report (default: stdout)")
	minSuccessRate := flag.Float64("min-success-rate", 0, "Exit non-zero if the success rate falls below this (0 disables)")

	flag.Parse()

	if *categories == "" {
		log.Fatal().Msg("required flag -categories not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := setupGracefulShutdown()
	defer cancel()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	suiteCfg := models.SuiteConfig{
		Categories:               splitCategories(*categories),
		Persona:                  *persona,
		ConversationsPerCategory: *count,
		MaxTurns:                 *maxTurns,
	}

	testID := uuid.NewString()
	log.Info().
		Str("test_id", testID).
		Strs("categories", suiteCfg.Categories).
		Int("count", *count).
		Msg("Running test suite")

	report := deps.Orchestrator.RunSuite(ctx, testID, suiteCfg)

	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
		log.Info().Msg("Writing report to stdout")
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
		log.Info().Str("file", *output).Msg("Writing report to file")
	}

	encoder := json.NewEncoder(outputFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().
		Int("total", report.TotalConversations).
		Int("successful", report.SuccessfulConversations).
		Float64("success_rate", report.SuccessRate).
		Dur("duration", time.Since(startTime)).
		Msg("Suite complete")

	if *minSuccessRate > 0 {
		if !report.SuccessRateDefined {
			log.Fatal().Msg("Success rate undefined: no conversations were run")
		}
		if report.SuccessRate < *minSuccessRate {
			log.Error().
				Float64("success_rate", report.SuccessRate).
				Float64("threshold", *minSuccessRate).
				Msg("Success rate below threshold")
			os.Exit(1)
		}
	}
}

func setupGracefulShutdown() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Warn().Msg("Received interrupt signal, finishing current conversation...")
		cancel()
	}()

	return ctx, cancel
}

func splitCategories(raw string) []string {
	var categories []string
	for _, category := range strings.Split(raw, ",") {
		category = strings.TrimSpace(category)
		if category != "" {
			categories = append(categories, category)
		}
	}
	return categories
}
