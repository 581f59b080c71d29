package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/opscore/support-sim/internal/models"
	"github.com/opscore/support-sim/internal/policy"
	red "github.com/opscore/support-sim/internal/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	data := flag.String("d", "", "Inline JSON PolicyDocument")
	file := flag.String("f", "", "JSON file containing a list of policy documents")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(*data, *file); err != nil {
		log.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func run(data, file string) error {
	_ = godotenv.Load()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	client, err := red.Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"), 3)
	if err != nil {
		return err
	}
	defer client.Close()

	docs, err := loadDocuments(data, file)
	if err != nil {
		return err
	}

	store := policy.NewRedisStore(client, &log.Logger)
	for _, doc := range docs {
		if doc.Title == "" {
			return fmt.Errorf("policy document without a title")
		}
		if err := store.Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to save policy %s: %w", doc.Title, err)
		}
		log.Info().Str("title", doc.Title).Msg("Policy saved")
	}

	log.Info().Int("count", len(docs)).Msg("Seeding complete")
	return nil
}

func loadDocuments(data, file string) ([]*models.PolicyDocument, error) {
	switch {
	case data != "":
		var doc models.PolicyDocument
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse inline policy: %w", err)
		}
		return []*models.PolicyDocument{&doc}, nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var docs []*models.PolicyDocument
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse policy file: %w", err)
		}
		return docs, nil
	default:
		log.Info().Msg("No input given, seeding built-in policies")
		return defaultDocuments(), nil
	}
}

// defaultDocuments covers the standard issue categories so a fresh Redis
// instance is immediately usable.
func defaultDocuments() []*models.PolicyDocument {
	general := policy.DefaultPolicy()

	return []*models.PolicyDocument{
		general,
		{
			Title: "missing-points",
			Procedures: []string{
				"Ask for the store, purchase date, and receipt amount",
				"Verify the transaction against the loyalty ledger",
				"Re-credit the missing points with a concrete timeframe",
			},
			Policies: models.PolicyDetails{
				Timeframes:   []string{"3 business days"},
				Requirements: []string{"receipt or transaction id"},
			},
			Templates: []string{
				"I can re-credit the missing points within 3 business days.",
			},
			EscalationTriggers: []string{"supervisor", "chargeback"},
		},
		{
			Title: "account-access",
			Procedures: []string{
				"Confirm the account email before any change",
				"Send a password reset link",
				"Flag repeated lockouts for review",
			},
			Policies: models.PolicyDetails{
				Timeframes:   []string{"24 hours"},
				Requirements: []string{"account email"},
			},
			Templates: []string{
				"I have sent a reset link; it stays valid for 24 hours.",
			},
			EscalationTriggers: []string{"supervisor", "fraud"},
		},
		{
			Title: "reward-redemption",
			Procedures: []string{
				"Check the reward's point balance requirement",
				"Confirm the reward is still in stock",
				"Reissue failed redemptions",
			},
			Policies: models.PolicyDetails{
				Timeframes:   []string{"2 business days"},
				Requirements: []string{"reward id"},
			},
			Templates: []string{
				"I can reissue the redemption within 2 business days.",
			},
			EscalationTriggers: []string{"supervisor"},
		},
	}
}
