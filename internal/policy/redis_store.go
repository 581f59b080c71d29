package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opscore/support-sim/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "policy:"

// RedisStore reads policy documents stored as JSON under policy:{title}.
type RedisStore struct {
	client *redis.Client
	logger *zerolog.Logger
}

func NewRedisStore(client *redis.Client, logger *zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

func (s *RedisStore) Fetch(ctx context.Context, title string) (*models.PolicyDocument, error) {
	raw, err := s.client.Get(ctx, keyPrefix+title).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch policy %q: %w", title, err)
	}

	var doc models.PolicyDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode policy %q: %w", title, err)
	}

	return &doc, nil
}

// Save stores a policy document; used by the seeding command.
func (s *RedisStore) Save(ctx context.Context, doc *models.PolicyDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode policy %q: %w", doc.Title, err)
	}

	if err := s.client.Set(ctx, keyPrefix+doc.Title, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save policy %q: %w", doc.Title, err)
	}

	s.logger.Info().Str("title", doc.Title).Msg("policy saved")
	return nil
}
