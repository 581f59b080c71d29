package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opscore/support-sim/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ReportStore persists finished test reports.
type ReportStore interface {
	Save(ctx context.Context, report *models.TestReport) error
	Get(ctx context.Context, testID string) (*models.TestReport, error)
}

// MemoryReportStore keeps reports in process memory; used in tests and when
// no Redis address is configured.
type MemoryReportStore struct {
	mu      sync.Mutex
	reports map[string]*models.TestReport
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{
		reports: make(map[string]*models.TestReport),
	}
}

func (m *MemoryReportStore) Save(_ context.Context, report *models.TestReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.TestID] = report
	return nil
}

func (m *MemoryReportStore) Get(_ context.Context, testID string) (*models.TestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report, ok := m.reports[testID]
	if !ok {
		return nil, nil
	}
	return report, nil
}

const reportKeyPrefix = "report:"

// RedisReportStore persists reports as JSON under report:{testId} with a TTL.
type RedisReportStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewRedisReportStore(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RedisReportStore {
	return &RedisReportStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisReportStore) Save(ctx context.Context, report *models.TestReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.TestID, err)
	}

	if err := r.client.Set(ctx, reportKeyPrefix+report.TestID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.TestID, err)
	}

	r.logger.Info().Str("test_id", report.TestID).Msg("report persisted")
	return nil
}

func (r *RedisReportStore) Get(ctx context.Context, testID string) (*models.TestReport, error) {
	raw, err := r.client.Get(ctx, reportKeyPrefix+testID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", testID, err)
	}

	var report models.TestReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", testID, err)
	}
	return &report, nil
}
