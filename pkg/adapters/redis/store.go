// Package redis persists the latest status report per source in Redis,
// letting a restarted server answer status queries before sources report
// again. Implements ports.StatusStore.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/tillgrid/tillgrid/pkg/domain"
)

// Store implements ports.StatusStore on Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for stored reports. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for reports.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "tillgrid:status:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(sourceID string) string {
	return s.prefix + sourceID
}

// Save implements ports.StatusStore. The previous report for the source is
// overwritten; only the latest matters.
func (s *Store) Save(ctx context.Context, report domain.StatusReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal status report %s: %w", report.SourceID, err)
	}
	if err := s.client.Set(ctx, s.key(report.SourceID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save status report %s: %w", report.SourceID, err)
	}
	return nil
}

// Load implements ports.StatusStore. A missing source is (zero, false, nil),
// not an error.
func (s *Store) Load(ctx context.Context, sourceID string) (domain.StatusReport, bool, error) {
	data, err := s.client.Get(ctx, s.key(sourceID)).Bytes()
	if err == backend.Nil {
		return domain.StatusReport{}, false, nil
	}
	if err != nil {
		return domain.StatusReport{}, false, fmt.Errorf("load status report %s: %w", sourceID, err)
	}
	var report domain.StatusReport
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.StatusReport{}, false, fmt.Errorf("decode status report %s: %w", sourceID, err)
	}
	return report, true, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
