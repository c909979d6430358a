/*
Package status implements the per-source status cache and live publisher.

The cache keeps the latest report per source id (no history) and a live push
channel per device (last registerer wins). The two maps are independently
locked; recording a report never blocks on a slow channel, and registering a
channel never blocks on a writer.
*/
package status

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
)

// Reporter resolves the identity of a status source. Each concrete reporter
// decides how its source id is derived; an empty source id means the report
// is neither cached nor published (anonymous status is not tracked).
type Reporter interface {
	SourceID() string
	DeviceID() string
}

// Cache is the concurrently mutable status cache & publisher.
type Cache struct {
	channelMu sync.RWMutex
	channels  map[string]ports.LiveChannel // deviceID -> live channel

	latestMu sync.RWMutex
	latest   map[string]domain.StatusReport // sourceID -> latest report

	store   ports.StatusStore // optional write-through
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore enables write-through persistence of latest reports, with
// load-on-miss for sources recorded before the last restart.
func WithStore(store ports.StatusStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithMetrics sets the metrics bundle.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// NewCache creates an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		channels: make(map[string]ports.LiveChannel),
		latest:   make(map[string]domain.StatusReport),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetStatus registers (or overwrites) the live channel for the reporter's
// device, then returns the latest cached report for its source, or the fixed
// unknown sentinel if the source never reported. Registration always
// succeeds and never blocks on the channel.
func (c *Cache) GetStatus(ctx context.Context, channel ports.LiveChannel, reporter Reporter) domain.StatusReport {
	if deviceID := reporter.DeviceID(); deviceID != "" && channel != nil {
		c.channelMu.Lock()
		c.channels[deviceID] = channel
		c.channelMu.Unlock()
	}

	sourceID := reporter.SourceID()
	if sourceID == "" {
		return domain.UnknownStatus(sourceID)
	}

	c.latestMu.RLock()
	report, ok := c.latest[sourceID]
	c.latestMu.RUnlock()
	if ok {
		return report
	}

	if c.store != nil {
		if stored, found, err := c.store.Load(ctx, sourceID); err == nil && found {
			c.latestMu.Lock()
			// A concurrent writer may have recorded a fresher report.
			if current, ok := c.latest[sourceID]; ok {
				stored = current
			} else {
				c.latest[sourceID] = stored
			}
			c.latestMu.Unlock()
			return stored
		} else if err != nil {
			c.logger.Warn("status store load failed", "source", sourceID, "error", err)
		}
	}

	return domain.UnknownStatus(sourceID)
}

// RecordAndPublish overwrites the latest report for the reporter's source and
// pushes it to the device's registered channel, if any. Without a channel the
// report is retained in cache only. A reporter with no resolvable source id
// is a no-op.
func (c *Cache) RecordAndPublish(ctx context.Context, reporter Reporter, report domain.StatusReport) {
	sourceID := reporter.SourceID()
	if sourceID == "" {
		return
	}
	report.SourceID = sourceID

	c.latestMu.Lock()
	c.latest[sourceID] = report
	c.latestMu.Unlock()
	if c.metrics != nil {
		c.metrics.StatusReports.Inc()
	}

	if c.store != nil {
		if err := c.store.Save(ctx, report); err != nil {
			c.logger.Warn("status store save failed", "source", sourceID, "error", err)
		}
	}

	c.channelMu.RLock()
	channel, ok := c.channels[reporter.DeviceID()]
	c.channelMu.RUnlock()
	if ok {
		channel.Push(report)
	}
}

// Latest returns the cached report for a source id without touching channel
// registrations. Used by the admin surface.
func (c *Cache) Latest(ctx context.Context, sourceID string) domain.StatusReport {
	c.latestMu.RLock()
	report, ok := c.latest[sourceID]
	c.latestMu.RUnlock()
	if ok {
		return report
	}
	if c.store != nil {
		if stored, found, err := c.store.Load(ctx, sourceID); err == nil && found {
			return stored
		}
	}
	return domain.UnknownStatus(sourceID)
}
