package session

import (
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/domain"
)

const shardCount = 32

// Factory builds a new session for a terminal on first contact. The registry
// calls it at most once per identity while that identity is registered.
type Factory func(terminal domain.TerminalID) *Session

// Registry is the process-wide mapping from terminal identity to its live
// session. Sharded by identity hash so unrelated terminals never contend on
// one lock. Entries are never evicted implicitly; Remove is the explicit
// teardown hook for a decommission collaborator.
type Registry struct {
	factory Factory
	shards  [shardCount]registryShard
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type registryShard struct {
	mu       sync.RWMutex
	sessions map[domain.TerminalID]*Session
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// WithRegistryMetrics sets the metrics bundle.
func WithRegistryMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates an empty registry that uses factory on first contact.
func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		factory: factory,
		logger:  logging.NewNop(),
	}
	for i := range r.shards {
		r.shards[i].sessions = make(map[domain.TerminalID]*Session)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) shard(terminal domain.TerminalID) *registryShard {
	h := fnv.New32a()
	h.Write([]byte(terminal.ApplicationID))
	h.Write([]byte{0})
	h.Write([]byte(terminal.NodeID))
	return &r.shards[h.Sum32()%shardCount]
}

// Retrieve is a side-effect-free lookup.
func (r *Registry) Retrieve(applicationID, nodeID string) (*Session, bool) {
	terminal := domain.NewTerminalID(applicationID, nodeID)
	shard := r.shard(terminal)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	s, ok := shard.sessions[terminal]
	return s, ok
}

// CreateIfAbsent returns the live session for the identity, constructing and
// registering one if none exists. The existence check and the registration
// are atomic under the shard lock: concurrent first contacts for the same
// terminal always converge on a single instance, and the loser of the race
// receives the winner's session.
func (r *Registry) CreateIfAbsent(applicationID, nodeID string) *Session {
	terminal := domain.NewTerminalID(applicationID, nodeID)
	shard := r.shard(terminal)

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if existing, ok := shard.sessions[terminal]; ok {
		return existing
	}
	created := r.factory(terminal)
	shard.sessions[terminal] = created
	if r.metrics != nil {
		r.metrics.SessionsCreated.Inc()
		r.metrics.LiveSessions.Inc()
	}
	r.logger.Info("session created", "terminal", terminal.String())
	return created
}

// Remove tears down the entry for a terminal, if present. Intended for an
// external lifecycle collaborator on terminal decommission.
func (r *Registry) Remove(applicationID, nodeID string) {
	terminal := domain.NewTerminalID(applicationID, nodeID)
	shard := r.shard(terminal)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, ok := shard.sessions[terminal]; !ok {
		return
	}
	delete(shard.sessions, terminal)
	if r.metrics != nil {
		r.metrics.LiveSessions.Dec()
	}
	r.logger.Info("session removed", "terminal", terminal.String())
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		r.shards[i].mu.RLock()
		n += len(r.shards[i].sessions)
		r.shards[i].mu.RUnlock()
	}
	return n
}

// Snapshot returns the identities of all live sessions. Order is unspecified.
func (r *Registry) Snapshot() []domain.TerminalID {
	out := make([]domain.TerminalID, 0, r.Len())
	for i := range r.shards {
		r.shards[i].mu.RLock()
		for terminal := range r.shards[i].sessions {
			out = append(out, terminal)
		}
		r.shards[i].mu.RUnlock()
	}
	return out
}
