package tillgrid

import (
	"context"
	"log/slog"

	"github.com/tillgrid/tillgrid/internal/config"
	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/bridge"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/incident"
	"github.com/tillgrid/tillgrid/pkg/ports"
	"github.com/tillgrid/tillgrid/pkg/session"
	"github.com/tillgrid/tillgrid/pkg/status"
	"github.com/tillgrid/tillgrid/pkg/transform"
)

// Version is the server version, overridable at build time via -ldflags.
var Version = "dev"

// Server is the assembled fleet server: registry, bridge, pipeline,
// translator and status cache wired over one transport.
type Server struct {
	transport ports.Transport
	inventory ports.Inventory
	keymap    ports.Keymap

	registry   *session.Registry
	bridge     *bridge.Bridge
	pipeline   *transform.Pipeline
	translator *incident.Translator
	cache      *status.Cache

	logger  *slog.Logger
	metrics *metrics.Metrics

	strictTransform bool
	errorSounds     []string
	incidents       ports.IncidentService
	generic         ports.GenericChannel
	bus             ports.EventBus
	statusStore     ports.StatusStore
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server-wide logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithInventory sets the device inventory collaborator.
func WithInventory(inventory ports.Inventory) Option {
	return func(s *Server) { s.inventory = inventory }
}

// WithKeymap sets the keymap collaborator used by the built-in strategies.
func WithKeymap(keymap ports.Keymap) Option {
	return func(s *Server) { s.keymap = keymap }
}

// WithIncidentService replaces the default in-memory incident recorder.
func WithIncidentService(incidents ports.IncidentService) Option {
	return func(s *Server) { s.incidents = incidents }
}

// WithGenericChannel sets the device-addressed channel for generic payloads.
func WithGenericChannel(generic ports.GenericChannel) Option {
	return func(s *Server) { s.generic = generic }
}

// WithEventBus sets the process-wide error event bus.
func WithEventBus(bus ports.EventBus) Option {
	return func(s *Server) { s.bus = bus }
}

// WithStatusStore enables write-through persistence for the status cache.
func WithStatusStore(store ports.StatusStore) Option {
	return func(s *Server) { s.statusStore = store }
}

// WithErrorSounds sets the sounds played on handled failures.
func WithErrorSounds(soundIDs ...string) Option {
	return func(s *Server) { s.errorSounds = soundIDs }
}

// WithStrictTransform makes strategy errors fail deliveries.
func WithStrictTransform() Option {
	return func(s *Server) { s.strictTransform = true }
}

// New assembles a server over the given transport.
func New(transport ports.Transport, opts ...Option) *Server {
	s := &Server{
		transport: transport,
		logger:    logging.NewNop(),
		metrics:   metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.inventory == nil {
		s.inventory = identityInventory{}
	}
	if s.generic == nil {
		s.generic = genericViaTransport{transport: transport}
	}
	if s.bus == nil {
		s.bus = loggingBus{logger: s.logger}
	}
	if s.incidents == nil {
		s.incidents = incident.NewRecorder(s.logger)
	}

	pipelineOpts := []transform.Option{
		transform.WithLogger(s.logger),
		transform.WithMetrics(s.metrics),
	}
	if s.strictTransform {
		pipelineOpts = append(pipelineOpts, transform.WithStrictMode())
	}
	s.pipeline = transform.NewPipeline(pipelineOpts...)
	s.pipeline.Register(transform.NewLocalizeStrategy(s.keymap))
	s.pipeline.Register(transform.NewKeyBindStrategy(s.keymap))

	s.registry = session.NewRegistry(s.newSession,
		session.WithRegistryLogger(s.logger),
		session.WithRegistryMetrics(s.metrics))

	s.bridge = bridge.New(s.registry,
		bridge.WithLogger(s.logger),
		bridge.WithMetrics(s.metrics))

	s.translator = incident.NewTranslator(s.incidents, s.generic, s.bus,
		incident.WithErrorSounds(s.errorSounds...),
		incident.WithLogger(s.logger),
		incident.WithMetrics(s.metrics))

	cacheOpts := []status.Option{
		status.WithLogger(s.logger),
		status.WithMetrics(s.metrics),
	}
	if s.statusStore != nil {
		cacheOpts = append(cacheOpts, status.WithStore(s.statusStore))
	}
	s.cache = status.NewCache(cacheOpts...)

	return s
}

// newSession is the registry factory: resolve the device record, build the
// session wired to the shared transport and pipeline, and seed the scope from
// the device's inventory parameters.
func (s *Server) newSession(terminal domain.TerminalID) *session.Session {
	opts := []session.SessionOption{
		session.WithTransformer(s.pipeline),
		session.WithSessionLogger(s.logger),
		session.WithSessionMetrics(s.metrics),
	}
	device, err := s.inventory.Describe(context.Background(), terminal)
	if err != nil {
		s.logger.Warn("device lookup failed, session starts without descriptor",
			"terminal", terminal.String(), "error", err)
		return session.New(terminal, s.transport, opts...)
	}
	opts = append(opts, session.WithDevice(device))
	sess := session.New(terminal, s.transport, opts...)
	s.seedDeviceSettings(sess, device)
	return sess
}

// seedDeviceSettings decodes the descriptor's parameter map and plants the
// typed values flow code and the translator read from scope. Undecodable
// parameters leave the session with defaults.
func (s *Server) seedDeviceSettings(sess *session.Session, device domain.DeviceDescriptor) {
	if len(device.Parameters) == 0 {
		return
	}
	settings, err := config.DecodeDeviceSettings(device.Parameters)
	if err != nil {
		s.logger.Warn("device settings undecodable, session starts without them",
			"terminal", sess.Terminal().String(), "error", err)
		return
	}
	if settings.Locale != "" {
		sess.SetScopeValue(domain.ScopeKeyLocale, settings.Locale)
	}
	if len(settings.ErrorSounds) > 0 {
		sess.SetScopeValue(domain.ScopeKeyErrorSounds, settings.ErrorSounds)
	}
}

// Registry returns the session registry.
func (s *Server) Registry() *session.Registry { return s.registry }

// Pipeline returns the outbound transformation pipeline, for registering
// additional strategies before Run.
func (s *Server) Pipeline() *transform.Pipeline { return s.pipeline }

// StatusCache returns the status cache & publisher.
func (s *Server) StatusCache() *status.Cache { return s.cache }

// Metrics returns the server's metrics bundle.
func (s *Server) Metrics() *metrics.Metrics { return s.metrics }

// HandleFailure routes a caught flow failure for the given terminal through
// the error translator. Unknown terminals are ignored: there is no session to
// present on.
func (s *Server) HandleFailure(ctx context.Context, terminal domain.TerminalID, failure error) {
	sess, ok := s.registry.Retrieve(terminal.ApplicationID, terminal.NodeID)
	if !ok {
		s.logger.Warn("failure for unknown terminal dropped",
			"terminal", terminal.String(), "error", failure)
		return
	}
	s.translator.Handle(ctx, sess, failure)
}

// Run consumes subscribe events until ctx is done or the transport feed
// closes.
func (s *Server) Run(ctx context.Context) {
	s.bridge.Run(ctx, s.transport)
}

// identityInventory is the fallback inventory: the node id doubles as the
// device id.
type identityInventory struct{}

func (identityInventory) Describe(_ context.Context, terminal domain.TerminalID) (domain.DeviceDescriptor, error) {
	return domain.DeviceDescriptor{
		DeviceID:      terminal.NodeID,
		ApplicationID: terminal.ApplicationID,
	}, nil
}

// genericViaTransport routes generic payloads through the transport, keyed by
// device id alone (node-addressed, empty application segment).
type genericViaTransport struct {
	transport ports.Transport
}

func (g genericViaTransport) SendMessage(ctx context.Context, deviceID string, payload any) error {
	terminal := domain.TerminalID{NodeID: deviceID}
	return g.transport.Deliver(ctx, terminal, &domain.Generic{DeviceID: deviceID, Payload: payload})
}

// loggingBus is the fallback event bus: events land in the log.
type loggingBus struct {
	logger *slog.Logger
}

func (b loggingBus) PublishError(_ context.Context, event domain.ErrorEvent) {
	b.logger.Error("error event",
		"application", event.ApplicationID, "device", event.DeviceID, "error", event.Failure)
}
