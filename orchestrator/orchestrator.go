package orchestrator

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/kbukum/deliverykit/delivery"
	"github.com/kbukum/deliverykit/kvstore"
	"github.com/kbukum/deliverykit/logger"
	"github.com/kbukum/deliverykit/mboxcache"
	"github.com/kbukum/deliverykit/notification"
	"github.com/kbukum/deliverykit/observability"
	"github.com/kbukum/deliverykit/session"
)

var errMissingTransport = stderrors.New("orchestrator: transport is required")

// Options wires an Orchestrator.
type Options struct {
	Config Config
	// Store persists identity and session fields. Required.
	Store kvstore.Store
	// Migrator runs once against Store before it is read.
	Migrator session.LegacyMigrator
	// Cache is used instead of a fresh one when set.
	Cache     *mboxcache.Cache
	Transport Transport
	Host      Host
	Preview   PreviewGate
	Device    delivery.DeviceProvider
	Identity  delivery.IdentityProvider
	Lifecycle delivery.LifecycleProvider
	Metrics   *observability.DeliveryMetrics
	Logger    *logger.Logger
	Now       func() time.Time
	// NewSessionID generates session ids. Defaults to random UUIDs.
	NewSessionID func() string
}

// Orchestrator runs delivery calls against shared session, cache and queue.
// It is safe for concurrent use. The orchestrator lock is always taken
// before the locks of the components it owns, and never held across a
// round trip or a Host callback.
type Orchestrator struct {
	mu        sync.Mutex
	cfg       Config
	state     *session.State
	cache     *mboxcache.Cache
	queue     *notification.Queue
	builder   *delivery.Builder
	processor *delivery.Processor
	transport Transport
	host      Host
	preview   PreviewGate
	metrics   *observability.DeliveryMetrics
	log       *logger.Logger
	now       func() time.Time
}

// New validates opts.Config and builds an Orchestrator with its state
// hydrated from opts.Store.
func New(ctx context.Context, opts Options) (*Orchestrator, error) {
	cfg := opts.Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Transport == nil {
		return nil, errMissingTransport
	}

	log := logger.OrGlobal(opts.Logger, "orchestrator")
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	state, err := session.New(ctx, session.Options{
		Store:      opts.Store,
		Migrator:   opts.Migrator,
		Timeout:    cfg.SessionWindow(),
		Privacy:    cfg.Privacy(),
		ClientCode: cfg.ClientCode,
		Logger:     opts.Logger,
		Now:        now,
		NewID:      opts.NewSessionID,
	})
	if err != nil {
		return nil, err
	}

	cache := opts.Cache
	if cache == nil {
		cache = mboxcache.New(opts.Logger)
	}
	host := opts.Host
	if host == nil {
		host = nopHost{}
	}

	o := &Orchestrator{
		cfg:       cfg,
		state:     state,
		cache:     cache,
		queue:     notification.NewQueue(cache, notification.Options{Logger: opts.Logger, Now: now}),
		builder:   delivery.NewBuilder(opts.Device, opts.Identity, opts.Lifecycle),
		processor: delivery.NewProcessor(state, cache, opts.Logger),
		transport: opts.Transport,
		host:      host,
		preview:   opts.Preview,
		metrics:   opts.Metrics,
		log:       log,
		now:       now,
	}
	log.Debug("orchestrator ready", logger.Fields(
		"client_code", cfg.ClientCode,
		"privacy", cfg.PrivacyStatus,
	))
	return o, nil
}

// Config returns the active configuration.
func (o *Orchestrator) Config() Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

// UpdateConfiguration applies a new configuration. A changed client code
// resets the edge host. Opting out clears identity, session and both cache
// tiers and discards pending notifications.
func (o *Orchestrator) UpdateConfiguration(ctx context.Context, cfg Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	before := o.state.Snapshot()
	o.cfg = cfg
	o.state.UpdateClientCode(ctx, cfg.ClientCode)
	o.state.SetTimeout(cfg.SessionWindow())
	o.state.SetPrivacy(cfg.Privacy())
	if cfg.Privacy() == session.PrivacyOptedOut {
		o.state.ResetAll(ctx)
		o.cache.ClearAll()
		o.metrics.RecordDroppedNotifications(ctx, "opted_out", len(o.queue.DrainAll()))
		o.log.Info("opted out, identity and content cleared")
	}
	after := o.state.Snapshot()
	o.mu.Unlock()

	if !before.IdentityEqual(after) {
		o.host.PublishState(ctx, after)
	}
	return nil
}

// ResetExperience clears identity, edge host, session and the prefetched tier.
func (o *Orchestrator) ResetExperience(ctx context.Context) {
	o.mu.Lock()
	o.state.ResetAll(ctx)
	o.cache.ClearPrefetched()
	snap := o.state.Snapshot()
	o.mu.Unlock()

	o.host.PublishState(ctx, snap)
}

// ClearPrefetchCache empties the prefetched tier.
func (o *Orchestrator) ClearPrefetchCache() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache.ClearPrefetched()
}

// SetTntID sets the primary visitor id. See session.State.SetTntID.
func (o *Orchestrator) SetTntID(ctx context.Context, id string) bool {
	return o.setAndPublish(ctx, func() bool { return o.state.SetTntID(ctx, id) })
}

// SetThirdPartyID sets the caller-supplied visitor id.
func (o *Orchestrator) SetThirdPartyID(ctx context.Context, id string) bool {
	return o.setAndPublish(ctx, func() bool { return o.state.SetThirdPartyID(ctx, id) })
}

// SetSessionID replaces the session id.
func (o *Orchestrator) SetSessionID(ctx context.Context, id string) bool {
	return o.setAndPublish(ctx, func() bool { return o.state.SetSessionID(ctx, id) })
}

func (o *Orchestrator) setAndPublish(ctx context.Context, set func() bool) bool {
	o.mu.Lock()
	changed := set()
	snap := o.state.Snapshot()
	o.mu.Unlock()

	if changed {
		o.host.PublishState(ctx, snap)
	}
	return changed
}

// TntID returns the primary visitor id.
func (o *Orchestrator) TntID() string { return o.state.TntID() }

// ThirdPartyID returns the caller-supplied visitor id.
func (o *Orchestrator) ThirdPartyID() string { return o.state.ThirdPartyID() }

// SessionID returns the current session id, starting a new session when the
// previous one expired.
func (o *Orchestrator) SessionID(ctx context.Context) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.CurrentSessionID(ctx)
}

// EdgeHost returns the edge host of the current session.
func (o *Orchestrator) EdgeHost(ctx context.Context) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.CurrentEdgeHost(ctx)
}

// Snapshot returns the stored identity and session fields.
func (o *Orchestrator) Snapshot() session.Snapshot { return o.state.Snapshot() }

// Cache returns the content cache.
func (o *Orchestrator) Cache() *mboxcache.Cache { return o.cache }

// PendingNotifications returns the number of queued notifications.
func (o *Orchestrator) PendingNotifications() int { return o.queue.Len() }
