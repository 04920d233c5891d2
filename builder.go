package firegate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/firegate/firegate/internal/rate"
	"github.com/firegate/firegate/jwt"
	"github.com/firegate/firegate/password"
	"github.com/firegate/firegate/rtdb"
)

// Builder assembles an [Engine] from configuration and optional injected
// dependencies. Configure it during initialization and discard it after
// Build; a Builder is not safe for concurrent use.
type Builder struct {
	config Config
	store  Store
	redis  redis.UniversalClient

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore injects the tree store the engine reads identities from.
// When omitted, Build constructs an [rtdb.Client] from Config.Store.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithRedis backs the admission limiter with Redis so the bucket state is
// shared across replicas. When omitted the limiter keeps buckets in
// process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink routes audit events to sink. Without one, events are
// still dispatched but go to a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the counter registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires every component, and returns
// the engine. A Builder may be used for exactly one Build.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if cfg.Store.BaseURL == "" {
			return nil, errors.New("store required: inject one with WithStore or set Config.Store.BaseURL")
		}
		store = rtdb.NewClient(rtdb.Config{
			BaseURL:         cfg.Store.BaseURL,
			CredentialsJSON: cfg.Store.CredentialsJSON,
			CredentialsFile: cfg.Store.CredentialsFile,
			SearchPaths:     cfg.Store.SearchPaths,
			Timeout:         cfg.Store.Timeout,
		})
	}

	jm, err := jwt.NewManager(jwt.Config{
		Secret:    cfg.JWT.Secret,
		AccessTTL: cfg.JWT.AccessTTL,
		Issuer:    cfg.JWT.Issuer,
		Leeway:    cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	ph, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	rateCfg := rate.Config{
		Rate:    cfg.RateLimit.Rate,
		Per:     cfg.RateLimit.Per,
		IdleTTL: cfg.RateLimit.IdleTTL,
	}

	var limiter rate.Store
	if b.redis != nil {
		limiter = rate.NewRedis(b.redis, rateCfg)
	} else {
		limiter = rate.NewMemory(rateCfg)
	}

	engine := &Engine{
		config:       cfg,
		jwtManager:   jm,
		limiter:      limiter,
		store:        store,
		passwordHash: ph,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
	}
	if cfg.Metrics.Enabled {
		engine.metrics = newMetrics()
	}

	b.built = true

	return engine, nil
}
