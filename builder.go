package tokensvc

import (
	"errors"
	"time"

	"github.com/coreauth/tokensvc/category"
	"github.com/coreauth/tokensvc/store"
	"github.com/coreauth/tokensvc/token"
)

// Builder assembles a Service from a Config and its collaborators.
type Builder struct {
	config Config
	client store.Client

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStoreClient sets the wide-column store client the Service persists
// records through.
func (b *Builder) WithStoreClient(client store.Client) *Builder {
	b.client = client
	return b
}

// WithAuditSink sets the sink Issue/Validate/Refresh emit AuditEvents to.
// When unset, Build installs a NoOpSink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Validate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the accumulated configuration and collaborators and
// returns an immutable *Service. A Builder may only be built once.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("tokensvc: builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.client == nil {
		return nil, errors.New("tokensvc: store client required")
	}

	signer, err := token.NewSigner(cfg.SecretSalt)
	if err != nil {
		return nil, err
	}

	maxAge := map[category.Category]time.Duration{
		category.Access:  normalizeAge(cfg.AccessTokenAge, DefaultAccessTokenAge),
		category.Refresh: normalizeAge(cfg.RefreshTokenAge, DefaultRefreshTokenAge),
		category.Email:   normalizeAge(cfg.EmailTokenAge, DefaultEmailTokenAge),
		category.Offline: normalizeAge(cfg.OfflineTokenAge, DefaultOfflineTokenAge),
	}
	codec := token.NewCodec(signer, maxAge)

	persistenceAge := normalizeAge(cfg.PersistenceAge, DefaultPersistenceTokenAge)
	adapter := store.NewAdapter(b.client, cfg.Keyspace, cfg.Family, persistenceAge)

	auditSink := b.auditSink
	if auditSink == nil {
		auditSink = NoOpSink{}
	}

	svc := &Service{
		config:  cfg,
		codec:   codec,
		adapter: adapter,
		audit:   auditSink,
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true

	return svc, nil
}
