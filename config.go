package tokensvc

import (
	"errors"
	"time"
)

// Default token ages. Exported so callers can compare a configured value
// against the out-of-the-box default without hard-coding it twice.
const (
	DefaultAccessTokenAge      = 24 * time.Hour
	DefaultRefreshTokenAge     = 7 * 24 * time.Hour
	DefaultEmailTokenAge       = 7 * 24 * time.Hour
	DefaultOfflineTokenAge     = 7 * 24 * time.Hour
	DefaultPersistenceTokenAge = 7 * 24 * time.Hour

	defaultSecretSalt = "super secret token value"
	defaultKeyspace   = "auth"
	defaultFamily     = "tokens"
)

/* ==== TOKEN SIGNING CONFIG ==== */

// Config is the token service's closed configuration surface.
type Config struct {
	// SecretSalt is mixed into every signature. There is no default in
	// production use; DefaultConfig's value exists only to make a
	// zero-friction Config usable in tests.
	SecretSalt string

	/* ==== TOKEN AGE CONFIG ==== */

	// PersistenceAge is the TTL applied to every column of every record.
	PersistenceAge time.Duration
	// AccessTokenAge is the maximum age of Access tokens.
	AccessTokenAge time.Duration
	// RefreshTokenAge is the maximum age of Refresh tokens.
	RefreshTokenAge time.Duration
	// EmailTokenAge is the maximum age of Email tokens.
	EmailTokenAge time.Duration
	// OfflineTokenAge is the maximum age of Offline tokens.
	OfflineTokenAge time.Duration

	/* ==== TOKEN BEHAVIOR CONFIG ==== */

	// ExpiresFromLastUse, when true, slides a token's effective absolute
	// expiration forward on every successful validation, to
	// accessed+AccessTokenAge (or the category's configured age),
	// whichever is later than the embedded expiration.
	ExpiresFromLastUse bool
	// RefreshReusesID, when true (the default), Refresh rewrites the
	// same record in place. When false, Refresh allocates a new
	// identifier and leaves the old record to expire via its TTL.
	RefreshReusesID bool

	/* ==== STORE CONFIG ==== */

	// Keyspace and Family address the wide-column store's "tokens"
	// family.
	Keyspace string
	Family   string

	/* ==== AUDIT CONFIG ==== */

	Audit AuditConfig

	/* ==== METRICS CONFIG ==== */

	Metrics MetricsConfig
}

// AuditConfig controls whether the service emits AuditEvents at all.
type AuditConfig struct {
	Enabled bool
}

// MetricsConfig controls counter and latency-histogram collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a Config with conservative out-of-the-box
// defaults. SecretSalt is set to a well-known placeholder value and must
// be overridden for any non-test deployment.
func DefaultConfig() Config {
	return Config{
		SecretSalt:         defaultSecretSalt,
		PersistenceAge:     DefaultPersistenceTokenAge,
		AccessTokenAge:     DefaultAccessTokenAge,
		RefreshTokenAge:    DefaultRefreshTokenAge,
		EmailTokenAge:      DefaultEmailTokenAge,
		OfflineTokenAge:    DefaultOfflineTokenAge,
		ExpiresFromLastUse: false,
		RefreshReusesID:    true,
		Keyspace:           defaultKeyspace,
		Family:             defaultFamily,
		Audit: AuditConfig{
			Enabled: false,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks that cfg's fields form a usable configuration. A
// non-positive age is not an error here; normalizeAge applies the
// "non-positive value falls back to the default" rule at the point each
// age is consumed.
func (c *Config) Validate() error {
	if c.SecretSalt == "" {
		return errors.New("tokensvc: SecretSalt must not be empty")
	}
	if c.Keyspace == "" {
		return errors.New("tokensvc: Keyspace must not be empty")
	}
	if c.Family == "" {
		return errors.New("tokensvc: Family must not be empty")
	}
	if normalizeAge(c.PersistenceAge, DefaultPersistenceTokenAge) <= 0 {
		return errors.New("tokensvc: PersistenceAge must resolve to a positive duration")
	}

	return nil
}

func cloneConfig(c Config) Config {
	return c
}

// normalizeAge falls back to fallback when age is zero or negative.
func normalizeAge(age, fallback time.Duration) time.Duration {
	if age <= 0 {
		return fallback
	}
	return age
}
