package firegate

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/firegate/firegate/password"
)

// Config carries every tunable of the gate pipeline. Populate it once at
// startup (directly or via [ConfigFromEnv]) and hand it to [Builder].
type Config struct {
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
	Store     StoreConfig
	Password  password.Config
	Audit     AuditConfig
	Metrics   MetricsConfig
}

// JWTConfig configures credential signing. The secret and algorithm are
// process configuration, never negotiated per request.
type JWTConfig struct {
	Secret    []byte
	AccessTTL time.Duration
	Issuer    string
	Leeway    time.Duration
}

// RateLimitConfig configures the admission bucket: Rate requests per Per
// window for every distinct client key.
type RateLimitConfig struct {
	Rate float64
	Per  time.Duration
	// IdleTTL evicts buckets idle that long. Zero reproduces the
	// retain-forever behavior.
	IdleTTL time.Duration
	// TrustForwardedFor keys clients on the first X-Forwarded-For hop.
	TrustForwardedFor bool
}

// AdminConfig describes the reserved administrative identity synthesized
// without a store lookup.
type AdminConfig struct {
	Username string
	Email    string
	Password string
	Disabled bool
}

// StoreConfig points the default store client at the remote backend. Only
// consulted when no client is injected through [Builder.WithStore].
type StoreConfig struct {
	BaseURL         string
	CredentialsJSON []byte
	CredentialsFile string
	SearchPaths     []string
	Timeout         time.Duration
}

// AuditConfig configures async audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the counter registry.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig mirrors the original deployment defaults: 60 requests per
// 60 seconds, 10-minute credentials, the development admin identity.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Rate: 60,
			Per:  time.Minute,
		},
		Admin: AdminConfig{
			Username: "admin",
			Email:    "admin@example.com",
			Password: "admin_password_for_development",
		},
		Password: password.DefaultConfig(),
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate rejects configurations that cannot produce a working engine.
// Failures here are fatal at startup and never retried.
func (c Config) Validate() error {
	if len(c.JWT.Secret) == 0 {
		return errors.New("config: signing secret is required")
	}
	if c.RateLimit.Rate <= 0 {
		return errors.New("config: rate limit rate must be positive")
	}
	if c.RateLimit.Per <= 0 {
		return errors.New("config: rate limit window must be positive")
	}
	if c.Admin.Username == "" || c.Admin.Email == "" {
		return errors.New("config: admin identity is incomplete")
	}
	if c.Admin.Password == "" {
		return errors.New("config: admin password is required")
	}
	return nil
}

// ConfigFromEnv loads the original deployment's environment variables on
// top of DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.JWT.Secret = []byte(v)
	}
	if v, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RATE"), 64); err == nil && v > 0 {
		cfg.RateLimit.Rate = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_PER")); err == nil && v > 0 {
		cfg.RateLimit.Per = time.Duration(v) * time.Second
	}

	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		cfg.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.Admin.Email = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	cfg.Admin.Disabled = envBool("ADMIN_DISABLED")

	if v := os.Getenv("FIREBASE_URL"); v != "" {
		cfg.Store.BaseURL = v
	}
	if v := os.Getenv("FIREBASE_API_KEY"); v != "" {
		cfg.Store.CredentialsJSON = []byte(v)
	}
	if v := os.Getenv("FIREBASE_CERT_FILE_PATH"); v != "" {
		cfg.Store.CredentialsFile = v
	}

	return cfg
}

// cloneConfig deep-copies the mutable members so a caller holding the
// original cannot alter an engine after Build.
func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	out.Store.CredentialsJSON = cloneBytes(cfg.Store.CredentialsJSON)
	if cfg.Store.SearchPaths != nil {
		out.Store.SearchPaths = append([]string(nil), cfg.Store.SearchPaths...)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}
