package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTTL is the credential lifetime used when Config.AccessTTL
// is left zero.
const DefaultAccessTTL = 10 * time.Minute

const signingAlg = "HS256"

// Config holds the process-wide signing parameters. The secret and
// algorithm are configuration, never negotiated per request.
type Config struct {
	// Secret signs and verifies every credential (HMAC-SHA256).
	Secret []byte
	// AccessTTL bounds credential lifetime. Defaults to DefaultAccessTTL.
	AccessTTL time.Duration
	// Issuer, when set, is stamped into and required from every credential.
	Issuer string
	// Leeway tolerates small clock skew during expiry validation.
	Leeway time.Duration
}

// Claims is the credential payload: subject identity plus role hint.
// The admin claim is a hint only; authorization re-checks the store.
type Claims struct {
	UserID string `json:"user_id"`
	Admin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies credentials for one signing configuration.
// Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates the signing configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if cfg.AccessTTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// Issue mints a credential for the subject with the configured TTL.
func (m *Manager) Issue(subject, userID string, admin bool) (string, error) {
	return m.IssueWithTTL(subject, userID, admin, m.config.AccessTTL)
}

// IssueWithTTL mints a credential expiring at now + ttl.
func (m *Manager) IssueWithTTL(subject, userID string, admin bool, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.config.AccessTTL
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Admin:  admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies signature, structure, and expiry and returns the claims.
// Any failure means the credential must be treated as unauthenticated;
// failures are never retried.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingAlg}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingAlg {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, errors.New("credential missing subject")
	}

	return claims, nil
}
