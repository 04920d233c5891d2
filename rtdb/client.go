package rtdb

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable reports that the remote store could not be reached or
// rejected a call. Read swallows it; ReadCheck surfaces it.
var ErrUnavailable = errors.New("store unavailable")

const (
	defaultTimeout    = 10 * time.Second
	tokenRefreshSlack = time.Minute
	maxResponseBytes  = 8 << 20
)

// Config describes the remote store endpoint and credential material.
type Config struct {
	// BaseURL is the store root, e.g. "https://example-rtdb.firebaseio.com".
	BaseURL string
	// CredentialsJSON is the inline service-account key payload. Takes
	// precedence over CredentialsFile.
	CredentialsJSON []byte
	// CredentialsFile names a key file resolved by fallback search.
	CredentialsFile string
	// SearchPaths are extra directories tried when resolving
	// CredentialsFile.
	SearchPaths []string
	// Timeout bounds every remote call. Defaults to 10s.
	Timeout time.Duration
	// HTTPClient overrides the transport; mainly a test seam.
	HTTPClient *http.Client
}

// Client mediates all access to the remote store. Construct exactly one per
// process and share it; the zero-I/O constructor plus the internal init
// guard preserve the one-connection invariant under concurrent first use.
type Client struct {
	config Config
	http   *http.Client

	mu          sync.Mutex
	ready       bool
	account     *serviceAccount
	signKey     *rsa.PrivateKey
	token       string
	tokenExpiry time.Time
}

// NewClient allocates a client. No I/O happens until the first operation
// or an explicit Initialize.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// Initialize eagerly establishes the signed connection. Idempotent: a ready
// client returns immediately, and a failure leaves the client retryable.
func (c *Client) Initialize(ctx context.Context) error {
	_, err := c.session(ctx)
	return err
}

// session returns a live bearer token, running the initialization sequence
// exactly once across concurrent callers. Holding the mutex across the
// token exchange is what prevents a second connection from being opened.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		account, key, err := loadServiceAccount(c.config)
		if err != nil {
			return "", err
		}

		token, expiry, err := mintToken(ctx, c.http, account, key)
		if err != nil {
			// Not ready: the next caller retries from scratch.
			return "", err
		}

		c.account = account
		c.signKey = key
		c.token = token
		c.tokenExpiry = expiry
		c.ready = true
		log.Info().Str("base_url", c.config.BaseURL).Msg("store connection established")
		return c.token, nil
	}

	if time.Until(c.tokenExpiry) < tokenRefreshSlack {
		token, expiry, err := mintToken(ctx, c.http, c.account, c.signKey)
		if err != nil {
			return "", err
		}
		c.token = token
		c.tokenExpiry = expiry
	}

	return c.token, nil
}

// invalidateToken drops the cached token so the next call re-mints it.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// Read returns the value at path, or nil when the path is empty. Transport
// failures are logged and also returned as nil: by return value alone a
// caller cannot distinguish "path empty" from "backend down". Callers that
// need the distinction use ReadCheck.
func (c *Client) Read(ctx context.Context, path string) map[string]any {
	value, err := c.ReadCheck(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("store read failed")
		return nil
	}
	return value
}

// ReadCheck is Read with the transport error kept out-of-band.
func (c *Client) ReadCheck(ctx context.Context, path string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("%w: malformed response at %q: %v", ErrUnavailable, path, err)
	}
	if value == nil {
		return nil, nil
	}

	node, ok := value.(map[string]any)
	if !ok {
		// Scalar leaves have no tree shape to hand back.
		log.Debug().Str("path", path).Msg("store path holds a non-object value")
		return nil, nil
	}
	return node, nil
}

// Write replaces the value at path. Reports success as a boolean; the
// failure cause is only in the log.
func (c *Client) Write(ctx context.Context, path string, value any) bool {
	if _, err := c.do(ctx, http.MethodPut, path, value); err != nil {
		log.Error().Err(err).Str("path", path).Msg("store write failed")
		return false
	}
	return true
}

// Update merges the partial value into the existing node at path.
func (c *Client) Update(ctx context.Context, path string, partial map[string]any) bool {
	if _, err := c.do(ctx, http.MethodPatch, path, partial); err != nil {
		log.Error().Err(err).Str("path", path).Msg("store update failed")
		return false
	}
	return true
}

// Delete removes the node at path.
func (c *Client) Delete(ctx context.Context, path string) bool {
	if _, err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		log.Error().Err(err).Str("path", path).Msg("store delete failed")
		return false
	}
	return true
}

// EnsureDefault writes def at path only when the path is empty. Idempotent:
// a populated path is left untouched.
func (c *Client) EnsureDefault(ctx context.Context, path string, def any) bool {
	if existing := c.Read(ctx, path); len(existing) > 0 {
		log.Debug().Str("path", path).Msg("default entry already present")
		return true
	}

	if !c.Write(ctx, path, def) {
		return false
	}
	log.Info().Str("path", path).Msg("created default entry")
	return true
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode payload for %q: %v", ErrUnavailable, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.nodeURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	return data, nil
}

func (c *Client) nodeURL(path string) string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	node := strings.Trim(path, "/")
	if node == "" {
		return base + "/.json"
	}
	return base + "/" + node + ".json"
}
