package rtdb

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenURI = "https://oauth2.googleapis.com/token"

	// Scopes required for authenticated database access.
	tokenScopes = "https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/firebase.database"

	assertionTTL = time.Hour
)

var (
	// ErrCredentialsMissing reports that neither an inline key payload nor
	// a key file was configured. Fatal at startup, never retried.
	ErrCredentialsMissing = errors.New("store credentials missing")
	// ErrCredentialsInvalid reports unparseable or incomplete key material.
	ErrCredentialsInvalid = errors.New("store credentials invalid")
)

// serviceAccount is the subset of the key payload the client needs.
type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// loadServiceAccount resolves the signing credentials from the inline
// payload or, failing that, a key file located by fallback search.
func loadServiceAccount(cfg Config) (*serviceAccount, *rsa.PrivateKey, error) {
	raw := cfg.CredentialsJSON
	if len(raw) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, nil, ErrCredentialsMissing
		}
		path, err := resolveKeyFile(cfg.CredentialsFile, cfg.SearchPaths)
		if err != nil {
			return nil, nil, err
		}
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCredentialsInvalid, err)
		}
	}

	var account serviceAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCredentialsInvalid, err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, nil, fmt.Errorf("%w: key payload missing client_email or private_key", ErrCredentialsInvalid)
	}
	if account.TokenURI == "" {
		account.TokenURI = defaultTokenURI
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCredentialsInvalid, err)
	}

	return &account, key, nil
}

// resolveKeyFile tries the path as given, then relative to each candidate
// directory, returning the first file that exists.
func resolveKeyFile(path string, searchDirs []string) (string, error) {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(wd, path))
		}
		for _, dir := range searchDirs {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: key file %q not found", ErrCredentialsMissing, path)
}

// mintToken exchanges a signed RS256 assertion for a bearer access token.
func mintToken(ctx context.Context, httpClient *http.Client, account *serviceAccount, key *rsa.PrivateKey) (string, time.Time, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   account.ClientEmail,
		"scope": tokenScopes,
		"aud":   account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: sign assertion: %v", ErrCredentialsInvalid, err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, account.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: token exchange: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: token exchange: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("%w: token endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil || grant.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("%w: malformed token response", ErrUnavailable)
	}

	expiry := now.Add(time.Duration(grant.ExpiresIn) * time.Second)
	return grant.AccessToken, expiry, nil
}
