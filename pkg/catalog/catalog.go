// Package catalog provides a client for the external game catalog's cover images.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/abrezinsky/heatroll/internal/logger"
)

// ErrCoverNotFound is returned when the catalog has no image for a reference
var ErrCoverNotFound = errors.New("cover not found")

// tokenSkew is subtracted from the token lifetime so a token is never used
// right at its expiry
const tokenSkew = 60 * time.Second

// maxCoverBytes bounds a single cover download
const maxCoverBytes = 5 << 20

// Config holds the catalog endpoint and client credentials
type Config struct {
	TokenURL     string
	ImageBaseURL string
	ClientID     string
	ClientSecret string
}

// Cover is a downloaded cover image
type Cover struct {
	Data        []byte
	ContentType string
}

// TokenResponse is the response from the client-credentials token endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Client defines the interface for catalog operations
type Client interface {
	// FetchCover downloads the cover image for a catalog reference
	FetchCover(ctx context.Context, ref string) (*Cover, error)
}

// HTTPClient is a real HTTP client for the catalog
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	log        logger.Logger
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewHTTPClient creates a new catalog HTTP client
func NewHTTPClient(cfg Config, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(cfg, &http.Client{Timeout: 30 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a new catalog client with a custom http.Client
func NewHTTPClientWithHTTPClient(cfg Config, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		cfg:        cfg,
		httpClient: httpClient,
		log:        log,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for token expiry
func (c *HTTPClient) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// accessToken returns the cached token, requesting a new one on first use or
// once the cached one has expired
func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	if c.cfg.TokenURL == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	params.Set("client_secret", c.cfg.ClientSecret)
	params.Set("grant_type", "client_credentials")

	c.log.Debug("Catalog token request", "url", c.cfg.TokenURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to connect to catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("catalog token endpoint returned status %d", resp.StatusCode)
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("catalog token response has no access_token")
	}

	lifetime := time.Duration(tok.ExpiresIn)*time.Second - tokenSkew
	if lifetime < 0 {
		lifetime = 0
	}
	c.token = tok.AccessToken
	c.expires = c.now().Add(lifetime)

	c.log.Info("Catalog token acquired", "expires_in", tok.ExpiresIn)
	return c.token, nil
}

// invalidate drops the cached token if it is still the one that failed
func (c *HTTPClient) invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == token {
		c.token = ""
		c.expires = time.Time{}
	}
}

// FetchCover downloads a cover. A 401 invalidates the cached token and the
// request is retried once with a fresh one.
func (c *HTTPClient) FetchCover(ctx context.Context, ref string) (*Cover, error) {
	if ref == "" {
		return nil, ErrCoverNotFound
	}

	cover, status, token, err := c.fetchCover(ctx, ref)
	if status == http.StatusUnauthorized {
		c.log.Debug("Catalog token rejected, refreshing")
		c.invalidate(token)
		cover, _, _, err = c.fetchCover(ctx, ref)
	}
	return cover, err
}

func (c *HTTPClient) fetchCover(ctx context.Context, ref string) (*Cover, int, string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, 0, "", err
	}

	reqURL := fmt.Sprintf("%s/%s.jpg", strings.TrimSuffix(c.cfg.ImageBaseURL, "/"), url.PathEscape(ref))
	c.log.Debug("Catalog request", "method", "GET", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, token, fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.cfg.ClientID != "" {
		req.Header.Set("Client-ID", c.cfg.ClientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, token, fmt.Errorf("failed to connect to catalog: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, resp.StatusCode, token, ErrCoverNotFound
	default:
		return nil, resp.StatusCode, token, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, resp.StatusCode, token, fmt.Errorf("failed to read cover: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &Cover{Data: data, ContentType: contentType}, resp.StatusCode, token, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
