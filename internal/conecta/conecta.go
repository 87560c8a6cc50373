// Package conecta talks to the Recife "Conecta" gamification service. A
// service account authenticates with the OAuth2 password grant; the bearer
// token is cached and refreshed once when the service answers 401.
package conecta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"doacin/config"
	"doacin/internal/logger"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotConfigured = errors.New("conecta client not configured")
	ErrNoBalance     = errors.New("conecta response has no numeric balance")
)

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("conecta: unexpected status %d: %s", e.Code, e.Body)
}

type CheckInRequest struct {
	Document  string  `json:"document"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Requirement struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type Challenge struct {
	ID           json.Number   `json:"id"`
	Name         string        `json:"name"`
	Requirements []Requirement `json:"requirements"`
}

type Client struct {
	baseURL       string
	challengeID   string
	requirementID string
	username      string
	password      string
	oauth         oauth2.Config
	httpClient    *http.Client

	mu      sync.RWMutex
	token   *oauth2.Token
	refresh singleflight.Group

	log logger.Logger
}

// New returns nil when the service account is not configured. A nil
// *Client is safe to call and reports ErrNotConfigured.
func New(cfg config.Config) *Client {
	if !cfg.ConectaEnabled() {
		return nil
	}

	timeout := cfg.ConectaTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.ConectaBaseURL, "/"),
		challengeID:   cfg.ConectaChallengeID,
		requirementID: cfg.ConectaRequirementID,
		username:      cfg.ConectaUsername,
		password:      cfg.ConectaPassword,
		oauth: oauth2.Config{
			ClientID: cfg.ConectaClientID,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.ConectaAuthURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.New("conecta"),
	}
}

func (c *Client) Enabled() bool {
	return c != nil
}

// CheckInEnabled reports whether the challenge and requirement used for
// donation check-ins are configured.
func (c *Client) CheckInEnabled() bool {
	return c != nil && c.challengeID != "" && c.requirementID != ""
}

// CheckIn records a location check-in for the donor identified by document.
func (c *Client) CheckIn(ctx context.Context, req CheckInRequest) error {
	if !c.CheckInEnabled() {
		return ErrNotConfigured
	}

	path := fmt.Sprintf(
		"/api/check-in/location/challenge/%s/requirement/%s",
		c.challengeID,
		c.requirementID,
	)
	return c.doAuthorized(ctx, http.MethodPost, path, req, nil)
}

// Challenges lists the challenges visible to the service account. Used to
// discover the challenge and requirement IDs for configuration.
func (c *Client) Challenges(ctx context.Context) ([]Challenge, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}

	var challenges []Challenge
	if err := c.doAuthorized(ctx, http.MethodGet, "/api/self/challenges?size=50", nil, &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

// Self reads the balance of the donor owning accessToken. The donor's token
// is used as is; it is never refreshed here.
func (c *Client) Self(ctx context.Context, accessToken string) (int, error) {
	if c == nil {
		return 0, ErrNotConfigured
	}

	var body struct {
		Balance *float64 `json:"balance"`
	}
	err := c.do(ctx, http.MethodGet, "/api/self", nil, accessToken, &body)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return 0, fmt.Errorf("%w: %v", ErrNoBalance, err)
		}
		return 0, err
	}

	if body.Balance == nil {
		return 0, ErrNoBalance
	}
	return int(*body.Balance), nil
}

func (c *Client) doAuthorized(ctx context.Context, method, path string, in, out any) error {
	log := c.log.Function("doAuthorized")

	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	err = c.do(ctx, method, path, in, token.AccessToken, out)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		return err
	}

	log.Info("conecta rejected token, refreshing", "path", path)
	c.invalidate(token)

	token, err = c.currentToken(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, in, token.AccessToken, out)
}

func (c *Client) currentToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token.Valid() {
		return token, nil
	}

	result, err, _ := c.refresh.Do("token", func() (any, error) {
		c.mu.RLock()
		current := c.token
		c.mu.RUnlock()
		if current.Valid() {
			return current, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.httpClient.Timeout)
		defer cancel()
		fetchCtx = context.WithValue(fetchCtx, oauth2.HTTPClient, c.httpClient)

		fresh, err := c.oauth.PasswordCredentialsToken(fetchCtx, c.username, c.password)
		if err != nil {
			return nil, c.log.Function("currentToken").Err("failed to obtain conecta token", err)
		}

		c.mu.Lock()
		c.token = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*oauth2.Token), nil
}

// invalidate clears the cached token unless another caller already
// replaced it.
func (c *Client) invalidate(stale *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, in any, bearer string, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode conecta request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build conecta request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("conecta request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode conecta response: %w", err)
	}
	return nil
}
