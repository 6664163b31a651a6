// Package strava is a small client of the Strava v3 API covering what the
// viewer synchronises: the athlete, their gear and their activities.
package strava

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

var (
	ErrNotFound     = errors.New("not found upstream")
	ErrUnauthorized = errors.New("unauthorized")
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
	PerPage      int
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	Logger       retryablehttp.LeveledLogger
}

// Token is an OAuth access token with the refresh token that renews it.
// ExpiresAt is a unix timestamp; zero means the token never expires.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// Expired reports whether the token expires within the next minute.
func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt != 0 && now.Unix() >= t.ExpiresAt-60
}

// Client calls the Strava API with automatic retries on rate limiting and
// server errors. Expired access tokens are refreshed before a request.
type Client struct {
	cfg  Config
	http *retryablehttp.Client
	now  func() time.Time

	mutex     sync.Mutex
	token     Token
	onRefresh func(context.Context, Token) error
}

func NewClient(cfg Config, token Token) *Client {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 200
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	rc.Logger = cfg.Logger
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		cfg:   cfg,
		http:  rc,
		now:   time.Now,
		token: token,
	}
}

// OnTokenRefresh registers fn to be called with every refreshed token.
func (c *Client) OnTokenRefresh(fn func(context.Context, Token) error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onRefresh = fn
}

// Token returns the current token.
func (c *Client) Token() Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.token
}

// RefreshToken exchanges the refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context) (Token, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Client) refreshLocked(ctx context.Context) (Token, error) {
	if c.token.RefreshToken == "" {
		return Token{}, fmt.Errorf("no refresh token: %w", ErrUnauthorized)
	}

	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.token.RefreshToken)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.send(req)
	if err != nil {
		return Token{}, fmt.Errorf("failed to refresh token: %w", err)
	}

	token := Token{
		AccessToken:  body.Get("access_token").String(),
		RefreshToken: body.Get("refresh_token").String(),
		ExpiresAt:    body.Get("expires_at").Int(),
	}
	if token.AccessToken == "" {
		return Token{}, fmt.Errorf("token response without access token: %w", ErrUnauthorized)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = c.token.RefreshToken
	}
	c.token = token

	if c.onRefresh != nil {
		if err := c.onRefresh(ctx, token); err != nil {
			return token, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
	}
	return token, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.token.AccessToken == "" || c.token.Expired(c.now()) {
		if _, err := c.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.token.AccessToken, nil
}

// get requests path below the API base URL. A 401 answer refreshes the token
// once and repeats the request.
func (c *Client) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	result, err := c.getOnce(ctx, path, query)
	if !errors.Is(err, ErrUnauthorized) {
		return result, err
	}

	c.mutex.Lock()
	_, refreshErr := c.refreshLocked(ctx)
	c.mutex.Unlock()
	if refreshErr != nil {
		return gjson.Result{}, err
	}
	return c.getOnce(ctx, path, query)
}

func (c *Client) getOnce(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return gjson.Result{}, err
	}

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	return c.send(req)
}

func (c *Client) send(req *retryablehttp.Request) (gjson.Result, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response of %s: %w", req.URL.Path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return gjson.Result{}, fmt.Errorf("%s: %w", req.URL.Path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return gjson.Result{}, fmt.Errorf("%s: %w", req.URL.Path, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		message := gjson.GetBytes(body, "message").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return gjson.Result{}, fmt.Errorf("%s returned %d: %s", req.URL.Path, resp.StatusCode, message)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%s returned invalid JSON", req.URL.Path)
	}
	return gjson.ParseBytes(body), nil
}
