package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
)

// MaxRetries bounds the attempts of one Execute call. Each 401 consumes an attempt.
const MaxRetries = 2

const (
	graphQLPath = "graphql"

	msgMaxRetries  = "Request failed - max retries exceeded"
	msgLoginFailed = "Login failed"
)

// Session is the token owner the executor consults and renews.
type Session interface {
	Token() (*oauth2.Token, bool)
	Login(ctx context.Context) error
	Renew(ctx context.Context, stale string) error
}

// Client sends GraphQL operations to the A. O. Smith API.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	endpoint  *url.URL
	UserAgent string
	logger    *slog.Logger
	session   Session

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching the API.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// NewClient returns a new GraphQL executor.
// If a nil httpClient is provided, http.DefaultClient will be used.
func NewClient(httpClient *http.Client, baseURL string, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.InvalidParametersError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}
	endpoint, err := parsedURL.Parse(graphQLPath)
	if err != nil {
		return nil, &pkgerrs.InvalidParametersError{Field: "BaseURL", Message: err.Error()}
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	return &Client{
		client:    httpClient,
		BaseURL:   parsedURL,
		endpoint:  endpoint,
		UserAgent: userAgent,
		logger:    loggerOrDiscard(logger),
		limiter:   buildLimiter(*rateCfg),
	}, nil
}

// SetSession attaches the token owner. It must be called before the first
// Execute with loginRequired.
func (c *Client) SetSession(s Session) {
	c.session = s
}

// Execute sends op and decodes the response data into out.
//
// With loginRequired, a missing token triggers a login first and the token is
// sent as a bearer header. A 401 renews the session and replays op, up to
// MaxRetries attempts in total. Every failure is a pkg/errors DomainError.
func (c *Client) Execute(ctx context.Context, op Operation, loginRequired bool, out any) error {
	logger := c.logger.With("operation", op.Name, "call_id", uuid.NewString())
	start := time.Now()

	err := c.execute(ctx, logger, op, loginRequired, out)

	requestDuration.WithLabelValues(op.Name).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(op.Name, outcomeOf(err)).Inc()
	if err != nil {
		logger.Debug("operation failed", "error", err)
	}
	return err
}

func (c *Client) execute(ctx context.Context, logger *slog.Logger, op Operation, loginRequired bool, out any) error {
	for attempt := 0; ; attempt++ {
		if attempt >= MaxRetries {
			return &pkgerrs.UnknownError{Message: msgMaxRetries}
		}

		var token *oauth2.Token
		if loginRequired {
			var err error
			token, err = c.ensureToken(ctx)
			if err != nil {
				return err
			}
		}

		logger.Debug("sending request", "attempt", attempt, "authenticated", token != nil)
		body, status, err := c.send(ctx, op, token)
		if err == nil {
			return DecodeResponse(body, out)
		}
		if status != http.StatusUnauthorized {
			return err
		}

		sessionRenewals.Inc()
		logger.Warn("session rejected", "attempt", attempt)
		if attempt+1 >= MaxRetries || op.login || c.session == nil {
			continue
		}

		stale := ""
		if token != nil {
			stale = token.AccessToken
		}
		if err := c.session.Renew(ctx, stale); err != nil {
			return err
		}
	}
}

func (c *Client) ensureToken(ctx context.Context) (*oauth2.Token, error) {
	if c.session == nil {
		return nil, &pkgerrs.UnknownError{Message: msgLoginFailed}
	}
	if token, ok := c.session.Token(); ok {
		return token, nil
	}
	if err := c.session.Renew(ctx, ""); err != nil {
		return nil, err
	}
	token, ok := c.session.Token()
	if !ok {
		return nil, &pkgerrs.UnknownError{Message: msgLoginFailed}
	}
	return token, nil
}

// send performs one HTTP round trip. On failure it returns a classified
// error and, when the server answered, its status code.
func (c *Client) send(ctx context.Context, op Operation, token *oauth2.Token) ([]byte, int, error) {
	if err := c.waitForRateLimit(ctx); err != nil {
		return nil, 0, &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}

	variables := op.Variables
	if variables == nil {
		variables = map[string]any{}
	}
	payload, err := json.Marshal(graphQLRequest{Query: op.Query, Variables: variables})
	if err != nil {
		return nil, 0, &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, 0, &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if token != nil {
		token.SetAuthHeader(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}
	defer resp.Body.Close()

	c.applyRateHeaders(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, &pkgerrs.UnknownError{
			Message:    fmt.Sprintf("Received status code %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}
	return body, resp.StatusCode, nil
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

// applyRateHeaders honours Retry-After (in seconds) on any response.
func (c *Client) applyRateHeaders(resp *http.Response) {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return
	}
	if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
		c.deferRequests(time.Duration(seconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}
