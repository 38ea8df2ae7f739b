package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"namearchive/internal/config"
	"namearchive/internal/namestore"
)

const (
	defaultHTTPTimeout    = 15 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultMaxAttempts    = 3
)

// Sentinel failure classes surfaced after a call gives up. The resolution
// pipeline maps these onto HTTP statuses.
var (
	ErrUpstreamTimeout     = errors.New("gemini: upstream timeout")
	ErrUpstreamRateLimited = errors.New("gemini: upstream rate limited")
	ErrUpstreamUnavailable = errors.New("gemini: upstream unavailable")
	ErrMalformedResponse   = errors.New("gemini: malformed response")
)

// Client calls the Gemini generateContent endpoint.
type Client struct {
	cfg        config.Gemini
	httpClient *http.Client

	maxAttempts    int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	sleeper        func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a generation client from configuration.
func NewClient(cfg config.Gemini, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	client := &Client{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: timeout},
		maxAttempts:    attempts,
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Validation captures the admissibility verdict for a candidate name.
type Validation struct {
	Admissible bool
	Reason     string
}

// ValidateName asks the generation service whether candidate could plausibly
// be a personal given name.
func (c *Client) ValidateName(ctx context.Context, candidate string) (Validation, error) {
	var empty Validation
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return empty, errors.New("gemini validate: candidate required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return empty, errors.New("gemini validate: api key required")
	}

	content, err := c.generateWithRetry(ctx, validationPrompt(candidate), "gemini validate")
	if err != nil {
		return empty, err
	}

	var parsed struct {
		IsValidName bool   `json:"isValidName"`
		Reason      string `json:"reason"`
	}
	if err := decodeModelJSON(content, &parsed); err != nil {
		return empty, fmt.Errorf("%w: parse validation payload: %v", ErrMalformedResponse, err)
	}

	reason := strings.TrimSpace(parsed.Reason)
	if reason == "" {
		reason = "No reason provided"
	}
	if runes := []rune(reason); len(runes) > 500 {
		reason = string(runes[:500])
	}
	return Validation{Admissible: parsed.IsValidName, Reason: reason}, nil
}

// GenerateAnchors asks the generation service for sparse trend anchor points
// and sanitizes its output: out-of-range years are discarded, values are
// clamped to non-negative integers, and missing boundary years are backfilled
// from the nearest known year.
func (c *Client) GenerateAnchors(ctx context.Context, candidate string) (namestore.AnchorSet, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, errors.New("gemini generate: candidate required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("gemini generate: api key required")
	}

	content, err := c.generateWithRetry(ctx, anchorPrompt(candidate), "gemini generate")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Points map[string]float64 `json:"points"`
	}
	if err := decodeModelJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse anchor payload: %v", ErrMalformedResponse, err)
	}

	return sanitizeAnchors(parsed.Points), nil
}

func sanitizeAnchors(points map[string]float64) namestore.AnchorSet {
	anchors := namestore.AnchorSet{}
	for yearKey, value := range points {
		year, err := strconv.Atoi(strings.TrimSpace(yearKey))
		if err != nil || year < namestore.YearStart || year > namestore.YearEnd {
			continue
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		count := int64(math.Round(value))
		if count < 0 {
			count = 0
		}
		anchors[year] = count
	}

	if _, ok := anchors[namestore.YearStart]; !ok {
		if year, found := extremeYear(anchors, true); found {
			anchors[namestore.YearStart] = anchors[year]
		} else {
			anchors[namestore.YearStart] = 0
		}
	}
	if _, ok := anchors[namestore.YearEnd]; !ok {
		if year, found := extremeYear(anchors, false); found {
			anchors[namestore.YearEnd] = anchors[year]
		} else {
			anchors[namestore.YearEnd] = anchors[namestore.YearStart]
		}
	}
	return anchors
}

// extremeYear returns the minimum (or maximum) year present in anchors.
func extremeYear(anchors namestore.AnchorSet, min bool) (int, bool) {
	found := false
	extreme := 0
	for year := range anchors {
		if !found || (min && year < extreme) || (!min && year > extreme) {
			extreme = year
			found = true
		}
	}
	return extreme, found
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Client) generateWithRetry(ctx context.Context, prompt, op string) (string, error) {
	attempts := c.attempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return "", classifyFailure(op, attempt, err)
		}
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return "", sleepErr
		}
	}

	return "", classifyFailure(op, attempts, lastErr)
}

// classifyFailure folds the terminal error of a call into one of the sentinel
// failure classes while preserving the underlying cause.
func classifyFailure(op string, attempts int, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrUpstreamUnavailable)
	}
	if errors.Is(err, ErrMalformedResponse) {
		return fmt.Errorf("%s: %w", op, err)
	}

	sentinel := ErrUpstreamUnavailable
	var statusErr *httpStatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests:
		sentinel = ErrUpstreamRateLimited
	case isTimeout(err):
		sentinel = ErrUpstreamTimeout
	}
	return fmt.Errorf("%s: failed after %d attempts: %w: %v", op, attempts, sentinel, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusRequestTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, url.QueryEscape(c.cfg.APIKey))

	payload := generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      0.2,
			ResponseMimeType: "application/json",
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: http error (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	var completion generateResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("%w: api error: %s", ErrMalformedResponse, strings.TrimSpace(completion.Error.Message))
	}
	for _, candidate := range completion.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", fmt.Errorf("%w: empty candidates", ErrMalformedResponse)
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) attempts() int {
	if c == nil || c.maxAttempts <= 0 {
		return 1
	}
	return c.maxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	// Only a live caller context matters here: an expired http.Client.Timeout
	// also satisfies errors.Is(err, context.DeadlineExceeded), and that
	// attempt-level expiry must stay retryable.
	if errors.Is(err, context.Canceled) {
		return 0, false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	if isTimeout(err) {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := c.retryMaxDelay
	if base < 0 {
		base = defaultRetryBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if base <= 0 {
		return 0
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

// decodeModelJSON decodes JSON from a model response, stripping surrounding
// code fences when present.
func decodeModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := stripCodeFenceBlock(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return directErr
	}
	return json.Unmarshal([]byte(sanitized), target)
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
