package everhour

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "https://api.everhour.com"
	maxErrorBodyBytes = 4096
)

var taskIDPattern = regexp.MustCompile(`^ev:\d+$`)

// ValidTaskID reports whether value is an Everhour task reference like ev:123.
func ValidTaskID(value string) bool {
	return taskIDPattern.MatchString(value)
}

// TimeRecord is the body of a task time submission.
type TimeRecord struct {
	Time    int64  `json:"time"`
	Date    string `json:"date"`
	Comment string `json:"comment"`
}

// RateLimitedError is returned for HTTP 429. RetryAfter is only meaningful when
// HasRetryAfter is set.
type RateLimitedError struct {
	RetryAfter    time.Duration
	HasRetryAfter bool
}

func (e *RateLimitedError) Error() string {
	if !e.HasRetryAfter {
		return "everhour: rate limited"
	}
	return fmt.Sprintf("everhour: rate limited, retry after %s", e.RetryAfter)
}

// DeliveryError is any other non-2xx answer.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("everhour: request failed with status %d: %s", e.StatusCode, e.Body)
}

type Client interface {
	AddTime(ctx context.Context, taskID string, record TimeRecord) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid everhour base URL %q", cfg.BaseURL)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("everhour API key is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

// AddTime submits one record against taskID. It never retries; callers decide
// what to do with a *RateLimitedError.
func (c *HTTPClient) AddTime(ctx context.Context, taskID string, record TimeRecord) error {
	if !ValidTaskID(taskID) {
		return fmt.Errorf("invalid everhour task id %q", taskID)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal time record: %w", err)
	}

	endpointPath := "/tasks/" + url.PathEscape(taskID) + "/time"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpointPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request POST %s: %w", endpointPath, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request POST %s failed: %w", endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		retryAfter, ok := parseRetryAfter(resp.Header.Get("Retry-After"))
		return &RateLimitedError{RetryAfter: retryAfter, HasRetryAfter: ok}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(responseBody))}
	}
	return nil
}

// parseRetryAfter accepts the delay-seconds form only.
func parseRetryAfter(value string) (time.Duration, bool) {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
