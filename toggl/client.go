package toggl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hoursync/internal/timeutil"
	"hoursync/timeentry"
)

const (
	DefaultBaseURL    = "https://api.track.toggl.com"
	timeEntriesPath   = "/api/v8/time_entries"
	apiTokenPassword  = "api_token"
	maxErrorBodyBytes = 4096
)

var (
	ErrNetwork           = errors.New("toggl: network error")
	ErrAuth              = errors.New("toggl: credentials rejected")
	ErrMalformedResponse = errors.New("toggl: malformed response")
)

// StatusError reports a non-2xx answer that is not an authentication failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("toggl: request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client lists time entries whose start lies in a range.
type Client interface {
	TimeEntries(ctx context.Context, from, to time.Time) ([]timeentry.Entry, error)
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
	authHeader string
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
		return nil, fmt.Errorf("invalid toggl base URL %q", cfg.BaseURL)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("toggl API key is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(apiKey + ":" + apiTokenPassword))
	return &HTTPClient{
		baseURL:    baseURL,
		authHeader: "Basic " + credentials,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

type timeEntryPayload struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"pid"`
	Start       string `json:"start"`
	Duration    int64  `json:"duration"`
	Description string `json:"description"`
}

func (p timeEntryPayload) toEntry() (timeentry.Entry, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(p.Start))
	if err != nil {
		return timeentry.Entry{}, fmt.Errorf("%w: entry id=%d has invalid start %q", ErrMalformedResponse, p.ID, p.Start)
	}
	return timeentry.Entry{
		ID:          p.ID,
		ProjectID:   p.ProjectID,
		Start:       start,
		Duration:    p.Duration,
		Description: p.Description,
	}, nil
}

// TimeEntries performs exactly one request for the range; the source returns
// all matching entries without pagination.
func (c *HTTPClient) TimeEntries(ctx context.Context, from, to time.Time) ([]timeentry.Entry, error) {
	query := url.Values{}
	query.Set("start_date", timeutil.ISOInstant(from))
	query.Set("end_date", timeutil.ISOInstant(to))

	var payload []timeEntryPayload
	if err := c.doJSON(ctx, http.MethodGet, timeEntriesPath+"?"+query.Encode(), &payload); err != nil {
		return nil, err
	}

	entries := make([]timeentry.Entry, 0, len(payload))
	for _, item := range payload {
		entry, err := item.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, nil)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request %s %s: %w", ErrNetwork, method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		body := strings.TrimSpace(string(responseBody))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: status %d: %s", ErrAuth, resp.StatusCode, body)
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrMalformedResponse, method, endpointPath, err)
	}
	return nil
}
