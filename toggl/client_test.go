package toggl

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"hoursync/timeentry"
)

type fakeDoer struct {
	fn func(*http.Request) (*http.Response, error)
}

func (f fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return f.fn(req)
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(t *testing.T, doer httpDoer) *HTTPClient {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:    "https://toggl.example.test/",
		APIKey:     "secret-token",
		HTTPClient: doer,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestHTTPClient_TimeEntriesRequestAndDecode(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 2, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	calls := 0
	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		calls++
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if r.URL.Host != "toggl.example.test" || r.URL.Path != "/api/v8/time_entries" {
			t.Fatalf("unexpected url: %s", r.URL.String())
		}
		if got := r.URL.Query().Get("start_date"); got != "2024-01-01T00:00:00.000Z" {
			t.Fatalf("unexpected start_date: %q", got)
		}
		if got := r.URL.Query().Get("end_date"); got != "2024-01-02T23:59:59.999Z" {
			t.Fatalf("unexpected end_date: %q", got)
		}
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("secret-token:api_token"))
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected Content-Type: %q", got)
		}
		return textResponse(http.StatusOK, `[
			{"id": 1, "pid": 5, "start": "2024-01-01T09:00:00+00:00", "duration": 1800, "description": "A"},
			{"id": 2, "pid": 7, "start": "2024-01-01T10:00:00Z", "duration": -1704100000, "description": "running"}
		]`), nil
	}}

	entries, err := newTestClient(t, doer).TimeEntries(context.Background(), from, to)
	if err != nil {
		t.Fatalf("time entries: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ID != 1 || first.ProjectID != 5 || first.Duration != 1800 || first.Description != "A" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if !first.Start.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first start: %v", first.Start)
	}
	if !entries[1].Running() {
		t.Fatalf("expected second entry to be running")
	}
}

func TestHTTPClient_TimeEntriesErrors(t *testing.T) {
	t.Parallel()

	transportErr := errors.New("connection refused")
	tests := []struct {
		name     string
		response func() (*http.Response, error)
		check    func(t *testing.T, err error)
	}{
		{
			name:     "unauthorized",
			response: func() (*http.Response, error) { return textResponse(http.StatusUnauthorized, "bad token"), nil },
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrAuth) {
					t.Fatalf("expected ErrAuth, got %v", err)
				}
			},
		},
		{
			name:     "forbidden",
			response: func() (*http.Response, error) { return textResponse(http.StatusForbidden, ""), nil },
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrAuth) {
					t.Fatalf("expected ErrAuth, got %v", err)
				}
			},
		},
		{
			name:     "server error",
			response: func() (*http.Response, error) { return textResponse(http.StatusBadGateway, "upstream down"), nil },
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected StatusError, got %v", err)
				}
				if statusErr.StatusCode != http.StatusBadGateway || statusErr.Body != "upstream down" {
					t.Fatalf("unexpected status error: %+v", statusErr)
				}
			},
		},
		{
			name:     "transport failure",
			response: func() (*http.Response, error) { return nil, transportErr },
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNetwork) || !errors.Is(err, transportErr) {
					t.Fatalf("expected wrapped ErrNetwork, got %v", err)
				}
			},
		},
		{
			name:     "not a list",
			response: func() (*http.Response, error) { return textResponse(http.StatusOK, `{"data": []}`), nil },
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
			},
		},
		{
			name: "invalid start",
			response: func() (*http.Response, error) {
				return textResponse(http.StatusOK, `[{"id": 3, "pid": 5, "start": "yesterday", "duration": 60}]`), nil
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doer := fakeDoer{fn: func(*http.Request) (*http.Response, error) { return tc.response() }}
			_, err := newTestClient(t, doer).TimeEntries(context.Background(), time.Now(), time.Now())
			if err == nil {
				t.Fatalf("expected error")
			}
			tc.check(t, err)
		})
	}
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{APIKey: ""}); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "not a url", APIKey: "x"}); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
	client, err := NewClient(ClientConfig{APIKey: "x"})
	if err != nil {
		t.Fatalf("expected default base url to be accepted: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url: %s", client.baseURL)
	}
}

type fakeClient struct {
	entries []timeentry.Entry
	err     error
}

func (f fakeClient) TimeEntries(context.Context, time.Time, time.Time) ([]timeentry.Entry, error) {
	return f.entries, f.err
}

func TestFetchProjectEntries_FiltersProjectAndRunningEntries(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	client := fakeClient{entries: []timeentry.Entry{
		{ID: 1, ProjectID: 5, Start: start, Duration: 1800, Description: "A"},
		{ID: 2, ProjectID: 6, Start: start, Duration: 900, Description: "other project"},
		{ID: 3, ProjectID: 5, Start: start, Duration: -60, Description: "running"},
		{ID: 4, ProjectID: 5, Start: start, Duration: 0, Description: "zero"},
		{ID: 5, ProjectID: 5, Start: start.Add(-time.Hour), Duration: 60, Description: "earlier"},
	}}

	entries, err := FetchProjectEntries(context.Background(), client, start, start, 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	gotIDs := make([]int64, 0, len(entries))
	for _, entry := range entries {
		gotIDs = append(gotIDs, entry.ID)
	}
	want := []int64{1, 4, 5}
	if len(gotIDs) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestFetchProjectEntries_PropagatesError(t *testing.T) {
	t.Parallel()

	_, err := FetchProjectEntries(context.Background(), fakeClient{err: ErrAuth}, time.Now(), time.Now(), 5)
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}
