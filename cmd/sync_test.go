package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/viper"

	"hoursync/config"
)

type everhourRecorder struct {
	mu      sync.Mutex
	paths   []string
	records []map[string]any
}

func (r *everhourRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("decode everhour body: %v", err)
		}
		r.mu.Lock()
		r.paths = append(r.paths, req.URL.Path)
		r.records = append(r.records, body)
		r.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}
}

func setupSyncCommand(t *testing.T, togglURL, everhourURL string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "hoursync.yaml")
	content := "toggl:\n  url: \"" + togglURL + "\"\n  api_key: \"toggl-key\"\n" +
		"everhour:\n  url: \"" + everhourURL + "\"\n  api_key: \"ev-key\"\n" +
		"log:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	viper.Reset()
	config.SetDefaults()
	t.Cleanup(func() {
		cfgFile = ""
		syncDryRun = false
		syncDBPath = ""
		syncDayOrder = ""
		viper.Reset()
		config.SetDefaults()
		rootCmd.SetArgs(nil)
	})
	return configPath
}

func TestSyncCommandDeliversOneRecordPerDay(t *testing.T) {
	toggl := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/v8/time_entries" {
			t.Errorf("unexpected toggl path %s", req.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id": 1, "pid": 5, "start": "2024-01-01T10:00:00Z", "duration": 900, "description": "B"},
			{"id": 2, "pid": 5, "start": "2024-01-01T09:00:00Z", "duration": 1800, "description": "A"},
			{"id": 3, "pid": 6, "start": "2024-01-01T11:00:00Z", "duration": 600, "description": "other"},
			{"id": 4, "pid": 5, "start": "2024-01-02T09:00:00Z", "duration": 600, "description": "C"}
		]`))
	}))
	defer toggl.Close()

	recorder := &everhourRecorder{}
	everhour := httptest.NewServer(recorder.handler(t))
	defer everhour.Close()

	configPath := setupSyncCommand(t, toggl.URL, everhour.URL)
	rootCmd.SetArgs([]string{"--configFile", configPath, "sync", "2024-01-01", "5", "ev:9"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if len(recorder.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recorder.records))
	}
	if recorder.paths[0] != "/tasks/ev:9/time" {
		t.Fatalf("unexpected everhour path %s", recorder.paths[0])
	}
	first := recorder.records[0]
	if first["date"] != "2024-01-01" || first["time"] != float64(2700) || first["comment"] != "A\nB" {
		t.Fatalf("unexpected first record: %v", first)
	}
}

func TestSyncCommandDryRunSendsNothing(t *testing.T) {
	toggl := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "pid": 5, "start": "2024-01-01T10:00:00Z", "duration": 900, "description": "B"}]`))
	}))
	defer toggl.Close()

	recorder := &everhourRecorder{}
	everhour := httptest.NewServer(recorder.handler(t))
	defer everhour.Close()

	configPath := setupSyncCommand(t, toggl.URL, everhour.URL)
	rootCmd.SetArgs([]string{"--configFile", configPath, "sync", "2024-01-01", "5", "ev:9", "--dry-run"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("sync dry-run failed: %v", err)
	}
	if len(recorder.records) != 0 {
		t.Fatalf("expected no records in dry-run, got %d", len(recorder.records))
	}
}

func TestSyncCommandRejectsInvalidTaskBeforeFetching(t *testing.T) {
	hits := 0
	toggl := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer toggl.Close()

	configPath := setupSyncCommand(t, toggl.URL, toggl.URL)
	rootCmd.SetArgs([]string{"--configFile", configPath, "sync", "2024-01-01", "5", "task-9"})
	err := rootCmd.Execute()

	var inputErr *InputValidationError
	if !errors.As(err, &inputErr) || inputErr.Field != "TaskID" {
		t.Fatalf("expected TaskID InputValidationError, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no toggl requests, got %d", hits)
	}
}
