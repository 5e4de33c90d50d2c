package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/reptrack/internal/backend"
	"github.com/verte-zerg/reptrack/internal/backend/fakebackend"
	"github.com/verte-zerg/reptrack/internal/model"
)

func newFixture(t *testing.T) (*fakebackend.Server, *backend.Client) {
	t.Helper()
	fake := fakebackend.New(fakebackend.Options{})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: 2 * time.Second, SessionID: "session-1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return fake, client
}

func TestNewClientValidatesURL(t *testing.T) {
	cases := []string{"", "localhost:8000", "ftp://example.com", "http://"}
	for _, raw := range cases {
		if _, err := backend.NewClient(backend.Config{BaseURL: raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestClientURLs(t *testing.T) {
	client, err := backend.NewClient(backend.Config{BaseURL: "https://tracker.local:8443/api/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got := client.VideoFeedURL(); got != "https://tracker.local:8443/api/video_feed" {
		t.Fatalf("unexpected video url %q", got)
	}
	if got := client.StatsSocketURL(); got != "wss://tracker.local:8443/api/ws/stats" {
		t.Fatalf("unexpected socket url %q", got)
	}
	if client.SessionID() == "" {
		t.Fatalf("expected generated session id")
	}
}

func TestStartStopReset(t *testing.T) {
	fake, client := newFixture(t)
	ctx := context.Background()

	if err := client.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !fake.Running() {
		t.Fatalf("expected backend running")
	}
	if err := client.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if fake.Running() {
		t.Fatalf("expected backend stopped")
	}

	fake.SetStats(model.Stats{TotalReps: 9, FormState: model.FormWrong, Stage: model.StageDown})
	stats, err := client.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if stats != model.DefaultStats() {
		t.Fatalf("expected default stats after reset, got %+v", stats)
	}
	for _, id := range fake.SessionIDs() {
		if id != "session-1" {
			t.Fatalf("expected session header on every request, got %q", id)
		}
	}
}

func TestStartFailureModes(t *testing.T) {
	for _, failure := range []fakebackend.Failure{fakebackend.FailStatus, fakebackend.FailBody} {
		fake, client := newFixture(t)
		fake.SetFailure(fakebackend.EndpointStart, failure)
		err := client.Start(context.Background())
		if err == nil {
			t.Fatalf("failure %d: expected error", failure)
		}
		if !errors.Is(err, backend.ErrCommandFailed) {
			t.Fatalf("failure %d: expected ErrCommandFailed, got %v", failure, err)
		}
		var cmdErr *backend.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Endpoint != "/camera/start" {
			t.Fatalf("failure %d: expected command error for start, got %v", failure, err)
		}
		if failure == fakebackend.FailBody && !strings.Contains(err.Error(), "Could not access camera") {
			t.Fatalf("expected backend message, got %q", err.Error())
		}
		if failure == fakebackend.FailStatus && cmdErr.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", cmdErr.StatusCode)
		}
	}
}

func TestNetworkFailureIsCommandError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client, err := backend.NewClient(backend.Config{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Start(context.Background()); !errors.Is(err, backend.ErrCommandFailed) {
		t.Fatalf("expected command failure, got %v", err)
	}
}

func TestResetRequiresStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "reset"}`))
	}))
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Reset(context.Background()); err == nil {
		t.Fatalf("expected error for missing stats")
	}
}

func TestStatsAndHealth(t *testing.T) {
	fake, client := newFixture(t)
	want := model.Stats{TotalReps: 3, FormState: model.FormCorrect, Stage: model.StageDown}
	fake.SetStats(want)
	ctx := context.Background()

	got, err := client.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	health, err := client.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "running" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Start(context.Background()); !errors.Is(err, backend.ErrCommandFailed) {
		t.Fatalf("expected timeout failure, got %v", err)
	}
}
