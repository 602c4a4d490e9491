package flow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/model"
)

type stubSnapshots struct {
	fail bool
}

func (s *stubSnapshots) Capture(context.Context) (string, error) {
	if s.fail {
		return "", errors.New("no camera")
	}
	return "aGVsbG8=", nil
}

func countingServer(heartbeats, snapshots *atomic.Int64, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/assessment/heartbeat":
			heartbeats.Add(1)
		case "/api/v1/assessment/snapshot":
			snapshots.Add(1)
		}
		w.WriteHeader(status)
	}))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestReporterSendsBothSignals(t *testing.T) {
	var heartbeats, snapshots atomic.Int64
	srv := countingServer(&heartbeats, &snapshots, http.StatusAccepted)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	rep := NewReporter(client, model.HeartbeatRequest{Token: "tok"},
		10*time.Millisecond, 15*time.Millisecond, &stubSnapshots{}, zerolog.Nop())
	rep.Start(context.Background())
	defer rep.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return heartbeats.Load() >= 2 && snapshots.Load() >= 2
	})
}

func TestReporterSwallowsFailuresAndKeepsTicking(t *testing.T) {
	var heartbeats, snapshots atomic.Int64
	srv := countingServer(&heartbeats, &snapshots, http.StatusInternalServerError)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	rep := NewReporter(client, model.HeartbeatRequest{Token: "tok"},
		10*time.Millisecond, time.Hour, nil, zerolog.Nop())
	rep.Start(context.Background())
	defer rep.Stop()

	// Failures must not stop the cadence: beats keep arriving.
	waitFor(t, 2*time.Second, func() bool {
		return heartbeats.Load() >= 3
	})
}

func TestReporterStops(t *testing.T) {
	var heartbeats, snapshots atomic.Int64
	srv := countingServer(&heartbeats, &snapshots, http.StatusAccepted)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	rep := NewReporter(client, model.HeartbeatRequest{Token: "tok"},
		10*time.Millisecond, time.Hour, nil, zerolog.Nop())
	rep.Start(context.Background())

	waitFor(t, 2*time.Second, func() bool { return heartbeats.Load() >= 1 })
	rep.Stop()

	after := heartbeats.Load()
	time.Sleep(50 * time.Millisecond)
	if heartbeats.Load() != after {
		t.Fatalf("reporter kept sending after stop: %d -> %d", after, heartbeats.Load())
	}

	// Stop twice is safe.
	rep.Stop()
}

func TestReporterSkipsFailedCaptures(t *testing.T) {
	var heartbeats, snapshots atomic.Int64
	srv := countingServer(&heartbeats, &snapshots, http.StatusAccepted)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	rep := NewReporter(client, model.HeartbeatRequest{Token: "tok"},
		10*time.Millisecond, 10*time.Millisecond, &stubSnapshots{fail: true}, zerolog.Nop())
	rep.Start(context.Background())
	defer rep.Stop()

	// Heartbeats flow while every capture fails; no snapshot is sent.
	waitFor(t, 2*time.Second, func() bool { return heartbeats.Load() >= 3 })
	if snapshots.Load() != 0 {
		t.Fatalf("expected no snapshots, got %d", snapshots.Load())
	}
}
