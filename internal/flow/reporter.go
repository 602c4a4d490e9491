package flow

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/model"
)

// Proctoring cadence. Heartbeats and snapshots run on independent
// tickers; neither waits for the other.
const (
	DefaultHeartbeatInterval = 20 * time.Second
	DefaultSnapshotInterval  = 30 * time.Second
)

// SnapshotSource captures one proctoring frame as a base64-encoded
// image. A capture error skips that beat; the ticker keeps running.
type SnapshotSource interface {
	Capture(ctx context.Context) (string, error)
}

// Reporter emits periodic proctoring signals for a running session.
// Every send is fire-and-forget: a missed beat is simply lost, with no
// retry, backoff, or queueing, and failures never reach the candidate.
type Reporter struct {
	client    *Client
	ident     model.HeartbeatRequest
	hbEvery   time.Duration
	snapEvery time.Duration
	snapshots SnapshotSource
	log       zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReporter creates a reporter for one session identity.
func NewReporter(client *Client, ident model.HeartbeatRequest, hbEvery, snapEvery time.Duration, snapshots SnapshotSource, log zerolog.Logger) *Reporter {
	return &Reporter{
		client:    client,
		ident:     ident,
		hbEvery:   hbEvery,
		snapEvery: snapEvery,
		snapshots: snapshots,
		log:       log.With().Str("component", "proctor_reporter").Logger(),
	}
}

// Start begins both tickers. The first beats fire after one full
// interval, not immediately.
func (r *Reporter) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)
}

func (r *Reporter) run(ctx context.Context) {
	defer close(r.done)

	heartbeat := time.NewTicker(r.hbEvery)
	defer heartbeat.Stop()
	snapshot := time.NewTicker(r.snapEvery)
	defer snapshot.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			r.client.SendHeartbeat(ctx, r.ident)
		case <-snapshot.C:
			r.sendSnapshot(ctx)
		}
	}
}

func (r *Reporter) sendSnapshot(ctx context.Context) {
	if r.snapshots == nil {
		return
	}
	image, err := r.snapshots.Capture(ctx)
	if err != nil {
		r.log.Debug().Err(err).Msg("Snapshot capture failed")
		return
	}
	r.client.SendSnapshot(ctx, model.SnapshotRequest{
		TestID:      r.ident.TestID,
		CandidateID: r.ident.CandidateID,
		Token:       r.ident.Token,
		ImageBase64: image,
	})
}

// Stop halts both tickers and waits for the loop to exit. Idempotent.
func (r *Reporter) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
