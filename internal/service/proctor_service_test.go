package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/config"
)

func testProctorService(t *testing.T) (*ProctorService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		HeartbeatTTL:     time.Minute,
		MaxSnapshotBytes: 1024,
	}
	return NewProctorService(cfg, rdb, zerolog.Nop()), mr
}

func TestRecordHeartbeatSetsPresenceAndQueues(t *testing.T) {
	svc, mr := testProctorService(t)
	ctx := context.Background()
	testID, candidateID, attemptID := uuid.New(), uuid.New(), uuid.New()

	if err := svc.RecordHeartbeat(ctx, testID, candidateID, attemptID); err != nil {
		t.Fatalf("record heartbeat: %v", err)
	}

	if !mr.Exists(config.CacheKey.AttemptPresenceKey(attemptID.String())) {
		t.Fatal("presence key not set")
	}

	raw, err := mr.Lpop(config.WorkerKey.ProctorEventsQueue)
	if err != nil {
		t.Fatalf("queue pop: %v", err)
	}
	var event QueuedProctorEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("decode queued event: %v", err)
	}
	if event.Kind != "heartbeat" || event.AttemptID != attemptID.String() {
		t.Fatalf("unexpected queued event: %+v", event)
	}
}

func TestRecordSnapshotQueuesImage(t *testing.T) {
	svc, mr := testProctorService(t)
	ctx := context.Background()

	attemptID := uuid.New()
	if err := svc.RecordSnapshot(ctx, uuid.New(), uuid.New(), attemptID, "aGVsbG8="); err != nil {
		t.Fatalf("record snapshot: %v", err)
	}

	raw, err := mr.Lpop(config.WorkerKey.ProctorEventsQueue)
	if err != nil {
		t.Fatalf("queue pop: %v", err)
	}
	var event QueuedProctorEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("decode queued event: %v", err)
	}
	if event.Kind != "snapshot" || event.ImageBase64 != "aGVsbG8=" {
		t.Fatalf("unexpected queued event: %+v", event)
	}
}

func TestRecordSnapshotSizeLimit(t *testing.T) {
	svc, mr := testProctorService(t)
	ctx := context.Background()

	oversized := make([]byte, 2048)
	for i := range oversized {
		oversized[i] = 'a'
	}
	if err := svc.RecordSnapshot(ctx, uuid.New(), uuid.New(), uuid.New(), string(oversized)); err == nil {
		t.Fatal("oversized snapshot must be rejected")
	}
	if mr.Exists(config.WorkerKey.ProctorEventsQueue) {
		t.Fatal("rejected snapshot must not be queued")
	}
}

func TestLastSeen(t *testing.T) {
	svc, mr := testProctorService(t)
	ctx := context.Background()
	attemptID := uuid.New()

	// Unknown attempt reads as never seen.
	seen, err := svc.LastSeen(ctx, attemptID)
	if err != nil {
		t.Fatalf("last seen: %v", err)
	}
	if seen != 0 {
		t.Fatalf("expected 0 for unknown attempt, got %d", seen)
	}

	if err := svc.RecordHeartbeat(ctx, uuid.New(), uuid.New(), attemptID); err != nil {
		t.Fatalf("record heartbeat: %v", err)
	}
	seen, err = svc.LastSeen(ctx, attemptID)
	if err != nil {
		t.Fatalf("last seen: %v", err)
	}
	if seen == 0 {
		t.Fatal("expected a heartbeat timestamp")
	}

	// The presence key expires with its TTL.
	mr.FastForward(2 * time.Minute)
	seen, err = svc.LastSeen(ctx, attemptID)
	if err != nil {
		t.Fatalf("last seen after expiry: %v", err)
	}
	if seen != 0 {
		t.Fatalf("expected presence to expire, got %d", seen)
	}
}
