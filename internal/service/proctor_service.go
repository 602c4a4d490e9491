package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/config"
	ws "github.com/hireloop/assessd/internal/websocket"
)

// ProctorService ingests best-effort proctoring signals. Ingestion is
// decoupled from persistence: events land in a Redis queue drained by the
// proctor worker, and a stripped copy goes to the test's monitor channel.
// Nothing here is allowed to block or fail the candidate's session.
type ProctorService struct {
	cfg *config.Config
	rdb *redis.Client
	log zerolog.Logger
}

// NewProctorService creates a new ProctorService.
func NewProctorService(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *ProctorService {
	return &ProctorService{
		cfg: cfg,
		rdb: rdb,
		log: log.With().Str("component", "proctor_service").Logger(),
	}
}

// QueuedProctorEvent is the wire format pushed to the proctor worker queue.
type QueuedProctorEvent struct {
	AttemptID   string `json:"attempt_id"`
	Kind        string `json:"kind"`
	ImageBase64 string `json:"image_base64,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// RecordHeartbeat refreshes the attempt's presence key and queues the
// heartbeat for persistence.
func (s *ProctorService) RecordHeartbeat(ctx context.Context, testID, candidateID, attemptID uuid.UUID) error {
	presenceKey := config.CacheKey.AttemptPresenceKey(attemptID.String())
	if err := s.rdb.Set(ctx, presenceKey, time.Now().Unix(), s.cfg.HeartbeatTTL).Err(); err != nil {
		return fmt.Errorf("set presence: %w", err)
	}

	s.enqueue(ctx, QueuedProctorEvent{
		AttemptID: attemptID.String(),
		Kind:      "heartbeat",
		Timestamp: time.Now().Unix(),
	})

	s.publish(ctx, testID, ws.MonitorEvent{
		Kind:        ws.MonitorKindHeartbeat,
		AttemptID:   attemptID.String(),
		CandidateID: candidateID.String(),
	})

	return nil
}

// RecordSnapshot queues a proctoring image capture for persistence.
// The monitor channel only gets a notification, never the image.
func (s *ProctorService) RecordSnapshot(ctx context.Context, testID, candidateID, attemptID uuid.UUID, imageBase64 string) error {
	if int64(len(imageBase64)) > s.cfg.MaxSnapshotBytes {
		return fmt.Errorf("snapshot exceeds %d bytes", s.cfg.MaxSnapshotBytes)
	}

	s.enqueue(ctx, QueuedProctorEvent{
		AttemptID:   attemptID.String(),
		Kind:        "snapshot",
		ImageBase64: imageBase64,
		Timestamp:   time.Now().Unix(),
	})

	s.publish(ctx, testID, ws.MonitorEvent{
		Kind:        ws.MonitorKindSnapshot,
		AttemptID:   attemptID.String(),
		CandidateID: candidateID.String(),
	})

	return nil
}

// LastSeen returns the Unix time of the attempt's most recent heartbeat,
// or zero if the presence key has expired.
func (s *ProctorService) LastSeen(ctx context.Context, attemptID uuid.UUID) (int64, error) {
	val, err := s.rdb.Get(ctx, config.CacheKey.AttemptPresenceKey(attemptID.String())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

func (s *ProctorService) enqueue(ctx context.Context, event QueuedProctorEvent) {
	payload, _ := json.Marshal(event)
	if err := s.rdb.RPush(ctx, config.WorkerKey.ProctorEventsQueue, payload).Err(); err != nil {
		// Best effort: a dropped event is lost, never retried.
		s.log.Warn().Err(err).Str("attempt_id", event.AttemptID).Msg("Proctor enqueue failed")
	}
}

func (s *ProctorService) publish(ctx context.Context, testID uuid.UUID, event ws.MonitorEvent) {
	payload, _ := json.Marshal(event)
	if err := s.rdb.Publish(ctx, config.CacheKey.TestMonitorChannel(testID.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Monitor publish failed")
	}
}
