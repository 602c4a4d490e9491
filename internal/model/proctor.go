package model

import (
	"time"

	"github.com/google/uuid"
)

// ProctorEventKind enumerates proctoring signal types.
type ProctorEventKind string

const (
	ProctorEventHeartbeat ProctorEventKind = "heartbeat"
	ProctorEventSnapshot  ProctorEventKind = "snapshot"
)

// ProctorEvent is a best-effort proctoring signal recorded during a
// running attempt. Ingestion never blocks the candidate's session.
type ProctorEvent struct {
	ID          int64            `json:"id"`
	AttemptID   uuid.UUID        `json:"attempt_id"`
	Kind        ProctorEventKind `json:"kind"`
	ImageBase64 string           `json:"image_base64,omitempty"` // Snapshot only
	RecordedAt  time.Time        `json:"recorded_at"`
}

// HeartbeatRequest is the periodic low-payload liveness signal.
// Field names mirror the candidate client wire format.
type HeartbeatRequest struct {
	TestID      uuid.UUID `json:"testId" binding:"required"`
	CandidateID uuid.UUID `json:"candidateId" binding:"required"`
	Token       string    `json:"token" binding:"required"`
}

// SnapshotRequest carries a proctoring image capture.
type SnapshotRequest struct {
	TestID      uuid.UUID `json:"testId" binding:"required"`
	CandidateID uuid.UUID `json:"candidateId" binding:"required"`
	Token       string    `json:"token" binding:"required"`
	ImageBase64 string    `json:"imageBase64" binding:"required"`
}
