package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/assessd/internal/model"
)

// ProctorSummary aggregates proctoring activity for one attempt.
type ProctorSummary struct {
	Heartbeats    int        `json:"heartbeats"`
	Snapshots     int        `json:"snapshots"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
}

// ProctorRepository handles proctor event data access. Writes go through
// the proctor worker; this repository serves recruiter-side reads.
type ProctorRepository struct {
	pool *pgxpool.Pool
}

// NewProctorRepository creates a new ProctorRepository.
func NewProctorRepository(pool *pgxpool.Pool) *ProctorRepository {
	return &ProctorRepository{pool: pool}
}

// Summarize returns heartbeat/snapshot counts and the last heartbeat time
// for an attempt.
func (r *ProctorRepository) Summarize(ctx context.Context, attemptID uuid.UUID) (*ProctorSummary, error) {
	s := &ProctorSummary{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE kind = $2),
		        COUNT(*) FILTER (WHERE kind = $3),
		        MAX(recorded_at) FILTER (WHERE kind = $2)
		 FROM proctor_events
		 WHERE attempt_id = $1`,
		attemptID, model.ProctorEventHeartbeat, model.ProctorEventSnapshot,
	).Scan(&s.Heartbeats, &s.Snapshots, &s.LastHeartbeat)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSnapshots retrieves snapshot events for an attempt, newest first.
func (r *ProctorRepository) ListSnapshots(ctx context.Context, attemptID uuid.UUID, limit int) ([]model.ProctorEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, kind, image_base64, recorded_at
		 FROM proctor_events
		 WHERE attempt_id = $1 AND kind = $2
		 ORDER BY recorded_at DESC
		 LIMIT $3`,
		attemptID, model.ProctorEventSnapshot, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ProctorEvent
	for rows.Next() {
		var e model.ProctorEvent
		if err := rows.Scan(&e.ID, &e.AttemptID, &e.Kind, &e.ImageBase64, &e.RecordedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
