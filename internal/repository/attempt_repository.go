package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/assessd/internal/model"
)

// AttemptRepository handles assessment attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// GetByTestAndCandidate retrieves the attempt for a test-candidate pair.
func (r *AttemptRepository) GetByTestAndCandidate(ctx context.Context, testID, candidateID uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, candidate_id, status, score, started_at, finished_at
		 FROM attempts
		 WHERE test_id = $1 AND candidate_id = $2`, testID, candidateID,
	).Scan(&a.ID, &a.TestID, &a.CandidateID, &a.Status, &a.Score, &a.StartedAt, &a.FinishedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, candidate_id, status, score, started_at, finished_at
		 FROM attempts
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.TestID, &a.CandidateID, &a.Status, &a.Score, &a.StartedAt, &a.FinishedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt (candidate starts the assessment).
// A concurrent create for the same pair hits the unique constraint and
// returns pgx.ErrNoRows; callers re-fetch in that case.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (test_id, candidate_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (test_id, candidate_id) DO NOTHING
		 RETURNING id, started_at`,
		a.TestID, a.CandidateID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.StartedAt)
}

// Complete stores the answers and marks the attempt completed with its
// score, atomically. The answers slice is positional: answers[i] is the
// slot for ordinal i.
func (r *AttemptRepository) Complete(ctx context.Context, attemptID uuid.UUID, answers []string, score float64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for ordinal, answer := range answers {
		batch.Queue(
			`INSERT INTO attempt_answers (attempt_id, ordinal, answer)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (attempt_id, ordinal) DO UPDATE SET answer = EXCLUDED.answer`,
			attemptID, ordinal, answer,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	now := time.Now()
	if _, err := tx.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, score = $2, finished_at = $3
		 WHERE id = $4`,
		model.AttemptStatusCompleted, score, now, attemptID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListAnswers retrieves an attempt's stored answers in ordinal order.
func (r *AttemptRepository) ListAnswers(ctx context.Context, attemptID uuid.UUID) ([]model.AttemptAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT attempt_id, ordinal, answer
		 FROM attempt_answers
		 WHERE attempt_id = $1
		 ORDER BY ordinal ASC`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.AttemptAnswer
	for rows.Next() {
		var a model.AttemptAnswer
		if err := rows.Scan(&a.AttemptID, &a.Ordinal, &a.Answer); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
