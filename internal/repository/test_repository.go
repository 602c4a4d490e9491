package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/assessd/internal/model"
)

// TestRepository handles assessment test data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test by ID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.title, t.role, t.duration_minutes,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_by, t.created_at, t.updated_at
		 FROM tests t
		 WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Role, &t.DurationMinutes, &t.QuestionCount, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, role, duration_minutes, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Role, t.DurationMinutes, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// ListByRecruiter retrieves all tests created by a recruiter.
func (r *TestRepository) ListByRecruiter(ctx context.Context, recruiterID int) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, t.role, t.duration_minutes,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_by, t.created_at, t.updated_at
		 FROM tests t
		 WHERE t.created_by = $1
		 ORDER BY t.created_at DESC`, recruiterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Title, &t.Role, &t.DurationMinutes, &t.QuestionCount, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}
