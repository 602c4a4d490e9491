package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/assessd/internal/model"
)

// RecruiterRepository handles recruiter account data access.
type RecruiterRepository struct {
	pool *pgxpool.Pool
}

// NewRecruiterRepository creates a new RecruiterRepository.
func NewRecruiterRepository(pool *pgxpool.Pool) *RecruiterRepository {
	return &RecruiterRepository{pool: pool}
}

// GetByEmail retrieves a recruiter by email.
func (r *RecruiterRepository) GetByEmail(ctx context.Context, email string) (*model.Recruiter, error) {
	rec := &model.Recruiter{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM recruiters
		 WHERE email = $1`, email,
	).Scan(&rec.ID, &rec.Email, &rec.Name, &rec.PasswordHash, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts a new recruiter account.
func (r *RecruiterRepository) Create(ctx context.Context, rec *model.Recruiter) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO recruiters (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		rec.Email, rec.Name, rec.PasswordHash,
	).Scan(&rec.ID, &rec.CreatedAt)
}
