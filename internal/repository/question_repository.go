package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/assessd/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves a test's questions ordered by ordinal. The ordinal
// order is the wire order: callers must not reorder the slice.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, ordinal, prompt, type, options, reference, COALESCE(explanation, '')
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY ordinal ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.Ordinal, &q.Prompt, &q.Type, &q.Options, &q.Reference, &q.Explanation); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Add appends a question at the next free ordinal for the test.
func (r *QuestionRepository) Add(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (test_id, ordinal, prompt, type, options, reference, explanation)
		 VALUES ($1,
		         (SELECT COALESCE(MAX(ordinal) + 1, 0) FROM questions WHERE test_id = $1),
		         $2, $3, $4, NULLIF($5, ''), $6)
		 RETURNING id, ordinal`,
		q.TestID, q.Prompt, q.Type, q.Options, q.Reference, q.Explanation,
	).Scan(&q.ID, &q.Ordinal)
}
