package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/config"
	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/repository"
	ws "github.com/hireloop/assessd/internal/websocket"
)

// Attempt flow errors.
var (
	ErrAttemptCompleted    = errors.New("attempt already completed")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
)

// AttemptService handles the assessment attempt lifecycle: start, submit,
// grading, and result retrieval.
type AttemptService struct {
	attemptRepo  *repository.AttemptRepository
	questionRepo *repository.QuestionRepository
	testRepo     *repository.TestRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository,
	testRepo *repository.TestRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo:  attemptRepo,
		questionRepo: questionRepo,
		testRepo:     testRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "attempt_service").Logger(),
	}
}

// Start opens (or resumes) the attempt for a test-candidate pair and
// returns the question paper with reference answers stripped. Starting is
// idempotent: a re-start of an IN_PROGRESS attempt returns the same
// questions in the same order. A COMPLETED attempt cannot be re-entered.
//
// An empty question list is not an error; the candidate may submit an
// empty answers array immediately.
func (s *AttemptService) Start(ctx context.Context, testID, candidateID uuid.UUID) (*model.StartResponse, error) {
	attempt, err := s.getOrCreateAttempt(ctx, testID, candidateID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptStatusCompleted {
		return nil, ErrAttemptCompleted
	}

	questions, err := s.questionRepo.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	paper := make([]model.QuestionForCandidate, 0, len(questions))
	for i := range questions {
		paper = append(paper, questions[i].ForCandidate())
	}

	return &model.StartResponse{
		TestID:      testID,
		CandidateID: candidateID,
		Questions:   paper,
	}, nil
}

// Submit grades a positional answers array and completes the attempt
// atomically. Submitting an already-completed attempt returns the stored
// result instead of regrading, so client retries after a lost response
// are safe.
func (s *AttemptService) Submit(ctx context.Context, testID, candidateID uuid.UUID, answers []string) (*model.AttemptResult, error) {
	attempt, err := s.attemptRepo.GetByTestAndCandidate(ctx, testID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	if attempt.Status == model.AttemptStatusCompleted {
		return s.GetResult(ctx, attempt)
	}

	questions, err := s.questionRepo.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	// The payload is a fixed-length positional array: answers[i] belongs
	// to questions[i]. A mismatched length means a tampered or corrupted
	// submission and is rejected outright.
	if len(answers) != len(questions) {
		return nil, ErrAnswerCountMismatch
	}

	score, details := grade(questions, answers)

	if err := s.attemptRepo.Complete(ctx, attempt.ID, answers, score); err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}

	s.publishMonitorEvent(ctx, testID, ws.MonitorEvent{
		Kind:        ws.MonitorKindSubmitted,
		AttemptID:   attempt.ID.String(),
		CandidateID: candidateID.String(),
		Score:       &score,
	})

	return &model.AttemptResult{
		TestID:      testID,
		CandidateID: candidateID,
		Score:       score,
		Details:     details,
	}, nil
}

// GetResult rebuilds the graded breakdown of a completed attempt from
// stored answers. The score is read back as stored, not regraded.
func (s *AttemptService) GetResult(ctx context.Context, attempt *model.Attempt) (*model.AttemptResult, error) {
	if attempt.Status != model.AttemptStatusCompleted {
		return nil, errors.New("attempt is not completed")
	}

	questions, err := s.questionRepo.ListByTest(ctx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	stored, err := s.attemptRepo.ListAnswers(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	answers := make([]string, len(questions))
	for _, a := range stored {
		if a.Ordinal >= 0 && a.Ordinal < len(answers) {
			answers[a.Ordinal] = a.Answer
		}
	}

	_, details := grade(questions, answers)

	score := 0.0
	if attempt.Score != nil {
		score = *attempt.Score
	}

	return &model.AttemptResult{
		TestID:      attempt.TestID,
		CandidateID: attempt.CandidateID,
		Score:       score,
		Details:     details,
	}, nil
}

// GetAttempt resolves the attempt for a token's test-candidate pair.
func (s *AttemptService) GetAttempt(ctx context.Context, testID, candidateID uuid.UUID) (*model.Attempt, error) {
	return s.attemptRepo.GetByTestAndCandidate(ctx, testID, candidateID)
}

// GetAttemptByID retrieves an attempt by its ID.
func (s *AttemptService) GetAttemptByID(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	return s.attemptRepo.GetByID(ctx, attemptID)
}

func (s *AttemptService) getOrCreateAttempt(ctx context.Context, testID, candidateID uuid.UUID) (*model.Attempt, error) {
	existing, err := s.attemptRepo.GetByTestAndCandidate(ctx, testID, candidateID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing attempt: %w", err)
	}

	attempt := &model.Attempt{
		TestID:      testID,
		CandidateID: candidateID,
		Status:      model.AttemptStatusInProgress,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a concurrent create; the winner's row is authoritative.
			return s.attemptRepo.GetByTestAndCandidate(ctx, testID, candidateID)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptService) publishMonitorEvent(ctx context.Context, testID uuid.UUID, event ws.MonitorEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.TestMonitorChannel(testID.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Monitor publish failed")
	}
}

// grade scores a positional answers array against the question list.
// The score counts correct answers among gradable items only; free-form
// items (no reference answer) never affect it. Details come back in
// question order with an explicit gradable flag so consumers never have
// to infer gradability from an empty reference string.
func grade(questions []model.Question, answers []string) (float64, []model.AnswerDetail) {
	details := make([]model.AnswerDetail, 0, len(questions))
	correct := 0

	for i := range questions {
		q := &questions[i]

		submitted := ""
		if i < len(answers) {
			submitted = answers[i]
		}

		d := model.AnswerDetail{
			Question:    q.Prompt,
			Submitted:   submitted,
			Gradable:    q.Gradable(),
			Explanation: q.Explanation,
		}
		if d.Gradable {
			d.Correct = q.Reference
			d.IsCorrect = submitted == *q.Reference
			if d.IsCorrect {
				correct++
			}
		}
		details = append(details, d)
	}

	return float64(correct), details
}
