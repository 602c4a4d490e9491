package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/repository"
)

// RecruiterService handles recruiter accounts and test authoring.
type RecruiterService struct {
	recruiterRepo *repository.RecruiterRepository
	testRepo      *repository.TestRepository
	questionRepo  *repository.QuestionRepository
	candidateRepo *repository.CandidateRepository
	authService   *AuthService
}

// NewRecruiterService creates a new RecruiterService.
func NewRecruiterService(
	recruiterRepo *repository.RecruiterRepository,
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	candidateRepo *repository.CandidateRepository,
	authService *AuthService,
) *RecruiterService {
	return &RecruiterService{
		recruiterRepo: recruiterRepo,
		testRepo:      testRepo,
		questionRepo:  questionRepo,
		candidateRepo: candidateRepo,
		authService:   authService,
	}
}

// Login verifies recruiter credentials and issues a JWT.
func (s *RecruiterService) Login(ctx context.Context, email, password string) (string, *model.Recruiter, error) {
	recruiter, err := s.recruiterRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get recruiter: %w", err)
	}

	if err := s.authService.CheckPassword(recruiter.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.authService.IssueRecruiterToken(recruiter.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, recruiter, nil
}

// CreateAccount registers a recruiter with a hashed password.
func (s *RecruiterService) CreateAccount(ctx context.Context, name, email, password string) (*model.Recruiter, error) {
	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	recruiter := &model.Recruiter{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.recruiterRepo.Create(ctx, recruiter); err != nil {
		return nil, fmt.Errorf("create recruiter: %w", err)
	}
	return recruiter, nil
}

// CreateTest creates a test owned by a recruiter.
func (s *RecruiterService) CreateTest(ctx context.Context, recruiterID int, req *model.CreateTestRequest) (*model.Test, error) {
	test := &model.Test{
		Title:           req.Title,
		Role:            req.Role,
		DurationMinutes: req.DurationMinutes,
		CreatedBy:       recruiterID,
	}
	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	return test, nil
}

// ListTests returns a recruiter's tests.
func (s *RecruiterService) ListTests(ctx context.Context, recruiterID int) ([]model.Test, error) {
	return s.testRepo.ListByRecruiter(ctx, recruiterID)
}

// GetOwnedTest fetches a test and verifies the recruiter authored it.
func (s *RecruiterService) GetOwnedTest(ctx context.Context, testID uuid.UUID, recruiterID int) (*model.Test, error) {
	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}
	if test.CreatedBy != recruiterID {
		return nil, errors.New("not the test author")
	}
	return test, nil
}

// AddQuestion appends a question to a test. MCQ questions require exactly
// four options and a reference matching one of them.
func (s *RecruiterService) AddQuestion(ctx context.Context, test *model.Test, req *model.AddQuestionRequest) (*model.Question, error) {
	qtype := model.QuestionType(req.Type)

	if qtype == model.QuestionTypeMCQ {
		if len(req.Options) != 4 {
			return nil, errors.New("mcq questions require exactly 4 options")
		}
		found := false
		for _, opt := range req.Options {
			if opt == req.Reference {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New("reference must match one of the options")
		}
	} else if len(req.Options) > 0 {
		return nil, errors.New("only mcq questions carry options")
	}

	var reference *string
	if req.Reference != "" {
		reference = &req.Reference
	}

	question := &model.Question{
		TestID:      test.ID,
		Prompt:      req.Prompt,
		Type:        qtype,
		Options:     req.Options,
		Reference:   reference,
		Explanation: req.Explanation,
	}
	if err := s.questionRepo.Add(ctx, question); err != nil {
		return nil, fmt.Errorf("add question: %w", err)
	}
	return question, nil
}

// CreateCandidate registers a candidate.
func (s *RecruiterService) CreateCandidate(ctx context.Context, req *model.CreateCandidateRequest) (*model.Candidate, error) {
	candidate := &model.Candidate{
		Name:  req.Name,
		Email: req.Email,
	}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	return candidate, nil
}

// Invite issues the entry token a candidate uses to take a test. The
// token is the only credential for the whole assessment flow.
func (s *RecruiterService) Invite(ctx context.Context, req *model.InviteRequest) (string, error) {
	if _, err := s.testRepo.GetByID(ctx, req.TestID); err != nil {
		return "", fmt.Errorf("get test: %w", err)
	}
	if _, err := s.candidateRepo.GetByID(ctx, req.CandidateID); err != nil {
		return "", fmt.Errorf("get candidate: %w", err)
	}
	return s.authService.IssueEntryToken(req.TestID, req.CandidateID)
}
