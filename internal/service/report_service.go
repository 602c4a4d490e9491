package service

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/repository"
)

// ReportService renders completed attempts as PDF reports for recruiters.
type ReportService struct {
	attemptService *AttemptService
	attemptRepo    *repository.AttemptRepository
	candidateRepo  *repository.CandidateRepository
	testRepo       *repository.TestRepository
	proctorRepo    *repository.ProctorRepository
	log            zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	attemptService *AttemptService,
	attemptRepo *repository.AttemptRepository,
	candidateRepo *repository.CandidateRepository,
	testRepo *repository.TestRepository,
	proctorRepo *repository.ProctorRepository,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		attemptService: attemptService,
		attemptRepo:    attemptRepo,
		candidateRepo:  candidateRepo,
		testRepo:       testRepo,
		proctorRepo:    proctorRepo,
		log:            log.With().Str("component", "report_service").Logger(),
	}
}

// BuildAttemptPDF renders the full report for a completed attempt.
func (s *ReportService) BuildAttemptPDF(ctx context.Context, attemptID uuid.UUID) ([]byte, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	result, err := s.attemptService.GetResult(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	candidate, err := s.candidateRepo.GetByID(ctx, attempt.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}

	test, err := s.testRepo.GetByID(ctx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}

	proctoring, err := s.proctorRepo.Summarize(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("summarize proctoring: %w", err)
	}

	return renderPDF(test, candidate, attempt, result, proctoring)
}

func renderPDF(
	test *model.Test,
	candidate *model.Candidate,
	attempt *model.Attempt,
	result *model.AttemptResult,
	proctoring *repository.ProctorSummary,
) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 10, "Assessment Report", "", "L", false)
	pdf.Ln(2)

	gradable := 0
	for _, d := range result.Details {
		if d.Gradable {
			gradable++
		}
	}

	scoreLine := "Score: not graded (no gradable questions)"
	if gradable > 0 {
		pct := int(math.Round(result.Score / float64(gradable) * 100))
		scoreLine = fmt.Sprintf("Score: %.0f of %d gradable questions (%d%%)", result.Score, gradable, pct)
	}

	pdf.SetFont("Helvetica", "", 11)
	info := fmt.Sprintf("Candidate: %s <%s>\nTest: %s (%s)\n%s\nQuestions: %d\nHeartbeats: %d, Snapshots: %d",
		candidate.Name, candidate.Email,
		test.Title, test.Role,
		scoreLine,
		len(result.Details),
		proctoring.Heartbeats, proctoring.Snapshots,
	)
	if attempt.FinishedAt != nil {
		info += "\nSubmitted: " + attempt.FinishedAt.UTC().Format("2006-01-02 15:04 UTC")
	}
	pdf.MultiCell(0, 6, info, "", "L", false)
	pdf.Ln(4)

	for i, d := range result.Details {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Q%d. %s", i+1, d.Question), "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		answer := d.Submitted
		if answer == "" {
			answer = "(no answer)"
		}
		pdf.MultiCell(0, 5, "Answer: "+answer, "", "L", false)

		if d.Gradable {
			verdict := "Incorrect"
			if d.IsCorrect {
				verdict = "Correct"
			}
			line := verdict
			if d.Correct != nil && !d.IsCorrect {
				line += " (expected: " + *d.Correct + ")"
			}
			pdf.MultiCell(0, 5, line, "", "L", false)
		} else {
			pdf.MultiCell(0, 5, "Free-form: for manual review", "", "L", false)
		}

		if d.Explanation != "" {
			pdf.MultiCell(0, 5, "Note: "+d.Explanation, "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
