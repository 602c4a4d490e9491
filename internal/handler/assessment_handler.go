package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/response"
	"github.com/hireloop/assessd/internal/service"
	"github.com/hireloop/assessd/internal/validator"
)

// AssessmentHandler handles the candidate-facing session endpoints.
// The entry token travels in the request body on these routes, matching
// the candidate client's wire format, so token validation happens here
// rather than in middleware.
type AssessmentHandler struct {
	authService    *service.AuthService
	attemptService *service.AttemptService
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(authService *service.AuthService, attemptService *service.AttemptService) *AssessmentHandler {
	return &AssessmentHandler{
		authService:    authService,
		attemptService: attemptService,
	}
}

// Start godoc
// POST /api/v1/assessment/start
// Opens (or resumes) the attempt bound to the entry token and returns the
// question paper. Completed attempts cannot be re-entered.
func (h *AssessmentHandler) Start(c *gin.Context) {
	var req model.StartRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims, err := h.authService.ValidateEntryToken(req.Token)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	paper, err := h.attemptService.Start(c.Request.Context(), claims.TestID, claims.CandidateID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptCompleted) {
			response.Fail(c, http.StatusConflict, response.ErrAttemptCompleted)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// Submit godoc
// POST /api/v1/assessment/submit
// Grades the positional answers array and completes the attempt. A
// resubmission of a completed attempt returns the stored result, so a
// client retry after a lost response converges on the same outcome.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims, err := h.authService.ValidateEntryToken(req.Token)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	answers := make([]string, len(req.Answers))
	for i, slot := range req.Answers {
		answers[i] = slot.Answer
	}

	result, err := h.attemptService.Submit(c.Request.Context(), claims.TestID, claims.CandidateID, answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerCountMismatch):
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerCount)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}
