package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hireloop/assessd/internal/middleware"
	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/response"
	"github.com/hireloop/assessd/internal/service"
	"github.com/hireloop/assessd/internal/validator"
)

// RecruiterHandler handles test authoring, candidate registration, and
// invite issuance.
type RecruiterHandler struct {
	recruiterService *service.RecruiterService
	attemptService   *service.AttemptService
	proctorService   *service.ProctorService
}

// NewRecruiterHandler creates a new RecruiterHandler.
func NewRecruiterHandler(
	recruiterService *service.RecruiterService,
	attemptService *service.AttemptService,
	proctorService *service.ProctorService,
) *RecruiterHandler {
	return &RecruiterHandler{
		recruiterService: recruiterService,
		attemptService:   attemptService,
		proctorService:   proctorService,
	}
}

// CreateTest godoc
// POST /api/v1/recruiter/tests
func (h *RecruiterHandler) CreateTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.recruiterService.CreateTest(c.Request.Context(), claims.RecruiterID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// ListTests godoc
// GET /api/v1/recruiter/tests
func (h *RecruiterHandler) ListTests(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	tests, err := h.recruiterService.ListTests(c.Request.Context(), claims.RecruiterID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if tests == nil {
		tests = []model.Test{}
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// AddQuestion godoc
// POST /api/v1/recruiter/tests/:test_id/questions
// Appends a question at the end of the test. Ordinals are assigned
// server-side; there is no reordering endpoint, because the served order
// is part of the submission wire contract.
func (h *RecruiterHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.recruiterService.GetOwnedTest(c.Request.Context(), testID, claims.RecruiterID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	question, err := h.recruiterService.AddQuestion(c.Request.Context(), test, &req)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"detail": err.Error()})
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// CreateCandidate godoc
// POST /api/v1/recruiter/candidates
func (h *RecruiterHandler) CreateCandidate(c *gin.Context) {
	var req model.CreateCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidate, err := h.recruiterService.CreateCandidate(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"candidate": candidate})
}

// Invite godoc
// POST /api/v1/recruiter/invites
// Issues the signed entry token for one candidate-test pair.
func (h *RecruiterHandler) Invite(c *gin.Context) {
	var req model.InviteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.recruiterService.Invite(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"token": token})
}

// GetAttemptStatus godoc
// GET /api/v1/recruiter/attempts/:attempt_id
// Returns the attempt record plus live presence from the heartbeat cache.
func (h *RecruiterHandler) GetAttemptStatus(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.GetAttemptByID(c.Request.Context(), attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	lastSeen, err := h.proctorService.LastSeen(c.Request.Context(), attemptID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"attempt":        attempt,
		"last_seen_unix": lastSeen,
	})
}
