package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/response"
	"github.com/hireloop/assessd/internal/service"
	"github.com/hireloop/assessd/internal/validator"
)

// ProctorHandler ingests heartbeat and snapshot signals from running
// attempts. The candidate client fires these without awaiting the
// outcome, so failures here are invisible to candidates; they still get
// precise status codes for the benefit of logs and tests.
type ProctorHandler struct {
	authService    *service.AuthService
	attemptService *service.AttemptService
	proctorService *service.ProctorService
	log            zerolog.Logger
}

// NewProctorHandler creates a new ProctorHandler.
func NewProctorHandler(
	authService *service.AuthService,
	attemptService *service.AttemptService,
	proctorService *service.ProctorService,
	log zerolog.Logger,
) *ProctorHandler {
	return &ProctorHandler{
		authService:    authService,
		attemptService: attemptService,
		proctorService: proctorService,
		log:            log.With().Str("component", "proctor_handler").Logger(),
	}
}

// Heartbeat godoc
// POST /api/v1/assessment/heartbeat
func (h *ProctorHandler) Heartbeat(c *gin.Context) {
	var req model.HeartbeatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims, err := h.authService.ValidateEntryToken(req.Token)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), claims.TestID, claims.CandidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.proctorService.RecordHeartbeat(c.Request.Context(), claims.TestID, claims.CandidateID, attempt.ID); err != nil {
		h.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Heartbeat record failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"status": "recorded"})
}

// Snapshot godoc
// POST /api/v1/assessment/snapshot
func (h *ProctorHandler) Snapshot(c *gin.Context) {
	var req model.SnapshotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims, err := h.authService.ValidateEntryToken(req.Token)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), claims.TestID, claims.CandidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.proctorService.RecordSnapshot(c.Request.Context(), claims.TestID, claims.CandidateID, attempt.ID, req.ImageBase64); err != nil {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrSnapshotTooLarge)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"status": "recorded"})
}
