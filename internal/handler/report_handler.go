package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/middleware"
	"github.com/hireloop/assessd/internal/response"
	"github.com/hireloop/assessd/internal/service"
)

// ReportHandler serves PDF attempt reports to recruiters and candidates.
type ReportHandler struct {
	reportService  *service.ReportService
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService, attemptService *service.AttemptService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		attemptService: attemptService,
		log:            log.With().Str("component", "report_handler").Logger(),
	}
}

// GetAttemptPDF godoc
// GET /api/v1/recruiter/attempts/:attempt_id/report
// Renders the attempt report on demand; nothing is pre-generated.
func (h *ReportHandler) GetAttemptPDF(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	pdf, err := h.reportService.BuildAttemptPDF(c.Request.Context(), attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
			return
		}
		h.log.Error().Err(err).Str("attempt_id", attemptID.String()).Msg("Report build failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attempt-%s.pdf"`, attemptID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetOwnReportPDF godoc
// GET /api/v1/assessment/report
// Serves the report for the entry token's own attempt. The token arrives
// as a query parameter; the RequireEntryToken middleware has already
// validated it and stashed the claims.
func (h *ReportHandler) GetOwnReportPDF(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), claims.TestID, claims.CandidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Attempt lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pdf, err := h.reportService.BuildAttemptPDF(c.Request.Context(), attempt.ID)
	if err != nil {
		h.log.Error().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Report build failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attempt-%s.pdf"`, attempt.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
