package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/response"
	"github.com/hireloop/assessd/internal/service"
	"github.com/hireloop/assessd/internal/validator"
)

// AuthHandler handles recruiter authentication.
type AuthHandler struct {
	recruiterService *service.RecruiterService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(recruiterService *service.RecruiterService) *AuthHandler {
	return &AuthHandler{recruiterService: recruiterService}
}

// RecruiterLogin godoc
// POST /api/v1/auth/recruiter/login
func (h *AuthHandler) RecruiterLogin(c *gin.Context) {
	var req model.RecruiterLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, recruiter, err := h.recruiterService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":     token,
		"recruiter": recruiter,
	})
}
