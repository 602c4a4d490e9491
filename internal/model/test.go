package model

import (
	"time"

	"github.com/google/uuid"
)

// Test represents an assessment template a recruiter screens candidates with.
type Test struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Role            string    `json:"role"` // Position being screened for
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedBy       int       `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateTestRequest is the payload for creating a new test.
type CreateTestRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	Role            string `json:"role" binding:"required,min=2,max=255"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=480"`
}
