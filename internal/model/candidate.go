package model

import (
	"time"

	"github.com/google/uuid"
)

// Candidate represents an applicant invited to take an assessment.
type Candidate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCandidateRequest is the payload for registering a candidate.
type CreateCandidateRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// InviteRequest is the payload for issuing an assessment entry token.
type InviteRequest struct {
	TestID      uuid.UUID `json:"test_id" binding:"required"`
	CandidateID uuid.UUID `json:"candidate_id" binding:"required"`
}
