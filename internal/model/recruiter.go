package model

import (
	"time"
)

// Recruiter represents a platform user who creates tests and reviews results.
type Recruiter struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecruiterLoginRequest is the payload for recruiter authentication.
type RecruiterLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
