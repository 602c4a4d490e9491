package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates assessment attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)

// Attempt represents one candidate's pass through one test. A candidate
// gets at most one attempt per test; a completed attempt can never
// transition back to IN_PROGRESS.
type Attempt struct {
	ID          uuid.UUID     `json:"id"`
	TestID      uuid.UUID     `json:"test_id"`
	CandidateID uuid.UUID     `json:"candidate_id"`
	Status      AttemptStatus `json:"status"`
	Score       *float64      `json:"score,omitempty"` // Correct gradable answers
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
}

// AttemptAnswer is one stored answer slot, keyed by question ordinal.
type AttemptAnswer struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	Ordinal   int       `json:"ordinal"`
	Answer    string    `json:"answer"`
}

// StartRequest is the payload for starting an assessment session.
type StartRequest struct {
	Token string `json:"token" binding:"required"`
}

// StartResponse is the question paper served on session start.
type StartResponse struct {
	TestID      uuid.UUID              `json:"test_id"`
	CandidateID uuid.UUID              `json:"candidate_id"`
	Questions   []QuestionForCandidate `json:"questions"`
}

// AnswerSlot is one positional entry in the submission payload.
// Unanswered questions are submitted as an empty string, never omitted.
type AnswerSlot struct {
	Answer string `json:"answer"`
}

// SubmitRequest is the payload for submitting all answers in one request.
// Answers are positional: Answers[i] belongs to the question with ordinal i.
type SubmitRequest struct {
	Token   string       `json:"token" binding:"required"`
	Answers []AnswerSlot `json:"answers"`
}

// AnswerDetail is the per-question grading breakdown returned on submission.
type AnswerDetail struct {
	Question    string  `json:"question"`
	Submitted   string  `json:"submitted"`
	Correct     *string `json:"correct,omitempty"` // nil for free-form items
	IsCorrect   bool    `json:"is_correct"`
	Gradable    bool    `json:"gradable"`
	Explanation string  `json:"explanation,omitempty"`
}

// AttemptResult is the graded outcome of a submitted attempt.
// Score counts correct gradable answers; percentage computation is the
// presenter's job and must divide by the gradable count, not the total.
type AttemptResult struct {
	TestID      uuid.UUID      `json:"test_id"`
	CandidateID uuid.UUID      `json:"candidate_id"`
	Score       float64        `json:"score"`
	Details     []AnswerDetail `json:"details"`
}
