package model

import (
	"github.com/google/uuid"
)

// QuestionType tags the three question variants.
type QuestionType string

const (
	QuestionTypeMCQ      QuestionType = "mcq"
	QuestionTypeCode     QuestionType = "code"
	QuestionTypeScenario QuestionType = "scenario"
)

// Question represents a single assessment question. Ordinal is the
// authoritative position within the test; answer payloads are positional,
// so the question list must never be reordered or filtered between the
// database and the candidate.
type Question struct {
	ID          uuid.UUID    `json:"id"`
	TestID      uuid.UUID    `json:"test_id"`
	Ordinal     int          `json:"ordinal"`
	Prompt      string       `json:"prompt"`
	Type        QuestionType `json:"type"`
	Options     []string     `json:"options,omitempty"`     // Exactly 4 for mcq, empty otherwise
	Reference   *string      `json:"reference,omitempty"`   // Correct option; nil for free-form items
	Explanation string       `json:"explanation,omitempty"` // Shown in the result breakdown
}

// Gradable reports whether the question has a reference answer to grade
// against. Only gradable items count toward the score denominator.
func (q *Question) Gradable() bool {
	return q.Reference != nil && *q.Reference != ""
}

// QuestionForCandidate is a question with the reference answer stripped,
// as served to candidates at session start.
type QuestionForCandidate struct {
	Prompt  string       `json:"question"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// ForCandidate strips grading fields from a question.
func (q *Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		Prompt:  q.Prompt,
		Type:    q.Type,
		Options: q.Options,
	}
}

// AddQuestionRequest is the payload for adding a question to a test.
type AddQuestionRequest struct {
	Prompt      string   `json:"prompt" binding:"required,min=1,max=4000"`
	Type        string   `json:"type" binding:"required,oneof=mcq code scenario"`
	Options     []string `json:"options" binding:"omitempty,len=4,dive,min=1,max=500"`
	Reference   string   `json:"reference" binding:"omitempty,max=500"`
	Explanation string   `json:"explanation" binding:"omitempty,max=2000"`
}
