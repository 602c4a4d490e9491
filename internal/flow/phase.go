package flow

import (
	"github.com/hireloop/assessd/internal/model"
)

// PhaseKind tags the three phases of an assessment session.
type PhaseKind string

const (
	PhaseReady   PhaseKind = "ready"
	PhaseRunning PhaseKind = "running"
	PhaseResult  PhaseKind = "result"
)

// Phase is the tagged union of session states. Each variant carries only
// the data that phase owns: Ready the token, Running the question paper
// and answer drafts, Result the immutable outcome. Progression is
// strictly linear (Ready → Running → Result); a phase is never
// re-entered except by building a fresh session from a new token.
type Phase interface {
	Kind() PhaseKind
}

// Ready is the initial phase: the session holds a token and nothing else.
type Ready struct {
	Token string
}

// Kind implements Phase.
func (Ready) Kind() PhaseKind { return PhaseReady }

// Running holds the question paper and the in-memory answer drafts.
// Drafts live only here: closing the session loses them, which is
// accepted behavior, not a defect.
type Running struct {
	TestID      string
	CandidateID string
	Questions   []model.QuestionForCandidate
	drafts      map[int]string
}

// Kind implements Phase.
func (*Running) Kind() PhaseKind { return PhaseRunning }

// Result holds the immutable graded outcome.
type Result struct {
	Outcome *model.AttemptResult
}

// Kind implements Phase.
func (*Result) Kind() PhaseKind { return PhaseResult }
