package flow

import (
	"fmt"
	"math"
	"strings"

	"github.com/hireloop/assessd/internal/model"
)

// Summary is the presentable digest of a graded outcome.
type Summary struct {
	Correct  int
	Gradable int
	Total    int
	// Percent is correct over gradable items, rounded to the nearest
	// whole number. Meaningless when Scored is false.
	Percent int
	// Scored is false when the test had no gradable items at all, e.g.
	// a test of only code and scenario questions.
	Scored bool
}

// Summarize reduces an attempt result to its headline numbers. Free-form
// items never enter the percentage denominator.
func Summarize(outcome *model.AttemptResult) Summary {
	s := Summary{Total: len(outcome.Details)}
	for i := range outcome.Details {
		d := &outcome.Details[i]
		if !d.Gradable {
			continue
		}
		s.Gradable++
		if d.IsCorrect {
			s.Correct++
		}
	}
	if s.Gradable > 0 {
		s.Scored = true
		s.Percent = int(math.Round(float64(s.Correct) / float64(s.Gradable) * 100))
	}
	return s
}

// RenderText formats the outcome for a terminal. The per-question
// breakdown shows the submitted answer, the reference answer for graded
// items, and the explanation where one exists.
func RenderText(outcome *model.AttemptResult) string {
	s := Summarize(outcome)

	var b strings.Builder
	if s.Scored {
		fmt.Fprintf(&b, "Score: %d%% (%d/%d correct", s.Percent, s.Correct, s.Gradable)
		if s.Total > s.Gradable {
			fmt.Fprintf(&b, ", %d items pending manual review", s.Total-s.Gradable)
		}
		b.WriteString(")\n")
	} else {
		b.WriteString("This assessment has no auto-graded questions. Your answers have been recorded for review.\n")
	}

	for i := range outcome.Details {
		d := &outcome.Details[i]
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, d.Question)

		submitted := d.Submitted
		if submitted == "" {
			submitted = "(no answer)"
		}
		fmt.Fprintf(&b, "   Your answer: %s\n", submitted)

		if d.Gradable {
			mark := "incorrect"
			if d.IsCorrect {
				mark = "correct"
			}
			// The server may omit the reference answer even for graded
			// items; render the verdict alone rather than trusting the
			// pointer.
			if d.Correct != nil {
				fmt.Fprintf(&b, "   Correct answer: %s [%s]\n", *d.Correct, mark)
			} else {
				fmt.Fprintf(&b, "   Marked %s.\n", mark)
			}
		} else {
			b.WriteString("   Recorded for manual review.\n")
		}
		if d.Explanation != "" {
			fmt.Fprintf(&b, "   Note: %s\n", d.Explanation)
		}
	}
	return b.String()
}
