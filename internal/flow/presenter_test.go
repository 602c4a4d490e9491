package flow

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hireloop/assessd/internal/model"
)

func strPtr(s string) *string { return &s }

func TestSummarizePercentOverGradableOnly(t *testing.T) {
	outcome := &model.AttemptResult{
		Details: []model.AnswerDetail{
			{Gradable: true, IsCorrect: true, Correct: strPtr("A")},
			{Gradable: true, IsCorrect: false, Correct: strPtr("B")},
			{Gradable: true, IsCorrect: true, Correct: strPtr("C")},
			{Gradable: false, Submitted: "free-form essay"},
		},
	}

	s := Summarize(outcome)
	if !s.Scored {
		t.Fatal("expected scored outcome")
	}
	if s.Correct != 2 || s.Gradable != 3 || s.Total != 4 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	// 2/3 rounds to 67, not 50 (2/4): the denominator is the gradable
	// count, never the total question count.
	if s.Percent != 67 {
		t.Fatalf("expected 67%%, got %d%%", s.Percent)
	}
}

func TestSummarizeRounding(t *testing.T) {
	cases := []struct {
		correct, gradable int
		want              int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{0, 5, 0},
		{5, 5, 100},
	}
	for _, tc := range cases {
		details := make([]model.AnswerDetail, tc.gradable)
		for i := range details {
			details[i] = model.AnswerDetail{Gradable: true, IsCorrect: i < tc.correct, Correct: strPtr("A")}
		}
		s := Summarize(&model.AttemptResult{Details: details})
		if s.Percent != tc.want {
			t.Errorf("%d/%d: expected %d%%, got %d%%", tc.correct, tc.gradable, tc.want, s.Percent)
		}
	}
}

func TestSummarizeNoGradableItems(t *testing.T) {
	outcome := &model.AttemptResult{
		Details: []model.AnswerDetail{
			{Gradable: false, Submitted: "code answer"},
			{Gradable: false, Submitted: ""},
		},
	}

	s := Summarize(outcome)
	if s.Scored {
		t.Fatal("expected unscored outcome with zero gradable items")
	}
}

func TestRenderTextUnscoredState(t *testing.T) {
	outcome := &model.AttemptResult{
		Details: []model.AnswerDetail{
			{Question: "Design a cache.", Gradable: false, Submitted: "LRU with TTL"},
		},
	}

	text := RenderText(outcome)
	if !strings.Contains(text, "no auto-graded questions") {
		t.Fatalf("expected unscored message, got:\n%s", text)
	}
	if strings.Contains(text, "%") {
		t.Fatalf("unscored render must not show a percentage:\n%s", text)
	}
}

func TestRenderTextGradedDetailWithoutReference(t *testing.T) {
	// The result arrives as server JSON; a graded detail may come back
	// without a `correct` field, leaving the pointer nil. Rendering must
	// survive that and fall back to the verdict alone.
	raw := `{"details":[{"question":"Pick A.","submitted":"A","is_correct":true,"gradable":true}]}`
	var outcome model.AttemptResult
	if err := json.Unmarshal([]byte(raw), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}

	text := RenderText(&outcome)
	if !strings.Contains(text, "Marked correct.") {
		t.Fatalf("expected verdict-only line, got:\n%s", text)
	}
	if strings.Contains(text, "Correct answer:") {
		t.Fatalf("must not render a missing reference answer:\n%s", text)
	}

	s := Summarize(&outcome)
	if !s.Scored || s.Percent != 100 {
		t.Fatalf("summary must still score the item: %+v", s)
	}
}

func TestRenderTextBreakdown(t *testing.T) {
	outcome := &model.AttemptResult{
		Details: []model.AnswerDetail{
			{Question: "Pick A.", Gradable: true, Submitted: "A", Correct: strPtr("A"), IsCorrect: true},
			{Question: "Pick B.", Gradable: true, Submitted: "", Correct: strPtr("B"), Explanation: "B was right."},
		},
	}

	text := RenderText(outcome)
	for _, want := range []string{"Score: 50%", "(no answer)", "Correct answer: B", "B was right."} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}
