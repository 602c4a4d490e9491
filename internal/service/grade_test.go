package service

import (
	"testing"

	"github.com/hireloop/assessd/internal/model"
)

func strPtr(s string) *string { return &s }

func mcq(prompt, reference string) model.Question {
	return model.Question{
		Prompt:    prompt,
		Type:      model.QuestionTypeMCQ,
		Options:   []string{"A", "B", "C", "D"},
		Reference: strPtr(reference),
	}
}

func TestGradeCountsGradableOnly(t *testing.T) {
	questions := []model.Question{
		mcq("Q1", "A"),
		mcq("Q2", "B"),
		{Prompt: "Q3", Type: model.QuestionTypeScenario},
	}
	answers := []string{"A", "C", "some essay"}

	score, details := grade(questions, answers)
	if score != 1 {
		t.Fatalf("expected score 1, got %v", score)
	}
	if len(details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(details))
	}

	if !details[0].IsCorrect || !details[0].Gradable {
		t.Errorf("Q1 should be correct and gradable: %+v", details[0])
	}
	if details[1].IsCorrect {
		t.Errorf("Q2 should be incorrect: %+v", details[1])
	}
	if details[2].Gradable || details[2].IsCorrect {
		t.Errorf("scenario item must be ungradable: %+v", details[2])
	}
	if details[2].Submitted != "some essay" {
		t.Errorf("ungraded answer must still be echoed back: %+v", details[2])
	}
}

func TestGradeBlankAnswersAreWrong(t *testing.T) {
	questions := []model.Question{mcq("Q1", "A"), mcq("Q2", "B")}
	answers := []string{"", "B"}

	score, details := grade(questions, answers)
	if score != 1 {
		t.Fatalf("expected score 1, got %v", score)
	}
	if details[0].IsCorrect {
		t.Error("blank answer must not be correct")
	}
	if details[0].Submitted != "" {
		t.Errorf("blank answer must stay blank, got %q", details[0].Submitted)
	}
}

func TestGradeNoGradableQuestions(t *testing.T) {
	questions := []model.Question{
		{Prompt: "Q1", Type: model.QuestionTypeCode},
		{Prompt: "Q2", Type: model.QuestionTypeScenario},
	}
	answers := []string{"func main() {}", ""}

	score, details := grade(questions, answers)
	if score != 0 {
		t.Fatalf("expected score 0, got %v", score)
	}
	for i, d := range details {
		if d.Gradable {
			t.Errorf("detail %d must be ungradable", i)
		}
		if d.Correct != nil {
			t.Errorf("detail %d must not expose a reference answer", i)
		}
	}
}

func TestGradeEmptyTest(t *testing.T) {
	score, details := grade(nil, nil)
	if score != 0 || len(details) != 0 {
		t.Fatalf("empty test must grade to 0 with no details, got %v / %d", score, len(details))
	}
}
