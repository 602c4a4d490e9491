package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/flow"
	"github.com/hireloop/assessd/internal/model"
)

// sessionHistory is an in-process stand-in for a browser history stack.
// The REPL's "back" command pops it; the navigation guard plants its
// marker here after submission, so backing out of a finished test lands
// on the marker instead of the question list.
type sessionHistory struct {
	stack  []string
	onBack func()
}

func (h *sessionHistory) Push(marker string) {
	h.stack = append(h.stack, marker)
}

func (h *sessionHistory) OnBack(fn func()) {
	h.onBack = fn
}

func (h *sessionHistory) Back() {
	if len(h.stack) > 0 {
		h.stack = h.stack[:len(h.stack)-1]
	}
	if h.onBack != nil {
		h.onBack()
	}
}

func runSession(ctx context.Context, serverURL, token string, log zerolog.Logger) error {
	client := flow.NewClient(serverURL, log)
	history := &sessionHistory{}

	ctrl := flow.NewController(client, flow.NewGuard(history), token, log,
		flow.WithBlockedCallback(func() {
			fmt.Println("This assessment is finished; you cannot go back to the questions.")
		}),
	)
	defer ctrl.Close()

	fmt.Println("Starting your assessment...")
	if err := ctrl.Start(ctx); err != nil {
		if errors.Is(err, flow.ErrTimeout) {
			return fmt.Errorf("the server took too long to respond; try again: %w", err)
		}
		return fmt.Errorf("could not start the assessment: %w", err)
	}

	questions, err := ctrl.Questions()
	if err != nil {
		return err
	}
	fmt.Printf("You have %d question(s). Answer with `<number> <your answer>`.\n", len(questions))
	fmt.Println("Commands: list, submit, back, quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "quit":
			fmt.Println("Leaving. Your attempt stays open; run `take` again to resume.")
			return nil
		case line == "back":
			history.Back()
		case line == "list":
			printQuestions(questions, ctrl)
		case line == "submit":
			done, err := submitOnce(ctx, ctrl)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if done {
				return nil
			}
		default:
			if err := applyAnswer(ctrl, questions, line); err != nil {
				fmt.Println(err)
			}
		}
	}
}

func printQuestions(questions []model.QuestionForCandidate, ctrl *flow.Controller) {
	for i, q := range questions {
		fmt.Printf("\n%d. %s [%s]\n", i+1, q.Prompt, q.Type)
		for j, opt := range q.Options {
			fmt.Printf("   %c) %s\n", 'a'+j, opt)
		}
		if draft := ctrl.Draft(i); draft != "" {
			fmt.Printf("   (your answer: %s)\n", draft)
		}
	}
	fmt.Println()
}

func applyAnswer(ctrl *flow.Controller, questions []model.QuestionForCandidate, line string) error {
	parts := strings.SplitN(line, " ", 2)
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 1 || n > len(questions) {
		return fmt.Errorf("unknown command; expected `<number> <answer>`, list, submit, back or quit")
	}

	value := ""
	if len(parts) == 2 {
		value = parts[1]
	}
	// Option letters map back to option text for MCQ questions.
	q := questions[n-1]
	if q.Type == model.QuestionTypeMCQ && len(value) == 1 {
		if idx := int(value[0] - 'a'); idx >= 0 && idx < len(q.Options) {
			value = q.Options[idx]
		}
	}
	return ctrl.SetAnswer(n-1, value)
}

// submitOnce runs a single submission round trip. A failure keeps the
// session running with every draft intact.
func submitOnce(ctx context.Context, ctrl *flow.Controller) (bool, error) {
	fmt.Println("Submitting...")
	if err := ctrl.Submit(ctx); err != nil {
		switch {
		case errors.Is(err, flow.ErrSubmitInFlight):
			return false, errors.New("already submitting, hold on")
		case errors.Is(err, flow.ErrTimeout):
			return false, errors.New("submission timed out; your answers are kept, try `submit` again")
		default:
			return false, fmt.Errorf("submission failed; your answers are kept: %w", err)
		}
	}

	outcome, err := ctrl.Result()
	if err != nil {
		return false, err
	}
	fmt.Println()
	fmt.Print(flow.RenderText(outcome))
	return true, nil
}

func downloadReport(ctx context.Context, serverURL, token, out string, log zerolog.Logger) error {
	client := flow.NewClient(serverURL, log)
	pdf, err := client.FetchReport(ctx, token)
	if err != nil {
		return fmt.Errorf("could not download the report: %w", err)
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return err
	}
	fmt.Printf("Report saved to %s (%d bytes)\n", out, len(pdf))
	return nil
}
