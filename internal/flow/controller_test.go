package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/model"
)

// fakeGuard records arm/disarm calls for assertions.
type fakeGuard struct {
	mu       sync.Mutex
	armed    int
	disarmed int
}

func (g *fakeGuard) Arm(func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed++
}

func (g *fakeGuard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disarmed++
}

func (g *fakeGuard) counts() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed, g.disarmed
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  nil,
		"error": map[string]string{"code": code, "message": message},
	})
}

func startData(n int) model.StartResponse {
	questions := make([]model.QuestionForCandidate, n)
	for i := range questions {
		questions[i] = model.QuestionForCandidate{
			Prompt:  fmt.Sprintf("Question %d", i+1),
			Type:    model.QuestionTypeMCQ,
			Options: []string{"A", "B", "C", "D"},
		}
	}
	return model.StartResponse{
		TestID:      uuid.New(),
		CandidateID: uuid.New(),
		Questions:   questions,
	}
}

func newController(t *testing.T, serverURL string, guard NavigationGuard) *Controller {
	t.Helper()
	client := NewClient(serverURL, zerolog.Nop())
	return NewController(client, guard, "test-token", zerolog.Nop(),
		// Keep the reporter quiet during controller tests.
		WithIntervals(time.Hour, time.Hour),
	)
}

func TestStartTransitionsToRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assessment/start" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req model.StartRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Token != "test-token" {
			t.Errorf("expected token in body, got %q", req.Token)
		}
		writeData(w, http.StatusOK, startData(2))
	}))
	defer srv.Close()

	ctrl := newController(t, srv.URL, &fakeGuard{})
	defer ctrl.Close()

	if ctrl.Phase() != PhaseReady {
		t.Fatalf("expected ready, got %s", ctrl.Phase())
	}
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if ctrl.Phase() != PhaseRunning {
		t.Fatalf("expected running, got %s", ctrl.Phase())
	}

	questions, err := ctrl.Questions()
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestStartFailureStaysReadyAndRetryWorks(t *testing.T) {
	var mu sync.Mutex
	failing := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fail := failing
		mu.Unlock()
		if fail {
			writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
			return
		}
		writeData(w, http.StatusOK, startData(1))
	}))
	defer srv.Close()

	ctrl := newController(t, srv.URL, &fakeGuard{})
	defer ctrl.Close()

	err := ctrl.Start(context.Background())
	if err == nil {
		t.Fatal("expected start failure")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if ctrl.Phase() != PhaseReady {
		t.Fatalf("failed start must stay ready, got %s", ctrl.Phase())
	}

	// Retry is manual, never automatic: a second explicit Start succeeds.
	mu.Lock()
	failing = false
	mu.Unlock()
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("retry start: %v", err)
	}
	if ctrl.Phase() != PhaseRunning {
		t.Fatalf("expected running after retry, got %s", ctrl.Phase())
	}
}

func TestSubmitSendsPositionalPayload(t *testing.T) {
	var got model.SubmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/assessment/start":
			writeData(w, http.StatusOK, startData(3))
		case "/api/v1/assessment/submit":
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeData(w, http.StatusOK, model.AttemptResult{Score: 2})
		}
	}))
	defer srv.Close()

	ctrl := newController(t, srv.URL, &fakeGuard{})
	defer ctrl.Close()

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answer the first and third questions only; the middle slot must
	// still travel as an empty string, never be omitted.
	if err := ctrl.SetAnswer(0, "A"); err != nil {
		t.Fatalf("set answer 0: %v", err)
	}
	if err := ctrl.SetAnswer(2, "C"); err != nil {
		t.Fatalf("set answer 2: %v", err)
	}
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := []string{"A", "", "C"}
	if len(got.Answers) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(got.Answers))
	}
	for i, w := range want {
		if got.Answers[i].Answer != w {
			t.Errorf("slot %d: expected %q, got %q", i, w, got.Answers[i].Answer)
		}
	}
	if ctrl.Phase() != PhaseResult {
		t.Fatalf("expected result, got %s", ctrl.Phase())
	}
}

func TestSubmitZeroQuestions(t *testing.T) {
	var got model.SubmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/assessment/start":
			writeData(w, http.StatusOK, startData(0))
		case "/api/v1/assessment/submit":
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeData(w, http.StatusOK, model.AttemptResult{})
		}
	}))
	defer srv.Close()

	ctrl := newController(t, srv.URL, &fakeGuard{})
	defer ctrl.Close()

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit with zero questions must succeed: %v", err)
	}
	if got.Answers == nil || len(got.Answers) != 0 {
		t.Errorf("expected empty answers array, got %v", got.Answers)
	}
}

func TestSubmitSingleInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/assessment/start":
			writeData(w, http.StatusOK, startData(1))
		case "/api/v1/assessment/submit":
			close(entered)
			<-release
			writeData(w, http.StatusOK, model.AttemptResult{Score: 1})
		}
	}))
	defer srv.Close()

	ctrl := newController(t, srv.URL, &fakeGuard{})
	defer ctrl.Close()

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- ctrl.Submit(context.Background())
	}()

	<-entered
	if err := ctrl.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if ctrl.Phase() != PhaseResult {
		t.Fatalf("expected result, got %s", ctrl.Phase())
	}
}

func TestSubmitFailureKeepsDrafts(t *testing.T) {
	var mu sync.Mutex
	failing := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/assessment/start":
			writeData(w, http.StatusOK, startData(2))
		case "/api/v1/assessment/submit":
			mu.Lock()
			fail := failing
			mu.Unlock()
			if fail {
				writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
				return
			}
			writeData(w, http.StatusOK, model.AttemptResult{Score: 1})
		}
	}))
	defer srv.Close()

	guard := &fakeGuard{}
	ctrl := newController(t, srv.URL, guard)
	defer ctrl.Close()

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ctrl.SetAnswer(0, "B"); err != nil {
		t.Fatalf("set answer: %v", err)
	}

	if err := ctrl.Submit(context.Background()); err == nil {
		t.Fatal("expected submit failure")
	}
	if ctrl.Phase() != PhaseRunning {
		t.Fatalf("failed submit must stay running, got %s", ctrl.Phase())
	}
	if ctrl.Draft(0) != "B" {
		t.Fatalf("draft lost after failed submit: %q", ctrl.Draft(0))
	}
	if armed, _ := guard.counts(); armed != 0 {
		t.Fatalf("guard must not arm on failure, armed %d times", armed)
	}

	mu.Lock()
	failing = false
	mu.Unlock()
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if armed, _ := guard.counts(); armed != 1 {
		t.Fatalf("guard must arm exactly once, armed %d times", armed)
	}
}

func TestCloseAbandonsInFlightSubmit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/assessment/start":
			writeData(w, http.StatusOK, startData(1))
		case "/api/v1/assessment/submit":
			close(entered)
			<-release
			writeData(w, http.StatusOK, model.AttemptResult{Score: 1})
		}
	}))
	defer srv.Close()

	guard := &fakeGuard{}
	ctrl := newController(t, srv.URL, guard)

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Submit(context.Background())
	}()

	<-entered
	ctrl.Close()
	close(release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
	// The late response must not have produced a result.
	if _, err := ctrl.Result(); err == nil {
		t.Fatal("result must not exist after close abandoned the submit")
	}
	if armed, disarmed := guard.counts(); armed != 0 || disarmed != 1 {
		t.Fatalf("expected 0 arms and 1 disarm, got %d/%d", armed, disarmed)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	guard := &fakeGuard{}
	ctrl := newController(t, "http://127.0.0.1:0", guard)
	ctrl.Close()
	ctrl.Close()
	if _, disarmed := guard.counts(); disarmed != 1 {
		t.Fatalf("expected exactly 1 disarm, got %d", disarmed)
	}
	if err := ctrl.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("start after close must return ErrClosed, got %v", err)
	}
}

func TestSetAnswerBounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, startData(2))
	}))
	defer srv.Close()

	ctrl := newController(t, srv.URL, &fakeGuard{})
	defer ctrl.Close()

	if err := ctrl.SetAnswer(0, "A"); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning before start, got %v", err)
	}
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ctrl.SetAnswer(2, "A"); err == nil {
		t.Fatal("expected out of range error")
	}
	if err := ctrl.SetAnswer(-1, "A"); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestTimeoutIsDistinctError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeData(w, http.StatusOK, startData(1))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop(), WithRequestTimeout(20*time.Millisecond))
	_, err := client.StartSession(context.Background(), "tok")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestUnparseableSuccessBodyIsHardError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	_, err := client.StartSession(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected hard error on unparseable 2xx body")
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatal("parse failure must not classify as timeout")
	}
}
