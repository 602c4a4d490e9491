package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/model"
	"github.com/hireloop/assessd/internal/response"
)

// DefaultRequestTimeout bounds every awaited call. Timeouts surface as
// ErrTimeout so the caller can show a "timed out" message distinct from
// a generic failure.
const DefaultRequestTimeout = 25 * time.Second

// ErrTimeout marks a request that hit the client-side deadline.
var ErrTimeout = errors.New("request timed out")

// APIError is a non-2xx response decoded from the server envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("request failed: HTTP %d", e.Status)
}

// Client talks to the assessment service. It exposes two operation
// styles: awaited calls that surface failures to the session (start,
// submit, report), and fire-and-forget sends whose errors are swallowed
// (heartbeat, snapshot). The distinction is deliberate; proctoring must
// never interrupt the candidate.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRequestTimeout overrides the per-request deadline.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client for the given service base URL.
func NewClient(baseURL string, log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: DefaultRequestTimeout,
		log:     log.With().Str("component", "flow_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSession starts (or resumes) the attempt bound to the token.
func (c *Client) StartSession(ctx context.Context, token string) (*model.StartResponse, error) {
	var out model.StartResponse
	err := c.call(ctx, "/api/v1/assessment/start", model.StartRequest{Token: token}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitAnswers posts the positional answers array in one request.
func (c *Client) SubmitAnswers(ctx context.Context, token string, answers []string) (*model.AttemptResult, error) {
	slots := make([]model.AnswerSlot, len(answers))
	for i, a := range answers {
		slots[i] = model.AnswerSlot{Answer: a}
	}

	var out model.AttemptResult
	err := c.call(ctx, "/api/v1/assessment/submit", model.SubmitRequest{Token: token, Answers: slots}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendHeartbeat fires a heartbeat and ignores the outcome.
func (c *Client) SendHeartbeat(ctx context.Context, req model.HeartbeatRequest) {
	c.fireAndForget(ctx, "/api/v1/assessment/heartbeat", req)
}

// SendSnapshot fires a snapshot capture and ignores the outcome.
func (c *Client) SendSnapshot(ctx context.Context, req model.SnapshotRequest) {
	c.fireAndForget(ctx, "/api/v1/assessment/snapshot", req)
}

// FetchReport downloads the PDF report for the token's attempt. Only
// triggered by explicit user action, never automatically.
func (c *Client) FetchReport(ctx context.Context, token string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/assessment/report?token="+token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

// call is the awaited strategy: POST the body, wait for the envelope,
// surface every failure. A 2xx response with an unparseable body is a
// hard error, never silently accepted.
func (c *Client) call(ctx context.Context, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.classify(err)
	}

	var envelope struct {
		Data  json.RawMessage     `json:"data"`
		Error *response.ErrorBody `json:"error"`
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			apiErr.Code = string(envelope.Error.Code)
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("unparseable response body: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("unparseable response body: %w", err)
		}
	}
	return nil
}

// fireAndForget is the best-effort strategy: send, drop the result. No
// retry, no backoff, no queueing; a lost beat is simply lost.
func (c *Client) fireAndForget(ctx context.Context, path string, body interface{}) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("Best-effort send failed")
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// classify maps transport errors onto ErrTimeout when the client-side
// deadline fired first.
func (c *Client) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("request failed: %w", err)
}
