package websocket

// ─── Monitor events (Server → Recruiter) ────────────────────────────

// MonitorKind tags live monitor stream events.
type MonitorKind string

const (
	MonitorKindHeartbeat MonitorKind = "heartbeat"
	MonitorKindSnapshot  MonitorKind = "snapshot"
	MonitorKindSubmitted MonitorKind = "submitted"
)

// MonitorEvent is one entry in a test's live proctoring feed. It is
// published to the test's Redis channel and relayed verbatim to every
// recruiter watching the test. Snapshot events carry no image data; the
// stream signals that a capture happened, the image itself is fetched
// through the report endpoints.
type MonitorEvent struct {
	Kind        MonitorKind `json:"kind"`
	AttemptID   string      `json:"attempt_id"`
	CandidateID string      `json:"candidate_id"`
	Score       *float64    `json:"score,omitempty"` // Submitted only
}

// ─── Client messages (Recruiter → Server) ───────────────────────────

// Action tags inbound recruiter messages.
type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Control events (Server → Recruiter) ────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventPong  Event = "pong"
)

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
