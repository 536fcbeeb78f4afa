package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelectAnswer Action = "select_answer"
	ActionToggleFlag   Action = "toggle_flag"
	ActionNavigate     Action = "navigate"
	ActionSubmit       Action = "submit"
	ActionPing         Action = "ping"
)

// RequestPayload is the single client message shape; unused fields stay
// zero for actions that do not need them.
type RequestPayload struct {
	Action Action `json:"action"`
	QID    string `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`
	Delta  int    `json:"delta,omitempty"` // +1 next, -1 previous
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventTick    Event = "tick"
	EventFlagged Event = "flagged"
	EventMoved   Event = "moved"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
)

type SuccessResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// TickResponse carries the countdown, pushed once per second.
type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining"`
	Answered  int   `json:"answered"`
}

type FlaggedResponse struct {
	Event   Event  `json:"event"`
	QID     string `json:"q_id"`
	Flagged bool   `json:"flagged"`
}

type MovedResponse struct {
	Event    Event `json:"event"`
	Position int   `json:"position"`
}

// GradedResponse is pushed when the attempt closes, whether the student
// submitted or the countdown did.
type GradedResponse struct {
	Event      Event   `json:"event"`
	Score      float64 `json:"score"`
	TotalMarks float64 `json:"total_marks"`
	Percentage int     `json:"percentage"`
	TimeTaken  int     `json:"time_taken"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
