package models

// Live frame types sent on the assessment WebSocket.
const (
	FrameReport    = "report"
	FrameError     = "error"
	FrameThrottled = "throttled"
)

// LiveFrame is one server message on the live assessment stream.
// Seq echoes the position of the inbound message on the connection, starting at 1.
type LiveFrame struct {
	Type   string     `json:"type"`
	Seq    uint64     `json:"seq"`
	Report *Report    `json:"report,omitempty"`
	Error  *LiveError `json:"error,omitempty"`
}

type LiveError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
