package model

// WebSocket message types
type WSMessageType string

const (
	WSMessageTypeState WSMessageType = "state"
	WSMessageTypePing  WSMessageType = "ping"
	WSMessageTypePong  WSMessageType = "pong"
)

// WSMessage is the generic envelope for client messages.
type WSMessage struct {
	Type WSMessageType `json:"type"`
}

// WSStateMessage notifies subscribers of a job status change.
type WSStateMessage struct {
	Type   WSMessageType `json:"type"`
	TaskID string        `json:"taskId"`
	Status JobStatus     `json:"status"`
	Error  *string       `json:"error,omitempty"`
}
