package hub

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

const (
	TopicAll      = "all"
	TopicComments = "comments"
	TopicMovies   = "movies"
)

const (
	EventTypeConnected  = "connected"
	EventTypeNewComment = "new_comment"
)

// Event is the envelope used for events produced inside the service.
// Broadcast accepts any JSON value, Event is just the common shape.
type Event struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ConnectedEvent is the first frame a new client receives.
func ConnectedEvent(clientID string) Event {
	return Event{
		Type:     EventTypeConnected,
		Message:  "SSE connection established",
		ClientID: clientID,
	}
}

// NewCommentEvent wraps a freshly created comment for the comments topic.
func NewCommentEvent(comment any, at time.Time) Event {
	return Event{
		Type:      EventTypeNewComment,
		Data:      comment,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	}
}

// EncodeFrame renders data as a single `data: <json>\n\n` frame.
func EncodeFrame(data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}
