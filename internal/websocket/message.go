package websocket

import (
	"encoding/json"

	"github.com/isdelr/expense-tracker-be/internal/notify"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewExpenseMessage wraps an expense change; the action is the event type.
func NewExpenseMessage(event notify.ExpenseEvent) Message {
	return Message{Action: string(event.Type), Payload: event}
}

// NewErrorMessage encodes an error notice for a single client.
func NewErrorMessage(text string) []byte {
	data, _ := json.Marshal(Message{Action: "error", Payload: map[string]string{"message": text}})
	return data
}

// NewPongMessage answers an application level ping.
func NewPongMessage() []byte {
	data, _ := json.Marshal(Message{Action: "pong"})
	return data
}
