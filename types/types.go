package types

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketAsk   = "ask"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketAskPayload struct {
	Question  string `json:"question"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketAskResponse struct {
	Answer        string `json:"answer"`
	RetrievedDocs int    `json:"retrieved_docs"`
}

// Message represents a single message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FunctionHandler is a type for handling function calls
type FunctionHandler func(ctx context.Context, args []byte) (any, error)

// Handle stream responses
type StreamHandler func(response string)
