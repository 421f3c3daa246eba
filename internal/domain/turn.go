package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single exchanged message. Turns are never modified after they
// are appended to a history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn builds a user turn.
func UserTurn(content string) Turn { return Turn{Role: RoleUser, Content: content} }

// AssistantTurn builds an assistant turn.
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }

// DataSources reports which external context fed a turn.
type DataSources struct {
	Weather  bool    `json:"weather"`
	Location *string `json:"location"`
	Cached   bool    `json:"cached"`
}

// TurnResult is returned for every completed turn.
type TurnResult struct {
	SessionID          string      `json:"sessionId"`
	Reply              string      `json:"reply"`
	DataSources        DataSources `json:"dataSourcesUsed"`
	ConversationLength int         `json:"conversationLength"`
}

// TurnEvent describes a completed turn for downstream consumers. It carries
// the user's original message, never the augmented one.
type TurnEvent struct {
	ID                 string      `json:"id"`
	SessionID          string      `json:"session_id"`
	UserMessage        string      `json:"user_message"`
	Reply              string      `json:"reply"`
	DataSources        DataSources `json:"data_sources"`
	ConversationLength int         `json:"conversation_length"`
	CompletedAt        time.Time   `json:"completed_at"`
}
