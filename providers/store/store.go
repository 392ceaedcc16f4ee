package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMessageNotFound is returned by UpdateMessage when no message with the
// given ID exists. Callers can test for it with [errors.Is].
var ErrMessageNotFound = errors.New("bridgo: message not found")

// Role identifies the author of a stored message. The set is closed: stores
// never produce values outside it, and normalization treats any other value
// as a hard error rather than coercing it.
type Role string

const (
	RoleSystem     Role = "system"
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolCall   Role = "tool_call"   // Content holds a JSON array of requested tool calls
	RoleToolResult Role = "tool_result" // Content holds a JSON array of tool results
)

// Metadata is the open key-value map attached to a stored message. Values
// must be JSON-serializable; insertion order is irrelevant.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata map. A nil receiver yields nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// Message is one persisted conversation turn.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Metadata       Metadata  `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is the conversation-persistence collaborator. AppendMessage and
// UpdateMessage must each be a single atomic write; MessagesInOrder returns
// the full history oldest-first.
type Store interface {
	// AppendMessage persists a new message at the end of the conversation
	// and returns the stored record with its assigned ID and timestamp.
	AppendMessage(ctx context.Context, conversationID string, role Role, content string, metadata Metadata) (*Message, error)

	// UpdateMessage replaces the content and metadata of an existing message.
	// Returns [ErrMessageNotFound] when the ID is unknown.
	UpdateMessage(ctx context.Context, id uuid.UUID, content string, metadata Metadata) (*Message, error)

	// MessagesInOrder returns every message of the conversation in insertion
	// order. The returned slice is always non-nil.
	MessagesInOrder(ctx context.Context, conversationID string) ([]Message, error)

	// LastMessages returns up to the last n messages in insertion order.
	// Returns an empty slice when n is zero or negative.
	LastMessages(ctx context.Context, conversationID string, n int) ([]Message, error)

	// Count returns the number of messages stored for the conversation.
	Count(ctx context.Context, conversationID string) (int, error)

	// ClearConversation deletes all messages of the conversation.
	ClearConversation(ctx context.Context, conversationID string) error
}
