package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfalcone/bridgo/providers/observability"
	"github.com/mfalcone/bridgo/providers/store"
)

// MemoryStore is a simple, concurrency-safe in-memory conversation store.
// Messages are grouped per conversation in insertion order, with a secondary
// index by message ID for O(1) updates. RWMutex keeps reads cheap for
// read-heavy workloads.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]*store.Message
	byID          map[uuid.UUID]*store.Message
}

// New returns a new, empty [MemoryStore] ready for immediate use.
func New() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string][]*store.Message),
		byID:          make(map[uuid.UUID]*store.Message),
	}
}

// Ensure MemoryStore implements store.Store at compile time.
var _ store.Store = (*MemoryStore)(nil)

// AppendMessage stores a new message at the end of the conversation and
// returns a copy of the stored record. The metadata map is cloned so later
// caller-side mutation cannot leak into the store.
// When an observability span is present in ctx, an append event is recorded
// with the message role and content length, and the running conversation
// message count is set as a span attribute.
func (m *MemoryStore) AppendMessage(ctx context.Context, conversationID string, role store.Role, content string, metadata store.Metadata) (*store.Message, error) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventStoreAppend,
			observability.String(observability.AttrConversationID, conversationID),
			observability.String(observability.AttrMessageRole, string(role)),
			observability.Int(observability.AttrMessageLength, len(content)),
		)
	}

	message := &store.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       metadata.Clone(),
		CreatedAt:      time.Now().UTC(),
	}

	m.mu.Lock()
	m.conversations[conversationID] = append(m.conversations[conversationID], message)
	m.byID[message.ID] = message
	total := len(m.conversations[conversationID])
	m.mu.Unlock()

	if span != nil {
		span.SetAttributes(
			observability.Int(observability.AttrStoreTotalMessages, total),
		)
	}

	out := *message
	out.Metadata = message.Metadata.Clone()
	return &out, nil
}

// UpdateMessage replaces the content and metadata of an existing message and
// returns a copy of the updated record. The previous metadata is discarded,
// not merged. Returns [store.ErrMessageNotFound] if no message has that ID.
func (m *MemoryStore) UpdateMessage(_ context.Context, id uuid.UUID, content string, metadata store.Metadata) (*store.Message, error) {
	m.mu.Lock()
	message, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return nil, store.ErrMessageNotFound
	}
	message.Content = content
	message.Metadata = metadata.Clone()
	out := *message
	out.Metadata = message.Metadata.Clone()
	m.mu.Unlock()
	return &out, nil
}

// MessagesInOrder returns a copy of all messages in the conversation in
// insertion order. The returned slice and its metadata maps are independent
// of internal state. Always non-nil; empty for an unknown conversation.
func (m *MemoryStore) MessagesInOrder(_ context.Context, conversationID string) ([]store.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyMessages(m.conversations[conversationID]), nil
}

// LastMessages returns up to the last n messages of the conversation, oldest
// first, as a new slice. If n exceeds the conversation length, all messages
// are returned. Returns an empty, non-nil slice when n is zero or negative.
func (m *MemoryStore) LastMessages(_ context.Context, conversationID string, n int) ([]store.Message, error) {
	if n <= 0 {
		return []store.Message{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	messages := m.conversations[conversationID]
	if n > len(messages) {
		n = len(messages)
	}
	return copyMessages(messages[len(messages)-n:]), nil
}

// Count returns the number of messages in the conversation. The returned
// error is always nil.
func (m *MemoryStore) Count(_ context.Context, conversationID string) (int, error) {
	m.mu.RLock()
	n := len(m.conversations[conversationID])
	m.mu.RUnlock()
	return n, nil
}

// ClearConversation removes all messages of the conversation. Clearing an
// unknown conversation is a no-op. When an observability span is present in
// ctx, a clear event is recorded before the messages are dropped.
func (m *MemoryStore) ClearConversation(ctx context.Context, conversationID string) error {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventStoreClear,
			observability.String(observability.AttrConversationID, conversationID),
		)
	}

	m.mu.Lock()
	for _, message := range m.conversations[conversationID] {
		delete(m.byID, message.ID)
	}
	delete(m.conversations, conversationID)
	m.mu.Unlock()
	return nil
}

func copyMessages(messages []*store.Message) []store.Message {
	out := make([]store.Message, 0, len(messages))
	for _, message := range messages {
		copied := *message
		copied.Metadata = message.Metadata.Clone()
		out = append(out, copied)
	}
	return out
}
