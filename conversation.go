package bridgo

import (
	"context"
	"fmt"

	"github.com/mfalcone/bridgo/core/convert"
	"github.com/mfalcone/bridgo/core/stream"
	"github.com/mfalcone/bridgo/providers/ai"
	"github.com/mfalcone/bridgo/providers/store"
)

// Conversation binds one conversation ID to a backing store and exposes
// typed operations for appending turns, reading history in provider form,
// and streaming assistant replies.
//
// A Conversation holds no message state of its own; the store is the source
// of truth, so multiple Conversation values for the same ID see the same
// history. Stream sessions returned by [Conversation.OpenStream] follow the
// single-writer contract documented in the stream package.
type Conversation struct {
	store store.Store
	id    string
}

// NewConversation returns a conversation handle for the given ID. The
// conversation need not exist yet; it comes into being with the first append.
func NewConversation(st store.Store, conversationID string) *Conversation {
	return &Conversation{
		store: st,
		id:    conversationID,
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

// AddSystemMessage appends a system turn.
func (c *Conversation) AddSystemMessage(ctx context.Context, content string) (*store.Message, error) {
	return c.store.AppendMessage(ctx, c.id, store.RoleSystem, content, nil)
}

// AddUserMessage appends a user turn.
func (c *Conversation) AddUserMessage(ctx context.Context, content string) (*store.Message, error) {
	return c.store.AppendMessage(ctx, c.id, store.RoleUser, content, nil)
}

// AddAssistantMessage appends an assistant turn with caller-provided
// metadata. For assistant turns backed by a provider response, prefer
// [Conversation.RecordResponse], which extracts the response metadata too.
func (c *Conversation) AddAssistantMessage(ctx context.Context, content string, metadata store.Metadata) (*store.Message, error) {
	return c.store.AppendMessage(ctx, c.id, store.RoleAssistant, content, convert.StripEphemeral(metadata.Clone()))
}

// AddToolCallMessage appends a tool-call turn. The calls are serialized to
// the JSON list layout that normalization reads back.
func (c *Conversation) AddToolCallMessage(ctx context.Context, calls []ai.ToolCall) (*store.Message, error) {
	content, err := convert.EncodeToolCalls(calls)
	if err != nil {
		return nil, fmt.Errorf("bridgo: encode tool calls: %w", err)
	}
	return c.store.AppendMessage(ctx, c.id, store.RoleToolCall, content, nil)
}

// AddToolResultMessage appends a tool-result turn.
func (c *Conversation) AddToolResultMessage(ctx context.Context, results []convert.ToolResultRecord) (*store.Message, error) {
	content, err := convert.EncodeToolResults(results)
	if err != nil {
		return nil, fmt.Errorf("bridgo: encode tool results: %w", err)
	}
	return c.store.AppendMessage(ctx, c.id, store.RoleToolResult, content, nil)
}

// RecordResponse appends a non-streamed assistant reply, persisting text
// together with metadata extracted from the response. extra keys win over
// extracted keys on collision; cache-control hints are stripped.
func (c *Conversation) RecordResponse(ctx context.Context, response *ai.ChatResponse, text string, extra store.Metadata) (*store.Message, error) {
	metadata := convert.ExtractResponseMetadata(response, extra)
	return c.store.AppendMessage(ctx, c.id, store.RoleAssistant, text, metadata)
}

// Messages returns the full stored history, oldest first.
func (c *Conversation) Messages(ctx context.Context) ([]store.Message, error) {
	return c.store.MessagesInOrder(ctx, c.id)
}

// ProviderMessages returns the full history normalized into provider
// messages, ready to hand to an SDK call. Fails with
// [convert.ErrUnrecognizedRole] if the store holds a role outside the known
// set.
func (c *Conversation) ProviderMessages(ctx context.Context) ([]ai.Message, error) {
	messages, err := c.store.MessagesInOrder(ctx, c.id)
	if err != nil {
		return nil, fmt.Errorf("bridgo: load history: %w", err)
	}
	return convert.AllToProvider(messages)
}

// LastProviderMessages returns the last n turns normalized into provider
// messages, oldest first. Useful for window-limited prompts.
func (c *Conversation) LastProviderMessages(ctx context.Context, n int) ([]ai.Message, error) {
	messages, err := c.store.LastMessages(ctx, c.id, n)
	if err != nil {
		return nil, fmt.Errorf("bridgo: load history window: %w", err)
	}
	return convert.AllToProvider(messages)
}

// Count returns the number of stored turns.
func (c *Conversation) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx, c.id)
}

// Clear deletes the conversation's history.
func (c *Conversation) Clear(ctx context.Context) error {
	return c.store.ClearConversation(ctx, c.id)
}

// OpenStream starts a streaming assistant reply in this conversation.
// metadata is merged into the final message's metadata at completion.
func (c *Conversation) OpenStream(ctx context.Context, metadata store.Metadata) (*stream.Session, error) {
	return stream.Open(ctx, c.store, c.id, metadata)
}
