package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mfalcone/bridgo/core/convert"
	"github.com/mfalcone/bridgo/providers/ai"
	"github.com/mfalcone/bridgo/providers/observability"
	"github.com/mfalcone/bridgo/providers/store"
)

// ErrSessionClosed is returned when Append, Complete, or Fail is called on a
// session that has already reached a terminal state. This is a programming
// error in the caller's stream-handling code, not a recoverable condition.
var ErrSessionClosed = errors.New("bridgo: stream session already finalized")

// Metadata keys written by the accumulator.
const (
	// MetaKeyStreamed marks a message as produced by a completed stream.
	MetaKeyStreamed = "streamed"
	// MetaKeyChunks is the number of fragments received before Complete.
	MetaKeyChunks = "chunks"
	// MetaKeyChunksReceived is the number of fragments received before Fail.
	MetaKeyChunksReceived = "chunks_received"
	// MetaKeyDurationMs is the wall-clock stream duration in milliseconds.
	MetaKeyDurationMs = "stream_duration_ms"
	// MetaKeyError holds the failure text captured by Fail.
	MetaKeyError = "error"

	// metaKeyStreaming marks the message as still in flight. It is replaced
	// wholesale by the terminal metadata on Complete or Fail.
	metaKeyStreaming = "streaming"
)

type sessionState int

const (
	stateOpen sessionState = iota
	stateCompleted
	stateFailed
)

// Session accumulates one streamed assistant message. Create with [Open];
// drive with [Session.Append]; finalize exactly once with [Session.Complete]
// or [Session.Fail]. Not safe for concurrent use.
type Session struct {
	store      store.Store
	message    *store.Message
	openMeta   store.Metadata
	state      sessionState
	chunkCount int
	startedAt  time.Time
	text       strings.Builder
}

// Open creates a new streamed assistant message in the conversation and
// returns the session bound to it. The message starts with empty content and
// a streaming marker so that mid-stream readers can tell it is not final.
//
// metadata is retained in the session and merged into the terminal metadata
// at finalization; it is deliberately not written yet, so it can never be
// observed as final metadata while the stream is in flight.
func Open(ctx context.Context, st store.Store, conversationID string, metadata store.Metadata) (*Session, error) {
	message, err := st.AppendMessage(ctx, conversationID, store.RoleAssistant, "", store.Metadata{metaKeyStreaming: true})
	if err != nil {
		return nil, fmt.Errorf("bridgo: open stream session: %w", err)
	}

	if observer := observability.ObserverFromContext(ctx); observer != nil {
		observer.Debug(ctx, "stream session opened",
			observability.String(observability.AttrConversationID, conversationID),
			observability.String(observability.AttrMessageID, message.ID.String()),
		)
	}
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventStreamOpen,
			observability.String(observability.AttrMessageID, message.ID.String()),
		)
	}

	return &Session{
		store:     st,
		message:   message,
		openMeta:  metadata.Clone(),
		state:     stateOpen,
		startedAt: time.Now(),
	}, nil
}

// Append concatenates fragment onto the accumulated text and counts it as one
// received chunk. Every delivered fragment counts, including empty ones: the
// chunk count reflects "fragments received", not "non-empty fragments".
//
// The partial text is written through to the stored message so that readers
// observing the conversation mid-stream see the content so far. That write is
// best-effort: a storage failure is logged and the stream keeps going, since
// the authoritative content lands at finalization.
func (s *Session) Append(ctx context.Context, fragment string) error {
	if s.state != stateOpen {
		return ErrSessionClosed
	}

	s.text.WriteString(fragment)
	s.chunkCount++

	if _, err := s.store.UpdateMessage(ctx, s.message.ID, s.text.String(), store.Metadata{metaKeyStreaming: true}); err != nil {
		slog.Warn("bridgo: failed to write partial stream content",
			"message_id", s.message.ID.String(),
			"chunks", s.chunkCount,
			"error", err,
		)
	}

	return nil
}

// Complete finalizes the session successfully and returns the stored message.
//
// The terminal metadata starts from the streaming bookkeeping fields
// (streamed, chunks, stream_duration_ms); when a provider response is given,
// its extracted metadata is merged on top together with the open-time
// metadata, with the caller's open-time keys winning every collision. The
// cache-control filter is applied last, unconditionally.
func (s *Session) Complete(ctx context.Context, response *ai.ChatResponse) (*store.Message, error) {
	if s.state != stateOpen {
		return nil, ErrSessionClosed
	}

	base := store.Metadata{
		MetaKeyStreamed:   true,
		MetaKeyChunks:     s.chunkCount,
		MetaKeyDurationMs: s.elapsedMs(),
	}

	var final store.Metadata
	if response != nil {
		final = convert.MergeMetadata(base, convert.ExtractResponseMetadata(response, s.openMeta))
	} else {
		final = convert.MergeMetadata(base, s.openMeta)
	}
	final = convert.StripEphemeral(final)

	message, err := s.store.UpdateMessage(ctx, s.message.ID, s.text.String(), final)
	if err != nil {
		return nil, fmt.Errorf("bridgo: complete stream session: %w", err)
	}
	s.state = stateCompleted
	s.message = message

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventStreamComplete,
			observability.Int(observability.AttrStreamChunks, s.chunkCount),
		)
	}

	return message, nil
}

// Fail finalizes the session after an unrecoverable provider or caller error.
// The partial text accumulated so far is preserved as the message content so
// the user can still see what was generated before the failure. errMetadata
// keys win over the failure bookkeeping fields; cache-control keys are
// stripped regardless.
func (s *Session) Fail(ctx context.Context, errText string, errMetadata store.Metadata) (*store.Message, error) {
	if s.state != stateOpen {
		return nil, ErrSessionClosed
	}

	final := convert.StripEphemeral(convert.MergeMetadata(store.Metadata{
		MetaKeyError:          errText,
		MetaKeyChunksReceived: s.chunkCount,
		MetaKeyDurationMs:     s.elapsedMs(),
	}, errMetadata))

	message, err := s.store.UpdateMessage(ctx, s.message.ID, s.text.String(), final)
	if err != nil {
		return nil, fmt.Errorf("bridgo: fail stream session: %w", err)
	}
	s.state = stateFailed
	s.message = message

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventStreamFail,
			observability.String(observability.AttrStreamError, errText),
			observability.Int(observability.AttrStreamChunks, s.chunkCount),
		)
	}

	return message, nil
}

// ChunkCount returns the number of fragments received so far.
func (s *Session) ChunkCount() int {
	return s.chunkCount
}

// Text returns the text accumulated so far.
func (s *Session) Text() string {
	return s.text.String()
}

// Message returns the stored message the session is bound to. Until the
// session is finalized this is the record created at open time; afterwards it
// is the finalized message.
func (s *Session) Message() *store.Message {
	return s.message
}

// elapsedMs returns the wall-clock time since the session was opened, rounded
// to whole milliseconds. Never negative.
func (s *Session) elapsedMs() int64 {
	elapsed := time.Since(s.startedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed.Round(time.Millisecond).Milliseconds()
}
