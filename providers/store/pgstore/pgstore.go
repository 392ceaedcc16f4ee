package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mfalcone/bridgo/providers/store"
)

// defaultTableName is the PostgreSQL table used when no custom name is provided.
const defaultTableName = "bridgo_messages"

// Querier abstracts the pgx query methods needed by PgStore.
// Both *pgxpool.Pool and pgx.Tx satisfy this interface, allowing
// callers to inject either a connection pool or a single transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore implements [store.Store] with PostgreSQL persistence. Thread safety
// is handled by the underlying pgx connection pool; no application-level
// mutex is needed.
type PgStore struct {
	db        Querier
	tableName string
}

// Compile-time check: PgStore must implement store.Store.
var _ store.Store = (*PgStore)(nil)

// Option configures optional PgStore behavior.
type Option func(*PgStore)

// WithTableName overrides the default table name ("bridgo_messages").
// The name is sanitized via pgx.Identifier to prevent SQL injection,
// since it is interpolated into queries via fmt.Sprintf.
func WithTableName(name string) Option {
	return func(s *PgStore) {
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New creates a PostgreSQL-backed conversation store. The db parameter must
// be a pgx-compatible query executor (typically *pgxpool.Pool).
func New(db Querier, opts ...Option) *PgStore {
	pgStore := &PgStore{
		db:        db,
		tableName: defaultTableName,
	}
	for _, opt := range opts {
		opt(pgStore)
	}
	return pgStore
}

// AppendMessage persists a new message at the end of the conversation. The ID
// and timestamp are assigned client-side so the stored record can be returned
// without a second round trip.
func (s *PgStore) AppendMessage(ctx context.Context, conversationID string, role store.Role, content string, metadata store.Metadata) (*store.Message, error) {
	metadataJSON, err := marshalNullableJSON(metadata)
	if err != nil {
		return nil, fmt.Errorf("pgstore: marshal metadata: %w", err)
	}

	message := &store.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       metadata.Clone(),
		CreatedAt:      time.Now().UTC(),
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, conversation_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, s.tableName)

	if _, err := s.db.Exec(ctx, query,
		message.ID,
		message.ConversationID,
		string(message.Role),
		message.Content,
		metadataJSON,
		message.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("pgstore: append message: %w", err)
	}

	return message, nil
}

// UpdateMessage replaces the content and metadata of an existing message and
// returns the updated record. Returns [store.ErrMessageNotFound] when no row
// has that ID.
func (s *PgStore) UpdateMessage(ctx context.Context, id uuid.UUID, content string, metadata store.Metadata) (*store.Message, error) {
	metadataJSON, err := marshalNullableJSON(metadata)
	if err != nil {
		return nil, fmt.Errorf("pgstore: marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET content = $2, metadata = $3
		WHERE id = $1
		RETURNING conversation_id, role, created_at`, s.tableName)

	message := &store.Message{
		ID:       id,
		Content:  content,
		Metadata: metadata.Clone(),
	}

	var role string
	err = s.db.QueryRow(ctx, query, id, content, metadataJSON).
		Scan(&message.ConversationID, &role, &message.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrMessageNotFound
		}
		return nil, fmt.Errorf("pgstore: update message: %w", err)
	}
	message.Role = store.Role(role)

	return message, nil
}

// MessagesInOrder returns all messages of the conversation in insertion order
// (ordered by the monotonic seq column).
func (s *PgStore) MessagesInOrder(ctx context.Context, conversationID string) ([]store.Message, error) {
	query := fmt.Sprintf(`SELECT id, conversation_id, role, content, metadata, created_at
		FROM %s WHERE conversation_id = $1 ORDER BY seq ASC`, s.tableName)

	rows, err := s.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: messages in order: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// LastMessages returns the last n messages in insertion order using an
// efficient SQL pattern: fetch the n most recent rows (ORDER BY seq DESC
// LIMIT n), then reverse them so the caller receives oldest-first order.
// Returns an empty slice when n is zero or negative.
func (s *PgStore) LastMessages(ctx context.Context, conversationID string, n int) ([]store.Message, error) {
	if n <= 0 {
		return []store.Message{}, nil
	}

	// Subquery fetches newest-first, outer query re-orders oldest-first.
	query := fmt.Sprintf(`SELECT id, conversation_id, role, content, metadata, created_at
		FROM (
			SELECT seq, id, conversation_id, role, content, metadata, created_at
			FROM %s WHERE conversation_id = $1 ORDER BY seq DESC LIMIT $2
		) sub ORDER BY sub.seq ASC`, s.tableName)

	rows, err := s.db.Query(ctx, query, conversationID, n)
	if err != nil {
		return nil, fmt.Errorf("pgstore: last messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Count returns the number of messages stored for the conversation.
func (s *PgStore) Count(ctx context.Context, conversationID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE conversation_id = $1`, s.tableName)

	var count int
	if err := s.db.QueryRow(ctx, query, conversationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgstore: count: %w", err)
	}
	return count, nil
}

// ClearConversation deletes all messages of the conversation.
func (s *PgStore) ClearConversation(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = $1`, s.tableName)
	if _, err := s.db.Exec(ctx, query, conversationID); err != nil {
		return fmt.Errorf("pgstore: clear conversation: %w", err)
	}
	return nil
}

// scanMessages iterates over pgx.Rows and returns a slice of store.Message.
// Returns an empty non-nil slice when no rows are present.
func scanMessages(rows pgx.Rows) ([]store.Message, error) {
	var messages []store.Message

	for rows.Next() {
		var message store.Message
		var role string
		var metadataJSON []byte

		if err := rows.Scan(
			&message.ID, &message.ConversationID, &role,
			&message.Content, &metadataJSON, &message.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgstore: scan row: %w", err)
		}

		message.Role = store.Role(role)
		if len(metadataJSON) > 0 {
			_ = json.Unmarshal(metadataJSON, &message.Metadata)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: iterate rows: %w", err)
	}

	if messages == nil {
		return []store.Message{}, nil
	}
	return messages, nil
}

// marshalNullableJSON marshals metadata to JSON, returning nil when the map is
// empty or nil. This maps Go zero-values to SQL NULL instead of storing empty
// JSON objects ("{}") in the JSONB column.
func marshalNullableJSON(metadata store.Metadata) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}
