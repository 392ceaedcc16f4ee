package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mfalcone/bridgo/providers/store"
)

// defaultTableName is the SQLite table used when no custom name is provided.
const defaultTableName = "bridgo_messages"

// SQLiteStore implements [store.Store] with SQLite persistence. Thread safety
// is handled by database/sql; callers sharing one *sql.DB across goroutines
// need no extra locking.
type SQLiteStore struct {
	db        *sql.DB
	tableName string
}

// Compile-time check: SQLiteStore must implement store.Store.
var _ store.Store = (*SQLiteStore)(nil)

// Option configures optional SQLiteStore behavior.
type Option func(*SQLiteStore)

// WithTableName overrides the default table name ("bridgo_messages").
// The name is quoted and embedded double quotes are escaped, since it is
// interpolated into queries via fmt.Sprintf.
func WithTableName(name string) Option {
	return func(s *SQLiteStore) {
		s.tableName = `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// New creates a SQLite-backed conversation store on an open database handle.
// The caller owns the handle and is responsible for closing it.
func New(db *sql.DB, opts ...Option) *SQLiteStore {
	sqliteStore := &SQLiteStore{
		db:        db,
		tableName: defaultTableName,
	}
	for _, opt := range opts {
		opt(sqliteStore)
	}
	return sqliteStore
}

// createTableSQL creates the messages table. seq (INTEGER PRIMARY KEY
// AUTOINCREMENT) provides monotonic insertion order within a conversation;
// created_at is stored as RFC 3339 text because SQLite has no native
// timestamp type.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    seq             INTEGER PRIMARY KEY AUTOINCREMENT,
    id              TEXT NOT NULL UNIQUE,
    conversation_id TEXT NOT NULL,
    role            TEXT NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    metadata        TEXT,
    created_at      TEXT NOT NULL
)`

const createConversationSeqIndexSQL = `CREATE INDEX IF NOT EXISTS idx_%s_conversation_seq
    ON %s (conversation_id, seq)`

// EnsureSchema creates the messages table and its index if they do not
// already exist.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, s.tableName)); err != nil {
		return fmt.Errorf("sqlitestore: create table: %w", err)
	}

	indexName := strings.Trim(s.tableName, `"`)
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createConversationSeqIndexSQL, indexName, s.tableName)); err != nil {
		return fmt.Errorf("sqlitestore: create conversation_seq index: %w", err)
	}

	return nil
}

// AppendMessage persists a new message at the end of the conversation. The ID
// and timestamp are assigned client-side so the stored record can be returned
// without a second round trip.
func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID string, role store.Role, content string, metadata store.Metadata) (*store.Message, error) {
	metadataJSON, err := marshalNullableJSON(metadata)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: marshal metadata: %w", err)
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
		VALUES (?, ?, ?, ?, ?, ?)`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query,
		message.ID.String(),
		message.ConversationID,
		string(message.Role),
		message.Content,
		metadataJSON,
		message.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("sqlitestore: append message: %w", err)
	}

	return message, nil
}

// UpdateMessage replaces the content and metadata of an existing message and
// returns the updated record. Returns [store.ErrMessageNotFound] when no row
// has that ID.
func (s *SQLiteStore) UpdateMessage(ctx context.Context, id uuid.UUID, content string, metadata store.Metadata) (*store.Message, error) {
	metadataJSON, err := marshalNullableJSON(metadata)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: marshal metadata: %w", err)
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET content = ?, metadata = ? WHERE id = ?`, s.tableName)
	result, err := s.db.ExecContext(ctx, updateQuery, content, metadataJSON, id.String())
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: update message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: update message rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrMessageNotFound
	}

	message := &store.Message{
		ID:       id,
		Content:  content,
		Metadata: metadata.Clone(),
	}

	selectQuery := fmt.Sprintf(`SELECT conversation_id, role, created_at FROM %s WHERE id = ?`, s.tableName)
	var role, createdAt string
	if err := s.db.QueryRowContext(ctx, selectQuery, id.String()).
		Scan(&message.ConversationID, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMessageNotFound
		}
		return nil, fmt.Errorf("sqlitestore: read back updated message: %w", err)
	}
	message.Role = store.Role(role)
	message.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return message, nil
}

// MessagesInOrder returns all messages of the conversation in insertion order
// (ordered by the monotonic seq column).
func (s *SQLiteStore) MessagesInOrder(ctx context.Context, conversationID string) ([]store.Message, error) {
	query := fmt.Sprintf(`SELECT id, conversation_id, role, content, metadata, created_at
		FROM %s WHERE conversation_id = ? ORDER BY seq ASC`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: messages in order: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// LastMessages returns the last n messages in insertion order: the subquery
// fetches the n most recent rows newest-first, the outer query re-orders them
// oldest-first. Returns an empty slice when n is zero or negative.
func (s *SQLiteStore) LastMessages(ctx context.Context, conversationID string, n int) ([]store.Message, error) {
	if n <= 0 {
		return []store.Message{}, nil
	}

	query := fmt.Sprintf(`SELECT id, conversation_id, role, content, metadata, created_at
		FROM (
			SELECT seq, id, conversation_id, role, content, metadata, created_at
			FROM %s WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?
		) sub ORDER BY sub.seq ASC`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, conversationID, n)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: last messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Count returns the number of messages stored for the conversation.
func (s *SQLiteStore) Count(ctx context.Context, conversationID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE conversation_id = ?`, s.tableName)

	var count int
	if err := s.db.QueryRowContext(ctx, query, conversationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlitestore: count: %w", err)
	}
	return count, nil
}

// ClearConversation deletes all messages of the conversation.
func (s *SQLiteStore) ClearConversation(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = ?`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, conversationID); err != nil {
		return fmt.Errorf("sqlitestore: clear conversation: %w", err)
	}
	return nil
}

// scanMessages iterates over sql.Rows and returns a slice of store.Message.
// Returns an empty non-nil slice when no rows are present.
func scanMessages(rows *sql.Rows) ([]store.Message, error) {
	var messages []store.Message

	for rows.Next() {
		var message store.Message
		var id, role, createdAt string
		var metadataJSON sql.NullString

		if err := rows.Scan(&id, &message.ConversationID, &role, &message.Content, &metadataJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan row: %w", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("sqlitestore: parse message id: %w", err)
		}
		message.ID = parsed
		message.Role = store.Role(role)
		message.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if metadataJSON.Valid && metadataJSON.String != "" {
			_ = json.Unmarshal([]byte(metadataJSON.String), &message.Metadata)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: iterate rows: %w", err)
	}

	if messages == nil {
		return []store.Message{}, nil
	}
	return messages, nil
}

// marshalNullableJSON marshals metadata to JSON, returning a NULL-mapping nil
// when the map is empty so the column stores SQL NULL instead of "{}".
func marshalNullableJSON(metadata store.Metadata) (any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}
