package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists chat sessions in Postgres. The transcript is a jsonb
// array on the session row; appends go through a single UPDATE statement, so
// concurrent appends to one session serialize at the storage layer.
type Repository struct {
	pool PgxPool
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("chat: pgx pool required")
	}
	return &Repository{pool: pool}
}

// CreateSession opens a session with an empty transcript.
func (r *Repository) CreateSession(ctx context.Context, customerID uuid.UUID) (*Session, error) {
	s := &Session{
		ID:         uuid.New(),
		CustomerID: customerID,
	}
	query := `
		INSERT INTO chat_sessions (id, customer_id, messages)
		VALUES ($1, $2, '[]'::jsonb)
		RETURNING started_at
	`
	if err := r.pool.QueryRow(ctx, query, s.ID, s.CustomerID).Scan(&s.StartedAt); err != nil {
		return nil, fmt.Errorf("chat: create session failed: %w", err)
	}
	return s, nil
}

// AppendMessage appends one message to the session transcript. The timestamp
// is assigned by the database so ordering follows the storage layer's write
// order.
func (r *Repository) AppendMessage(ctx context.Context, sessionID uuid.UUID, sender, text string) error {
	query := `
		UPDATE chat_sessions
		SET messages = messages || jsonb_build_array(
			jsonb_build_object('sender', $1::text, 'message', $2::text, 'timestamp', now())
		)
		WHERE id = $3
	`
	tag, err := r.pool.Exec(ctx, query, sender, text, sessionID)
	if err != nil {
		return fmt.Errorf("chat: append message failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// History returns the session transcript in append order.
func (r *Repository) History(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	var raw []byte
	query := `SELECT messages FROM chat_sessions WHERE id = $1`
	if err := r.pool.QueryRow(ctx, query, sessionID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("chat: load history failed: %w", err)
	}

	var history []Message
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("chat: decode history failed: %w", err)
	}
	return history, nil
}

// GetSession loads session metadata.
func (r *Repository) GetSession(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	var s Session
	query := `SELECT id, customer_id, started_at FROM chat_sessions WHERE id = $1`
	if err := r.pool.QueryRow(ctx, query, sessionID).Scan(&s.ID, &s.CustomerID, &s.StartedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("chat: load session failed: %w", err)
	}
	return &s, nil
}
