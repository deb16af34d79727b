package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS conversation_sessions (
	session_id TEXT PRIMARY KEY,
	turns      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists transcripts as JSONB rows, one per session. The
// table is created on startup when missing.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: postgres connect: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) ([]assistant.ConversationTurn, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT turns FROM conversation_sessions WHERE session_id = $1`, sessionID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []assistant.ConversationTurn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: postgres load %s: %w", sessionID, err)
	}

	var turns []assistant.ConversationTurn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, fmt.Errorf("history: postgres decode %s: %w", sessionID, err)
	}
	return turns, nil
}

func (s *PostgresStore) Save(ctx context.Context, sessionID string, turns []assistant.ConversationTurn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("history: postgres encode %s: %w", sessionID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO conversation_sessions (session_id, turns, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET turns = $2, updated_at = now()`,
		sessionID, raw,
	)
	if err != nil {
		return fmt.Errorf("history: postgres save %s: %w", sessionID, err)
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}
