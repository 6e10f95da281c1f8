// internal/store/sqlite.go
//
// Durable Store implementation over SQLite: a key-value table mapping owner
// to the serialized session blob. Schema lives in sql/001_init.sql.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toptendaily/go-server/internal/game"
)

type sqlStore struct{ db *sql.DB }

// NewSQLStore constructs a Store backed by the game_sessions table.
func NewSQLStore(db *sql.DB) Store { return &sqlStore{db: db} }

func (s *sqlStore) Load(ctx context.Context, owner string) (*game.Session, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM game_sessions WHERE owner=?`, owner,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return game.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", owner, err)
	}
	return decodeSession(raw, owner), nil
}

func (s *sqlStore) Save(ctx context.Context, owner string, sess *game.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", owner, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO game_sessions (owner, data, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(owner) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		owner, raw, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", owner, err)
	}
	return nil
}

// decodeSession deserializes a stored blob, treating malformed data as a
// first run rather than an error.
func decodeSession(raw []byte, owner string) *game.Session {
	sess := game.New()
	if err := json.Unmarshal(raw, sess); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("malformed session blob, starting fresh")
		return game.New()
	}
	return sess
}
