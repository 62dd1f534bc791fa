package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"intake-chatbot/pkg"
)

// Postgres keeps one JSONB profile document per session row. The caller is
// responsible for managing the DB connection lifecycle.
type Postgres struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPostgres constructs a Postgres-backed profile store.
func NewPostgres(db *sql.DB, log zerolog.Logger) *Postgres {
	return &Postgres{db: db, log: log}
}

// Create inserts a fresh session with an empty profile and returns its id.
func (s *Postgres) Create(ctx context.Context) (string, error) {
	id := uuid.New().String()
	doc, err := json.Marshal(pkg.NewProfile())
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, profile) VALUES ($1, $2)`,
		id, doc,
	); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// Load fetches and decodes the profile document. A row whose JSON no longer
// decodes is reported as absent, not as a failure; the session restarts
// rather than crashing.
func (s *Postgres) Load(ctx context.Context, sessionID string) (*pkg.Profile, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	profile := pkg.NewProfile()
	if err := json.Unmarshal(doc, profile); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("discarding malformed profile document")
		return nil, ErrNotFound
	}
	return profile, nil
}

// Save replaces the profile document for an existing session.
func (s *Postgres) Save(ctx context.Context, sessionID string, profile *pkg.Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET profile = $2, updated_at = NOW() WHERE id = $1`,
		sessionID, doc,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
