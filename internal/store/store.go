package store

import (
	"context"
	"errors"

	"intake-chatbot/pkg"
)

// ErrNotFound signals an absent (or unreadable) session profile. A malformed
// persisted profile surfaces as ErrNotFound too, so the caller restarts the
// wizard instead of crashing.
var ErrNotFound = errors.New("session not found")

// ProfileStore persists one profile document per session, transcript and
// coverage state included. Save must round-trip everything verbatim,
// including the asked-question set.
type ProfileStore interface {
	Create(ctx context.Context) (string, error)
	Load(ctx context.Context, sessionID string) (*pkg.Profile, error)
	Save(ctx context.Context, sessionID string, profile *pkg.Profile) error
}
