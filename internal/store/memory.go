package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"intake-chatbot/pkg"
)

// Memory is an in-process profile store. Documents are held serialized, so
// every Load goes through the same JSON round trip as the Postgres store.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{profiles: make(map[string][]byte)}
}

func (s *Memory) Create(_ context.Context) (string, error) {
	doc, err := json.Marshal(pkg.NewProfile())
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.profiles[id] = doc
	return id, nil
}

func (s *Memory) Load(_ context.Context, sessionID string) (*pkg.Profile, error) {
	s.mu.RLock()
	doc, ok := s.profiles[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	profile := pkg.NewProfile()
	if err := json.Unmarshal(doc, profile); err != nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (s *Memory) Save(_ context.Context, sessionID string, profile *pkg.Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[sessionID]; !ok {
		return ErrNotFound
	}
	s.profiles[sessionID] = doc
	return nil
}
