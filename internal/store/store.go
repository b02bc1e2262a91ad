// Package store keeps the durable set of already-notified role identities
// and an in-memory view of it for cheap lookups during a cycle.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"internwatch/internal/model"
	"internwatch/internal/repositories"
)

// Error wraps any durable-state failure so callers can abort a cycle's
// remaining commits without inspecting backend-specific errors.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("state store: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Store is the single writer to the notified set. Reads come from the
// in-memory view; commits write through to the repository before the view
// is updated, so a crash mid-commit can only cause a duplicate notification,
// never a missed one.
type Store struct {
	repo    repositories.NotifiedRepository
	timeout time.Duration

	mu   sync.Mutex
	seen map[string]model.NotifiedRole
}

func New(repo repositories.NotifiedRepository, timeout time.Duration) *Store {
	return &Store{
		repo:    repo,
		timeout: timeout,
		seen:    make(map[string]model.NotifiedRole),
	}
}

// Load populates the in-memory view from the repository. Called once at
// startup; an empty backend is a valid first run.
func (s *Store) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	roles, err := s.repo.Load(ctx)
	if err != nil {
		return &Error{Op: "load", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]model.NotifiedRole, len(roles))
	for _, role := range roles {
		s.seen[role.Key] = role
	}
	return nil
}

func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[key]
	return ok
}

// ActiveState reports the stored active flag for a key and whether the key
// is known at all.
func (s *Store) ActiveState(key string) (active bool, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.seen[key]
	return role.Active, ok
}

// Commit durably records a notified role. Idempotent: committing a key that
// is already present is a no-op.
func (s *Store) Commit(ctx context.Context, role model.NotifiedRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[role.Key]; ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.repo.Add(ctx, role); err != nil {
		return &Error{Op: "commit", Err: err}
	}

	s.seen[role.Key] = role
	return nil
}

// MarkInactive flips the stored active flag so a deactivation notice is
// sent at most once per role.
func (s *Store) MarkInactive(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.seen[key]
	if !ok || !role.Active {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.SetActive(ctx, key, false); err != nil {
		return &Error{Op: "mark inactive", Err: err}
	}

	role.Active = false
	s.seen[key] = role
	return nil
}

// Size returns the number of known identities.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
