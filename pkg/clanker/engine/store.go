package engine

import (
	"context"
	"log/slog"
	"sync"
)

// Store owns every conversation transcript. It is the only component that
// mutates them: all access goes through WithScope, which serializes
// mutations per scope while letting different scopes proceed in parallel.
type Store struct {
	mu      sync.RWMutex
	entries map[Scope]*scopeEntry
	logger  *slog.Logger
}

// scopeEntry pairs a transcript with the mutex that serializes access to
// it. The entry mutex is held for whole actions, completion call included.
type scopeEntry struct {
	mu         sync.Mutex
	transcript *Transcript
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries: make(map[Scope]*scopeEntry),
		logger:  logger.With("component", "store"),
	}
}

// WithScope runs fn with exclusive access to the scope's transcript,
// creating it via init when absent. At most one action is in flight per
// scope: a second concurrent call for the same scope blocks until the
// first completes and then sees its resulting transcript. Actions for
// different scopes run fully in parallel.
//
// fn may block on the completion call; the scope slot stays held the whole
// time so a clear cannot interleave. If the scope is cleared while a call
// is waiting for the slot, the waiter starts over on a fresh transcript.
func (s *Store) WithScope(ctx context.Context, scope Scope, init func() *Transcript, fn func(t *Transcript) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e := s.acquire(scope, init)
		e.mu.Lock()

		// The entry may have been cleared between lookup and lock. Only
		// act on it while it is still the one registered for the scope,
		// otherwise the append would resurrect removed history.
		s.mu.RLock()
		current := s.entries[scope] == e
		s.mu.RUnlock()
		if !current {
			e.mu.Unlock()
			continue
		}

		err := fn(e.transcript)
		e.mu.Unlock()
		return err
	}
}

// acquire returns the scope's entry, creating it when absent. init runs
// without any lock held, since building the first transcript may reach the
// network (emoji warm-up); when two callers race, one result is discarded.
func (s *Store) acquire(scope Scope, init func() *Transcript) *scopeEntry {
	s.mu.RLock()
	e := s.entries[scope]
	s.mu.RUnlock()
	if e != nil {
		return e
	}

	t := init()

	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entries[scope]; e != nil {
		return e
	}
	e = &scopeEntry{transcript: t}
	s.entries[scope] = e
	s.logger.Debug("transcript created", "scope", scope.String())
	return e
}

// Clear removes the scope's transcript entirely. The next access recreates
// it with a fresh persona turn. Clear takes the same per-scope slot as a
// normal turn, so it waits out an in-flight completion rather than racing
// it. Clearing an absent scope is a no-op.
func (s *Store) Clear(scope Scope) {
	s.mu.RLock()
	e := s.entries[scope]
	s.mu.RUnlock()
	if e == nil {
		return
	}

	e.mu.Lock()
	s.mu.Lock()
	if s.entries[scope] == e {
		delete(s.entries, scope)
	}
	s.mu.Unlock()
	e.mu.Unlock()

	s.logger.Info("transcript cleared", "scope", scope.String())
}

// ClearAll removes every transcript and returns how many were dropped.
// Each scope is cleared under its own slot; the caller is responsible for
// the owner check.
func (s *Store) ClearAll() int {
	s.mu.RLock()
	scopes := make([]Scope, 0, len(s.entries))
	for scope := range s.entries {
		scopes = append(scopes, scope)
	}
	s.mu.RUnlock()

	for _, scope := range scopes {
		s.Clear(scope)
	}

	s.logger.Info("all transcripts cleared", "count", len(scopes))
	return len(scopes)
}

// Len returns the number of live transcripts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
