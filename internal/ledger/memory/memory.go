// Package memory is the session-only ledger: transactions live in a slice
// for as long as the process runs.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"siuang/internal/core"
	"siuang/internal/ledger"
)

type Store struct {
	mu    sync.RWMutex
	items []core.Transaction // most recently added first
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Add stores the transaction in front of the existing ones.
func (s *Store) Add(_ context.Context, tx core.Transaction) error {
	if err := tx.ValidateStored(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(tx.ID) >= 0 {
		return ledger.ErrDuplicateID
	}
	s.items = slices.Insert(s.items, 0, tx)
	return nil
}

func (s *Store) Replace(_ context.Context, tx core.Transaction) error {
	if err := tx.ValidateStored(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(tx.ID)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.items[i] = tx
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return s.items[i], nil
}

// List returns a copy, so callers may hand it to the aggregation engine
// while other requests keep writing.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction{}, s.items...), nil
}

func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, tx := range s.items {
		c := strings.TrimSpace(tx.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(tx core.Transaction) bool { return tx.ID == id })
}
