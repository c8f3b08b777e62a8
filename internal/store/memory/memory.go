// Package memory is an in-process backend for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

type Store struct {
	mu        sync.Mutex
	nextGoal  int64
	nextRec   int64
	goals     map[int64]core.Goal
	recurring map[int64]core.RecurringTransaction
	snapshots map[int64]store.Snapshot

	now func() time.Time
}

func New() *Store {
	return &Store{
		goals:     make(map[int64]core.Goal),
		recurring: make(map[int64]core.RecurringTransaction),
		snapshots: make(map[int64]store.Snapshot),
		now:       time.Now,
	}
}

// CreateGoal validates and stores g, assigning ID and CreatedAt.
func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGoal++
	g.ID = s.nextGoal
	g.CreatedAt = s.now().UTC()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) GetGoal(_ context.Context, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	return g, nil
}

// ListGoals returns goals ordered by ID.
func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteGoal removes the goal and its snapshot.
func (s *Store) DeleteGoal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	delete(s.goals, id)
	delete(s.snapshots, id)
	return nil
}

func (s *Store) CreateRecurring(_ context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRec++
	rt.ID = s.nextRec
	rt.CreatedAt = s.now().UTC()
	s.recurring[rt.ID] = rt
	return rt, nil
}

func (s *Store) GetRecurring(_ context.Context, id int64) (core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.recurring[id]
	if !ok {
		return core.RecurringTransaction{}, fmt.Errorf("recurring transaction %d: %w", id, core.ErrNotFound)
	}
	return rt, nil
}

// ListRecurring returns definitions ordered by ID.
func (s *Store) ListRecurring(_ context.Context) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringTransaction, 0, len(s.recurring))
	for _, rt := range s.recurring {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateRecurring replaces the stored definition with the same ID. CreatedAt
// is preserved.
func (s *Store) UpdateRecurring(_ context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.recurring[rt.ID]
	if !ok {
		return core.RecurringTransaction{}, fmt.Errorf("recurring transaction %d: %w", rt.ID, core.ErrNotFound)
	}
	rt.CreatedAt = prev.CreatedAt
	s.recurring[rt.ID] = rt
	return rt, nil
}

func (s *Store) DeleteRecurring(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[id]; !ok {
		return fmt.Errorf("recurring transaction %d: %w", id, core.ErrNotFound)
	}
	delete(s.recurring, id)
	return nil
}

// SaveSnapshot replaces the snapshot for the goal. Snapshots for unknown
// goals are rejected.
func (s *Store) SaveSnapshot(_ context.Context, snap store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[snap.GoalID]; !ok {
		return fmt.Errorf("goal %d: %w", snap.GoalID, core.ErrNotFound)
	}
	s.snapshots[snap.GoalID] = snap
	return nil
}

func (s *Store) LatestSnapshot(_ context.Context, goalID int64) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[goalID]
	if !ok {
		return store.Snapshot{}, fmt.Errorf("snapshot for goal %d: %w", goalID, core.ErrNotFound)
	}
	return snap, nil
}

func (s *Store) Close() error { return nil }
