package check

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type ListOpts struct {
	Q      string // substring match on id or title
	Limit  int
	Offset int
}

type Store interface {
	PutCheck(ctx context.Context, c Check) error
	GetCheck(ctx context.Context, id string) (Check, error)
	ListChecks(ctx context.Context, opts ListOpts) ([]Summary, error)
	DeleteCheck(ctx context.Context, id string) error

	RecordCompletion(ctx context.Context, c Completion) error
	ListCompletions(ctx context.Context, checkID string) ([]Completion, error)
}

type memoryStore struct {
	mu          sync.RWMutex
	checks      map[string]Check
	completions map[string][]Completion
}

func NewInMemoryStore() Store {
	return &memoryStore{
		checks:      map[string]Check{},
		completions: map[string][]Completion{},
	}
}

func (m *memoryStore) PutCheck(_ context.Context, c Check) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.checks[c.ID]; ok {
		c.CreatedAt = old.CreatedAt
	} else if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	m.checks[c.ID] = c
	return nil
}

func (m *memoryStore) GetCheck(_ context.Context, id string) (Check, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.checks[id]
	if !ok {
		return Check{}, ErrNotFound
	}
	c.Questions = append([]Question(nil), c.Questions...)
	return c, nil
}

func (m *memoryStore) ListChecks(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := make([]Summary, 0, len(m.checks))
	for _, c := range m.checks {
		if q != "" && !strings.Contains(strings.ToLower(c.ID), q) && !strings.Contains(strings.ToLower(c.Title), q) {
			continue
		}
		out = append(out, Summary{
			ID:          c.ID,
			Title:       c.Title,
			Questions:   len(c.Questions),
			Completions: len(m.completions[c.ID]),
			CreatedAt:   c.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) DeleteCheck(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checks[id]; !ok {
		return ErrNotFound
	}
	delete(m.checks, id)
	delete(m.completions, id)
	return nil
}

func (m *memoryStore) RecordCompletion(_ context.Context, c Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checks[c.CheckID]; !ok {
		return ErrNotFound
	}
	m.completions[c.CheckID] = append(m.completions[c.CheckID], c)
	return nil
}

func (m *memoryStore) ListCompletions(_ context.Context, checkID string) ([]Completion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.checks[checkID]; !ok {
		return nil, ErrNotFound
	}
	return append([]Completion(nil), m.completions[checkID]...), nil
}

func page[T any](list []T, limit, offset int) []T {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
