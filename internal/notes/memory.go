package notes

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	notes map[string]Note
}

func NewMemory(seed ...Note) *Memory {
	m := &Memory{notes: make(map[string]Note)}
	for _, n := range seed {
		m.notes[n.ID] = n
	}
	return m
}

func (m *Memory) List(_ context.Context, owner string) ([]Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Note
	for _, n := range m.notes {
		if n.Owner == owner {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Create(_ context.Context, n Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[n.ID] = n
	return nil
}

func (m *Memory) Update(_ context.Context, owner, id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.Owner != owner {
		return ErrNotFound
	}
	n.Text = text
	m.notes[id] = n
	return nil
}

func (m *Memory) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.Owner != owner {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}
