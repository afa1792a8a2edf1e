package store

import (
	"context"
	"sync"

	"github.com/jimezsa/jobradar/internal/models"
)

// Memory is an in-process store. A batch is applied under one lock, so
// concurrent harvests never lose updates and readers see a consistent
// snapshot.
type Memory struct {
	mu    sync.RWMutex
	order []string
	items map[string]models.Posting
}

func NewMemory() *Memory {
	return &Memory{items: map[string]models.Posting{}}
}

func (m *Memory) Upsert(_ context.Context, postings []models.Posting) (int, error) {
	if err := validate(postings); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(postings)
	return len(postings), nil
}

func (m *Memory) put(postings []models.Posting) {
	for _, posting := range postings {
		if _, ok := m.items[posting.ID]; !ok {
			m.order = append(m.order, posting.ID)
		}
		m.items[posting.ID] = posting.Clone()
	}
}

func (m *Memory) All(_ context.Context) ([]models.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(), nil
}

func (m *Memory) snapshot() []models.Posting {
	out := make([]models.Posting, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id].Clone())
	}
	return out
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.items = map[string]models.Posting{}
	return nil
}

func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}
