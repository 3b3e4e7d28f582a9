package layout

import (
	"context"
	"sync"
)

// Repository persists layouts in insertion order.
type Repository interface {
	List(ctx context.Context) ([]Layout, error)
	Get(ctx context.Context, id string) (Layout, error)
	Create(ctx context.Context, l Layout) error
	Update(ctx context.Context, l Layout) error
}

type MemoryRepository struct {
	mu      sync.RWMutex
	order   []string
	layouts map[string]Layout
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{layouts: map[string]Layout{}}
}

func (r *MemoryRepository) List(ctx context.Context) ([]Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Layout, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.layouts[id].clone())
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[id]
	if !ok {
		return Layout{}, ErrNotFound
	}
	return l.clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, l Layout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.layouts[l.ID]; ok {
		return ErrDuplicate
	}
	r.layouts[l.ID] = l.clone()
	r.order = append(r.order, l.ID)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, l Layout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.layouts[l.ID]; !ok {
		return ErrNotFound
	}
	r.layouts[l.ID] = l.clone()
	return nil
}
