package storage

import (
	"context"
	"sync"

	"expenselog/internal/core"
)

// MemoryRepository keeps the saved snapshot in process memory. Nothing
// survives a restart; it is meant for trying the UI out.
type MemoryRepository struct {
	mu      sync.Mutex
	records []core.Expense
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns a repository whose first Load yields seed.
func NewMemoryRepository(seed []core.Expense) *MemoryRepository {
	return &MemoryRepository{records: append([]core.Expense(nil), seed...)}
}

func (r *MemoryRepository) Location() string {
	return "memory"
}

func (r *MemoryRepository) Load(context.Context) ([]core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Expense{}, r.records...), nil
}

func (r *MemoryRepository) Save(_ context.Context, records []core.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append([]core.Expense(nil), records...)
	return nil
}
