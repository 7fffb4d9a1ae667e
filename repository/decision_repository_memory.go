package repository

import (
	"context"
	"sync"

	"loan-approval/domain"
)

// DecisionRepositoryMemory keeps the most recent decisions in memory.
type DecisionRepositoryMemory struct {
	mu    sync.Mutex
	limit int
	data  []domain.DecisionRecord
}

// NewDecisionRepositoryMemory creates an in-memory repository holding at
// most limit records; limit <= 0 means unbounded.
func NewDecisionRepositoryMemory(limit int) *DecisionRepositoryMemory {
	return &DecisionRepositoryMemory{
		limit: limit,
		data:  []domain.DecisionRecord{},
	}
}

// Save stores the decision, evicting the oldest once the limit is reached.
func (r *DecisionRepositoryMemory) Save(_ context.Context, record domain.DecisionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, record)
	if r.limit > 0 && len(r.data) > r.limit {
		r.data = append([]domain.DecisionRecord(nil), r.data[len(r.data)-r.limit:]...)
	}
	return nil
}

// All returns a copy of the stored decisions, oldest first.
func (r *DecisionRepositoryMemory) All() []domain.DecisionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DecisionRecord(nil), r.data...)
}
