package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

// MemoryExperimentRepository in-memory журнал экспериментов
type MemoryExperimentRepository struct {
	mu          sync.RWMutex
	experiments map[uuid.UUID]entity.Experiment
}

// NewMemoryExperimentRepository создаёт пустой журнал
func NewMemoryExperimentRepository() *MemoryExperimentRepository {
	return &MemoryExperimentRepository{
		experiments: make(map[uuid.UUID]entity.Experiment),
	}
}

// Save сохраняет копию эксперимента
func (r *MemoryExperimentRepository) Save(ctx context.Context, e *entity.Experiment) error {
	r.mu.Lock()
	r.experiments[e.ID] = *e
	r.mu.Unlock()
	return nil
}

// Get возвращает эксперимент по ID
func (r *MemoryExperimentRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Experiment, error) {
	r.mu.RLock()
	e, ok := r.experiments[id]
	r.mu.RUnlock()
	if !ok {
		return nil, port.ErrExperimentNotFound
	}
	return &e, nil
}

// List возвращает эксперименты, новые первыми
func (r *MemoryExperimentRepository) List(ctx context.Context) ([]*entity.Experiment, error) {
	r.mu.RLock()
	out := make([]*entity.Experiment, 0, len(r.experiments))
	for _, e := range r.experiments {
		e := e
		out = append(out, &e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ port.ExperimentRepository = (*MemoryExperimentRepository)(nil)
