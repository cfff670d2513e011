package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"hive-vision/internal/domain/entity"
)

// ErrExperimentNotFound эксперимент с таким ID не сохранялся
var ErrExperimentNotFound = errors.New("experiment not found")

// ExperimentRepository интерфейс хранилища экспериментов
type ExperimentRepository interface {
	// Save сохраняет результаты эксперимента
	Save(ctx context.Context, e *entity.Experiment) error

	// Get возвращает эксперимент по ID или ErrExperimentNotFound
	Get(ctx context.Context, id uuid.UUID) (*entity.Experiment, error)

	// List возвращает эксперименты, новые первыми
	List(ctx context.Context) ([]*entity.Experiment, error)
}
