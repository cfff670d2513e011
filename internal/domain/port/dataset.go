package port

import (
	"context"

	"hive-vision/internal/domain/entity"
)

// SplitReader читает сохранённые разбиения выборки (train, test)
type SplitReader interface {
	ReadSplit(ctx context.Context, name string) (*entity.LabeledDataset, error)
}
