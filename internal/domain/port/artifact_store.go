package port

import (
	"context"

	"hive-vision/internal/domain/entity"
)

// ArtifactStore хранит словарь и обученную модель между запусками
type ArtifactStore interface {
	SaveDictionary(ctx context.Context, d *entity.Dictionary) error
	LoadDictionary(ctx context.Context) (*entity.Dictionary, error)
	SaveModel(ctx context.Context, m Model) error
	LoadModel(ctx context.Context) (Model, error)
}
