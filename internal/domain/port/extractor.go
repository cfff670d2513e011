package port

import (
	"context"

	"hive-vision/internal/domain/entity"
)

// DescriptorExtractor интерфейс извлечения локальных дескрипторов
type DescriptorExtractor interface {
	// Name возвращает название алгоритма (haar, sift, orb)
	Name() string

	// Extract возвращает дескрипторы изображения; порядок не важен
	Extract(ctx context.Context, imageData []byte) ([]entity.Descriptor, error)
}

// ImageLoader интерфейс загрузки изображений
type ImageLoader interface {
	// Load читает сырые байты изображения
	Load(ctx context.Context, path string) ([]byte, error)
}
