// Package imagefs читает изображения ульев с локального диска.
package imagefs

import (
	"context"
	"fmt"
	"os"

	"hive-vision/internal/domain/port"
)

// FileLoader загружает изображения из файловой системы.
type FileLoader struct{}

// NewFileLoader создаёт загрузчик.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load читает файл целиком.
func (l *FileLoader) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("load image %s: empty file", path)
	}
	return data, nil
}

var _ port.ImageLoader = (*FileLoader)(nil)
