//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"hive-vision/internal/domain/entity"
)

type GoCVExtractor struct {
	Algorithm string
	MaxSide   int
}

// NewGoCVExtractor создаёт экстрактор-заглушку (без OpenCV).
func NewGoCVExtractor(algorithm string) *GoCVExtractor {
	return &GoCVExtractor{
		Algorithm: algorithm,
		MaxSide:   1024,
	}
}

func (e *GoCVExtractor) Name() string { return e.Algorithm }

// Extract возвращает ошибку, если сборка без тега gocv.
func (e *GoCVExtractor) Extract(ctx context.Context, imageData []byte) ([]entity.Descriptor, error) {
	_ = ctx
	_ = imageData
	return nil, errors.New("gocv build tag is not enabled")
}
