// Package vision извлекает локальные дескрипторы из фотографий ульев.
package vision

import (
	"errors"
	"fmt"

	"hive-vision/internal/domain/port"
)

const (
	AlgorithmHaar = "haar"
	AlgorithmSIFT = "sift"
	AlgorithmORB  = "orb"
)

// ErrUnknownAlgorithm неизвестный алгоритм дескрипторов.
var ErrUnknownAlgorithm = errors.New("unknown descriptor algorithm")

// NewExtractor создаёт экстрактор по названию алгоритма.
// SIFT и ORB требуют сборки с тегом gocv.
func NewExtractor(algorithm string) (port.DescriptorExtractor, error) {
	switch algorithm {
	case AlgorithmHaar:
		return NewHaarExtractor(), nil
	case AlgorithmSIFT, AlgorithmORB:
		return NewGoCVExtractor(algorithm), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}
