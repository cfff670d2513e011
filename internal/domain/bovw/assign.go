package bovw

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"hive-vision/internal/domain/entity"
)

// NearestWord возвращает индекс ближайшего по евклидову расстоянию центроида.
// При равных расстояниях выбирается меньший индекс.
func NearestWord(d entity.Descriptor, dict *entity.Dictionary) (int, error) {
	if err := checkDescriptor(d, dict); err != nil {
		return -1, err
	}
	idx, _ := nearest(d, dict.Centroids)
	return idx, nil
}

// Assign сопоставляет каждому дескриптору изображения ближайшее слово.
// Порядок индексов совпадает с порядком дескрипторов.
func Assign(ds []entity.Descriptor, dict *entity.Dictionary) (entity.Assignment, error) {
	if dict.Size() == 0 {
		return nil, ErrEmptyDictionary
	}
	out := make(entity.Assignment, len(ds))
	for i, d := range ds {
		if err := checkDescriptor(d, dict); err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i, err)
		}
		out[i], _ = nearest(d, dict.Centroids)
	}
	return out, nil
}

// Describe строит гистограмму изображения по его дескрипторам.
func Describe(ds []entity.Descriptor, dict *entity.Dictionary) (entity.Histogram, error) {
	words, err := Assign(ds, dict)
	if err != nil {
		return nil, err
	}
	return Histogram(dict, words)
}

func checkDescriptor(d entity.Descriptor, dict *entity.Dictionary) error {
	if dict.Size() == 0 {
		return ErrEmptyDictionary
	}
	if len(d) != dict.Dim() {
		return fmt.Errorf("%w: got %d, dictionary has %d", ErrDimensionMismatch, len(d), dict.Dim())
	}
	return checkFinite(d)
}

// checkFinite отвергает NaN и ±Inf: расстояние до них не сравнимо.
func checkFinite(d entity.Descriptor) error {
	for j, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: component %d is %v", ErrNonFiniteDescriptor, j, v)
		}
	}
	return nil
}

// nearest линейный перебор центроидов; размерности проверяются вызывающим.
func nearest(d entity.Descriptor, centroids []entity.Descriptor) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for j, c := range centroids {
		dist := floats.Distance(d, c, 2)
		if dist < bestDist {
			best = j
			bestDist = dist
		}
	}
	return best, bestDist
}
