package bovw

import (
	"fmt"

	"hive-vision/internal/domain/entity"
)

// Histogram считает, сколько дескрипторов изображения попало в каждое слово.
// Пустое назначение даёт нулевую гистограмму длины K.
func Histogram(dict *entity.Dictionary, words entity.Assignment) (entity.Histogram, error) {
	k := dict.Size()
	if k == 0 {
		return nil, ErrEmptyDictionary
	}
	h := make(entity.Histogram, k)
	for i, w := range words {
		if w < 0 || w >= k {
			return nil, fmt.Errorf("%w: assignment %d is %d, dictionary size %d", ErrWordOutOfRange, i, w, k)
		}
		h[w]++
	}
	return h, nil
}

// ZeroHistogram гистограмма изображения без дескрипторов.
func ZeroHistogram(dict *entity.Dictionary) entity.Histogram {
	return make(entity.Histogram, dict.Size())
}
