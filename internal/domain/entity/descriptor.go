package entity

// Descriptor локальный признак участка изображения фиксированной размерности.
type Descriptor []float64

// Dim возвращает размерность дескриптора.
func (d Descriptor) Dim() int {
	return len(d)
}

// Dictionary упорядоченный набор визуальных слов (центроидов).
// Порядок центроидов задаёт индексы бинов всех гистограмм.
type Dictionary struct {
	Centroids []Descriptor
}

// Size возвращает число визуальных слов K.
func (d *Dictionary) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Centroids)
}

// Dim возвращает размерность центроидов или 0 для пустого словаря.
func (d *Dictionary) Dim() int {
	if d.Size() == 0 {
		return 0
	}
	return len(d.Centroids[0])
}

// Assignment индексы ближайших визуальных слов для дескрипторов одного изображения.
type Assignment []int

// Histogram вектор счётчиков длины K, бин i соответствует центроиду i.
type Histogram []float64

// Total возвращает сумму бинов, то есть число учтённых дескрипторов.
func (h Histogram) Total() float64 {
	var sum float64
	for _, v := range h {
		sum += v
	}
	return sum
}
