package entity

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// LabeledImage одна строка разметки: файл изображения и здоровье улья.
type LabeledImage struct {
	ImageID string
	Healthy bool
}

// LabeledDataset упорядоченная выборка изображений с метками.
type LabeledDataset struct {
	Images []LabeledImage
}

// NewLabeledDataset собирает выборку из параллельных списков.
// Возвращает false, если длины списков не совпадают.
func NewLabeledDataset(ids []string, labels []bool) (*LabeledDataset, bool) {
	if len(ids) != len(labels) {
		return nil, false
	}
	images := make([]LabeledImage, len(ids))
	for i := range ids {
		images[i] = LabeledImage{ImageID: ids[i], Healthy: labels[i]}
	}
	return &LabeledDataset{Images: images}, true
}

// Len возвращает размер выборки.
func (d *LabeledDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Images)
}

// IDs возвращает идентификаторы изображений в порядке выборки.
func (d *LabeledDataset) IDs() []string {
	ids := make([]string, 0, d.Len())
	for _, img := range d.Images {
		ids = append(ids, img.ImageID)
	}
	return ids
}

// Labels возвращает метки в порядке выборки.
func (d *LabeledDataset) Labels() []bool {
	labels := make([]bool, 0, d.Len())
	for _, img := range d.Images {
		labels = append(labels, img.Healthy)
	}
	return labels
}

// Sample связывает изображение, его метку и гистограмму в одну запись.
type Sample struct {
	ImageID   string
	Healthy   bool
	Histogram Histogram
}

// SplitSamples раскладывает записи на гистограммы и метки для обучения.
func SplitSamples(samples []Sample) ([]Histogram, []bool) {
	histograms := make([]Histogram, len(samples))
	labels := make([]bool, len(samples))
	for i, s := range samples {
		histograms[i] = s.Histogram
		labels[i] = s.Healthy
	}
	return histograms, labels
}

// StratifiedSplit отделяет долю fraction выборки так, чтобы соотношение
// здоровых и больных ульев в обеих частях сохранялось. Порядок внутри
// частей определяется перемешиванием с зерном seed.
func (d *LabeledDataset) StratifiedSplit(fraction float64, seed uint64) (*LabeledDataset, *LabeledDataset, error) {
	if fraction <= 0 || fraction >= 1 || math.IsNaN(fraction) {
		return nil, nil, fmt.Errorf("split fraction must be in (0, 1), got %v", fraction)
	}

	var healthy, unhealthy []LabeledImage
	for _, img := range d.Images {
		if img.Healthy {
			healthy = append(healthy, img)
		} else {
			unhealthy = append(unhealthy, img)
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x5bd1e995))
	var rest, held []LabeledImage
	for _, group := range [][]LabeledImage{healthy, unhealthy} {
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		n := int(math.Round(fraction * float64(len(group))))
		held = append(held, group[:n]...)
		rest = append(rest, group[n:]...)
	}

	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	rng.Shuffle(len(held), func(i, j int) { held[i], held[j] = held[j], held[i] })

	return &LabeledDataset{Images: rest}, &LabeledDataset{Images: held}, nil
}
