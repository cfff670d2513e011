package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

var errBrokenImage = errors.New("broken image")

// fakeLoader отдаёт имя файла вместо содержимого.
type fakeLoader struct {
	broken map[string]bool
}

func (l *fakeLoader) Load(ctx context.Context, path string) ([]byte, error) {
	name := filepath.Base(path)
	if l.broken[name] {
		return nil, errBrokenImage
	}
	return []byte(name), nil
}

// fakeExtractor сопоставляет содержимому заранее заданные дескрипторы.
type fakeExtractor struct {
	mu    sync.Mutex
	byKey map[string][]entity.Descriptor
	calls int
}

func (e *fakeExtractor) Name() string { return "fake" }

func (e *fakeExtractor) Extract(ctx context.Context, data []byte) ([]entity.Descriptor, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, ok := e.byKey[string(data)]
	if !ok {
		return nil, errBrokenImage
	}
	return ds, nil
}

// thresholdModel считает улей здоровым, если первое слово встречается чаще остальных.
type thresholdModel struct {
	dim int
}

func (m thresholdModel) Kind() string { return "threshold" }

func (m thresholdModel) Dim() int { return m.dim }

func (m thresholdModel) Predict(h entity.Histogram) (bool, error) {
	if len(h) != m.dim {
		return false, fmt.Errorf("%w: %d != %d", errWidth, len(h), m.dim)
	}
	if h.Total() == 0 {
		return false, nil
	}
	return h[0]*2 > h.Total(), nil
}

var errWidth = errors.New("histogram width differs from model")

// lookupModel запоминает метки обучающих гистограмм; незнакомые считает больными.
type lookupModel struct {
	dim    int
	labels map[string]bool
}

func (lookupModel) Kind() string { return "lookup" }

func (m lookupModel) Dim() int { return m.dim }

func (m lookupModel) Predict(h entity.Histogram) (bool, error) {
	if len(h) != m.dim {
		return false, errWidth
	}
	return m.labels[fmt.Sprint(h)], nil
}

type lookupTrainer struct {
	err error
}

func (t lookupTrainer) Name() string { return "lookup" }

func (t lookupTrainer) Fit(ctx context.Context, histograms []entity.Histogram, labels []bool) (port.Model, error) {
	if t.err != nil {
		return nil, t.err
	}
	m := lookupModel{labels: make(map[string]bool, len(histograms))}
	for i, h := range histograms {
		m.dim = len(h)
		m.labels[fmt.Sprint(h)] = labels[i]
	}
	return m, nil
}

// memoryArtifacts хранит артефакты в памяти.
type memoryArtifacts struct {
	dict  *entity.Dictionary
	model port.Model
}

var errNoArtifact = errors.New("no artifact")

func (m *memoryArtifacts) SaveDictionary(ctx context.Context, d *entity.Dictionary) error {
	m.dict = d
	return nil
}

func (m *memoryArtifacts) LoadDictionary(ctx context.Context) (*entity.Dictionary, error) {
	if m.dict == nil {
		return nil, errNoArtifact
	}
	return m.dict, nil
}

func (m *memoryArtifacts) SaveModel(ctx context.Context, model port.Model) error {
	m.model = model
	return nil
}

func (m *memoryArtifacts) LoadModel(ctx context.Context) (port.Model, error) {
	if m.model == nil {
		return nil, errNoArtifact
	}
	return m.model, nil
}

// staticSplits возвращает заранее заданные разбиения.
type staticSplits map[string]*entity.LabeledDataset

func (s staticSplits) ReadSplit(ctx context.Context, name string) (*entity.LabeledDataset, error) {
	ds, ok := s[name]
	if !ok {
		return nil, errors.New("unknown split " + name)
	}
	return ds, nil
}

var (
	wordA = entity.Descriptor{0, 0}
	wordB = entity.Descriptor{10, 10}
)

func repeat(d entity.Descriptor, n int) []entity.Descriptor {
	out := make([]entity.Descriptor, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func newFeatures(loader port.ImageLoader, extractor port.DescriptorExtractor) *FeatureService {
	return NewFeatureService(loader, extractor, FeatureOptions{Workers: 3}, nil)
}
