package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/metric"
)

func TestTrainingService_FitPropagatesTrainerError(t *testing.T) {
	errFit := errors.New("degenerate training set")
	svc := NewTrainingService(newFeatures(&fakeLoader{}, &fakeExtractor{}), nil)

	_, err := svc.Fit(context.Background(), lookupTrainer{err: errFit}, []entity.Sample{
		{ImageID: "a.png", Healthy: true, Histogram: entity.Histogram{1, 0}},
	})
	require.ErrorIs(t, err, errFit)
}

func TestTrainingService_TrainAndEvaluate(t *testing.T) {
	extractor := &fakeExtractor{byKey: map[string][]entity.Descriptor{
		"h1.png": repeat(wordA, 3),
		"h2.png": repeat(wordA, 3),
		"u1.png": repeat(wordB, 2),
		"u2.png": {},
	}}
	svc := NewTrainingService(newFeatures(&fakeLoader{}, extractor), nil)
	dict := twoWordDictionary()
	ds, ok := entity.NewLabeledDataset(
		[]string{"h1.png", "u1.png", "h2.png", "u2.png"},
		[]bool{true, false, true, false},
	)
	require.True(t, ok)

	model, err := svc.Train(context.Background(), lookupTrainer{}, "", ds, dict)
	require.NoError(t, err)

	ev, err := svc.Evaluate(context.Background(), model, "", ds, dict)
	require.NoError(t, err)
	assert.Equal(t, 4, ev.Total)
	assert.Equal(t, 4, ev.Correct)
	assert.InDelta(t, 1.0, ev.Precision, 1e-12)
	assert.InDelta(t, 1.0, ev.Recall, 1e-12)
}

func TestTrainingService_EvaluateSamplesMatchesMetric(t *testing.T) {
	svc := NewTrainingService(newFeatures(&fakeLoader{}, &fakeExtractor{}), nil)
	samples := []entity.Sample{
		{Healthy: true, Histogram: entity.Histogram{3, 1}},
		{Healthy: false, Histogram: entity.Histogram{3, 0}},
		{Healthy: false, Histogram: entity.Histogram{0, 2}},
		{Healthy: true, Histogram: entity.Histogram{0, 0}},
	}

	ev, err := svc.EvaluateSamples(context.Background(), thresholdModel{dim: 2}, samples)
	require.NoError(t, err)

	want, err := metric.Evaluate(
		[]bool{true, false, false, true},
		[]bool{true, true, false, false},
	)
	require.NoError(t, err)
	assert.Equal(t, want, ev)
	assert.InDelta(t, 0.5, ev.Precision, 1e-12)
}

func TestTrainingService_EvaluateEmpty(t *testing.T) {
	svc := NewTrainingService(newFeatures(&fakeLoader{}, &fakeExtractor{}), nil)

	_, err := svc.EvaluateSamples(context.Background(), thresholdModel{dim: 2}, nil)
	require.ErrorIs(t, err, metric.ErrEmpty)
}

func TestTrainingService_EvaluateReportsWidthMismatch(t *testing.T) {
	svc := NewTrainingService(newFeatures(&fakeLoader{}, &fakeExtractor{}), nil)
	samples := []entity.Sample{
		{ImageID: "a.png", Healthy: true, Histogram: entity.Histogram{3, 1}},
		{ImageID: "b.png", Healthy: false, Histogram: entity.Histogram{3, 1, 0}},
	}

	_, err := svc.EvaluateSamples(context.Background(), thresholdModel{dim: 2}, samples)
	require.ErrorIs(t, err, errWidth)
	assert.Contains(t, err.Error(), "b.png")
}
