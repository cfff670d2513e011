package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive-vision/internal/domain/bovw"
	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
	"hive-vision/internal/infrastructure/storage"
)

// hiveDataset строит выборку: здоровые ульи дают слово A, больные слово B.
func hiveDataset(prefix string, n int, byKey map[string][]entity.Descriptor) *entity.LabeledDataset {
	ids := make([]string, n)
	labels := make([]bool, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s_%02d.png", prefix, i)
		labels[i] = i%2 == 0
		if labels[i] {
			byKey[ids[i]] = repeat(wordA, 3)
		} else {
			byKey[ids[i]] = repeat(wordB, 2)
		}
	}
	ds, _ := entity.NewLabeledDataset(ids, labels)
	return ds
}

func newExperimentFixture(t *testing.T) (*ExperimentService, *memoryArtifacts, *storage.MemoryExperimentRepository) {
	t.Helper()
	byKey := make(map[string][]entity.Descriptor)
	splits := staticSplits{
		trainSplit: hiveDataset("train", 20, byKey),
		testSplit:  hiveDataset("test", 6, byKey),
	}
	features := newFeatures(&fakeLoader{}, &fakeExtractor{byKey: byKey})
	artifacts := &memoryArtifacts{}
	repo := storage.NewMemoryExperimentRepository()
	svc := NewExperimentService(splits, features, NewTrainingService(features, nil), artifacts, repo, nil)
	return svc, artifacts, repo
}

func TestExperimentService_Run(t *testing.T) {
	svc, artifacts, repo := newExperimentFixture(t)
	ctx := context.Background()

	res, err := svc.Run(ctx, lookupTrainer{}, ExperimentConfig{
		DictionarySize:     5,
		Seed:               3,
		MaxIterations:      20,
		Tolerance:          1e-6,
		ValidationFraction: 0.2,
	})
	require.NoError(t, err)

	exp := res.Experiment
	assert.Equal(t, "lookup", exp.Classifier)
	assert.Equal(t, "fake", exp.Extractor)
	assert.Equal(t, 5, exp.RequestedSize)
	assert.Equal(t, 2, exp.DictionarySize)
	assert.Equal(t, 16, exp.TrainSize)
	assert.Equal(t, 4, exp.ValidationSize)
	assert.Equal(t, 6, exp.TestSize)
	assert.InDelta(t, 1.0, exp.Test.Precision, 1e-12)
	assert.InDelta(t, 1.0, exp.Validation.Recall, 1e-12)

	assert.Same(t, res.Dictionary, artifacts.dict)
	assert.NotNil(t, artifacts.model)

	saved, err := repo.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, exp.ID, saved.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExperimentService_RunWithoutValidation(t *testing.T) {
	svc, _, _ := newExperimentFixture(t)

	res, err := svc.Run(context.Background(), lookupTrainer{}, ExperimentConfig{
		DictionarySize: 2,
		Seed:           1,
		MaxIterations:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Experiment.TrainSize)
	assert.Zero(t, res.Experiment.ValidationSize)
	assert.Zero(t, res.Experiment.Validation.Total)
}

func TestExperimentService_InvalidDictionarySize(t *testing.T) {
	svc, _, _ := newExperimentFixture(t)

	_, err := svc.Run(context.Background(), lookupTrainer{}, ExperimentConfig{
		DictionarySize: 0,
		MaxIterations:  10,
	})
	require.ErrorIs(t, err, bovw.ErrInvalidSize)
}

// narrowTrainer возвращает модель, обученную на одном бине.
type narrowTrainer struct{}

func (narrowTrainer) Name() string { return "narrow" }

func (narrowTrainer) Fit(ctx context.Context, histograms []entity.Histogram, labels []bool) (port.Model, error) {
	return thresholdModel{dim: 1}, nil
}

func TestExperimentService_ModelWidthMustMatchDictionary(t *testing.T) {
	svc, artifacts, _ := newExperimentFixture(t)

	_, err := svc.Run(context.Background(), narrowTrainer{}, ExperimentConfig{
		DictionarySize: 2,
		MaxIterations:  10,
	})
	require.ErrorIs(t, err, ErrModelMismatch)
	assert.Nil(t, artifacts.dict)
	assert.Nil(t, artifacts.model)
}

func TestExperimentService_TrainerErrorStopsRun(t *testing.T) {
	svc, artifacts, repo := newExperimentFixture(t)
	errFit := fmt.Errorf("cannot fit")

	_, err := svc.Run(context.Background(), lookupTrainer{err: errFit}, ExperimentConfig{
		DictionarySize: 2,
		MaxIterations:  10,
	})
	require.ErrorIs(t, err, errFit)
	assert.Nil(t, artifacts.dict)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
