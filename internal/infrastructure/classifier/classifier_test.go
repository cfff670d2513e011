package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

func predict(t *testing.T, m port.Model, h entity.Histogram) bool {
	t.Helper()
	healthy, err := m.Predict(h)
	require.NoError(t, err)
	return healthy
}

// separable здоровые ульи с частым словом 0, больные со словом 1.
func separable() ([]entity.Histogram, []bool) {
	var hs []entity.Histogram
	var labels []bool
	for i := 0; i < 20; i++ {
		hs = append(hs, entity.Histogram{float64(5 + i%3), 0, 2})
		labels = append(labels, true)
		hs = append(hs, entity.Histogram{0, float64(5 + i%3), 2})
		labels = append(labels, false)
	}
	return hs, labels
}

func TestTrainers_SeparableData(t *testing.T) {
	ctx := context.Background()
	hs, labels := separable()

	for _, kind := range []string{KindSVM, KindBayes} {
		t.Run(kind, func(t *testing.T) {
			trainer, err := NewTrainer(kind, 1)
			require.NoError(t, err)
			require.Equal(t, kind, trainer.Name())

			model, err := trainer.Fit(ctx, hs, labels)
			require.NoError(t, err)
			require.Equal(t, kind, model.Kind())

			for i, h := range hs {
				assert.Equal(t, labels[i], predict(t, model, h), "sample %d", i)
			}
			assert.True(t, predict(t, model, entity.Histogram{9, 0, 2}))
			assert.False(t, predict(t, model, entity.Histogram{0, 9, 2}))
		})
	}
}

func TestTrainers_PropagateBoundaryErrors(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []string{KindSVM, KindBayes} {
		trainer, err := NewTrainer(kind, 1)
		require.NoError(t, err)

		_, err = trainer.Fit(ctx, []entity.Histogram{{1, 2}}, []bool{true, false})
		assert.ErrorIs(t, err, ErrLengthMismatch)

		_, err = trainer.Fit(ctx, nil, nil)
		assert.ErrorIs(t, err, ErrEmptyTrainingSet)

		_, err = trainer.Fit(ctx, []entity.Histogram{{1, 2}, {1}}, []bool{true, false})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	}
}

func TestSVM_SingleClassPredictsThatClass(t *testing.T) {
	hs := []entity.Histogram{{1, 0}, {2, 1}, {0, 3}}
	model, err := NewSVMTrainer(3).Fit(context.Background(), hs, []bool{true, true, true})
	require.NoError(t, err)

	for _, h := range hs {
		assert.True(t, predict(t, model, h))
	}

	model, err = NewSVMTrainer(3).Fit(context.Background(), hs, []bool{false, false, false})
	require.NoError(t, err)
	assert.False(t, predict(t, model, entity.Histogram{5, 5}))
}

func TestBayes_PresenceDrivesPrediction(t *testing.T) {
	hs := []entity.Histogram{{1, 0}, {1, 0}, {1, 0}, {0, 1}}
	model, err := NewBayesTrainer().Fit(context.Background(), hs, []bool{true, true, true, false})
	require.NoError(t, err)

	assert.True(t, predict(t, model, entity.Histogram{1, 0}))
	assert.False(t, predict(t, model, entity.Histogram{0, 1}))
}

func TestPredict_WrongDimensionIsAnError(t *testing.T) {
	hs, labels := separable()
	for _, kind := range []string{KindSVM, KindBayes} {
		trainer, err := NewTrainer(kind, 1)
		require.NoError(t, err)
		model, err := trainer.Fit(context.Background(), hs, labels)
		require.NoError(t, err)
		require.Equal(t, 3, model.Dim())

		for _, h := range []entity.Histogram{{9}, {9, 0, 2, 0}, nil} {
			_, err := model.Predict(h)
			assert.ErrorIs(t, err, ErrDimensionMismatch, "%s %v", kind, h)
		}
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	_, err := NewTrainer("cnn", 1)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = NewModel("cnn")
	assert.ErrorIs(t, err, ErrUnknownKind)

	m, err := NewModel(KindBayes)
	require.NoError(t, err)
	assert.Equal(t, KindBayes, m.Kind())
}
