package bovw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive-vision/internal/domain/entity"
)

func TestHistogram(t *testing.T) {
	dict := &entity.Dictionary{Centroids: []entity.Descriptor{{0}, {1}, {2}, {3}}}

	h, err := Histogram(dict, entity.Assignment{0, 2, 0, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, entity.Histogram{3, 0, 2, 0}, h)
	assert.Equal(t, 5.0, h.Total())
}

func TestHistogram_NoDescriptorsGivesZeroVector(t *testing.T) {
	dict := &entity.Dictionary{Centroids: []entity.Descriptor{{0}, {1}, {2}}}

	h, err := Histogram(dict, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.Histogram{0, 0, 0}, h)

	h, err = Describe(nil, dict)
	require.NoError(t, err)
	assert.Equal(t, entity.Histogram{0, 0, 0}, h)

	assert.Equal(t, h, ZeroHistogram(dict))
}

func TestHistogram_LengthAndSum(t *testing.T) {
	dict := &entity.Dictionary{Centroids: []entity.Descriptor{{0, 0}, {4, 4}, {8, 8}}}
	ds := []entity.Descriptor{{1, 1}, {3, 3}, {7, 9}, {100, 100}, {-2, 0}, {4, 5}}

	h, err := Describe(ds, dict)
	require.NoError(t, err)
	assert.Len(t, h, dict.Size())
	assert.Equal(t, float64(len(ds)), h.Total())
}

func TestHistogram_Errors(t *testing.T) {
	dict := &entity.Dictionary{Centroids: []entity.Descriptor{{0}, {1}}}

	_, err := Histogram(dict, entity.Assignment{0, 2})
	assert.ErrorIs(t, err, ErrWordOutOfRange)

	_, err = Histogram(dict, entity.Assignment{-1})
	assert.ErrorIs(t, err, ErrWordOutOfRange)

	_, err = Histogram(&entity.Dictionary{}, nil)
	assert.ErrorIs(t, err, ErrEmptyDictionary)
}
