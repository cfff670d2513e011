package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/infrastructure/storage"
)

func newInspection(t *testing.T) (*InspectionService, *UserService) {
	t.Helper()
	extractor := &fakeExtractor{byKey: map[string][]entity.Descriptor{
		"healthy":  append(repeat(wordA, 4), wordB),
		"sick":     repeat(wordB, 3),
		"textless": {},
	}}
	users := NewUserService(storage.NewMemoryUserRepository())
	return NewInspectionService(users, newFeatures(&fakeLoader{}, extractor)), users
}

func TestInspectionService_NotLoaded(t *testing.T) {
	svc, _ := newInspection(t)

	assert.False(t, svc.Ready())
	_, err := svc.Classify(context.Background(), []byte("healthy"))
	require.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestInspectionService_Classify(t *testing.T) {
	svc, _ := newInspection(t)
	require.NoError(t, svc.Use(twoWordDictionary(), thresholdModel{dim: 2}))
	require.True(t, svc.Ready())

	verdict, err := svc.Classify(context.Background(), []byte("healthy"))
	require.NoError(t, err)
	assert.True(t, verdict.Healthy)
	assert.Equal(t, 5, verdict.Descriptors)
	assert.Equal(t, entity.Histogram{4, 1}, verdict.Histogram)

	verdict, err = svc.Classify(context.Background(), []byte("sick"))
	require.NoError(t, err)
	assert.False(t, verdict.Healthy)

	verdict, err = svc.Classify(context.Background(), []byte("textless"))
	require.NoError(t, err)
	assert.False(t, verdict.Informative())
	assert.Equal(t, entity.Histogram{0, 0}, verdict.Histogram)
}

func TestInspectionService_LoadFrom(t *testing.T) {
	svc, _ := newInspection(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.LoadFrom(ctx, &memoryArtifacts{}), errNoArtifact)
	assert.False(t, svc.Ready())

	store := &memoryArtifacts{dict: twoWordDictionary(), model: thresholdModel{dim: 2}}
	require.NoError(t, svc.LoadFrom(ctx, store))
	assert.True(t, svc.Ready())
}

func TestInspectionService_RejectsModelOfOtherDictionary(t *testing.T) {
	svc, _ := newInspection(t)
	ctx := context.Background()

	err := svc.Use(twoWordDictionary(), thresholdModel{dim: 3})
	require.ErrorIs(t, err, ErrModelMismatch)
	assert.False(t, svc.Ready())

	require.NoError(t, svc.Use(twoWordDictionary(), thresholdModel{dim: 2}))

	// Новый словарь рядом со старой моделью не должен подменить рабочую пару.
	threeWords := &entity.Dictionary{Centroids: []entity.Descriptor{wordA, wordB, {5, 5}}}
	err = svc.LoadFrom(ctx, &memoryArtifacts{dict: threeWords, model: thresholdModel{dim: 2}})
	require.ErrorIs(t, err, ErrModelMismatch)

	verdict, err := svc.Classify(ctx, []byte("healthy"))
	require.NoError(t, err)
	assert.Len(t, verdict.Histogram, 2)
}

func TestInspectionService_PredictErrorIsReported(t *testing.T) {
	svc, _ := newInspection(t)
	require.NoError(t, svc.Use(twoWordDictionary(), widthLiar{}))

	_, err := svc.Classify(context.Background(), []byte("sick"))
	require.ErrorIs(t, err, ErrModelMismatch)
	require.ErrorIs(t, err, errWidth)
}

// widthLiar заявляет ширину 2, но ожидает три бина.
type widthLiar struct{}

func (widthLiar) Kind() string { return "liar" }

func (widthLiar) Dim() int { return 2 }

func (widthLiar) Predict(h entity.Histogram) (bool, error) {
	return thresholdModel{dim: 3}.Predict(h)
}

func TestInspectionService_AcceptPhotoRemembersVerdict(t *testing.T) {
	svc, users := newInspection(t)
	require.NoError(t, svc.Use(twoWordDictionary(), thresholdModel{dim: 2}))
	ctx := context.Background()

	_, err := users.BeginCheck(ctx, 7, 70)
	require.NoError(t, err)

	verdict, err := svc.AcceptPhoto(ctx, 7, 70, []byte("healthy"))
	require.NoError(t, err)

	user, err := users.Get(ctx, 7, 70)
	require.NoError(t, err)
	assert.Equal(t, entity.StateMainMenu, user.State)
	assert.Same(t, verdict, user.LastVerdict)
}

func TestInspectionService_AcceptPhotoFailureReturnsToMenu(t *testing.T) {
	svc, users := newInspection(t)
	require.NoError(t, svc.Use(twoWordDictionary(), thresholdModel{dim: 2}))
	ctx := context.Background()

	_, err := svc.AcceptPhoto(ctx, 8, 80, []byte("not an image"))
	require.ErrorIs(t, err, errBrokenImage)

	user, err := users.Get(ctx, 8, 80)
	require.NoError(t, err)
	assert.Equal(t, entity.StateMainMenu, user.State)
	assert.Nil(t, user.LastVerdict)
}
