package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func noiseImage(w, h int) image.Image {
	rng := rand.New(rand.NewPCG(3, 3))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256)), A: 255})
		}
	}
	return img
}

func TestHaarExtractor_TexturedImage(t *testing.T) {
	e := NewHaarExtractor()
	data := encodePNG(t, noiseImage(96, 72))

	ds, err := e.Extract(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, ds)
	assert.LessOrEqual(t, len(ds), 64)
	for _, d := range ds {
		assert.Len(t, d, e.Dim())
	}

	again, err := e.Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, ds, again)
}

func TestHaarExtractor_FlatImageHasNoDescriptors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 40, A: 255})
		}
	}

	ds, err := NewHaarExtractor().Extract(context.Background(), encodePNG(t, img))
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestHaarExtractor_BadData(t *testing.T) {
	_, err := NewHaarExtractor().Extract(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}

func TestNewExtractor(t *testing.T) {
	e, err := NewExtractor(AlgorithmHaar)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmHaar, e.Name())

	e, err = NewExtractor(AlgorithmSIFT)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmSIFT, e.Name())

	_, err = NewExtractor("surf")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
