//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"hive-vision/internal/domain/entity"
)

// GoCVExtractor дескрипторы SIFT или ORB через OpenCV.
type GoCVExtractor struct {
	Algorithm string
	MaxSide   int
}

// NewGoCVExtractor создаёт экстрактор для алгоритма sift или orb.
func NewGoCVExtractor(algorithm string) *GoCVExtractor {
	return &GoCVExtractor{
		Algorithm: algorithm,
		MaxSide:   1024,
	}
}

func (e *GoCVExtractor) Name() string { return e.Algorithm }

// Extract декодирует фото в оттенках серого и считает дескрипторы.
func (e *GoCVExtractor) Extract(ctx context.Context, imageData []byte) ([]entity.Descriptor, error) {
	_ = ctx
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Приводим изображение к стандартному размеру для стабильного числа точек.
	if mat.Cols() > e.MaxSide || mat.Rows() > e.MaxSide {
		scale := float64(e.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		newW := int(float64(mat.Cols()) * scale)
		newH := int(float64(mat.Rows()) * scale)
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	mask := gocv.NewMat()
	defer mask.Close()

	switch e.Algorithm {
	case AlgorithmSIFT:
		sift := gocv.NewSIFT()
		defer sift.Close()
		_, desc := sift.DetectAndCompute(mat, mask)
		defer desc.Close()
		return floatRows(desc), nil
	case AlgorithmORB:
		orb := gocv.NewORB()
		defer orb.Close()
		_, desc := orb.DetectAndCompute(mat, mask)
		defer desc.Close()
		return bitRows(desc), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, e.Algorithm)
	}
}

// floatRows переводит матрицу CV_32F (строка = дескриптор) в срезы.
func floatRows(desc gocv.Mat) []entity.Descriptor {
	if desc.Empty() {
		return nil
	}
	out := make([]entity.Descriptor, desc.Rows())
	for r := range out {
		d := make(entity.Descriptor, desc.Cols())
		for c := range d {
			d[c] = float64(desc.GetFloatAt(r, c))
		}
		out[r] = d
	}
	return out
}

// bitRows раскладывает бинарные дескрипторы ORB по битам, чтобы евклидово
// расстояние соответствовало расстоянию Хэмминга.
func bitRows(desc gocv.Mat) []entity.Descriptor {
	if desc.Empty() {
		return nil
	}
	out := make([]entity.Descriptor, desc.Rows())
	for r := range out {
		d := make(entity.Descriptor, 0, desc.Cols()*8)
		for c := 0; c < desc.Cols(); c++ {
			b := desc.GetUCharAt(r, c)
			for bit := 7; bit >= 0; bit-- {
				d = append(d, float64((b>>uint(bit))&1))
			}
		}
		out[r] = d
	}
	return out
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadGrayScale)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}
