package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/rivo/duplo/haar"

	"hive-vision/internal/domain/entity"
)

// HaarExtractor дескрипторы без OpenCV: изображение приводится к квадрату,
// режется на патчи, и для каждого патча берутся низкочастотные коэффициенты
// 2D вейвлета Хаара по трём каналам YIQ.
type HaarExtractor struct {
	Side        uint    // сторона изображения после ресайза
	Patch       int     // сторона патча, степень двойки
	Block       int     // сторона блока низких частот
	MinContrast float64 // патчи с меньшей энергией высоких частот пропускаются
}

// NewHaarExtractor создаёт экстрактор с дескрипторами размерности 48.
func NewHaarExtractor() *HaarExtractor {
	return &HaarExtractor{
		Side:        128,
		Patch:       16,
		Block:       4,
		MinContrast: 1e-4,
	}
}

func (e *HaarExtractor) Name() string { return AlgorithmHaar }

// Dim размерность дескриптора.
func (e *HaarExtractor) Dim() int {
	return e.Block * e.Block * haar.ColourChannels
}

// Extract возвращает дескрипторы текстурных патчей. Однотонное изображение
// даёт пустой список.
func (e *HaarExtractor) Extract(ctx context.Context, imageData []byte) ([]entity.Descriptor, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	scaled := resize.Resize(e.Side, e.Side, img, resize.Bilinear)
	bounds := scaled.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, scaled, bounds.Min, draw.Src)

	var out []entity.Descriptor
	for y := bounds.Min.Y; y+e.Patch <= bounds.Max.Y; y += e.Patch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := bounds.Min.X; x+e.Patch <= bounds.Max.X; x += e.Patch {
			patch := rgba.SubImage(image.Rect(x, y, x+e.Patch, y+e.Patch))
			if d, ok := e.describe(haar.Transform(patch)); ok {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

// describe берёт верхний левый блок коэффициентов; нулевой коэффициент
// (средняя яркость) в энергию контраста не входит.
func (e *HaarExtractor) describe(m haar.Matrix) (entity.Descriptor, bool) {
	width := int(m.Width)
	d := make(entity.Descriptor, 0, e.Dim())
	var energy float64
	for row := 0; row < e.Block; row++ {
		for col := 0; col < e.Block; col++ {
			coef := m.Coefs[row*width+col]
			for _, v := range coef {
				d = append(d, v)
			}
			if row != 0 || col != 0 {
				for _, v := range coef {
					energy += v * v
				}
			}
		}
	}
	return d, energy >= e.MinContrast
}
