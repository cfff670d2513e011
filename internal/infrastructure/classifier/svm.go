package classifier

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

// SVMTrainer линейный SVM с мягким зазором, обучаемый методом Pegasos.
type SVMTrainer struct {
	Lambda float64 // коэффициент регуляризации
	Epochs int
	Seed   uint64
}

// NewSVMTrainer создаёт тренер с параметрами по умолчанию.
func NewSVMTrainer(seed uint64) *SVMTrainer {
	return &SVMTrainer{Lambda: 0.01, Epochs: 50, Seed: seed}
}

func (t *SVMTrainer) Name() string { return KindSVM }

// Fit стандартизирует признаки и обучает разделяющую гиперплоскость.
func (t *SVMTrainer) Fit(ctx context.Context, histograms []entity.Histogram, labels []bool) (port.Model, error) {
	dim, err := validate(histograms, labels)
	if err != nil {
		return nil, err
	}

	model := &SVMModel{
		Mean:    make([]float64, dim),
		Scale:   make([]float64, dim),
		Weights: make([]float64, dim+1),
	}
	column := make([]float64, len(histograms))
	for j := 0; j < dim; j++ {
		for i, h := range histograms {
			column[i] = h[j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		model.Mean[j] = mean
		if std > 0 && !math.IsNaN(std) {
			model.Scale[j] = 1 / std
		}
	}

	if single, healthy := singleClass(labels); single {
		// Гиперплоскость вырождается: оставляем только смещение.
		model.Weights[dim] = -1
		if healthy {
			model.Weights[dim] = 1
		}
		return model, nil
	}

	xs := make([][]float64, len(histograms))
	for i, h := range histograms {
		xs[i] = model.standardize(h)
	}

	rng := rand.New(rand.NewPCG(t.Seed, uint64(dim)))
	radius := 1 / math.Sqrt(t.Lambda)
	step := 0
	for epoch := 0; epoch < t.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, i := range rng.Perm(len(xs)) {
			step++
			eta := 1 / (t.Lambda * float64(step))
			y := -1.0
			if labels[i] {
				y = 1
			}
			margin := y * floats.Dot(model.Weights, xs[i])

			floats.Scale(1-eta*t.Lambda, model.Weights)
			if margin < 1 {
				floats.AddScaled(model.Weights, eta*y, xs[i])
			}
			if norm := floats.Norm(model.Weights, 2); norm > radius {
				floats.Scale(radius/norm, model.Weights)
			}
		}
	}

	return model, nil
}

// SVMModel веса гиперплоскости; последний вес смещение.
type SVMModel struct {
	Weights []float64
	Mean    []float64
	Scale   []float64
}

func (m *SVMModel) Kind() string { return KindSVM }

func (m *SVMModel) Dim() int { return len(m.Mean) }

// Predict возвращает true для положительной стороны гиперплоскости.
func (m *SVMModel) Predict(h entity.Histogram) (bool, error) {
	if err := checkDim(h, m.Dim()); err != nil {
		return false, err
	}
	return floats.Dot(m.Weights, m.standardize(h)) >= 0, nil
}

// standardize возвращает вектор признаков с добавленной единицей для смещения.
func (m *SVMModel) standardize(h entity.Histogram) []float64 {
	x := make([]float64, len(h)+1)
	for j, v := range h {
		x[j] = (v - m.Mean[j]) * m.Scale[j]
	}
	x[len(h)] = 1
	return x
}

// singleClass сообщает, что все метки одинаковы, и возвращает эту метку.
func singleClass(labels []bool) (bool, bool) {
	for _, l := range labels[1:] {
		if l != labels[0] {
			return false, false
		}
	}
	return true, labels[0]
}
