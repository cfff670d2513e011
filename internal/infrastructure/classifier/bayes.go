package classifier

import (
	"context"
	"math"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

// BayesTrainer бернуллиевский наивный Байес: бин считается присутствующим,
// если в него попал хотя бы один дескриптор.
type BayesTrainer struct {
	Alpha float64 // сглаживание Лапласа
}

// NewBayesTrainer создаёт тренер со сглаживанием alpha=1.
func NewBayesTrainer() *BayesTrainer {
	return &BayesTrainer{Alpha: 1}
}

func (t *BayesTrainer) Name() string { return KindBayes }

// Fit оценивает априорные вероятности классов и вероятности бинов.
func (t *BayesTrainer) Fit(ctx context.Context, histograms []entity.Histogram, labels []bool) (port.Model, error) {
	dim, err := validate(histograms, labels)
	if err != nil {
		return nil, err
	}

	var classCount [2]float64
	present := [2][]float64{make([]float64, dim), make([]float64, dim)}
	for i, h := range histograms {
		c := classIndex(labels[i])
		classCount[c]++
		for j, v := range h {
			if v > 0 {
				present[c][j]++
			}
		}
	}

	model := &BayesModel{}
	total := float64(len(histograms))
	for c := 0; c < 2; c++ {
		model.LogPrior[c] = math.Log(classCount[c] / total)
		model.LogPresent[c] = make([]float64, dim)
		model.LogAbsent[c] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			p := (present[c][j] + t.Alpha) / (classCount[c] + 2*t.Alpha)
			model.LogPresent[c][j] = math.Log(p)
			model.LogAbsent[c][j] = math.Log(1 - p)
		}
	}
	return model, nil
}

// BayesModel логарифмы вероятностей; индекс 1 класс "здоров".
type BayesModel struct {
	LogPrior   [2]float64
	LogPresent [2][]float64
	LogAbsent  [2][]float64
}

func (m *BayesModel) Kind() string { return KindBayes }

func (m *BayesModel) Dim() int { return len(m.LogPresent[0]) }

// Predict выбирает класс с большим апостериорным логарифмом; при равенстве "болен".
func (m *BayesModel) Predict(h entity.Histogram) (bool, error) {
	if err := checkDim(h, m.Dim()); err != nil {
		return false, err
	}
	var score [2]float64
	for c := 0; c < 2; c++ {
		score[c] = m.LogPrior[c]
		for j, v := range h {
			if v > 0 {
				score[c] += m.LogPresent[c][j]
			} else {
				score[c] += m.LogAbsent[c][j]
			}
		}
	}
	return score[1] > score[0], nil
}

func classIndex(healthy bool) int {
	if healthy {
		return 1
	}
	return 0
}
