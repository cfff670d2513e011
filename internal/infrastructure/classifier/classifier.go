// Package classifier содержит обучаемые модели для гистограмм визуальных слов:
// линейный SVM и бернуллиевский наивный Байес.
package classifier

import (
	"errors"
	"fmt"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

const (
	KindSVM   = "svm"
	KindBayes = "bayes"
)

var (
	ErrLengthMismatch    = errors.New("classifier: histograms and labels lengths differ")
	ErrEmptyTrainingSet  = errors.New("classifier: empty training set")
	ErrDimensionMismatch = errors.New("classifier: histogram dimension mismatch")
	ErrUnknownKind       = errors.New("classifier: unknown kind")
)

// NewTrainer возвращает тренер по названию: svm или bayes.
func NewTrainer(kind string, seed uint64) (port.Trainer, error) {
	switch kind {
	case KindSVM:
		return NewSVMTrainer(seed), nil
	case KindBayes:
		return NewBayesTrainer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NewModel возвращает пустую модель нужного типа для десериализации.
func NewModel(kind string) (port.Model, error) {
	switch kind {
	case KindSVM:
		return &SVMModel{}, nil
	case KindBayes:
		return &BayesModel{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// validate проверяет обучающую выборку и возвращает размерность признаков.
func validate(histograms []entity.Histogram, labels []bool) (int, error) {
	if len(histograms) != len(labels) {
		return 0, fmt.Errorf("%w: %d histograms, %d labels", ErrLengthMismatch, len(histograms), len(labels))
	}
	if len(histograms) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	dim := len(histograms[0])
	for i, h := range histograms {
		if len(h) != dim {
			return 0, fmt.Errorf("%w: histogram %d has %d bins, expected %d", ErrDimensionMismatch, i, len(h), dim)
		}
	}
	return dim, nil
}

// checkDim сверяет длину гистограммы с размерностью обученной модели.
func checkDim(h entity.Histogram, dim int) error {
	if len(h) != dim {
		return fmt.Errorf("%w: histogram has %d bins, model expects %d", ErrDimensionMismatch, len(h), dim)
	}
	return nil
}
