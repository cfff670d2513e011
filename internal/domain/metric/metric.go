// Package metric считает качество бинарной классификации здоровья ульев.
package metric

import (
	"errors"
	"fmt"

	"hive-vision/internal/domain/entity"
)

var (
	ErrLengthMismatch = errors.New("metric: y_true and y_pred lengths differ")
	ErrEmpty          = errors.New("metric: no predictions")
)

// confusion матрица ошибок, положительный класс "улей здоров".
type confusion struct {
	tp, fp, tn, fn int
}

func count(yTrue, yPred []bool) (confusion, error) {
	var c confusion
	if len(yTrue) != len(yPred) {
		return c, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return c, ErrEmpty
	}
	for i := range yTrue {
		switch {
		case yTrue[i] && yPred[i]:
			c.tp++
		case !yTrue[i] && yPred[i]:
			c.fp++
		case !yTrue[i] && !yPred[i]:
			c.tn++
		default:
			c.fn++
		}
	}
	return c, nil
}

// MicroPrecision precision, усреднённая по обоим классам через общие счётчики.
// Для бинарных меток совпадает с accuracy.
func MicroPrecision(yTrue, yPred []bool) (float64, error) {
	c, err := count(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// TP по классам: tp (здоров) + tn (болен); FP по классам: fp + fn.
	return ratio(c.tp+c.tn, c.tp+c.tn+c.fp+c.fn), nil
}

// MicroRecall recall, усреднённый по обоим классам через общие счётчики.
func MicroRecall(yTrue, yPred []bool) (float64, error) {
	c, err := count(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return ratio(c.tp+c.tn, c.tp+c.tn+c.fn+c.fp), nil
}

// Evaluate собирает сводку качества по предсказаниям.
func Evaluate(yTrue, yPred []bool) (entity.Evaluation, error) {
	c, err := count(yTrue, yPred)
	if err != nil {
		return entity.Evaluation{}, err
	}
	correct := c.tp + c.tn
	total := len(yTrue)
	precision, _ := MicroPrecision(yTrue, yPred)
	recall, _ := MicroRecall(yTrue, yPred)
	return entity.Evaluation{
		Precision: precision,
		Recall:    recall,
		Accuracy:  ratio(correct, total),
		Total:     total,
		Correct:   correct,
	}, nil
}

// ClassScore precision и recall одного класса.
type ClassScore struct {
	Precision float64
	Recall    float64
	Support   int
}

// ClassReport отчёт по классам "здоров" и "болен".
type ClassReport struct {
	Healthy   ClassScore
	Unhealthy ClassScore
}

// String форматирует отчёт для логов.
func (r ClassReport) String() string {
	return fmt.Sprintf("healthy: precision=%.3f recall=%.3f support=%d; unhealthy: precision=%.3f recall=%.3f support=%d",
		r.Healthy.Precision, r.Healthy.Recall, r.Healthy.Support,
		r.Unhealthy.Precision, r.Unhealthy.Recall, r.Unhealthy.Support)
}

// ClassPrecisionRecall считает precision и recall отдельно для каждого класса.
// Класс без предсказаний получает precision 0.
func ClassPrecisionRecall(yTrue, yPred []bool) (ClassReport, error) {
	c, err := count(yTrue, yPred)
	if err != nil {
		return ClassReport{}, err
	}
	return ClassReport{
		Healthy: ClassScore{
			Precision: ratio(c.tp, c.tp+c.fp),
			Recall:    ratio(c.tp, c.tp+c.fn),
			Support:   c.tp + c.fn,
		},
		Unhealthy: ClassScore{
			Precision: ratio(c.tn, c.tn+c.fn),
			Recall:    ratio(c.tn, c.tn+c.fp),
			Support:   c.tn + c.fp,
		},
	}, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
