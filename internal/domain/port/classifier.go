package port

import (
	"context"

	"hive-vision/internal/domain/entity"
)

// Model обученная модель классификации здоровья улья
type Model interface {
	// Kind возвращает тип модели для сериализации
	Kind() string

	// Dim число бинов гистограммы, на которых обучена модель
	Dim() int

	// Predict возвращает true, если улей здоров; гистограмма чужой
	// размерности даёт ошибку
	Predict(h entity.Histogram) (bool, error)
}

// Trainer обучает модель по гистограммам и меткам одинаковой длины
type Trainer interface {
	Name() string
	Fit(ctx context.Context, histograms []entity.Histogram, labels []bool) (Model, error)
}
