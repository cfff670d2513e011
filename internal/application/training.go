package app

import (
	"context"
	"fmt"
	"log/slog"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/metric"
	"hive-vision/internal/domain/port"
)

// TrainingService обучает и оценивает классификаторы на гистограммах.
type TrainingService struct {
	features *FeatureService
	logger   *slog.Logger
}

// NewTrainingService создаёт сервис обучения.
func NewTrainingService(features *FeatureService, logger *slog.Logger) *TrainingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrainingService{features: features, logger: logger}
}

// Train строит гистограммы обучающей выборки и обучает на них модель.
func (s *TrainingService) Train(ctx context.Context, trainer port.Trainer, imageDir string, ds *entity.LabeledDataset, dict *entity.Dictionary) (port.Model, error) {
	samples, err := s.features.Samples(ctx, imageDir, ds, dict)
	if err != nil {
		return nil, err
	}
	return s.Fit(ctx, trainer, samples)
}

// Fit обучает модель на готовых записях. Ошибки тренера не оборачиваются.
func (s *TrainingService) Fit(ctx context.Context, trainer port.Trainer, samples []entity.Sample) (port.Model, error) {
	histograms, labels := entity.SplitSamples(samples)
	model, err := trainer.Fit(ctx, histograms, labels)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "model trained", "classifier", trainer.Name(), "samples", len(samples))
	return model, nil
}

// Evaluate считает micro precision и recall модели на отложенной выборке.
func (s *TrainingService) Evaluate(ctx context.Context, model port.Model, imageDir string, ds *entity.LabeledDataset, dict *entity.Dictionary) (entity.Evaluation, error) {
	samples, err := s.features.Samples(ctx, imageDir, ds, dict)
	if err != nil {
		return entity.Evaluation{}, err
	}
	return s.EvaluateSamples(ctx, model, samples)
}

// EvaluateSamples оценивает модель на готовых записях.
func (s *TrainingService) EvaluateSamples(ctx context.Context, model port.Model, samples []entity.Sample) (entity.Evaluation, error) {
	yTrue := make([]bool, len(samples))
	yPred := make([]bool, len(samples))
	for i, sample := range samples {
		healthy, err := model.Predict(sample.Histogram)
		if err != nil {
			return entity.Evaluation{}, fmt.Errorf("predict %s: %w", sample.ImageID, err)
		}
		yTrue[i] = sample.Healthy
		yPred[i] = healthy
	}

	ev, err := metric.Evaluate(yTrue, yPred)
	if err != nil {
		return entity.Evaluation{}, err
	}
	if report, err := metric.ClassPrecisionRecall(yTrue, yPred); err == nil {
		s.logger.InfoContext(ctx, "model evaluated",
			"classifier", model.Kind(),
			"precision", ev.Precision,
			"recall", ev.Recall,
			"classes", report.String(),
		)
	}
	return ev, nil
}
