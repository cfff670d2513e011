package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"hive-vision/internal/domain/bovw"
	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

const (
	trainSplit = "train"
	testSplit  = "test"
)

// ExperimentConfig параметры одного прогона классического конвейера.
type ExperimentConfig struct {
	ImageDir           string
	DictionarySize     int
	Seed               uint64
	MaxIterations      int
	Tolerance          float64
	Workers            int
	ValidationFraction float64 // 0 = без валидационной выборки
}

// ExperimentResult эксперимент вместе с обученными артефактами.
type ExperimentResult struct {
	Experiment *entity.Experiment
	Dictionary *entity.Dictionary
	Model      port.Model
}

// ExperimentService прогоняет полный цикл: словарь, обучение, оценка.
type ExperimentService struct {
	splits      port.SplitReader
	features    *FeatureService
	training    *TrainingService
	artifacts   port.ArtifactStore
	experiments port.ExperimentRepository
	logger      *slog.Logger
}

// NewExperimentService создаёт сервис экспериментов. artifacts может быть nil.
func NewExperimentService(splits port.SplitReader, features *FeatureService, training *TrainingService, artifacts port.ArtifactStore, experiments port.ExperimentRepository, logger *slog.Logger) *ExperimentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExperimentService{
		splits:      splits,
		features:    features,
		training:    training,
		artifacts:   artifacts,
		experiments: experiments,
		logger:      logger,
	}
}

// Run читает разбиения train и test, строит словарь по обучающим
// изображениям, обучает модель и оценивает её на валидации и тесте.
func (s *ExperimentService) Run(ctx context.Context, trainer port.Trainer, cfg ExperimentConfig) (*ExperimentResult, error) {
	builder, err := bovw.NewBuilder(bovw.BuilderConfig{
		Size:          cfg.DictionarySize,
		Seed:          cfg.Seed,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
		Workers:       cfg.Workers,
		Logger:        s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "loading dataset metadata")
	train, err := s.splits.ReadSplit(ctx, trainSplit)
	if err != nil {
		return nil, fmt.Errorf("read train split: %w", err)
	}
	test, err := s.splits.ReadSplit(ctx, testSplit)
	if err != nil {
		return nil, fmt.Errorf("read test split: %w", err)
	}
	validation := &entity.LabeledDataset{}
	if cfg.ValidationFraction > 0 {
		if train, validation, err = train.StratifiedSplit(cfg.ValidationFraction, cfg.Seed); err != nil {
			return nil, err
		}
	}
	s.logger.InfoContext(ctx, "dataset loaded",
		"train", train.Len(),
		"validation", validation.Len(),
		"test", test.Len(),
	)

	pool, err := s.features.PooledDescriptors(ctx, cfg.ImageDir, train.IDs())
	if err != nil {
		return nil, err
	}
	dict, report, err := builder.Build(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("build dictionary: %w", err)
	}

	trainSamples, err := s.features.Samples(ctx, cfg.ImageDir, train, dict)
	if err != nil {
		return nil, err
	}
	model, err := s.training.Fit(ctx, trainer, trainSamples)
	if err != nil {
		return nil, err
	}
	if model.Dim() != dict.Size() {
		return nil, fmt.Errorf("%w: dictionary has %d words, %s model expects %d",
			ErrModelMismatch, dict.Size(), model.Kind(), model.Dim())
	}

	exp := entity.NewExperiment(trainer.Name(), s.features.ExtractorName(), cfg.Seed)
	exp.RequestedSize = report.RequestedSize
	exp.DictionarySize = report.Size
	exp.Iterations = report.Iterations
	exp.Converged = report.Converged
	exp.TrainSize = train.Len()
	exp.ValidationSize = validation.Len()
	exp.TestSize = test.Len()

	if validation.Len() > 0 {
		if exp.Validation, err = s.training.Evaluate(ctx, model, cfg.ImageDir, validation, dict); err != nil {
			return nil, fmt.Errorf("evaluate validation: %w", err)
		}
	}
	if exp.Test, err = s.training.Evaluate(ctx, model, cfg.ImageDir, test, dict); err != nil {
		return nil, fmt.Errorf("evaluate test: %w", err)
	}

	if s.artifacts != nil {
		if err := s.artifacts.SaveDictionary(ctx, dict); err != nil {
			return nil, fmt.Errorf("save dictionary: %w", err)
		}
		if err := s.artifacts.SaveModel(ctx, model); err != nil {
			return nil, fmt.Errorf("save model: %w", err)
		}
	}
	if err := s.experiments.Save(ctx, exp); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "experiment finished",
		"id", exp.ID,
		"classifier", exp.Classifier,
		"dictionary_size", exp.DictionarySize,
		"test_precision", exp.Test.Precision,
		"test_recall", exp.Test.Recall,
	)
	return &ExperimentResult{Experiment: exp, Dictionary: dict, Model: model}, nil
}

// Get возвращает эксперимент по идентификатору.
func (s *ExperimentService) Get(ctx context.Context, id uuid.UUID) (*entity.Experiment, error) {
	return s.experiments.Get(ctx, id)
}

// List возвращает сохранённые эксперименты.
func (s *ExperimentService) List(ctx context.Context) ([]*entity.Experiment, error) {
	return s.experiments.List(ctx)
}
