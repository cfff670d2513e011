package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

// experimentRecord строка таблицы experiments
type experimentRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Classifier     string    `gorm:"type:varchar(32);not null;index"`
	Extractor      string    `gorm:"type:varchar(32);not null"`
	RequestedSize  int       `gorm:"not null"`
	DictionarySize int       `gorm:"not null"`
	Seed           int64     `gorm:"not null"`
	Iterations     int
	Converged      bool
	TrainSize      int
	ValidationSize int
	TestSize       int

	ValidationPrecision float64
	ValidationRecall    float64
	ValidationAccuracy  float64
	ValidationTotal     int
	ValidationCorrect   int
	TestPrecision       float64
	TestRecall          float64
	TestAccuracy        float64
	TestTotal           int
	TestCorrect         int

	CreatedAt time.Time `gorm:"not null;index"`
}

func (experimentRecord) TableName() string {
	return "experiments"
}

// ExperimentRepository журнал экспериментов в PostgreSQL
type ExperimentRepository struct {
	db *gorm.DB
}

// NewExperimentRepository создаёт репозиторий и мигрирует схему
func NewExperimentRepository(db *gorm.DB) (*ExperimentRepository, error) {
	if err := db.AutoMigrate(&experimentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate experiments: %w", err)
	}
	return &ExperimentRepository{db: db}, nil
}

func (r *ExperimentRepository) Save(ctx context.Context, e *entity.Experiment) error {
	rec := toRecord(e)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save experiment %s: %w", e.ID, err)
	}
	return nil
}

func (r *ExperimentRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Experiment, error) {
	var rec experimentRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, port.ErrExperimentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get experiment %s: %w", id, err)
	}
	return fromRecord(rec), nil
}

func (r *ExperimentRepository) List(ctx context.Context) ([]*entity.Experiment, error) {
	var recs []experimentRecord
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	out := make([]*entity.Experiment, len(recs))
	for i, rec := range recs {
		out[i] = fromRecord(rec)
	}
	return out, nil
}

func toRecord(e *entity.Experiment) experimentRecord {
	return experimentRecord{
		ID:                  e.ID,
		Classifier:          e.Classifier,
		Extractor:           e.Extractor,
		RequestedSize:       e.RequestedSize,
		DictionarySize:      e.DictionarySize,
		Seed:                int64(e.Seed),
		Iterations:          e.Iterations,
		Converged:           e.Converged,
		TrainSize:           e.TrainSize,
		ValidationSize:      e.ValidationSize,
		TestSize:            e.TestSize,
		ValidationPrecision: e.Validation.Precision,
		ValidationRecall:    e.Validation.Recall,
		ValidationAccuracy:  e.Validation.Accuracy,
		ValidationTotal:     e.Validation.Total,
		ValidationCorrect:   e.Validation.Correct,
		TestPrecision:       e.Test.Precision,
		TestRecall:          e.Test.Recall,
		TestAccuracy:        e.Test.Accuracy,
		TestTotal:           e.Test.Total,
		TestCorrect:         e.Test.Correct,
		CreatedAt:           e.CreatedAt,
	}
}

func fromRecord(rec experimentRecord) *entity.Experiment {
	return &entity.Experiment{
		ID:             rec.ID,
		Classifier:     rec.Classifier,
		Extractor:      rec.Extractor,
		RequestedSize:  rec.RequestedSize,
		DictionarySize: rec.DictionarySize,
		Seed:           uint64(rec.Seed),
		Iterations:     rec.Iterations,
		Converged:      rec.Converged,
		TrainSize:      rec.TrainSize,
		ValidationSize: rec.ValidationSize,
		TestSize:       rec.TestSize,
		Validation: entity.Evaluation{
			Precision: rec.ValidationPrecision,
			Recall:    rec.ValidationRecall,
			Accuracy:  rec.ValidationAccuracy,
			Total:     rec.ValidationTotal,
			Correct:   rec.ValidationCorrect,
		},
		Test: entity.Evaluation{
			Precision: rec.TestPrecision,
			Recall:    rec.TestRecall,
			Accuracy:  rec.TestAccuracy,
			Total:     rec.TestTotal,
			Correct:   rec.TestCorrect,
		},
		CreatedAt: rec.CreatedAt,
	}
}

var _ port.ExperimentRepository = (*ExperimentRepository)(nil)
