package entity

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation качество модели на отложенной выборке.
type Evaluation struct {
	Precision float64 // micro precision
	Recall    float64 // micro recall
	Accuracy  float64
	Total     int
	Correct   int
}

// Experiment запись об одном прогоне обучения и оценки.
type Experiment struct {
	ID             uuid.UUID
	Classifier     string
	Extractor      string
	RequestedSize  int // запрошенный размер словаря
	DictionarySize int // фактический размер словаря
	Seed           uint64
	Iterations     int
	Converged      bool
	TrainSize      int
	ValidationSize int
	TestSize       int
	Validation     Evaluation
	Test           Evaluation
	CreatedAt      time.Time
}

// NewExperiment создаёт эксперимент с новым идентификатором.
func NewExperiment(classifier, extractor string, seed uint64) *Experiment {
	return &Experiment{
		ID:         uuid.New(),
		Classifier: classifier,
		Extractor:  extractor,
		Seed:       seed,
		CreatedAt:  time.Now().UTC(),
	}
}
