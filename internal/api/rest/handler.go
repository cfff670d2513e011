// Package rest отдаёт классификатор ульев и журнал экспериментов по HTTP.
package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	app "hive-vision/internal/application"
	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
	"hive-vision/internal/infrastructure/metrics"
)

// maxPhotoSize предел размера загружаемой фотографии.
const maxPhotoSize = 20 << 20

// HiveClassifier классифицирует фотографию улья.
type HiveClassifier interface {
	Ready() bool
	Classify(ctx context.Context, photo []byte) (*entity.HealthVerdict, error)
}

// ExperimentReader читает журнал экспериментов.
type ExperimentReader interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Experiment, error)
	List(ctx context.Context) ([]*entity.Experiment, error)
}

// Handler обрабатывает HTTP запросы сервиса
type Handler struct {
	classifier  HiveClassifier
	experiments ExperimentReader
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewHandler создаёт обработчик запросов
func NewHandler(classifier HiveClassifier, experiments ExperimentReader, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		classifier:  classifier,
		experiments: experiments,
		metrics:     m,
		logger:      logger,
	}
}

// VerdictResponse ответ на классификацию фото
type VerdictResponse struct {
	Healthy     bool      `json:"healthy"`
	Informative bool      `json:"informative"`
	Descriptors int       `json:"descriptors"`
	Histogram   []float64 `json:"histogram"`
}

// EvaluationResponse качество модели на выборке
type EvaluationResponse struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Accuracy  float64 `json:"accuracy"`
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
}

// ExperimentResponse запись журнала экспериментов
type ExperimentResponse struct {
	ID             string             `json:"id"`
	Classifier     string             `json:"classifier"`
	Extractor      string             `json:"extractor"`
	RequestedSize  int                `json:"requested_size"`
	DictionarySize int                `json:"dictionary_size"`
	Seed           uint64             `json:"seed"`
	Iterations     int                `json:"iterations"`
	Converged      bool               `json:"converged"`
	TrainSize      int                `json:"train_size"`
	ValidationSize int                `json:"validation_size"`
	TestSize       int                `json:"test_size"`
	Validation     EvaluationResponse `json:"validation"`
	Test           EvaluationResponse `json:"test"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Classify принимает multipart-поле photo и возвращает оценку здоровья улья
func (h *Handler) Classify(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}
	if file.Size > maxPhotoSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo is too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}
	defer f.Close()

	photo, err := io.ReadAll(io.LimitReader(f, maxPhotoSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	verdict, err := h.classifier.Classify(c.Request.Context(), photo)
	switch {
	case errors.Is(err, app.ErrModelNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model is not loaded"})
		return
	case errors.Is(err, app.ErrModelMismatch):
		h.logger.ErrorContext(c.Request.Context(), "model and dictionary disagree", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "model does not match dictionary",
			"details": err.Error(),
		})
		return
	case err != nil:
		h.logger.WarnContext(c.Request.Context(), "classification failed", "filename", file.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "cannot process image",
			"details": err.Error(),
		})
		return
	}

	h.metrics.ObserveVerdict(verdict.Healthy, verdict.Informative())
	c.JSON(http.StatusOK, VerdictResponse{
		Healthy:     verdict.Healthy,
		Informative: verdict.Informative(),
		Descriptors: verdict.Descriptors,
		Histogram:   verdict.Histogram,
	})
}

// ListExperiments возвращает журнал экспериментов, новые первыми
func (h *Handler) ListExperiments(c *gin.Context) {
	list, err := h.experiments.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "storage error",
			"details": err.Error(),
		})
		return
	}

	out := make([]ExperimentResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toExperimentResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

// GetExperiment возвращает эксперимент по идентификатору
func (h *Handler) GetExperiment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid experiment id",
			"details": err.Error(),
		})
		return
	}

	e, err := h.experiments.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, port.ErrExperimentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "experiment not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "storage error",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, toExperimentResponse(e))
}

// Health проверяет состояние сервиса
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.classifier.Ready(),
		"timestamp":    time.Now().UTC(),
	})
}

func toExperimentResponse(e *entity.Experiment) ExperimentResponse {
	return ExperimentResponse{
		ID:             e.ID.String(),
		Classifier:     e.Classifier,
		Extractor:      e.Extractor,
		RequestedSize:  e.RequestedSize,
		DictionarySize: e.DictionarySize,
		Seed:           e.Seed,
		Iterations:     e.Iterations,
		Converged:      e.Converged,
		TrainSize:      e.TrainSize,
		ValidationSize: e.ValidationSize,
		TestSize:       e.TestSize,
		Validation:     toEvaluationResponse(e.Validation),
		Test:           toEvaluationResponse(e.Test),
		CreatedAt:      e.CreatedAt,
	}
}

func toEvaluationResponse(ev entity.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		Precision: ev.Precision,
		Recall:    ev.Recall,
		Accuracy:  ev.Accuracy,
		Total:     ev.Total,
		Correct:   ev.Correct,
	}
}
