package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hive-vision/internal/domain/bovw"
	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

var (
	// ErrModelNotLoaded словарь и модель ещё не загружены.
	ErrModelNotLoaded = errors.New("model is not loaded")
	// ErrModelMismatch модель обучена на гистограммах другого словаря.
	ErrModelMismatch = errors.New("model does not match dictionary")
)

// InspectionService классифицирует присланные фотографии ульев.
type InspectionService struct {
	users    *UserService
	features *FeatureService
	dict     *entity.Dictionary
	model    port.Model
	mu       sync.RWMutex
}

// NewInspectionService создаёт сервис проверки ульев.
func NewInspectionService(users *UserService, features *FeatureService) *InspectionService {
	return &InspectionService{
		users:    users,
		features: features,
	}
}

// Use подменяет словарь и модель, например после нового эксперимента.
// Пара, где ширина модели не равна размеру словаря, отвергается, а
// прежние артефакты остаются в силе.
func (s *InspectionService) Use(dict *entity.Dictionary, model port.Model) error {
	if dict.Size() == 0 {
		return bovw.ErrEmptyDictionary
	}
	if model == nil {
		return ErrModelNotLoaded
	}
	if model.Dim() != dict.Size() {
		return fmt.Errorf("%w: dictionary has %d words, %s model expects %d",
			ErrModelMismatch, dict.Size(), model.Kind(), model.Dim())
	}

	s.mu.Lock()
	s.dict = dict
	s.model = model
	s.mu.Unlock()
	return nil
}

// LoadFrom загружает словарь и модель из хранилища артефактов.
func (s *InspectionService) LoadFrom(ctx context.Context, store port.ArtifactStore) error {
	dict, err := store.LoadDictionary(ctx)
	if err != nil {
		return err
	}
	model, err := store.LoadModel(ctx)
	if err != nil {
		return err
	}
	return s.Use(dict, model)
}

// Ready сообщает, можно ли классифицировать фото.
func (s *InspectionService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil && s.dict.Size() > 0
}

// Classify оценивает здоровье улья по фото. Фото без дескрипторов
// классифицируется по нулевой гистограмме.
func (s *InspectionService) Classify(ctx context.Context, photo []byte) (*entity.HealthVerdict, error) {
	s.mu.RLock()
	dict, model := s.dict, s.model
	s.mu.RUnlock()
	if model == nil || dict.Size() == 0 {
		return nil, ErrModelNotLoaded
	}

	h, n, err := s.features.DescribePhoto(ctx, photo, dict)
	if err != nil {
		return nil, err
	}
	healthy, err := model.Predict(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelMismatch, err)
	}
	return &entity.HealthVerdict{
		Healthy:     healthy,
		Descriptors: n,
		Histogram:   h,
	}, nil
}

// AcceptPhoto проверяет фото пользователя бота и запоминает результат.
func (s *InspectionService) AcceptPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.HealthVerdict, error) {
	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return nil, err
	}

	verdict, err := s.Classify(ctx, photo)
	if err != nil {
		if _, cancelErr := s.users.Cancel(ctx, userID, chatID); cancelErr != nil {
			return nil, errors.Join(err, cancelErr)
		}
		return nil, err
	}

	if err := s.users.RememberVerdict(ctx, userID, verdict); err != nil {
		return nil, err
	}
	return verdict, nil
}
