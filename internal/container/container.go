package container

import (
	"fmt"
	"log/slog"

	"hive-vision/config"
	app "hive-vision/internal/application"
	"hive-vision/internal/domain/port"
	"hive-vision/internal/infrastructure/dataset"
	"hive-vision/internal/infrastructure/imagefs"
	"hive-vision/internal/infrastructure/storage"
	"hive-vision/internal/infrastructure/storage/postgres"
	"hive-vision/internal/infrastructure/vision"
)

// Deps внешние зависимости сервисов приложения
type Deps struct {
	Users       port.UserRepository
	Experiments port.ExperimentRepository
	Artifacts   port.ArtifactStore
	Splits      port.SplitReader
	Loader      port.ImageLoader
	Extractor   port.DescriptorExtractor
}

type Container struct {
	Artifacts port.ArtifactStore
	// PersistentJournal false, если журнал экспериментов живёт только в памяти процесса
	PersistentJournal bool

	UserService       *app.UserService
	FeatureService    *app.FeatureService
	TrainingService   *app.TrainingService
	ExperimentService *app.ExperimentService
	InspectionService *app.InspectionService
}

func New(deps Deps, opts app.FeatureOptions, logger *slog.Logger) *Container {
	userService := app.NewUserService(deps.Users)
	featureService := app.NewFeatureService(deps.Loader, deps.Extractor, opts, logger)
	trainingService := app.NewTrainingService(featureService, logger)
	experimentService := app.NewExperimentService(deps.Splits, featureService, trainingService, deps.Artifacts, deps.Experiments, logger)
	inspectionService := app.NewInspectionService(userService, featureService)

	return &Container{
		Artifacts:         deps.Artifacts,
		UserService:       userService,
		FeatureService:    featureService,
		TrainingService:   trainingService,
		ExperimentService: experimentService,
		InspectionService: inspectionService,
	}
}

// FromConfig собирает инфраструктуру по конфигурации. Журнал экспериментов
// хранится в PostgreSQL, если задан DATABASE_DSN, иначе в памяти процесса.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	extractor, err := vision.NewExtractor(cfg.Extractor)
	if err != nil {
		return nil, err
	}

	artifacts, err := storage.NewArtifactStore(cfg.Dataset.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}

	experiments, err := newExperimentRepository(cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Users:       storage.NewMemoryUserRepository(),
		Experiments: experiments,
		Artifacts:   artifacts,
		Splits:      dataset.NewFileSplitReader(cfg.Dataset.Dir),
		Loader:      imagefs.NewFileLoader(),
		Extractor:   extractor,
	}
	opts := app.FeatureOptions{
		Workers:                cfg.Workers,
		MaxDescriptorsPerImage: cfg.Dataset.MaxDescriptorsPerImage,
	}
	c := New(deps, opts, logger)
	c.PersistentJournal = cfg.DatabaseDSN != ""
	return c, nil
}

func newExperimentRepository(dsn string, logger *slog.Logger) (port.ExperimentRepository, error) {
	if dsn == "" {
		logger.Info("experiment journal kept in memory")
		return storage.NewMemoryExperimentRepository(), nil
	}

	db, err := postgres.Connect(dsn)
	if err != nil {
		return nil, err
	}
	repo, err := postgres.NewExperimentRepository(db)
	if err != nil {
		return nil, fmt.Errorf("migrate experiments: %w", err)
	}
	logger.Info("experiment journal stored in postgres")
	return repo, nil
}
