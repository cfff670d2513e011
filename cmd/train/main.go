// Команда train строит словарь визуальных слов, обучает классификатор
// здоровья ульев и сохраняет артефакты для бота и HTTP-сервиса.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hive-vision/config"
	app "hive-vision/internal/application"
	"hive-vision/internal/container"
	"hive-vision/internal/infrastructure/classifier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Dataset.Dir, "dataset", cfg.Dataset.Dir, "directory with train_x/train_y/test_x/test_y")
	flag.StringVar(&cfg.Dataset.ImageDir, "images", cfg.Dataset.ImageDir, "directory with hive images")
	flag.StringVar(&cfg.Dataset.ArtifactDir, "artifacts", cfg.Dataset.ArtifactDir, "output directory for dictionary and model")
	flag.StringVar(&cfg.Classifier, "classifier", cfg.Classifier, "classifier: svm or bayes")
	flag.StringVar(&cfg.Extractor, "extractor", cfg.Extractor, "descriptor extractor: haar, sift or orb")
	flag.IntVar(&cfg.Dictionary.Size, "size", cfg.Dictionary.Size, "dictionary size K")
	flag.Uint64Var(&cfg.Dictionary.Seed, "seed", cfg.Dictionary.Seed, "random seed")
	flag.IntVar(&cfg.Dictionary.MaxIterations, "iterations", cfg.Dictionary.MaxIterations, "k-means iteration budget")
	flag.Float64Var(&cfg.Dictionary.Tolerance, "tolerance", cfg.Dictionary.Tolerance, "k-means centroid shift tolerance")
	flag.Float64Var(&cfg.Dataset.ValidationFraction, "validation", cfg.Dataset.ValidationFraction, "validation fraction of the train split, 0 to disable")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel workers")
	flag.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "postgres DSN for the experiment journal; without it the run is not visible to the HTTP service")
	flag.Parse()

	logger := config.NewLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trainer, err := classifier.NewTrainer(cfg.Classifier, cfg.Dictionary.Seed)
	if err != nil {
		return err
	}

	appContainer, err := container.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	if !appContainer.PersistentJournal {
		logger.Warn("experiment journal is in memory and will be lost on exit; set DATABASE_DSN or -dsn to keep it",
			"artifacts", cfg.Dataset.ArtifactDir,
		)
	}

	res, err := appContainer.ExperimentService.Run(ctx, trainer, app.ExperimentConfig{
		ImageDir:           cfg.Dataset.ImageDir,
		DictionarySize:     cfg.Dictionary.Size,
		Seed:               cfg.Dictionary.Seed,
		MaxIterations:      cfg.Dictionary.MaxIterations,
		Tolerance:          cfg.Dictionary.Tolerance,
		Workers:            cfg.Workers,
		ValidationFraction: cfg.Dataset.ValidationFraction,
	})
	if err != nil {
		return err
	}

	exp := res.Experiment
	fmt.Printf("experiment %s\n", exp.ID)
	fmt.Printf("classifier=%s extractor=%s dictionary=%d/%d iterations=%d converged=%t\n",
		exp.Classifier, exp.Extractor, exp.DictionarySize, exp.RequestedSize, exp.Iterations, exp.Converged)
	if exp.ValidationSize > 0 {
		fmt.Printf("validation: precision=%.4f recall=%.4f (%d images)\n",
			exp.Validation.Precision, exp.Validation.Recall, exp.ValidationSize)
	}
	fmt.Printf("test:       precision=%.4f recall=%.4f (%d images)\n",
		exp.Test.Precision, exp.Test.Recall, exp.TestSize)
	return nil
}
