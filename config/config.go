package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	HTTPAddr      string
	DatabaseDSN   string
	Env           string
	LogLevel      string

	Dataset    DatasetConfig
	Dictionary DictionaryConfig
	Classifier string
	Extractor  string
	Workers    int
}

type DatasetConfig struct {
	Dir                    string
	ImageDir               string
	ArtifactDir            string
	ValidationFraction     float64
	MaxDescriptorsPerImage int
}

type DictionaryConfig struct {
	Size          int
	Seed          uint64
	MaxIterations int
	Tolerance     float64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Classifier:    getEnv("CLASSIFIER", "svm"),
		Extractor:     getEnv("EXTRACTOR", "haar"),
		Dataset: DatasetConfig{
			Dir:         getEnv("DATASET_DIR", "bee_dataset"),
			ImageDir:    getEnv("IMAGE_DIR", "bee_dataset/bee_imgs"),
			ArtifactDir: getEnv("ARTIFACT_DIR", "artifacts"),
		},
	}

	var err error
	if cfg.Workers, err = getInt("WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.Dataset.ValidationFraction, err = getFloat("VALIDATION_FRACTION", 0.1); err != nil {
		return nil, err
	}
	if cfg.Dataset.MaxDescriptorsPerImage, err = getInt("MAX_DESCRIPTORS_PER_IMAGE", 0); err != nil {
		return nil, err
	}
	if cfg.Dictionary.Size, err = getInt("DICTIONARY_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.Dictionary.MaxIterations, err = getInt("MAX_ITERATIONS", 100); err != nil {
		return nil, err
	}
	if cfg.Dictionary.Tolerance, err = getFloat("TOLERANCE", 1e-4); err != nil {
		return nil, err
	}
	seed, err := getInt("SEED", 1)
	if err != nil {
		return nil, err
	}
	if seed < 0 {
		return nil, fmt.Errorf("SEED must not be negative, got %d", seed)
	}
	cfg.Dictionary.Seed = uint64(seed)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
