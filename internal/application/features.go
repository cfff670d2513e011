package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"hive-vision/internal/domain/bovw"
	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

// FeatureOptions параметры построения признаков.
type FeatureOptions struct {
	Workers                int // параллельно обрабатываемых изображений, 0 = NumCPU
	MaxDescriptorsPerImage int // предел дескрипторов изображения в пуле словаря, 0 = все
}

// FeatureService превращает изображения в дескрипторы и гистограммы.
// Ошибка загрузки или разбора одного изображения не прерывает пакет.
type FeatureService struct {
	loader    port.ImageLoader
	extractor port.DescriptorExtractor
	opts      FeatureOptions
	logger    *slog.Logger
}

// NewFeatureService создаёт сервис признаков.
func NewFeatureService(loader port.ImageLoader, extractor port.DescriptorExtractor, opts FeatureOptions, logger *slog.Logger) *FeatureService {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureService{
		loader:    loader,
		extractor: extractor,
		opts:      opts,
		logger:    logger.With("extractor", extractor.Name()),
	}
}

// ExtractorName название используемого алгоритма дескрипторов.
func (s *FeatureService) ExtractorName() string {
	return s.extractor.Name()
}

// DescriptorsByImage возвращает дескрипторы каждого изображения в порядке ids.
// Для изображений с ошибкой возвращается nil, их число во втором значении.
func (s *FeatureService) DescriptorsByImage(ctx context.Context, imageDir string, ids []string) ([][]entity.Descriptor, int, error) {
	out := make([][]entity.Descriptor, len(ids))
	var failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, id := range ids {
		g.Go(func() error {
			ds, err := s.imageDescriptors(ctx, imageDir, id)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				s.logger.WarnContext(ctx, "skip image", "image", id, "error", err)
				return nil
			}
			out[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, int(failed.Load()), nil
}

// PooledDescriptors собирает дескрипторы всех изображений в один пул без
// привязки к изображениям.
func (s *FeatureService) PooledDescriptors(ctx context.Context, imageDir string, ids []string) ([]entity.Descriptor, error) {
	perImage, failed, err := s.DescriptorsByImage(ctx, imageDir, ids)
	if err != nil {
		return nil, err
	}

	var pool []entity.Descriptor
	for _, ds := range perImage {
		if limit := s.opts.MaxDescriptorsPerImage; limit > 0 && len(ds) > limit {
			ds = ds[:limit]
		}
		pool = append(pool, ds...)
	}

	s.logger.InfoContext(ctx, "descriptors pooled",
		"images", len(ids),
		"failed", failed,
		"descriptors", len(pool),
	)
	return pool, nil
}

// HistogramsByImage строит гистограммы изображений по словарю, сохраняя
// порядок ids. Изображение без дескрипторов или с ошибкой загрузки даёт
// нулевую гистограмму; несовпадение размерности словаря прерывает вызов.
func (s *FeatureService) HistogramsByImage(ctx context.Context, imageDir string, ids []string, dict *entity.Dictionary) ([]entity.Histogram, error) {
	if dict.Size() == 0 {
		return nil, bovw.ErrEmptyDictionary
	}

	out := make([]entity.Histogram, len(ids))
	var failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, id := range ids {
		g.Go(func() error {
			ds, err := s.imageDescriptors(ctx, imageDir, id)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				s.logger.WarnContext(ctx, "zero histogram for image", "image", id, "error", err)
				out[i] = bovw.ZeroHistogram(dict)
				return nil
			}
			h, err := bovw.Describe(ds, dict)
			if err != nil {
				return fmt.Errorf("image %s: %w", id, err)
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if n := failed.Load(); n > 0 {
		s.logger.WarnContext(ctx, "histograms built with failures", "total", len(ids), "failed", n)
	}
	return out, nil
}

// Samples связывает каждое изображение выборки с меткой и гистограммой.
func (s *FeatureService) Samples(ctx context.Context, imageDir string, ds *entity.LabeledDataset, dict *entity.Dictionary) ([]entity.Sample, error) {
	histograms, err := s.HistogramsByImage(ctx, imageDir, ds.IDs(), dict)
	if err != nil {
		return nil, err
	}
	samples := make([]entity.Sample, ds.Len())
	for i, img := range ds.Images {
		samples[i] = entity.Sample{
			ImageID:   img.ImageID,
			Healthy:   img.Healthy,
			Histogram: histograms[i],
		}
	}
	return samples, nil
}

// DescribePhoto строит гистограмму загруженного фото и возвращает число дескрипторов.
func (s *FeatureService) DescribePhoto(ctx context.Context, photo []byte, dict *entity.Dictionary) (entity.Histogram, int, error) {
	ds, err := s.extractor.Extract(ctx, photo)
	if err != nil {
		return nil, 0, fmt.Errorf("extract descriptors: %w", err)
	}
	h, err := bovw.Describe(ds, dict)
	if err != nil {
		return nil, 0, err
	}
	return h, len(ds), nil
}

func (s *FeatureService) imageDescriptors(ctx context.Context, imageDir, id string) ([]entity.Descriptor, error) {
	data, err := s.loader.Load(ctx, filepath.Join(imageDir, id))
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(ctx, data)
}
