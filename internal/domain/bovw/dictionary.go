package bovw

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"hive-vision/internal/domain/entity"
)

// seedStream второе слово состояния PCG; фиксировано, чтобы словарь зависел только от Seed.
const seedStream = 0x9e3779b97f4a7c15

// minChunk минимальное число дескрипторов на одну горутину шага назначения.
const minChunk = 1024

// BuilderConfig параметры построения словаря.
type BuilderConfig struct {
	Size          int     // желаемое число визуальных слов K
	Seed          uint64  // зерно инициализации центроидов
	MaxIterations int     // предел итераций Ллойда
	Tolerance     float64 // порог максимального сдвига центроида
	Workers       int     // горутин на шаг назначения, 0 = NumCPU
	Logger        *slog.Logger
}

// DefaultBuilderConfig возвращает конфигурацию по умолчанию для словаря размера k.
func DefaultBuilderConfig(k int) BuilderConfig {
	return BuilderConfig{
		Size:          k,
		Seed:          1,
		MaxIterations: 100,
		Tolerance:     1e-4,
	}
}

// BuildReport описывает, как был получен словарь.
type BuildReport struct {
	RequestedSize int
	Size          int
	Distinct      int // число различных дескрипторов в пуле
	Iterations    int
	Converged     bool
	Capped        bool    // K урезан до числа различных дескрипторов
	Inertia       float64 // сумма квадратов расстояний до центроидов
}

// Builder строит словарь визуальных слов кластеризацией k-means.
type Builder struct {
	cfg    BuilderConfig
	logger *slog.Logger
}

// NewBuilder проверяет конфигурацию и создаёт построитель словаря.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, cfg.Size)
	}
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("%w: max iterations %d", ErrInvalidConfig, cfg.MaxIterations)
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		return nil, fmt.Errorf("%w: tolerance %v", ErrInvalidConfig, cfg.Tolerance)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, logger: logger.With("component", "dictionary_builder")}, nil
}

// Build кластеризует пул дескрипторов в словарь из K центроидов.
//
// Если различных дескрипторов меньше K, размер словаря уменьшается до их
// числа, а в отчёте выставляется Capped. Отсутствие сходимости не ошибка:
// возвращается последняя итерация.
func (b *Builder) Build(ctx context.Context, pooled []entity.Descriptor) (*entity.Dictionary, *BuildReport, error) {
	if len(pooled) == 0 {
		return nil, nil, ErrEmptyPool
	}
	dim := len(pooled[0])
	if dim == 0 {
		return nil, nil, fmt.Errorf("%w: zero-length descriptor", ErrDimensionMismatch)
	}
	for i, d := range pooled {
		if len(d) != dim {
			return nil, nil, fmt.Errorf("%w: descriptor %d has %d, expected %d", ErrDimensionMismatch, i, len(d), dim)
		}
		if err := checkFinite(d); err != nil {
			return nil, nil, fmt.Errorf("descriptor %d: %w", i, err)
		}
	}

	distinct := distinctDescriptors(pooled)
	report := &BuildReport{
		RequestedSize: b.cfg.Size,
		Size:          b.cfg.Size,
		Distinct:      len(distinct),
	}
	if len(distinct) < b.cfg.Size {
		report.Size = len(distinct)
		report.Capped = true
		b.logger.WarnContext(ctx, "dictionary size capped by distinct descriptors",
			"requested", b.cfg.Size,
			"distinct", len(distinct),
		)
	}

	centroids := b.initCentroids(distinct, report.Size)
	assignments := make([]int, len(pooled))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 1; iter <= b.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		changed, inertia, err := b.assignAll(ctx, pooled, centroids, assignments)
		if err != nil {
			return nil, nil, err
		}
		report.Iterations = iter
		report.Inertia = inertia
		if !changed {
			report.Converged = true
			break
		}

		shift := updateCentroids(pooled, assignments, centroids)
		b.logger.DebugContext(ctx, "kmeans iteration",
			"iteration", iter,
			"inertia", inertia,
			"max_shift", shift,
		)
		if shift <= b.cfg.Tolerance {
			report.Converged = true
			break
		}
	}

	b.logger.InfoContext(ctx, "dictionary built",
		"size", report.Size,
		"pool", len(pooled),
		"dimension", dim,
		"iterations", report.Iterations,
		"converged", report.Converged,
	)

	return &entity.Dictionary{Centroids: centroids}, report, nil
}

// initCentroids выбирает k различных точек равновероятно с зерном из конфигурации.
func (b *Builder) initCentroids(distinct []entity.Descriptor, k int) []entity.Descriptor {
	rng := rand.New(rand.NewPCG(b.cfg.Seed, seedStream))
	perm := rng.Perm(len(distinct))
	centroids := make([]entity.Descriptor, k)
	for i := 0; i < k; i++ {
		centroids[i] = slices.Clone(distinct[perm[i]])
	}
	return centroids
}

// assignAll шаг назначения. Пул делится на непрерывные куски, каждый кусок
// пишет только в свою часть assignments, поэтому результат не зависит от
// числа горутин. Инерция суммируется в порядке кусков.
func (b *Builder) assignAll(ctx context.Context, pooled, centroids []entity.Descriptor, assignments []int) (bool, float64, error) {
	n := len(pooled)
	chunk := (n + b.cfg.Workers - 1) / b.cfg.Workers
	if chunk < minChunk {
		chunk = minChunk
	}
	parts := (n + chunk - 1) / chunk
	changed := make([]bool, parts)
	inertia := make([]float64, parts)

	g, ctx := errgroup.WithContext(ctx)
	for p := 0; p < parts; p++ {
		lo := p * chunk
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				idx, dist := nearest(pooled[i], centroids)
				if assignments[i] != idx {
					assignments[i] = idx
					changed[p] = true
				}
				inertia[p] += dist * dist
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, 0, err
	}

	var anyChanged bool
	var total float64
	for p := 0; p < parts; p++ {
		anyChanged = anyChanged || changed[p]
		total += inertia[p]
	}
	return anyChanged, total, nil
}

// updateCentroids пересчитывает центроиды как средние назначенных точек и
// возвращает максимальный сдвиг. Опустевший кластер сохраняет прежний центроид.
func updateCentroids(pooled []entity.Descriptor, assignments []int, centroids []entity.Descriptor) float64 {
	dim := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for j := range sums {
		sums[j] = make([]float64, dim)
	}
	for i, d := range pooled {
		c := assignments[i]
		floats.Add(sums[c], d)
		counts[c]++
	}

	var maxShift float64
	for j := range centroids {
		if counts[j] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[j]), sums[j])
		if shift := floats.Distance(sums[j], centroids[j], 2); shift > maxShift {
			maxShift = shift
		}
		centroids[j] = sums[j]
	}
	return maxShift
}

// distinctDescriptors убирает повторы, сохраняя порядок первого появления.
func distinctDescriptors(pooled []entity.Descriptor) []entity.Descriptor {
	seen := make(map[string]struct{}, len(pooled))
	out := make([]entity.Descriptor, 0, len(pooled))
	buf := make([]byte, 0, 8*len(pooled[0]))
	for _, d := range pooled {
		buf = buf[:0]
		for _, v := range d {
			if v == 0 {
				v = 0 // -0 и +0 считаем одним значением
			}
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
		key := string(buf)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
