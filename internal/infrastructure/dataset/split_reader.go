// Package dataset читает сохранённые разбиения выборки пчелиных фотографий.
package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
)

var (
	ErrBadLabel       = errors.New("dataset: unrecognised label")
	ErrLengthMismatch = errors.New("dataset: image and label files differ in length")
)

// FileSplitReader читает пары файлов <split>_x и <split>_y из каталога.
// В _x по одному имени файла на строку, в _y по одной метке.
type FileSplitReader struct {
	Dir string
}

// NewFileSplitReader создаёт читатель разбиений.
func NewFileSplitReader(dir string) *FileSplitReader {
	return &FileSplitReader{Dir: dir}
}

// ReadSplit читает разбиение по имени (train, test).
func (r *FileSplitReader) ReadSplit(ctx context.Context, name string) (*entity.LabeledDataset, error) {
	ids, err := readLines(filepath.Join(r.Dir, name+"_x"))
	if err != nil {
		return nil, err
	}
	rawLabels, err := readLines(filepath.Join(r.Dir, name+"_y"))
	if err != nil {
		return nil, err
	}

	labels := make([]bool, len(rawLabels))
	for i, raw := range rawLabels {
		if labels[i], err = ParseLabel(raw); err != nil {
			return nil, fmt.Errorf("%s_y line %d: %w", name, i+1, err)
		}
	}

	ds, ok := entity.NewLabeledDataset(ids, labels)
	if !ok {
		return nil, fmt.Errorf("%w: split %s has %d images and %d labels", ErrLengthMismatch, name, len(ids), len(labels))
	}
	return ds, nil
}

// ParseLabel разбирает бинарную метку здоровья улья.
func ParseLabel(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "healthy":
		return true, nil
	case "0", "false", "unhealthy":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrBadLabel, raw)
	}
}

// readLines возвращает непустые строки файла.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open split file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

var _ port.SplitReader = (*FileSplitReader)(nil)
