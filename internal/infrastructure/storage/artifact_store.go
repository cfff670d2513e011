package storage

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"hive-vision/internal/domain/entity"
	"hive-vision/internal/domain/port"
	"hive-vision/internal/infrastructure/classifier"
)

const (
	dictionaryFile = "dictionary.gob.zst"
	modelFile      = "model.gob.zst"
	formatVersion  = 1
)

// ErrArtifactNotFound словарь или модель ещё не сохранялись.
var ErrArtifactNotFound = errors.New("artifact not found")

// dictionaryRecord формат файла словаря. Центроиды пишутся в исходном
// порядке: он задаёт индексы бинов гистограмм.
type dictionaryRecord struct {
	Version   int
	Centroids [][]float64
}

type modelHeader struct {
	Version int
	Kind    string
}

// ArtifactStore хранит словарь и модель в каталоге как gob, сжатый zstd.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore создаёт каталог артефактов при необходимости.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// SaveDictionary сохраняет словарь.
func (s *ArtifactStore) SaveDictionary(ctx context.Context, d *entity.Dictionary) error {
	rec := dictionaryRecord{Version: formatVersion, Centroids: make([][]float64, d.Size())}
	for i, c := range d.Centroids {
		rec.Centroids[i] = c
	}
	return s.write(dictionaryFile, func(enc *gob.Encoder) error {
		return enc.Encode(rec)
	})
}

// LoadDictionary читает словарь.
func (s *ArtifactStore) LoadDictionary(ctx context.Context) (*entity.Dictionary, error) {
	var rec dictionaryRecord
	err := s.read(dictionaryFile, func(dec *gob.Decoder) error {
		return dec.Decode(&rec)
	})
	if err != nil {
		return nil, err
	}
	if rec.Version != formatVersion {
		return nil, fmt.Errorf("dictionary format version %d is not supported", rec.Version)
	}
	d := &entity.Dictionary{Centroids: make([]entity.Descriptor, len(rec.Centroids))}
	for i, c := range rec.Centroids {
		d.Centroids[i] = c
	}
	return d, nil
}

// SaveModel сохраняет тип модели и её параметры.
func (s *ArtifactStore) SaveModel(ctx context.Context, m port.Model) error {
	return s.write(modelFile, func(enc *gob.Encoder) error {
		if err := enc.Encode(modelHeader{Version: formatVersion, Kind: m.Kind()}); err != nil {
			return err
		}
		return enc.Encode(m)
	})
}

// LoadModel читает модель, тип определяется по заголовку.
func (s *ArtifactStore) LoadModel(ctx context.Context) (port.Model, error) {
	var m port.Model
	err := s.read(modelFile, func(dec *gob.Decoder) error {
		var h modelHeader
		if err := dec.Decode(&h); err != nil {
			return err
		}
		if h.Version != formatVersion {
			return fmt.Errorf("model format version %d is not supported", h.Version)
		}
		model, err := classifier.NewModel(h.Kind)
		if err != nil {
			return err
		}
		if err := dec.Decode(model); err != nil {
			return err
		}
		m = model
		return nil
	})
	return m, err
}

// write пишет во временный файл и переименовывает его, чтобы не оставить
// наполовину записанный артефакт.
func (s *ArtifactStore) write(name string, encode func(*gob.Encoder) error) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	zw, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := encode(gob.NewEncoder(zw)); err != nil {
		zw.Close()
		tmp.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}

func (s *ArtifactStore) read(name string, decode func(*gob.Decoder) error) error {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	if err := decode(gob.NewDecoder(zr)); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

var _ port.ArtifactStore = (*ArtifactStore)(nil)
