package tracker

import (
	"fmt"
	json "github.com/goccy/go-json"
	"os"
	"studymail/internal/models"
	"studymail/internal/providers"
	"studymail/internal/tracker/interfaces"
	"sync"
	"time"
)

// RecordFile persists a single typed record in its own file. Load and Save
// are serialized by a per-record mutex, so a reader never sees a half-written
// value and two writers never interleave.
type RecordFile[T any] struct {
	mu         sync.Mutex
	name       string
	path       string
	compressor interfaces.CompressorInterface
	cache      providers.CacheProviderInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewRecordFile[T any](name, path string, compressor interfaces.CompressorInterface, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *RecordFile[T] {
	return &RecordFile[T]{
		name:       name,
		path:       path,
		compressor: compressor,
		cache:      cache,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *RecordFile[T]) cacheKey() string {
	return providers.RecordCacheKey(f.name)
}

// Load returns the stored record. A missing file, an unreadable file and an
// undecodable payload all read as absent; the latter two are logged.
func (f *RecordFile[T]) Load() (*T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if data, ok := f.cache.Get(f.cacheKey()); ok {
		var val T
		if err := json.Unmarshal(data, &val); err == nil {
			return &val, true
		}
		f.cache.Del(f.cacheKey())
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warnf(providers.TypeApp, "Unable to read %s record from %s: %s", f.name, f.path, err)
		}
		return nil, false
	}

	data, err := f.compressor.Decompress(raw)
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Corrupt %s record in %s, treating as absent: %s", f.name, f.path, err)
		return nil, false
	}

	var val T
	if err := json.Unmarshal(data, &val); err != nil {
		f.logger.Warnf(providers.TypeApp, "Corrupt %s record in %s, treating as absent: %s", f.name, f.path, err)
		return nil, false
	}

	f.cache.Set(f.cacheKey(), data)
	return &val, true
}

// Save replaces the record atomically: temp file, fsync, rename.
func (f *RecordFile[T]) Save(val T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := time.Now()
	defer func() {
		f.metrics.ObservePersistenceDuration(f.name, time.Since(start))
	}()

	jsonData, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", models.ErrStorage, f.name, err)
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return fmt.Errorf("%w: compress %s: %v", models.ErrStorage, f.name, err)
	}

	if err := writeFileAtomic(f.path, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", models.ErrStorage, f.path, err)
	}

	f.cache.Set(f.cacheKey(), jsonData)
	return nil
}

func writeFileAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}
