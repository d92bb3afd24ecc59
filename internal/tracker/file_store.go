package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"studymail/internal/models"
	"studymail/internal/providers"
	"studymail/internal/structures"
	"studymail/internal/tracker/interfaces"
)

const (
	RecordSnapshot = "snapshot"
	RecordState    = "state"
)

type FileStore struct {
	snapshot *RecordFile[models.TimerSnapshot]
	state    *RecordFile[models.DetectorState]
}

func (s *FileStore) LoadSnapshot() (*models.TimerSnapshot, bool) {
	return s.snapshot.Load()
}

func (s *FileStore) SaveSnapshot(snapshot models.TimerSnapshot) error {
	return s.snapshot.Save(snapshot)
}

func (s *FileStore) LoadState() (*models.DetectorState, bool) {
	return s.state.Load()
}

func (s *FileStore) SaveState(state models.DetectorState) error {
	return s.state.Save(state)
}

func NewFileStore(conf *structures.Config, compressor interfaces.CompressorInterface, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (interfaces.StoreInterface, error) {
	dir := conf.Storage.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir %s: %v", models.ErrStorage, dir, err)
	}

	logger.Infof(providers.TypeApp, "Records stored in %s", dir)

	return &FileStore{
		snapshot: NewRecordFile[models.TimerSnapshot](RecordSnapshot, filepath.Join(dir, conf.Storage.SnapshotFile), compressor, cache, logger, metrics),
		state:    NewRecordFile[models.DetectorState](RecordState, filepath.Join(dir, conf.Storage.StateFile), compressor, cache, logger, metrics),
	}, nil
}
