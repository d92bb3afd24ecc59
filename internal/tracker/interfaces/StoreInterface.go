package interfaces

import "studymail/internal/models"

// StoreInterface holds the two independent records the watcher works with.
// Loads report absence with ok=false and never fail; a corrupt record reads
// as absent. Saves return an error wrapping models.ErrStorage.
type StoreInterface interface {
	LoadSnapshot() (*models.TimerSnapshot, bool)
	SaveSnapshot(snapshot models.TimerSnapshot) error
	LoadState() (*models.DetectorState, bool)
	SaveState(state models.DetectorState) error
}
