package interfaces

import "github.com/tolicodes/playbuddy-sub001/internal/models"

// StoreInterface is the key-value persistence boundary. Values are opaque
// bytes; absence is not an error.
type StoreInterface interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
}

// SchedulerInterface drives the background manual-source refresh loop and
// the startup restore (which runs legacy migration).
type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
}

// StateLoaderInterface primes the persisted popup state (running the
// legacy migration on first load).
type StateLoaderInterface interface {
	Load() (*models.PopupManagerState, error)
}

// ManualSourceInterface supplies server-authored popups. Implementations
// degrade to an empty slice on fetch failure.
type ManualSourceInterface interface {
	ActivePopups() []models.ManualPopup
	Refresh() error
	Available() bool
}
