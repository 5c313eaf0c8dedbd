package settings

import (
	"fmt"
	"sync"

	"github.com/liteview/liteview/pkg/logger"
)

// Storage keeps settings between runs.
type Storage interface {
	// Load returns false when nothing has been saved yet.
	Load() (Settings, bool, error)
	Save(Settings) error
}

// Store is the single owner of the current settings.
type Store struct {
	mu      sync.Mutex
	current Settings
	storage Storage
	log     *logger.Logger
}

// NewStore loads the saved settings or falls back to the defaults.
// Broken saved settings are not fatal.
func NewStore(storage Storage, log *logger.Logger) *Store {
	st := &Store{current: Default(), storage: storage, log: log.Module("settings")}
	if storage == nil {
		return st
	}
	s, ok, err := storage.Load()
	switch {
	case err != nil:
		st.log.Warn().Err(err).Msg("couldn't load settings, using defaults")
	case !ok:
		st.log.Debug().Msg("no saved settings, using defaults")
	default:
		if v, err := s.Validate(); err != nil {
			st.log.Warn().Err(err).Msg("saved settings are broken, using defaults")
		} else {
			st.current = v
		}
	}
	st.log.Info().Msgf("settings: %v", st.current)
	return st
}

// Get returns a snapshot of the current settings.
func (st *Store) Get() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current.Clone()
}

// Update validates and stores new settings, then saves them.
// Invalid settings leave the current ones untouched.
// A failed save keeps the new settings in memory and returns the error.
func (st *Store) Update(s Settings) (Settings, error) {
	v, err := s.Validate()
	if err != nil {
		return st.Get(), err
	}

	st.mu.Lock()
	st.current = v.Clone()
	if st.storage != nil {
		err = st.storage.Save(v)
	}
	st.mu.Unlock()

	if err != nil {
		return v, fmt.Errorf("save settings: %w", err)
	}
	st.log.Info().Msgf("settings updated: %v", v)
	return v, nil
}

// Replace sets settings that already come from the storage, without saving them back.
func (st *Store) Replace(s Settings) (changed bool, err error) {
	v, err := s.Validate()
	if err != nil {
		return false, err
	}
	st.mu.Lock()
	changed = !st.current.Equal(v)
	st.current = v
	st.mu.Unlock()
	if changed {
		st.log.Info().Msgf("settings reloaded: %v", v)
	}
	return changed, nil
}
