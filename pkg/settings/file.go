package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/liteview/liteview/pkg/image"
	xos "github.com/liteview/liteview/pkg/os"
)

const FileName = "settings.json"

// DefaultPath is the settings file in the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "liteview", FileName)
}

// jsonSettings is the on-disk form, missing show_cursor means true.
type jsonSettings struct {
	FPS         uint32 `json:"fps"`
	Resolution  string `json:"resolution"`
	TargetIndex *int   `json:"target_index"`
	ShowCursor  *bool  `json:"show_cursor,omitempty"`
}

func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSettings{
		FPS:         s.FPS,
		Resolution:  s.Resolution.String(),
		TargetIndex: s.TargetIndex,
		ShowCursor:  &s.ShowCursor,
	})
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	var v jsonSettings
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	res, err := image.ParseResolution(v.Resolution)
	if err != nil {
		return fmt.Errorf("%w: invalid resolution: %s", ErrInvalidSettings, v.Resolution)
	}
	*s = Settings{FPS: v.FPS, Resolution: res, TargetIndex: v.TargetIndex, ShowCursor: true}
	if v.ShowCursor != nil {
		s.ShowCursor = *v.ShowCursor
	}
	return nil
}

// FileStorage keeps settings in a JSON file guarded by a lock file,
// so a few app instances won't write it at the same time.
type FileStorage struct {
	path string
	lock *xos.Flock
}

func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		path = DefaultPath()
	}
	lock, err := xos.NewFileLock(path + ".lock")
	if err != nil {
		return nil, fmt.Errorf("settings lock: %w", err)
	}
	return &FileStorage{path: path, lock: lock}, nil
}

func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Load() (s Settings, ok bool, err error) {
	if err = f.lock.RLock(); err != nil {
		return s, false, fmt.Errorf("settings lock: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	if err = json.Unmarshal(data, &s); err != nil {
		return Settings{}, false, fmt.Errorf("settings file %v: %w", f.path, err)
	}
	return s, true, nil
}

func (f *FileStorage) Save(s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err = f.lock.Lock(); err != nil {
		return fmt.Errorf("settings lock: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()
	return xos.WriteFile(f.path, data, 0644)
}
