package os

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Flock is an inter-process lock backed by a file.
type Flock struct {
	f *flock.Flock
}

// NewFileLock makes a lock file at the path, creating missing dirs.
// An empty path means a lock file in the temp dir.
func NewFileLock(path string) (*Flock, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "liteview.lock")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}
	return &Flock{f: flock.New(path)}, nil
}

func (f *Flock) Lock() error   { return f.f.Lock() }
func (f *Flock) RLock() error  { return f.f.RLock() }
func (f *Flock) Unlock() error { return f.f.Unlock() }
func (f *Flock) Path() string  { return f.f.Path() }
