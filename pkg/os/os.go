package os

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/renameio/v2/maybe"
)

var ErrNotExist = os.ErrNotExist

func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func CheckCreateDir(path string) error {
	if !Exists(path) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// ExpectTermination returns a channel closed on the first interrupt or term signal.
func ExpectTermination() chan struct{} {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-signals
		close(done)
	}()
	return done
}

// WriteFile replaces the file contents through a temp file and a rename,
// so readers never see a half-written file. Missing dirs are created.
// Windows has no atomic replace, there it is a plain write.
func WriteFile(name string, data []byte, perm os.FileMode) error {
	if err := CheckCreateDir(filepath.Dir(name)); err != nil {
		return err
	}
	return maybe.WriteFile(name, data, perm)
}
