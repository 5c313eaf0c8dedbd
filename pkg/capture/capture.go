// Package capture reads frames from a screen source and hands them to the preview.
package capture

import (
	"errors"
	"fmt"

	"github.com/liteview/liteview/pkg/image"
)

var (
	ErrUnsupported      = errors.New("screen capture is not supported on this system")
	ErrPermissionDenied = errors.New("screen capture permission was denied")
	ErrSourceOpen       = errors.New("couldn't start capture")
	ErrSourceRead       = errors.New("capture source failed")
	ErrClosed           = errors.New("capture source is closed")
)

type Kind uint8

const (
	Display Kind = iota
	Window
)

func (k Kind) String() string {
	if k == Window {
		return "window"
	}
	return "display"
}

// Target is a capturable screen or window.
type Target struct {
	Index int
	ID    uint32
	Title string
	Kind  Kind
}

func (t Target) String() string { return fmt.Sprintf("%d: %s [%v #%d]", t.Index, t.Title, t.Kind, t.ID) }

// Options of a capture source, Target nil means the default one.
type Options struct {
	Target     *Target
	FPS        uint32
	ShowCursor bool
	Resolution image.Resolution
}

// Source returns captured frames in order.
// NextFrame blocks until a frame is there, queued frames come back fast.
type Source interface {
	NextFrame() (image.Raw, error)
	Close() error
}

type Opener interface {
	Open(Options) (Source, error)
}

type Lister interface {
	Targets() ([]Target, error)
}

type Permission interface {
	Supported() bool
	HasPermission() bool
	// RequestPermission asks the OS for access and tells if it's granted.
	RequestPermission() bool
}

// Backend is a platform capture implementation.
type Backend interface {
	Opener
	Lister
	Permission
}

// Check tells if capture can start with the backend.
func Check(b Permission) error {
	if !b.Supported() {
		return ErrUnsupported
	}
	if !b.HasPermission() && !b.RequestPermission() {
		return ErrPermissionDenied
	}
	return nil
}
