package settings

import (
	"errors"
	"fmt"

	"github.com/liteview/liteview/pkg/image"
)

const (
	MinFPS     = 1
	MaxFPS     = 120
	DefaultFPS = 60
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the user capture preferences.
// A session reads a copy of them when it starts.
type Settings struct {
	FPS         uint32
	Resolution  image.Resolution
	TargetIndex *int
	ShowCursor  bool
}

func Default() Settings {
	return Settings{FPS: DefaultFPS, Resolution: image.Captured, ShowCursor: true}
}

// ClampFPS keeps the value within MinFPS..MaxFPS.
func ClampFPS(fps int64) uint32 {
	switch {
	case fps < MinFPS:
		return MinFPS
	case fps > MaxFPS:
		return MaxFPS
	}
	return uint32(fps)
}

// New builds settings from loose values the way a UI sends them.
// The fps value is clamped, an unknown resolution is an error.
func New(fps int64, resolution string, targetIndex *int, showCursor bool) (Settings, error) {
	res, err := image.ParseResolution(resolution)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: invalid resolution: %s", ErrInvalidSettings, resolution)
	}
	return Settings{
		FPS:         ClampFPS(fps),
		Resolution:  res,
		TargetIndex: copyIndex(targetIndex),
		ShowCursor:  showCursor,
	}.Validate()
}

// Validate returns the normalized copy of the settings.
func (s Settings) Validate() (Settings, error) {
	if s.Resolution.Width() == 0 && s.Resolution != image.Captured {
		return Settings{}, fmt.Errorf("%w: invalid resolution: %v", ErrInvalidSettings, s.Resolution)
	}
	if s.TargetIndex != nil && *s.TargetIndex < 0 {
		return Settings{}, fmt.Errorf("%w: negative target index %d", ErrInvalidSettings, *s.TargetIndex)
	}
	s.FPS = ClampFPS(int64(s.FPS))
	s.TargetIndex = copyIndex(s.TargetIndex)
	return s, nil
}

// Clone returns a copy that shares nothing with s.
func (s Settings) Clone() Settings {
	s.TargetIndex = copyIndex(s.TargetIndex)
	return s
}

func (s Settings) Equal(o Settings) bool {
	if s.FPS != o.FPS || s.Resolution != o.Resolution || s.ShowCursor != o.ShowCursor {
		return false
	}
	if s.TargetIndex == nil || o.TargetIndex == nil {
		return s.TargetIndex == nil && o.TargetIndex == nil
	}
	return *s.TargetIndex == *o.TargetIndex
}

func (s Settings) String() string {
	target := "default"
	if s.TargetIndex != nil {
		target = fmt.Sprintf("%d", *s.TargetIndex)
	}
	return fmt.Sprintf("fps: %d, resolution: %v, target: %s, cursor: %v", s.FPS, s.Resolution, target, s.ShowCursor)
}

func copyIndex(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
