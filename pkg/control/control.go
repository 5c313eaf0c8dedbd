// Package control is the API for the tray menu or any other UI.
// Errors returned here carry text meant for users.
package control

import (
	"github.com/liteview/liteview/pkg/capture"
	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/session"
	"github.com/liteview/liteview/pkg/settings"
)

type Service struct {
	store    *settings.Store
	sessions *session.Controller
	targets  capture.Lister
	version  string
	log      *logger.Logger
}

func New(store *settings.Store, sessions *session.Controller, targets capture.Lister, version string, log *logger.Logger) *Service {
	return &Service{store: store, sessions: sessions, targets: targets, version: version, log: log.Module("control")}
}

// Targets lists the screens and windows that can be captured.
func (s *Service) Targets() ([]capture.Target, error) { return s.targets.Targets() }

func (s *Service) Settings() settings.Settings { return s.store.Get() }

// Resolutions are the accepted resolution names.
func (s *Service) Resolutions() []string { return image.Resolutions() }

// SetSettings checks and saves new settings.
// The fps is clamped to 1..120, an unknown resolution is rejected.
// A running capture keeps the settings it started with.
func (s *Service) SetSettings(fps int64, resolution string, targetIndex *int, showCursor bool) (settings.Settings, error) {
	v, err := settings.New(fps, resolution, targetIndex, showCursor)
	if err != nil {
		return s.store.Get(), err
	}
	return s.store.Update(v)
}

// Start begins capturing, a nil target index means the one from the settings.
func (s *Service) Start(targetIndex *int) error {
	_, err := s.sessions.Start(targetIndex, s.store.Get())
	if err != nil {
		s.log.Warn().Err(err).Msg("start")
	}
	return err
}

func (s *Service) Stop() error {
	s.sessions.Stop()
	return nil
}

// Status describes the current session.
type Status struct {
	// ID is empty when no session has been started.
	ID       string
	Active   bool
	State    capture.State
	Settings settings.Settings
	Stats    capture.Stats
}

func (s *Service) Status() Status {
	h := s.sessions.Session()
	if h == nil {
		return Status{State: capture.Idle}
	}
	return Status{
		ID:       h.ID.String(),
		Active:   s.sessions.Active(),
		State:    h.State(),
		Settings: h.Settings(),
		Stats:    h.Stats(),
	}
}

func (s *Service) Version() string { return s.version }
