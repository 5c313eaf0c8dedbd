package control

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/liteview/liteview/pkg/capture"
	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/session"
	"github.com/liteview/liteview/pkg/settings"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := logger.Default()
	backend := capture.NewPattern(32, 16, 2)
	sessions := session.New(backend, capture.DefaultConfig(), nil, log)
	t.Cleanup(func() { _ = sessions.Shutdown(context.Background()) })
	return New(settings.NewStore(nil, log), sessions, backend, "v1.2.3", log)
}

func TestSetSettings(t *testing.T) {
	svc := newTestService(t)

	s, err := svc.SetSettings(200, "720P", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if s.FPS != 120 || s.Resolution != image.P720 || s.ShowCursor {
		t.Errorf("wrong settings %v", s)
	}

	_, err = svc.SetSettings(30, "8k", nil, true)
	if !errors.Is(err, settings.ErrInvalidSettings) || !strings.Contains(err.Error(), "invalid resolution: 8k") {
		t.Errorf("SetSettings() err = %v", err)
	}
	if got := svc.Settings(); !got.Equal(s) {
		t.Errorf("rejected settings changed the current ones: %v", got)
	}
}

func TestStartStop(t *testing.T) {
	svc := newTestService(t)

	if st := svc.Status(); st.ID != "" || st.Active {
		t.Errorf("wrong initial status %+v", st)
	}
	if err := svc.Start(nil); err != nil {
		t.Fatal(err)
	}
	if !svc.Status().Active {
		t.Errorf("capture is not active")
	}
	_ = svc.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for svc.Status().State != capture.Idle {
		if time.Now().After(deadline) {
			t.Fatalf("capture didn't stop, state %v", svc.Status().State)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if svc.Status().Active {
		t.Errorf("capture is still active")
	}
}

func TestConsole(t *testing.T) {
	tests := []struct {
		line string
		want string
		quit bool
	}{
		{line: "help", want: "commands:"},
		{line: "targets", want: "0: Test pattern [display #0]"},
		{line: "set fps=200 res=1080p target=1 cursor=off", want: "fps: 120, resolution: 1080p, target: 1, cursor: false"},
		{line: "set res=8k", want: "error: invalid settings: invalid resolution: 8k"},
		{line: "set fps=abc", want: "error: bad fps"},
		{line: "set colour=red", want: "unknown setting"},
		{line: "settings", want: "fps: 60, resolution: captured, target: default, cursor: true"},
		{line: "start", want: "started"},
		{line: "start -1", want: "bad target"},
		{line: "stop", want: "stopped"},
		{line: "status", want: "idle"},
		{line: "version", want: "v1.2.3"},
		{line: "dance", want: `unknown command "dance"`},
		{line: "   ", want: ""},
		{line: "quit", quit: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(newTestService(t), nil, &out, logger.Default())
			if quit := c.Exec(tt.line); quit != tt.quit {
				t.Errorf("Exec() quit = %v, want %v", quit, tt.quit)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output %q has no %q", out.String(), tt.want)
			}
		})
	}
}

func TestConsoleRun(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(newTestService(t), strings.NewReader("version\nquit\nversion\n"), &out, logger.Default())
	if !c.Run(context.Background()) {
		t.Errorf("Run() should quit")
	}
	if strings.Count(out.String(), "v1.2.3") != 1 {
		t.Errorf("commands after quit were run: %q", out.String())
	}
	select {
	case <-c.reading:
	case <-time.After(5 * time.Second):
		t.Errorf("input reader is still running after quit")
	}

	c = NewConsole(newTestService(t), strings.NewReader("version\n"), &out, logger.Default())
	if c.Run(context.Background()) {
		t.Errorf("end of input is not quit")
	}
}

func TestConsoleNotify(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(newTestService(t), nil, &out, logger.Default())
	c.Notify(capture.ErrPermissionDenied)
	if out.String() != "capture-error: screen capture permission was denied\n" {
		t.Errorf("wrong notification %q", out.String())
	}
}
