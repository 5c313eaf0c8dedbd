package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	var out Config
	if err := LoadConfig(&out, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if out.Capture.Backend != "screen" || out.Capture.Policy != "overwrite" {
		t.Errorf("wrong capture defaults %+v", out.Capture)
	}
	if out.Capture.LiveThreshold != 5*time.Millisecond || out.Capture.DrainPoll != 500*time.Microsecond {
		t.Errorf("wrong timing defaults %+v", out.Capture)
	}
	if out.Preview.Interval != 16*time.Millisecond || out.Preview.FpsWindow != time.Second {
		t.Errorf("wrong preview defaults %+v", out.Preview)
	}
	if out.Settings.NoWatch || out.Monitoring.IsEnabled() || out.Preview.Framed || out.JSONLog {
		t.Errorf("wrong defaults %+v %+v", out.Settings, out.Monitoring)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("LITEVIEW_CAPTURE_POLICY", "drain")
	t.Setenv("LITEVIEW_PREVIEW_BACKEND", "headless")

	var out Config
	if err := LoadConfig(&out, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if out.Capture.Policy != "drain" {
		t.Errorf("%v is not drain", out.Capture.Policy)
	}
	if out.Preview.Backend != "headless" {
		t.Errorf("%v is not headless", out.Preview.Backend)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := "capture:\n  backend: pattern\n  queue: 3\npreview:\n  osd: true\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	conf, err := NewConfig([]string{"--debug", "-c", dir})
	if err != nil {
		t.Fatal(err)
	}
	if conf.Capture.Backend != "pattern" || conf.Capture.Queue != 3 || !conf.Preview.Osd {
		t.Errorf("file values are not loaded %+v %+v", conf.Capture, conf.Preview)
	}
	if conf.Capture.DrainLimit != 64 {
		t.Errorf("default is lost: %v", conf.Capture.DrainLimit)
	}
}

func TestWithFlags(t *testing.T) {
	conf := Config{Capture: Capture{Backend: "pattern", Policy: "overwrite"}}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	conf.WithFlags(fs)
	if err := fs.Parse([]string{"--capture.policy", "drain", "--monitoring.port", "9000", "-c", "x", "--preview.framed", "--log.json"}); err != nil {
		t.Fatal(err)
	}
	if conf.Capture.Policy != "drain" || conf.Monitoring.Port != 9000 || !conf.Preview.Framed || !conf.JSONLog {
		t.Errorf("flags are not applied %+v", conf)
	}
	if conf.Capture.Backend != "pattern" {
		t.Errorf("unset flag changed the value %v", conf.Capture.Backend)
	}
}

func TestPathFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: nil, want: ""},
		{args: []string{"--conf", "/etc/lv"}, want: "/etc/lv"},
		{args: []string{"--debug", "-c", "cfg", "--osd"}, want: "cfg"},
	}
	for _, tt := range tests {
		if got := PathFromArgs(tt.args); got != tt.want {
			t.Errorf("PathFromArgs(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
