package config

import (
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	Capture    Capture
	Preview    Preview
	Settings   Settings
	Monitoring Monitoring
	Debug      bool
	NoColor    bool
	// JSONLog writes JSON lines to stderr instead of the console format.
	JSONLog bool
}

type Capture struct {
	// Backend is one of: screen, pattern.
	Backend string `default:"screen"`
	// Policy is one of: overwrite, drain.
	Policy string `default:"overwrite"`
	// LiveThreshold is the NextFrame time after which a frame is taken as fresh.
	LiveThreshold time.Duration `default:"5ms"`
	DrainLimit    int           `default:"64"`
	DrainPoll     time.Duration `default:"500us"`
	Queue         int           `default:"8"`
	Autostart     bool
	Pattern       struct {
		Width  uint32 `default:"1280"`
		Height uint32 `default:"720"`
	}
}

type Preview struct {
	// Backend is one of: sdl, headless.
	Backend   string        `default:"sdl"`
	Title     string        `default:"LiteView"`
	Interval  time.Duration `default:"16ms"`
	FpsWindow time.Duration `default:"1s"`
	Osd       bool
	// Framed shows the window borders, by default the preview is a borderless
	// always-on-top overlay.
	Framed bool
}

type Settings struct {
	// Path of the settings file, empty for the user config dir.
	Path    string
	NoWatch bool
}

type Monitoring struct {
	Port             int
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
}

func (c *Monitoring) IsEnabled() bool { return c.Port > 0 && (c.MetricEnabled || c.ProfilingEnabled) }

// WithFlags binds command line flags to the config values.
// Flags have the loaded values as defaults, so only the set ones override.
func (c *Config) WithFlags(fs *pflag.FlagSet) *Config {
	fs.StringP(confFlag, "c", "", "Set custom configuration file path")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Debug logs")
	fs.BoolVar(&c.NoColor, "nocolor", c.NoColor, "Plain console logs")
	fs.BoolVar(&c.JSONLog, "log.json", c.JSONLog, "JSON logs into stderr")

	fs.StringVar(&c.Capture.Backend, "capture.backend", c.Capture.Backend, "Capture backend: screen, pattern")
	fs.StringVar(&c.Capture.Policy, "capture.policy", c.Capture.Policy, "Frame handoff policy: overwrite, drain")
	fs.DurationVar(&c.Capture.LiveThreshold, "capture.livethreshold", c.Capture.LiveThreshold, "Frame read time that marks a live frame")
	fs.BoolVar(&c.Capture.Autostart, "autostart", c.Capture.Autostart, "Start capture right away")

	fs.StringVar(&c.Preview.Backend, "preview.backend", c.Preview.Backend, "Preview backend: sdl, headless")
	fs.BoolVar(&c.Preview.Osd, "osd", c.Preview.Osd, "Draw fps over the preview")
	fs.BoolVar(&c.Preview.Framed, "preview.framed", c.Preview.Framed, "Preview window with borders")

	fs.StringVar(&c.Settings.Path, "settings", c.Settings.Path, "Settings file path")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	return c
}
