package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix = "LITEVIEW"
	FileName  = "config.yaml"
	confFlag  = "conf"
)

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom dir of the configuration file.
// Reads and puts environment variables with the prefix LITEVIEW_.
// Params from the config should be in uppercase separated with _.
// A missing file is fine, then only the defaults and env are used.
func LoadConfig(config any, path string) error {
	dirs := []string{path}
	if path == "" {
		dirs = append(dirs, ".", "configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".liteview"))
		}
	}
	err := fig.Load(config, fig.File(FileName), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) {
		return LoadConfigEnv(config)
	}
	return err
}

func LoadConfigEnv(config any) error {
	return fig.Load(config, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
}

// NewConfig loads the app config from the dir given with the conf flag in args.
func NewConfig(args []string) (*Config, error) {
	var conf Config
	if err := LoadConfig(&conf, PathFromArgs(args)); err != nil {
		return nil, err
	}
	return &conf, nil
}

// PathFromArgs picks the config dir flag ignoring all the other flags.
func PathFromArgs(args []string) string {
	fs := pflag.NewFlagSet(confFlag, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.StringP(confFlag, "c", "", "")
	_ = fs.Parse(args)
	return *path
}
