package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hubastard/framelab/engine/logging"
	"github.com/hubastard/framelab/engine/theme"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Window   WindowConfig
	Log      LogConfig
	Theme    string
	Profiler ProfilerConfig
}

type WindowConfig struct {
	Title  string
	Width  uint32
	Height uint32
	VSync  bool
}

type LogConfig struct {
	Level       string
	File        string
	Development bool
}

type ProfilerConfig struct {
	Capacity int
	Output   string
}

// Logging converts the log section for logging.New.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:       c.Log.Level,
		File:        c.Log.File,
		Development: c.Log.Development,
	}
}

// Validate rejects configurations the application cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width == 0 || c.Window.Height == 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be non-zero", c.Window.Width, c.Window.Height))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := theme.ByName(c.Theme); err != nil {
		errs = append(errs, err)
	}
	if c.Profiler.Capacity < 0 {
		errs = append(errs, fmt.Errorf("profiler capacity %d must not be negative", c.Profiler.Capacity))
	}
	return errors.Join(errs...)
}

// ErrHelp is returned when args asked for usage.
var ErrHelp = pflag.ErrHelp

// Load reads defaults, then an optional config file, then FRAMELAB_*
// environment variables, then command line flags; later sources win.
func Load(args []string) (Config, error) {
	v := viper.New()

	v.SetDefault("window.title", "Main")
	v.SetDefault("window.width", 1200)
	v.SetDefault("window.height", 900)
	v.SetDefault("window.vsync", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "app.log")
	v.SetDefault("log.development", false)
	v.SetDefault("theme", "dark")
	v.SetDefault("profiler.capacity", 1<<16)
	v.SetDefault("profiler.output", "framelab.speedscope.json")

	fs := pflag.NewFlagSet("framelab", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML or TOML config file")
	fs.String("title", "", "window title")
	fs.Uint32("width", 0, "window width in screen units")
	fs.Uint32("height", 0, "window height in screen units")
	fs.Bool("vsync", true, "synchronise presentation with the display")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-file", "", "log file written next to stderr")
	fs.Bool("dev", false, "human readable development logging")
	fs.String("theme", "", "dark or light")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	for key, flag := range map[string]string{
		"window.title":    "title",
		"window.width":    "width",
		"window.height":   "height",
		"window.vsync":    "vsync",
		"log.level":       "log-level",
		"log.file":        "log-file",
		"log.development": "dev",
		"theme":           "theme",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	v.SetEnvPrefix("FRAMELAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv("FRAMELAB_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
