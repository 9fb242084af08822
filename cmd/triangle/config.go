// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"bytes"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gviegas/inflight/engine"
)

// options are the command line options.
// Values that are set override the config file.
type options struct {
	Config     string `short:"c" long:"config" description:"Path of a TOML config file"`
	Verbose    []bool `short:"v" long:"verbose" description:"Log more (repeat for debug output)"`
	Validation bool   `long:"validation" description:"Enable API validation layers"`
	Width      int    `long:"width" description:"Window width"`
	Height     int    `long:"height" description:"Window height"`
	Frames     int    `long:"frames" description:"Stop after this many frames (0 runs until closed)"`
}

// parseArgs parses command line arguments.
// It returns flags.ErrHelp (wrapped in *flags.Error) when
// help was requested.
func parseArgs(args []string) (options, error) {
	var opts options
	p := flags.NewParser(&opts, flags.Default)
	rest, err := p.ParseArgs(args)
	if err != nil {
		return opts, err
	}
	if len(rest) > 0 {
		return opts, errors.Errorf("unexpected arguments: %v", rest)
	}
	return opts, nil
}

type windowConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	Resizable bool   `toml:"resizable"`
}

type driverConfig struct {
	Name       string `toml:"name"`
	AppName    string `toml:"app_name"`
	Validation bool   `toml:"validation"`
}

type shaderConfig struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

// config is the program configuration.
type config struct {
	LogLevel string        `toml:"log_level"`
	Window   windowConfig  `toml:"window"`
	Driver   driverConfig  `toml:"driver"`
	Shaders  shaderConfig  `toml:"shaders"`
	Engine   engine.Config `toml:"engine"`
}

func defaultConfig() config {
	return config{
		LogLevel: "warning",
		Window: windowConfig{
			Width:     800,
			Height:    600,
			Title:     "Triangle",
			Resizable: true,
		},
		Driver: driverConfig{
			Name:    "vulkan",
			AppName: "triangle",
		},
		Shaders: shaderConfig{
			Vertex:   "shaders/triangle.vert.spv",
			Fragment: "shaders/triangle.frag.spv",
		},
		Engine: engine.DefaultConfig(),
	}
}

// decodeConfig decodes TOML data on top of the default
// configuration. Unknown keys are an error.
func decodeConfig(data []byte) (config, error) {
	cfg := defaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, errors.Errorf("config:%d:%d: %s", row, col, derr.Error())
		}
		return cfg, errors.Wrap(err, "config")
	}
	return cfg, nil
}

// loadConfig reads the config file at path.
// An empty path yields the default configuration.
func loadConfig(path string) (config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, errors.Wrap(err, "failed to read config")
	}
	return decodeConfig(data)
}

// apply overrides cfg with the options that were set.
func (o *options) apply(cfg *config) {
	if o.Validation {
		cfg.Driver.Validation = true
	}
	if o.Width > 0 {
		cfg.Window.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Window.Height = o.Height
	}
	switch len(o.Verbose) {
	case 0:
	case 1:
		cfg.LogLevel = "info"
	default:
		cfg.LogLevel = "debug"
	}
}

// validate checks cfg for invalid values.
func (c *config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("shader paths must not be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return c.Engine.Validate()
}

// newLogger creates a logger at the configured level.
// It assumes that c is valid.
func (c *config) newLogger() *logrus.Logger {
	l := logrus.New()
	lvl, _ := logrus.ParseLevel(c.LogLevel)
	l.SetLevel(lvl)
	return l
}
