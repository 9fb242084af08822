// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"time"

	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
)

// MaxFramesInFlight is the maximum number of frames that
// can be recorded on the CPU while previous frames are
// still being processed by the GPU.
const MaxFramesInFlight = 2

// ErrConfig means that a Config value is invalid.
var ErrConfig = errors.New("engine: invalid configuration")

// Config is used to configure the engine.
// Its fields can be decoded from TOML.
type Config struct {
	// The number of frame slots.
	// It must be in the range [1, MaxFramesInFlight].
	//
	// Default is MaxFramesInFlight.
	FramesInFlight int `toml:"frames_in_flight"`

	// The maximum time to block on a fence, as parsed
	// by time.ParseDuration. Exceeding it is fatal.
	// The empty string and "0" mean no limit.
	//
	// Default is "".
	FenceTimeout string `toml:"fence_timeout"`

	// The color used to clear every frame, as RGBA in
	// the range [0, 1].
	//
	// Default is opaque black.
	ClearColor [4]float32 `toml:"clear_color"`

	timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FramesInFlight: MaxFramesInFlight,
		ClearColor:     [4]float32{0, 0, 0, 1},
		timeout:        driver.NoTimeout,
	}
}

// Validate checks c for invalid values.
// Zero values are replaced by defaults.
func (c *Config) Validate() error {
	switch {
	case c.FramesInFlight == 0:
		c.FramesInFlight = MaxFramesInFlight
	case c.FramesInFlight < 0 || c.FramesInFlight > MaxFramesInFlight:
		return errors.Wrapf(ErrConfig, "frames_in_flight must be in [1, %d], have %d", MaxFramesInFlight, c.FramesInFlight)
	}
	switch c.FenceTimeout {
	case "", "0":
		c.timeout = driver.NoTimeout
	default:
		d, err := time.ParseDuration(c.FenceTimeout)
		if err != nil {
			return errors.Wrapf(ErrConfig, "fence_timeout: %v", err)
		}
		if d < 0 {
			return errors.Wrapf(ErrConfig, "fence_timeout must not be negative, have %s", d)
		}
		c.timeout = d
	}
	for _, x := range c.ClearColor {
		if x < 0 || x > 1 {
			return errors.Wrapf(ErrConfig, "clear_color components must be in [0, 1], have %v", c.ClearColor)
		}
	}
	return nil
}

// Timeout returns the parsed fence timeout.
// It is only meaningful after a successful call to
// Validate, and is driver.NoTimeout when no limit is set.
func (c *Config) Timeout() time.Duration {
	if c.timeout == 0 {
		return driver.NoTimeout
	}
	return c.timeout
}
