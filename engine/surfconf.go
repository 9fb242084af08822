// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/gviegas/inflight/driver"
)

// preferredFormat is the surface format chosen whenever
// the surface supports it.
var preferredFormat = driver.SurfaceFormat{
	Format:     driver.BGRA8sRGB,
	ColorSpace: driver.SRGBNonlinear,
}

// ChooseFormat selects a surface format from fmts.
// It returns the preferred 8-bit BGRA sRGB format with
// non-linear sRGB color space if fmts contains it, and
// fmts[0] otherwise.
// fmts must not be empty.
func ChooseFormat(fmts []driver.SurfaceFormat) driver.SurfaceFormat {
	for _, f := range fmts {
		if f == preferredFormat {
			return f
		}
	}
	return fmts[0]
}

// ChoosePresentMode selects a presentation mode from modes.
// Mailbox is preferred. FIFO is used otherwise, since it is
// always supported.
func ChoosePresentMode(modes []driver.PresentMode) driver.PresentMode {
	for _, m := range modes {
		if m == driver.PresentMailbox {
			return m
		}
	}
	return driver.PresentFIFO
}

// ChooseExtent selects the swapchain extent.
// When the surface dictates its size, the current extent is
// used as is. Otherwise, the window size is clamped into the
// supported range, per dimension.
func ChooseExtent(caps *driver.SurfaceCaps, size driver.Extent) driver.Extent {
	if caps.CurrentExtent != driver.UndefinedExtent {
		return caps.CurrentExtent
	}
	return driver.Extent{
		Width:  min(max(size.Width, caps.MinExtent.Width), caps.MaxExtent.Width),
		Height: min(max(size.Height, caps.MinExtent.Height), caps.MaxExtent.Height),
	}
}

// ImageCount returns the number of swapchain images to
// request: one more than the minimum, clamped to the maximum
// if there is one.
func ImageCount(caps *driver.SurfaceCaps) int {
	n := caps.MinImages + 1
	if caps.MaxImages > 0 && n > caps.MaxImages {
		n = caps.MaxImages
	}
	return n
}

// SurfaceSupport aggregates the presentation support of a
// surface, as queried from a driver.Surface.
type SurfaceSupport struct {
	Caps    driver.SurfaceCaps
	Formats []driver.SurfaceFormat
	Modes   []driver.PresentMode
}

// QuerySupport queries the presentation support of sf.
func QuerySupport(sf driver.Surface) (*SurfaceSupport, error) {
	caps, err := sf.Caps()
	if err != nil {
		return nil, err
	}
	fmts, err := sf.Formats()
	if err != nil {
		return nil, err
	}
	modes, err := sf.PresentModes()
	if err != nil {
		return nil, err
	}
	if len(fmts) == 0 || len(modes) == 0 {
		return nil, driver.ErrCannotPresent
	}
	return &SurfaceSupport{caps, fmts, modes}, nil
}

// SurfaceConfig is the configuration derived from a
// surface's support for presentation.
type SurfaceConfig struct {
	Format      driver.SurfaceFormat
	PresentMode driver.PresentMode
	Extent      driver.Extent
	ImageCount  int
	Transform   driver.Transform
}

// NewSurfaceConfig derives a SurfaceConfig from sup and the
// window size in physical pixels.
func NewSurfaceConfig(sup *SurfaceSupport, size driver.Extent) SurfaceConfig {
	return SurfaceConfig{
		Format:      ChooseFormat(sup.Formats),
		PresentMode: ChoosePresentMode(sup.Modes),
		Extent:      ChooseExtent(&sup.Caps, size),
		ImageCount:  ImageCount(&sup.Caps),
		Transform:   sup.Caps.CurrentTransform,
	}
}

// swapchainInfo returns the swapchain creation parameters
// for c.
func (c *SurfaceConfig) swapchainInfo() *driver.SwapchainInfo {
	return &driver.SwapchainInfo{
		ImageCount:     c.ImageCount,
		Format:         c.Format,
		Extent:         c.Extent,
		PresentMode:    c.PresentMode,
		Transform:      c.Transform,
		CompositeAlpha: driver.AlphaOpaque,
		Clipped:        true,
	}
}
