// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"
	"fmt"
	"time"
)

// ErrCannotPresent means that the driver and/or device do not
// support presentation.
var ErrCannotPresent = errors.New("driver: presentation not supported")

// ErrSurfaceLost means that the surface into which a
// swapchain presents is no longer available.
var ErrSurfaceLost = errors.New("driver: surface lost")

// ErrOutOfDate means that the swapchain no longer matches
// its surface and cannot be used for presentation anymore.
// The swapchain must be recreated.
var ErrOutOfDate = errors.New("driver: swapchain out of date")

// ErrSuboptimal means that the swapchain can still be used
// to present, but it no longer matches the surface
// properties exactly. It is not a failure: the operation
// that reported it has completed.
var ErrSuboptimal = errors.New("driver: swapchain suboptimal")

// Extent is a two-dimensional size in pixels.
type Extent struct {
	Width, Height int
}

// IsZero returns whether either dimension is zero.
func (e Extent) IsZero() bool { return e.Width == 0 || e.Height == 0 }

func (e Extent) String() string { return fmt.Sprintf("%dx%d", e.Width, e.Height) }

// UndefinedExtent is the current extent that a surface
// reports when the swapchain extent determines the surface
// size, rather than the other way around.
var UndefinedExtent = Extent{0xFFFFFFFF, 0xFFFFFFFF}

// ColorSpace identifies how presented pixels are
// interpreted by the display engine.
type ColorSpace int

// Color spaces.
const (
	SRGBNonlinear ColorSpace = iota
	DisplayP3Nonlinear
	ExtendedSRGBLinear
	// Color spaces that have no corresponding
	// constant have CSInternal set.
	CSInternal ColorSpace = 1 << 30
)

// SurfaceFormat pairs a pixel format with a color space.
type SurfaceFormat struct {
	Format     PixelFmt
	ColorSpace ColorSpace
}

// PresentMode is the type of presentation modes.
type PresentMode int

// Presentation modes.
const (
	// Images are queued and presented once per vertical
	// blank. It is always supported.
	PresentFIFO PresentMode = iota
	// As PresentFIFO, but a late image is presented
	// immediately.
	PresentFIFORelaxed
	// A single-entry queue whose entry is replaced by
	// newer images. It does not tear.
	PresentMailbox
	// Images are presented immediately. It may tear.
	PresentImmediate
)

func (m PresentMode) String() string {
	switch m {
	case PresentFIFO:
		return "fifo"
	case PresentFIFORelaxed:
		return "fifo-relaxed"
	case PresentMailbox:
		return "mailbox"
	case PresentImmediate:
		return "immediate"
	}
	return fmt.Sprintf("PresentMode(%d)", int(m))
}

// Transform is a mask of surface transforms.
// Values are passed through to the underlying API
// unmodified.
type Transform int

// Identity transform.
const TIdentity Transform = 1

// CompositeAlpha is the type of alpha compositing modes
// used by the display engine.
type CompositeAlpha int

// Composite alpha modes.
const (
	AlphaOpaque CompositeAlpha = iota
	AlphaPremultiplied
	AlphaPostmultiplied
	AlphaInherit
)

// SurfaceCaps describes the presentation capabilities of
// a surface.
// MaxImages is zero when there is no upper limit.
// CurrentExtent is UndefinedExtent when the surface size
// is determined by the swapchain.
type SurfaceCaps struct {
	MinImages        int
	MaxImages        int
	CurrentExtent    Extent
	MinExtent        Extent
	MaxExtent        Extent
	CurrentTransform Transform
}

// Surface is the interface that defines a window surface
// into which swapchain images are presented.
type Surface interface {
	Destroyer

	// Caps queries the surface capabilities.
	// The result may change whenever the window is
	// resized.
	Caps() (SurfaceCaps, error)

	// Formats queries the supported surface formats.
	Formats() ([]SurfaceFormat, error)

	// PresentModes queries the supported presentation
	// modes.
	PresentModes() ([]PresentMode, error)

	// Size returns the current size of the window in
	// physical pixels.
	Size() Extent

	// PresentQueue returns a queue that can present to
	// the surface.
	// Implementations prefer the graphics queue when it
	// is capable of presentation.
	PresentQueue() Queue
}

// SwapchainInfo describes how a swapchain is created.
// Whether images are shared between queue families is
// decided by the implementation, from the graphics queue
// and the surface's present queue.
type SwapchainInfo struct {
	ImageCount     int
	Format         SurfaceFormat
	Extent         Extent
	PresentMode    PresentMode
	Transform      Transform
	CompositeAlpha CompositeAlpha
	Clipped        bool
}

// Swapchain is the interface that defines an n-buffered
// swapchain for presentation.
// To present, one calls Next to obtain the index of an
// image to target, submits commands that render to it
// and then calls Queue.Present.
type Swapchain interface {
	Destroyer

	// Images returns the list of images that comprise
	// the swapchain.
	// This value remains unchanged for the lifetime of
	// the swapchain.
	Images() []Image

	// Format returns the images' surface format.
	Format() SurfaceFormat

	// Extent returns the images' size.
	Extent() Extent

	// Next acquires the next writable image and returns
	// its index.
	// signal is signaled when the presentation engine
	// has finished reading from the image.
	// The index is valid when the error is nil or
	// ErrSuboptimal. ErrOutOfDate means that the
	// swapchain must be recreated. ErrTimeout means
	// that no image became available within timeout.
	Next(timeout time.Duration, signal Semaphore) (int, error)
}
