// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package engine implements frame synchronization and
// presentation.
//
// An Engine owns a swapchain and every resource derived from
// it, and renders one frame per call to RenderFrame. Up to
// MaxFramesInFlight frames are recorded on the CPU while the
// GPU is still processing previous ones. The swapchain is
// recreated transparently whenever it stops matching the
// window surface.
package engine

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gviegas/inflight/driver"
)

// State identifies the step of the frame protocol that an
// Engine is in.
type State int

// Engine states.
const (
	// No frame has been rendered yet.
	StateIdle State = iota
	// Waiting for the current slot's fence.
	StateAwaitingSlot
	// Acquiring a swapchain image.
	StateAcquiring
	// Waiting for the fence that last used the image.
	StateWaitingOnImage
	// Submitting the image's command buffer.
	StateSubmitting
	// Queueing the image for presentation.
	StatePresenting
	// The frame was presented and the slot advanced.
	StateAdvanced
	// Rebuilding the swapchain and its dependents.
	StateRecreating
	// A fatal error occurred.
	StateFailed
	// Shutdown was called.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSlot:
		return "awaiting-slot"
	case StateAcquiring:
		return "acquiring"
	case StateWaitingOnImage:
		return "waiting-on-image"
	case StateSubmitting:
		return "submitting"
	case StatePresenting:
		return "presenting"
	case StateAdvanced:
		return "advanced"
	case StateRecreating:
		return "recreating"
	case StateFailed:
		return "failed"
	case StateShutdown:
		return "shutdown"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats contains frame counters.
type Stats struct {
	// Frames queued for presentation.
	Frames int
	// Frames dropped because the swapchain was out of
	// date or the window had no area.
	Skipped int
	// Swapchain recreations.
	Recreated int
	// Suboptimal acquisitions and presentations.
	Suboptimal int
}

// Engine renders and presents frames to a surface.
// It is not safe for concurrent use.
type Engine struct {
	gpu driver.GPU
	sf  driver.Surface
	pp  Pipeliner
	cfg Config
	gq  driver.Queue
	pq  driver.Queue
	log *logrus.Entry

	sc   *swapchain
	pass driver.RenderPass
	pl   driver.Pipeline
	fbs  []driver.Framebuf
	sub  *submitter
	pool *framePool

	// Current slot index.
	frame int
	// Most recent window size.
	size driver.Extent
	// Set when the swapchain must be rebuilt before
	// the next acquisition.
	resized bool
	// Set when the pipeline must be rebuilt.
	invalid bool

	state State
	stats Stats
	fatal error
	stack teardown
}

// New creates a new Engine that presents to sf.
// The Engine takes ownership of sf, which is destroyed by
// Shutdown, or before New returns if it fails.
// pp is used to create the render pass and the pipeline,
// both initially and after swapchain recreation.
// If cfg is nil, DefaultConfig is used.
func New(gpu driver.GPU, sf driver.Surface, pp Pipeliner, cfg *Config) (e *Engine, err error) {
	if gpu == nil || sf == nil || pp == nil {
		panic("engine.New: nil argument")
	}
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err = c.Validate(); err != nil {
		sf.Destroy()
		return nil, err
	}
	e = &Engine{
		gpu:  gpu,
		sf:   sf,
		pp:   pp,
		cfg:  c,
		gq:   gpu.GraphicsQueue(),
		pq:   sf.PresentQueue(),
		size: sf.Size(),
		log:  driver.Logger().WithField("device", gpu.DeviceName()),
	}
	defer func() {
		if err != nil {
			e.stack.run()
			e = nil
		}
	}()

	e.stack.push("surface", func() { e.sf.Destroy() })

	sup, err := QuerySupport(sf)
	if err != nil {
		return e, errors.Wrap(err, "engine: surface query failed")
	}
	conf := NewSurfaceConfig(sup, e.size)
	if conf.Extent.IsZero() {
		return e, ErrZeroExtent
	}
	if e.sc, err = newSwapchain(gpu, sf, conf, nil); err != nil {
		return e, errors.Wrap(err, "engine")
	}
	e.stack.push("swapchain", func() { e.sc.destroyHandle() })
	e.stack.push("image views", func() { e.sc.destroyViews() })

	if e.pass, err = pp.NewRenderPass(e.sc.conf.Format.Format); err != nil {
		return e, errors.Wrap(err, "engine: render pass creation failed")
	}
	e.stack.push("render pass", e.destroyRenderPass)

	if e.pl, err = pp.NewPipeline(e.pass, e.sc.conf.Extent); err != nil {
		return e, errors.Wrap(err, "engine: pipeline creation failed")
	}
	e.stack.push("pipeline", e.destroyPipeline)

	if err = e.newFramebufs(); err != nil {
		return e, errors.Wrap(err, "engine")
	}
	e.stack.push("framebuffers", e.destroyFramebufs)

	if e.sub, err = newSubmitter(gpu, e.gq); err != nil {
		return e, errors.Wrap(err, "engine")
	}
	e.stack.push("command buffers", func() { e.sub.destroy() })
	if err = e.sub.record(e.pass, e.pl, e.fbs, e.sc.conf.Extent, c.ClearColor); err != nil {
		return e, errors.Wrap(err, "engine")
	}

	if e.pool, err = newFramePool(gpu, c.FramesInFlight, len(e.sc.views)); err != nil {
		return e, errors.Wrap(err, "engine")
	}
	e.stack.push("sync objects", func() { e.pool.destroy() })

	e.log.WithFields(logrus.Fields{
		"slots":  e.pool.len(),
		"family": e.gq.Family(),
		"pfam":   e.pq.Family(),
	}).Info("engine created")
	return e, nil
}

// newFramebufs creates one framebuffer per image view.
func (e *Engine) newFramebufs() error {
	ext := e.sc.conf.Extent
	e.fbs = make([]driver.Framebuf, 0, len(e.sc.views))
	for i, v := range e.sc.views {
		fb, err := e.pass.NewFB([]driver.ImageView{v}, ext)
		if err != nil {
			e.destroyFramebufs()
			return errors.Wrapf(err, "framebuffer %d creation failed", i)
		}
		e.fbs = append(e.fbs, fb)
	}
	return nil
}

func (e *Engine) destroyFramebufs() {
	for _, fb := range e.fbs {
		fb.Destroy()
	}
	e.fbs = nil
}

func (e *Engine) destroyPipeline() {
	if e.pl != nil {
		e.pl.Destroy()
		e.pl = nil
	}
}

func (e *Engine) destroyRenderPass() {
	if e.pass != nil {
		e.pass.Destroy()
		e.pass = nil
	}
}

// Resize notifies the engine that the window was resized.
// The swapchain is recreated after the current frame, or
// before the next one if no frame is in progress.
func (e *Engine) Resize() { e.resized = true }

// InvalidatePipeline notifies the engine that the pipeline
// provided by its Pipeliner must be created again, along
// with the framebuffers and command buffers that depend on
// it.
func (e *Engine) InvalidatePipeline() { e.invalid = true }

// Extent returns the size of the swapchain images.
func (e *Engine) Extent() driver.Extent { return e.sc.conf.Extent }

// Format returns the surface format of the swapchain.
func (e *Engine) Format() driver.SurfaceFormat { return e.sc.conf.Format }

// PresentMode returns the presentation mode in use.
func (e *Engine) PresentMode() driver.PresentMode { return e.sc.conf.PresentMode }

// ImageCount returns the number of swapchain images.
func (e *Engine) ImageCount() int { return len(e.sc.views) }

// Frame returns the index of the slot that the next frame
// will use.
func (e *Engine) Frame() int { return e.frame }

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Stats returns the frame counters.
func (e *Engine) Stats() Stats { return e.stats }

// Teardown returns the names of the resources that
// Shutdown releases, in release order.
func (e *Engine) Teardown() []string { return e.stack.names() }

// Shutdown waits for the device to go idle and then
// destroys every resource owned by the engine, in reverse
// order of creation. The Engine must not be used
// afterwards.
// Resources are released even if the wait fails, in which
// case the error is returned.
func (e *Engine) Shutdown() error {
	if e.state == StateShutdown {
		return ErrShutdown
	}
	err := e.gpu.WaitIdle()
	e.stack.run()
	e.state = StateShutdown
	e.log.WithField("frames", e.stats.Frames).Info("engine shut down")
	if err != nil {
		return errors.Wrap(err, "engine: wait idle failed")
	}
	return nil
}
