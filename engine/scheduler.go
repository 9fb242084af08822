// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gviegas/inflight/driver"
)

// RenderFrame renders and presents a single frame.
// size is the current window size in physical pixels; a
// change in size causes the swapchain to be recreated. When
// size has no area (e.g., the window is minimized), the
// frame is skipped.
//
// An out of date swapchain is not an error: the frame is
// dropped, the swapchain is recreated and RenderFrame
// returns nil. Errors that RenderFrame returns are fatal
// (they match ErrFatal).
func (e *Engine) RenderFrame(size driver.Extent) error {
	switch {
	case e.state == StateShutdown:
		return ErrShutdown
	case e.fatal != nil:
		return e.fatal
	}
	if err := e.renderFrame(size); err != nil {
		e.state = StateFailed
		e.fatal = err
		e.log.WithError(err).Error("frame failed")
		return err
	}
	return nil
}

func (e *Engine) renderFrame(size driver.Extent) error {
	if size != e.size {
		e.size = size
		e.resized = true
	}
	if size.IsZero() {
		e.skip("zero extent")
		return nil
	}
	if e.resized || e.invalid {
		if err := e.recreate(); err != nil {
			return err
		}
		if e.resized {
			e.skip("recreation deferred")
			return nil
		}
	}

	slot := e.pool.slot(e.frame)

	e.state = StateAwaitingSlot
	if err := e.wait(slot.InFlight); err != nil {
		return err
	}

	e.state = StateAcquiring
	idx, err := e.sc.sc.Next(e.cfg.Timeout(), slot.ImageAvailable)
	switch {
	case err == nil:
	case errors.Is(err, driver.ErrSuboptimal):
		e.stats.Suboptimal++
		e.log.WithField("image", idx).Debug("suboptimal swapchain on acquire")
	case errors.Is(err, driver.ErrOutOfDate):
		e.skip("out of date")
		return e.recreate()
	case errors.Is(err, driver.ErrTimeout):
		return &FatalError{"acquire", fmt.Errorf("%w: %w", ErrHung, err)}
	default:
		return &FatalError{"acquire", err}
	}

	e.state = StateWaitingOnImage
	if f, ok := e.pool.fenceFor(idx); ok && f != slot.InFlight {
		if err := e.wait(f); err != nil {
			return err
		}
	}
	e.pool.markInUse(idx, slot.InFlight)

	e.state = StateSubmitting
	if err := e.gpu.ResetFences([]driver.Fence{slot.InFlight}); err != nil {
		return &FatalError{"reset fence", err}
	}
	if err := e.sub.submit(idx, slot.ImageAvailable, slot.RenderFinished, slot.InFlight); err != nil {
		return &FatalError{"submit", err}
	}
	e.pool.markPending(e.frame)

	e.state = StatePresenting
	recreate := e.resized || e.invalid
	switch err := e.pq.Present(e.sc.sc, idx, []driver.Semaphore{slot.RenderFinished}); {
	case err == nil:
		e.stats.Frames++
	case errors.Is(err, driver.ErrSuboptimal):
		e.stats.Frames++
		e.stats.Suboptimal++
		recreate = true
	case errors.Is(err, driver.ErrOutOfDate):
		e.skip("present out of date")
		recreate = true
	default:
		return &FatalError{"present", err}
	}

	e.frame = (e.frame + 1) % e.pool.len()
	e.state = StateAdvanced
	if recreate {
		return e.recreate()
	}
	return nil
}

// wait blocks until f is signaled, subject to the configured
// timeout. The slot that owns f is no longer pending
// afterwards.
func (e *Engine) wait(f driver.Fence) error {
	err := e.gpu.WaitFences([]driver.Fence{f}, e.cfg.Timeout())
	switch {
	case err == nil:
		if i := e.pool.slotOf(f); i >= 0 {
			e.pool.clearPending(i)
		}
		return nil
	case errors.Is(err, driver.ErrTimeout):
		return &FatalError{"wait fence", fmt.Errorf("%w: %w", ErrHung, err)}
	default:
		return &FatalError{"wait fence", err}
	}
}

// skipLogInterval is the number of dropped frames between
// summaries logged at info level.
const skipLogInterval = 60

// skip records a dropped frame.
func (e *Engine) skip(reason string) {
	e.stats.Skipped++
	e.log.WithFields(logrus.Fields{
		"reason":  reason,
		"skipped": e.stats.Skipped,
	}).Debug("frame skipped")
	if e.stats.Skipped%skipLogInterval == 0 {
		e.log.WithFields(logrus.Fields{
			"skipped": e.stats.Skipped,
			"frames":  e.stats.Frames,
		}).Info("frames skipped")
	}
}

// recreate rebuilds the swapchain and every resource that
// depends on it.
// If the surface currently has no area, recreation is
// deferred until it does.
func (e *Engine) recreate() error {
	e.state = StateRecreating
	e.resized = true
	if e.size.IsZero() {
		return nil
	}
	if err := e.gpu.WaitIdle(); err != nil {
		return &FatalError{"wait idle", err}
	}
	sup, err := QuerySupport(e.sf)
	if err != nil {
		return &FatalError{"surface query", err}
	}
	conf := NewSurfaceConfig(sup, e.size)
	if conf.Extent.IsZero() {
		e.log.Debug("surface has zero extent, recreation deferred")
		return nil
	}

	e.destroyFramebufs()
	e.destroyPipeline()
	if conf.Format.Format != e.sc.conf.Format.Format {
		e.destroyRenderPass()
	}
	e.sc.destroyViews()

	sc, err := newSwapchain(e.gpu, e.sf, conf, e.sc)
	if err != nil {
		return &FatalError{"recreate", err}
	}
	e.sc = sc
	if e.pass == nil {
		if e.pass, err = e.pp.NewRenderPass(sc.conf.Format.Format); err != nil {
			return &FatalError{"recreate", errors.Wrap(err, "render pass creation failed")}
		}
	}
	if e.pl, err = e.pp.NewPipeline(e.pass, sc.conf.Extent); err != nil {
		return &FatalError{"recreate", errors.Wrap(err, "pipeline creation failed")}
	}
	if err = e.newFramebufs(); err != nil {
		return &FatalError{"recreate", err}
	}
	if err = e.sub.record(e.pass, e.pl, e.fbs, sc.conf.Extent, e.cfg.ClearColor); err != nil {
		return &FatalError{"recreate", err}
	}
	e.pool.resizeImages(len(sc.views))

	e.resized = false
	e.invalid = false
	e.stats.Recreated++
	e.log.WithFields(logrus.Fields{
		"extent": sc.conf.Extent,
		"count":  e.stats.Recreated,
	}).Info("swapchain recreated")
	return nil
}
