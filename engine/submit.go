// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
)

// submitter owns one pre-recorded command buffer per
// swapchain image and submits them to the graphics queue.
type submitter struct {
	queue driver.Queue
	pool  driver.CmdPool
	cbs   []driver.CmdBuffer
}

// newSubmitter creates a command pool for q.
func newSubmitter(gpu driver.GPU, q driver.Queue) (*submitter, error) {
	pool, err := gpu.NewCmdPool(q)
	if err != nil {
		return nil, errors.Wrap(err, "command pool creation failed")
	}
	return &submitter{queue: q, pool: pool}, nil
}

// record records one command buffer per framebuffer in fbs.
// Each draws a single triangle with pl over a render pass
// instance that clears the whole extent to clear.
// Existing command buffers are reused when their number
// matches. None of them may be pending execution.
func (s *submitter) record(pass driver.RenderPass, pl driver.Pipeline, fbs []driver.Framebuf, extent driver.Extent, clear [4]float32) error {
	if len(s.cbs) != len(fbs) {
		if len(s.cbs) != 0 {
			s.pool.Free(s.cbs)
			s.cbs = nil
		}
		cbs, err := s.pool.NewCmdBuffers(len(fbs))
		if err != nil {
			return errors.Wrap(err, "command buffer allocation failed")
		}
		s.cbs = cbs
	} else if err := s.pool.Reset(); err != nil {
		return errors.Wrap(err, "command pool reset failed")
	}
	cv := []driver.ClearValue{{Color: clear}}
	for i, cb := range s.cbs {
		if err := cb.Begin(); err != nil {
			return errors.Wrapf(err, "command buffer %d", i)
		}
		cb.BeginPass(pass, fbs[i], extent, cv)
		cb.SetPipeline(pl)
		cb.Draw(3, 1, 0, 0)
		cb.EndPass()
		if err := cb.End(); err != nil {
			return errors.Wrapf(err, "command buffer %d", i)
		}
	}
	return nil
}

// submit submits the command buffer of image.
// Color output waits on wait; signal and fence are
// signaled when execution completes.
func (s *submitter) submit(image int, wait, signal driver.Semaphore, fence driver.Fence) error {
	return s.queue.Submit(&driver.Submission{
		Wait:     []driver.Semaphore{wait},
		WaitSync: []driver.Sync{driver.SColorOutput},
		Cmd:      []driver.CmdBuffer{s.cbs[image]},
		Signal:   []driver.Semaphore{signal},
		Fence:    fence,
	})
}

// destroy destroys the command pool, which frees every
// command buffer.
func (s *submitter) destroy() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Destroy()
	s.pool = nil
	s.cbs = nil
}
