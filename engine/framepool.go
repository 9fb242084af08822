// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/internal/bitvec"
)

// FrameSlot holds the synchronization objects of a single
// frame in flight.
type FrameSlot struct {
	// Signaled when the acquired image can be written.
	ImageAvailable driver.Semaphore
	// Signaled when rendering to the image completes.
	RenderFinished driver.Semaphore
	// Signaled when the slot's submission completes.
	// It is created signaled so the first wait on a
	// fresh slot returns immediately.
	InFlight driver.Fence
}

// framePool is a fixed ring of frame slots plus the table
// of fences that last used each swapchain image.
type framePool struct {
	gpu   driver.GPU
	slots []FrameSlot

	// images[i] is the fence of the slot that last
	// submitted work targeting swapchain image i, or nil.
	images []driver.Fence

	// Slots whose fence may not have been observed
	// signaled since their last submission.
	pend *bitvec.V[uint8]
}

// newFramePool creates n frame slots and an empty table of
// nimg images.
func newFramePool(gpu driver.GPU, n, nimg int) (*framePool, error) {
	if n < 1 || n > MaxFramesInFlight {
		panic("engine: invalid number of frame slots")
	}
	p := &framePool{
		gpu:    gpu,
		slots:  make([]FrameSlot, 0, n),
		images: make([]driver.Fence, nimg),
		pend:   bitvec.New[uint8](n),
	}
	for i := range n {
		s, err := newFrameSlot(gpu)
		if err != nil {
			p.destroy()
			return nil, errors.Wrapf(err, "frame slot %d creation failed", i)
		}
		p.slots = append(p.slots, s)
	}
	return p, nil
}

func newFrameSlot(gpu driver.GPU) (s FrameSlot, err error) {
	if s.ImageAvailable, err = gpu.NewSemaphore(); err != nil {
		return
	}
	if s.RenderFinished, err = gpu.NewSemaphore(); err != nil {
		goto fail
	}
	if s.InFlight, err = gpu.NewFence(true); err != nil {
		goto fail
	}
	return
fail:
	s.destroy()
	return
}

func (s *FrameSlot) destroy() {
	for _, x := range [...]driver.Destroyer{s.ImageAvailable, s.RenderFinished, s.InFlight} {
		if x != nil {
			x.Destroy()
		}
	}
	*s = FrameSlot{}
}

// len returns the number of slots.
func (p *framePool) len() int { return len(p.slots) }

// slot returns the slot at index i.
// It panics if i is not in the range [0, p.len()).
func (p *framePool) slot(i int) *FrameSlot {
	if i < 0 || i >= len(p.slots) {
		panic("engine: frame slot index out of range")
	}
	return &p.slots[i]
}

// slotOf returns the index of the slot that owns f, or -1.
func (p *framePool) slotOf(f driver.Fence) int {
	for i := range p.slots {
		if p.slots[i].InFlight == f {
			return i
		}
	}
	return -1
}

// fenceFor returns the fence that last claimed image.
func (p *framePool) fenceFor(image int) (driver.Fence, bool) {
	f := p.images[image]
	return f, f != nil
}

// markInUse records that f's slot now targets image.
func (p *framePool) markInUse(image int, f driver.Fence) { p.images[image] = f }

// resizeImages resets the image table to nimg empty
// entries. It must only be called when the device is idle.
func (p *framePool) resizeImages(nimg int) {
	if cap(p.images) >= nimg {
		p.images = p.images[:nimg]
		clear(p.images)
	} else {
		p.images = make([]driver.Fence, nimg)
	}
	p.pend.Clear()
}

// markPending records that slot i has submitted work.
func (p *framePool) markPending(i int) { p.pend.Set(i) }

// clearPending records that slot i's fence was observed
// signaled.
func (p *framePool) clearPending(i int) { p.pend.Unset(i) }

// pending returns the number of slots whose fence has not
// been observed signaled since their last submission.
func (p *framePool) pending() int { return p.pend.Count() }

// destroy destroys every slot.
// The device must be idle.
func (p *framePool) destroy() {
	if p == nil {
		return
	}
	for i := range p.slots {
		p.slots[i].destroy()
	}
	p.slots = nil
	p.images = nil
}
