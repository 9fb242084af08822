// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/internal/gputest"
)

func TestFramePool(t *testing.T) {
	g := gputest.New()
	p, err := newFramePool(g, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, p.len())
	assert.Equal(t, 4, g.Live("semaphore"))
	assert.Equal(t, 2, g.Live("fence"))

	for i := range p.len() {
		s := p.slot(i)
		assert.True(t, s.InFlight.(*gputest.Fence).Signaled, "slot %d fence must start signaled", i)
		assert.NotSame(t, s.ImageAvailable, s.RenderFinished)
		assert.Equal(t, i, p.slotOf(s.InFlight))
	}
	assert.NotSame(t, p.slot(0).InFlight, p.slot(1).InFlight)
	assert.Panics(t, func() { p.slot(2) })
	assert.Panics(t, func() { p.slot(-1) })

	for i := range 3 {
		_, ok := p.fenceFor(i)
		assert.False(t, ok)
	}
	p.markInUse(1, p.slot(0).InFlight)
	f, ok := p.fenceFor(1)
	assert.True(t, ok)
	assert.Same(t, p.slot(0).InFlight, f)

	p.markPending(0)
	p.markPending(1)
	assert.Equal(t, 2, p.pending())
	p.clearPending(0)
	assert.Equal(t, 1, p.pending())

	p.resizeImages(5)
	assert.Len(t, p.images, 5)
	_, ok = p.fenceFor(1)
	assert.False(t, ok, "resizeImages must forget previous owners")
	assert.Zero(t, p.pending())
	p.resizeImages(2)
	assert.Len(t, p.images, 2)

	p.destroy()
	assert.Zero(t, g.Live(""))
	assert.Empty(t, g.Violations)
}

func TestFramePoolFailure(t *testing.T) {
	g := gputest.New()
	g.Fail["semaphore"] = driver.ErrNoHostMemory
	_, err := newFramePool(g, 2, 2)
	assert.ErrorIs(t, err, driver.ErrNoHostMemory)
	assert.Zero(t, g.Live(""))

	p, err := newFramePool(g, 1, 2)
	require.NoError(t, err)
	g.Fail["fence"] = driver.ErrNoDeviceMemory
	_, err = newFramePool(g, 1, 2)
	assert.ErrorIs(t, err, driver.ErrNoDeviceMemory)
	p.destroy()
	assert.Zero(t, g.Live(""))
	assert.Empty(t, g.Violations)

	assert.Panics(t, func() { newFramePool(g, 0, 2) })
	assert.Panics(t, func() { newFramePool(g, MaxFramesInFlight+1, 2) })
}

func TestFrameSlotPartial(t *testing.T) {
	g := gputest.New()
	g.Fail["fence"] = driver.ErrNoDeviceMemory
	_, err := newFrameSlot(g)
	assert.ErrorIs(t, err, driver.ErrNoDeviceMemory)
	assert.Zero(t, g.Live("semaphore"), "semaphores must be destroyed when the fence fails")
	assert.Empty(t, g.Violations)
}
