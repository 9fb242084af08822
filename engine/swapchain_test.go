// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/internal/gputest"
)

func testSurfaceConfig(t *testing.T, sf driver.Surface) SurfaceConfig {
	sup, err := QuerySupport(sf)
	require.NoError(t, err)
	return NewSurfaceConfig(sup, sf.Size())
}

func TestSwapchain(t *testing.T) {
	g := gputest.New()
	sf := g.NewTestSurface()
	conf := testSurfaceConfig(t, sf)

	s, err := newSwapchain(g, sf, conf, nil)
	require.NoError(t, err)
	assert.Len(t, s.views, 3)
	assert.Equal(t, 3, s.conf.ImageCount)
	for i, v := range s.views {
		assert.Same(t, s.sc.Images()[i], v.(*gputest.View).Img)
	}
	sc := s.sc.(*gputest.Swapchain)
	assert.Nil(t, sc.Sharing, "exclusive sharing expected for a single family")
	assert.Equal(t, driver.AlphaOpaque, sc.Info.CompositeAlpha)

	assert.Panics(t, func() { newSwapchain(g, sf, conf, s) }, "views of the old swapchain are alive")

	sf.Resize(driver.Extent{Width: 1024, Height: 768})
	conf = testSurfaceConfig(t, sf)
	s.destroyViews()
	s2, err := newSwapchain(g, sf, conf, s)
	require.NoError(t, err)
	assert.True(t, sc.Retired)
	assert.True(t, sc.Dead, "the retired swapchain must be destroyed")
	assert.Nil(t, s.sc)
	assert.Equal(t, driver.Extent{Width: 1024, Height: 768}, s2.conf.Extent)

	s2.destroy()
	s2.destroy()
	assert.Equal(t, 1, g.Live(""), "only the surface remains")
	assert.Empty(t, g.Violations)
}

func TestSwapchainFailure(t *testing.T) {
	g := gputest.New()
	sf := g.NewTestSurface()
	conf := testSurfaceConfig(t, sf)

	s, err := newSwapchain(g, sf, conf, nil)
	require.NoError(t, err)
	s.destroyViews()
	g.Fail["swapchain"] = driver.ErrNoDeviceMemory
	_, err = newSwapchain(g, sf, conf, s)
	assert.ErrorIs(t, err, driver.ErrNoDeviceMemory)
	assert.Zero(t, g.Live("swapchain"), "the old swapchain must be destroyed even on failure")

	g.Fail["view"] = driver.ErrNoHostMemory
	_, err = newSwapchain(g, sf, conf, nil)
	assert.ErrorIs(t, err, driver.ErrNoHostMemory)
	assert.Zero(t, g.Live("swapchain"))
	assert.Zero(t, g.Live("view"))
	assert.Empty(t, g.Violations)
}

func TestSwapchainSharing(t *testing.T) {
	g := gputest.New()
	g.PresentFamily = 1
	sf := g.NewTestSurface()

	s, err := newSwapchain(g, sf, testSurfaceConfig(t, sf), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, s.sc.(*gputest.Swapchain).Sharing)
	assert.Equal(t, 1, sf.PresentQueue().Family())
	s.destroy()
}
