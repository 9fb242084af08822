// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/internal/gputest"
)

func TestChooseFormat(t *testing.T) {
	unorm := driver.SurfaceFormat{Format: driver.BGRA8un, ColorSpace: driver.SRGBNonlinear}
	p3 := driver.SurfaceFormat{Format: driver.BGRA8sRGB, ColorSpace: driver.DisplayP3Nonlinear}

	rgba := driver.SurfaceFormat{Format: driver.RGBA8un, ColorSpace: driver.SRGBNonlinear}
	linear := driver.SurfaceFormat{Format: driver.BGRA8sRGB, ColorSpace: driver.ExtendedSRGBLinear}

	for _, x := range [...]struct {
		fmts []driver.SurfaceFormat
		want driver.SurfaceFormat
	}{
		{[]driver.SurfaceFormat{unorm, preferredFormat}, preferredFormat},
		{[]driver.SurfaceFormat{preferredFormat, unorm, rgba}, preferredFormat},
		{[]driver.SurfaceFormat{unorm, preferredFormat, rgba}, preferredFormat},
		{[]driver.SurfaceFormat{p3, preferredFormat}, preferredFormat},
		{[]driver.SurfaceFormat{linear, unorm, preferredFormat, p3}, preferredFormat},
		{[]driver.SurfaceFormat{linear, p3}, linear},
	} {
		if have := ChooseFormat(x.fmts); have != x.want {
			t.Fatalf("ChooseFormat(%v):\nhave %v\nwant %v", x.fmts, have, x.want)
		}
	}
	assert.Equal(t, unorm, ChooseFormat([]driver.SurfaceFormat{unorm, p3}),
		"the first format must be chosen when the preferred one is missing")
	assert.Equal(t, p3, ChooseFormat([]driver.SurfaceFormat{p3}),
		"sRGB format with a different color space is not preferred")
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, driver.PresentMailbox, ChoosePresentMode([]driver.PresentMode{driver.PresentFIFO, driver.PresentImmediate, driver.PresentMailbox}))
	assert.Equal(t, driver.PresentFIFO, ChoosePresentMode([]driver.PresentMode{driver.PresentImmediate, driver.PresentFIFO}))
	assert.Equal(t, driver.PresentFIFO, ChoosePresentMode([]driver.PresentMode{driver.PresentFIFORelaxed}),
		"FIFO must be used when mailbox is missing")
}

func TestChooseExtent(t *testing.T) {
	caps := driver.SurfaceCaps{
		CurrentExtent: driver.UndefinedExtent,
		MinExtent:     driver.Extent{Width: 1, Height: 1},
		MaxExtent:     driver.Extent{Width: 4096, Height: 4096},
	}
	assert.Equal(t, driver.Extent{Width: 1920, Height: 1080}, ChooseExtent(&caps, driver.Extent{Width: 1920, Height: 1080}))
	assert.Equal(t, driver.Extent{Width: 4096, Height: 1}, ChooseExtent(&caps, driver.Extent{Width: 5000, Height: 0}))

	caps.MinExtent = driver.Extent{Width: 64, Height: 64}
	assert.Equal(t, driver.Extent{Width: 64, Height: 100}, ChooseExtent(&caps, driver.Extent{Width: 10, Height: 100}))

	caps.CurrentExtent = driver.Extent{Width: 640, Height: 480}
	assert.Equal(t, caps.CurrentExtent, ChooseExtent(&caps, driver.Extent{Width: 1920, Height: 1080}),
		"a defined current extent must be used as is")
}

func TestImageCount(t *testing.T) {
	for _, x := range [...]struct {
		min, max, want int
	}{
		{2, 3, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 8, 2},
		{4, 0, 5},
	} {
		caps := driver.SurfaceCaps{MinImages: x.min, MaxImages: x.max}
		assert.Equal(t, x.want, ImageCount(&caps), "min=%d max=%d", x.min, x.max)
	}
}

func TestQuerySupport(t *testing.T) {
	g := gputest.New()
	sf := g.NewTestSurface()

	sup, err := QuerySupport(sf)
	require.NoError(t, err)
	conf := NewSurfaceConfig(sup, sf.Size())
	assert.Equal(t, preferredFormat, conf.Format)
	assert.Equal(t, driver.PresentMailbox, conf.PresentMode)
	assert.Equal(t, driver.Extent{Width: 800, Height: 600}, conf.Extent)
	assert.Equal(t, 3, conf.ImageCount)
	assert.Equal(t, driver.TIdentity, conf.Transform)

	info := conf.swapchainInfo()
	assert.Equal(t, driver.AlphaOpaque, info.CompositeAlpha)
	assert.True(t, info.Clipped)
	assert.Equal(t, conf.Extent, info.Extent)

	sf.ModeList = nil
	_, err = QuerySupport(sf)
	assert.ErrorIs(t, err, driver.ErrCannotPresent)

	sf.ModeList = []driver.PresentMode{driver.PresentFIFO}
	sf.FormatList = nil
	_, err = QuerySupport(sf)
	assert.ErrorIs(t, err, driver.ErrCannotPresent)

	sf.FormatList = []driver.SurfaceFormat{preferredFormat}
	g.Fail["caps"] = driver.ErrSurfaceLost
	_, err = QuerySupport(sf)
	assert.ErrorIs(t, err, driver.ErrSurfaceLost)
}
