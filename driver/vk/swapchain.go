// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"time"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
)

// swapchain implements driver.Swapchain.
type swapchain struct {
	d      *Driver
	sf     *surface
	sc     vk.Swapchain
	imgs   []driver.Image
	format driver.SurfaceFormat
	extent driver.Extent
}

// NewSwapchain creates a new swapchain.
// Images are shared between the graphics and present
// queue families when they differ.
func (d *Driver) NewSwapchain(sf driver.Surface, info *driver.SwapchainInfo, old driver.Swapchain) (driver.Swapchain, error) {
	s := sf.(*surface)
	caps, err := s.caps()
	if err != nil {
		return nil, err
	}
	ci := &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         s.sf,
		MinImageCount:   uint32(info.ImageCount),
		ImageFormat:     convPixelFmt(info.Format.Format),
		ImageColorSpace: convColorSpace(info.Format.ColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  uint32(info.Extent.Width),
			Height: uint32(info.Extent.Height),
		},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.Transform),
		CompositeAlpha:   pickAlpha(info.CompositeAlpha, caps.SupportedCompositeAlpha),
		PresentMode:      convPresentMode(info.PresentMode),
		Clipped:          vk.False,
		OldSwapchain:     vk.NullSwapchain,
	}
	if info.Clipped {
		ci.Clipped = vk.True
	}
	if fams := sharingFamilies(d.qfam, s.pq.fam); len(fams) > 1 {
		ci.ImageSharingMode = vk.SharingModeConcurrent
		ci.QueueFamilyIndexCount = uint32(len(fams))
		ci.PQueueFamilyIndices = fams
	}
	if old != nil {
		ci.OldSwapchain = old.(*swapchain).sc
	}

	var sc vk.Swapchain
	if err := checkResult(vk.CreateSwapchain(d.dev, ci, nil, &sc)); err != nil {
		return nil, errors.Wrap(err, "vk: swapchain creation failed")
	}
	var n uint32
	if err := checkResult(vk.GetSwapchainImages(d.dev, sc, &n, nil)); err != nil {
		vk.DestroySwapchain(d.dev, sc, nil)
		return nil, err
	}
	handles := make([]vk.Image, n)
	if err := checkResult(vk.GetSwapchainImages(d.dev, sc, &n, handles)); err != nil {
		vk.DestroySwapchain(d.dev, sc, nil)
		return nil, err
	}
	imgs := make([]driver.Image, n)
	for i := range imgs {
		imgs[i] = &image{
			d:      d,
			img:    handles[i],
			format: ci.ImageFormat,
		}
	}
	return &swapchain{
		d:      d,
		sf:     s,
		sc:     sc,
		imgs:   imgs,
		format: info.Format,
		extent: info.Extent,
	}, nil
}

// sharingFamilies returns the queue families that access
// swapchain images. It has a single element when graphics
// and presentation use the same family.
func sharingFamilies(graphics, present int) []uint32 {
	if graphics == present {
		return []uint32{uint32(graphics)}
	}
	return []uint32{uint32(graphics), uint32(present)}
}

// Images returns the swapchain images.
func (s *swapchain) Images() []driver.Image { return s.imgs }

// Format returns the surface format of the images.
func (s *swapchain) Format() driver.SurfaceFormat { return s.format }

// Extent returns the size of the images.
func (s *swapchain) Extent() driver.Extent { return s.extent }

// Next acquires the next writable image.
func (s *swapchain) Next(timeout time.Duration, signal driver.Semaphore) (int, error) {
	var idx uint32
	res := vk.AcquireNextImage(s.d.dev, s.sc, timeoutNS(timeout), signal.(*semaphore).sem, vk.NullFence, &idx)
	switch err := swapchainResult(res); {
	case err == nil:
		return int(idx), nil
	case errors.Is(err, driver.ErrSuboptimal):
		return int(idx), err
	default:
		return -1, err
	}
}

// Destroy destroys the swapchain.
// Its images are owned by the presentation engine.
func (s *swapchain) Destroy() {
	if s == nil {
		return
	}
	if s.d != nil {
		vk.DestroySwapchain(s.d.dev, s.sc, nil)
	}
	*s = swapchain{}
}
