// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/wsi"
)

// surface implements driver.Surface.
type surface struct {
	d   *Driver
	win wsi.Window
	sf  vk.Surface
	pq  *queue
}

// NewSurface creates a new surface for win.
func (d *Driver) NewSurface(win wsi.Window) (driver.Surface, error) {
	if !d.exts[extSurface] {
		return nil, driver.ErrCannotPresent
	}
	p, err := win.CreateSurface(d.inst)
	if err != nil {
		return nil, errors.Wrap(err, "vk: surface creation failed")
	}
	sf := vk.SurfaceFromPointer(p)
	fam, err := d.presQueueFor(sf)
	if err != nil {
		vk.DestroySurface(d.inst, sf, nil)
		return nil, err
	}
	d.log().WithFields(logrus.Fields{
		"family": fam,
		"shared": fam == d.qfam,
	}).Debug("surface created")
	return &surface{
		d:   d,
		win: win,
		sf:  sf,
		pq:  &d.ques[fam],
	}, nil
}

// presQueueFor returns the family of a queue that supports
// presentation to sf.
// The graphics family is checked first.
func (d *Driver) presQueueFor(sf vk.Surface) (int, error) {
	n := len(d.ques)
	for i := range n {
		fam := (i + d.qfam) % n
		var sup vk.Bool32
		err := checkResult(vk.GetPhysicalDeviceSurfaceSupport(d.pdev, uint32(fam), sf, &sup))
		if err != nil {
			return -1, err
		}
		if sup.B() {
			return fam, nil
		}
	}
	return -1, driver.ErrCannotPresent
}

// caps queries the raw surface capabilities.
func (s *surface) caps() (caps vk.SurfaceCapabilities, err error) {
	if err = checkResult(vk.GetPhysicalDeviceSurfaceCapabilities(s.d.pdev, s.sf, &caps)); err != nil {
		return
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return
}

// Caps queries the surface capabilities.
func (s *surface) Caps() (driver.SurfaceCaps, error) {
	caps, err := s.caps()
	if err != nil {
		return driver.SurfaceCaps{}, err
	}
	return convCaps(&caps), nil
}

// Formats queries the supported surface formats.
func (s *surface) Formats() ([]driver.SurfaceFormat, error) {
	var n uint32
	if err := checkResult(vk.GetPhysicalDeviceSurfaceFormats(s.d.pdev, s.sf, &n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	fmts := make([]vk.SurfaceFormat, n)
	if err := checkResult(vk.GetPhysicalDeviceSurfaceFormats(s.d.pdev, s.sf, &n, fmts)); err != nil {
		return nil, err
	}
	sfs := make([]driver.SurfaceFormat, 0, n)
	for i := range fmts[:n] {
		fmts[i].Deref()
		sfs = append(sfs, surfaceFormatFrom(fmts[i]))
	}
	return sfs, nil
}

// PresentModes queries the supported presentation modes.
// Modes that have no corresponding driver.PresentMode are
// not reported.
func (s *surface) PresentModes() ([]driver.PresentMode, error) {
	var n uint32
	if err := checkResult(vk.GetPhysicalDeviceSurfacePresentModes(s.d.pdev, s.sf, &n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	modes := make([]vk.PresentMode, n)
	if err := checkResult(vk.GetPhysicalDeviceSurfacePresentModes(s.d.pdev, s.sf, &n, modes)); err != nil {
		return nil, err
	}
	pms := make([]driver.PresentMode, 0, n)
	for _, m := range modes[:n] {
		if pm, ok := presentModeFrom(m); ok {
			pms = append(pms, pm)
		}
	}
	return pms, nil
}

// Size returns the window's framebuffer size.
func (s *surface) Size() driver.Extent {
	w, h := s.win.FramebufferSize()
	return driver.Extent{Width: w, Height: h}
}

// PresentQueue returns the queue used for presentation.
func (s *surface) PresentQueue() driver.Queue { return s.pq }

// Destroy destroys the surface.
func (s *surface) Destroy() {
	if s == nil {
		return
	}
	if s.d != nil {
		vk.DestroySurface(s.d.inst, s.sf, nil)
	}
	*s = surface{}
}

// convCaps converts raw surface capabilities.
// Extents must have been dereferenced.
func convCaps(caps *vk.SurfaceCapabilities) driver.SurfaceCaps {
	ext := func(e vk.Extent2D) driver.Extent {
		return driver.Extent{Width: int(e.Width), Height: int(e.Height)}
	}
	cur := ext(caps.CurrentExtent)
	if caps.CurrentExtent.Width == vk.MaxUint32 {
		cur = driver.UndefinedExtent
	}
	return driver.SurfaceCaps{
		MinImages:        int(caps.MinImageCount),
		MaxImages:        int(caps.MaxImageCount),
		CurrentExtent:    cur,
		MinExtent:        ext(caps.MinImageExtent),
		MaxExtent:        ext(caps.MaxImageExtent),
		CurrentTransform: driver.Transform(caps.CurrentTransform),
	}
}
