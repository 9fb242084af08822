// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gviegas/inflight/driver"
)

// swapchain is the presentable-image chain of a surface,
// along with one view per image.
// views[i] corresponds to sc.Images()[i].
type swapchain struct {
	sc    driver.Swapchain
	views []driver.ImageView
	conf  SurfaceConfig
}

// newSwapchain creates a swapchain for sf as described by
// conf, then creates its image views.
// If old is not nil, its swapchain is retired by the new one
// and destroyed, whether creation succeeds or not. The views
// of old must have been destroyed already.
func newSwapchain(gpu driver.GPU, sf driver.Surface, conf SurfaceConfig, old *swapchain) (*swapchain, error) {
	var retired driver.Swapchain
	if old != nil {
		if len(old.views) != 0 {
			panic("engine: retiring a swapchain whose views are alive")
		}
		retired = old.sc
	}
	sc, err := gpu.NewSwapchain(sf, conf.swapchainInfo(), retired)
	if retired != nil {
		retired.Destroy()
		old.sc = nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "swapchain creation failed")
	}
	conf.Format = sc.Format()
	conf.Extent = sc.Extent()
	conf.ImageCount = len(sc.Images())
	s := &swapchain{sc: sc, conf: conf}
	if err := s.newViews(); err != nil {
		sc.Destroy()
		return nil, err
	}
	driver.Logger().WithFields(logrus.Fields{
		"extent": conf.Extent,
		"format": conf.Format.Format,
		"mode":   conf.PresentMode,
		"images": conf.ImageCount,
	}).Info("swapchain created")
	return s, nil
}

// newViews creates one image view per swapchain image.
func (s *swapchain) newViews() error {
	imgs := s.sc.Images()
	s.views = make([]driver.ImageView, 0, len(imgs))
	for i, img := range imgs {
		v, err := img.NewView()
		if err != nil {
			s.destroyViews()
			return errors.Wrapf(err, "image view %d creation failed", i)
		}
		s.views = append(s.views, v)
	}
	return nil
}

// destroyViews destroys every image view.
func (s *swapchain) destroyViews() {
	if s == nil {
		return
	}
	for _, v := range s.views {
		v.Destroy()
	}
	s.views = nil
}

// destroyHandle destroys the swapchain itself.
// Image views must be destroyed first.
func (s *swapchain) destroyHandle() {
	if s == nil || s.sc == nil {
		return
	}
	s.sc.Destroy()
	s.sc = nil
}

// destroy destroys the image views and the swapchain.
// The device must be idle.
func (s *swapchain) destroy() {
	s.destroyViews()
	s.destroyHandle()
}
