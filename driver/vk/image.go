// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/goki/vulkan"

	"github.com/gviegas/inflight/driver"
)

// image implements driver.Image.
// Only presentable images exist, so image has no Destroy
// method.
type image struct {
	d      *Driver
	img    vk.Image
	format vk.Format
}

// NewView creates a new 2D color view of the image.
func (im *image) NewView() (driver.ImageView, error) {
	info := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    im.img,
		ViewType: vk.ImageViewType2d,
		Format:   im.format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if err := checkResult(vk.CreateImageView(im.d.dev, info, nil, &view)); err != nil {
		return nil, err
	}
	return &imageView{d: im.d, view: view}, nil
}

// imageView implements driver.ImageView.
type imageView struct {
	d    *Driver
	view vk.ImageView
}

// Destroy destroys the image view.
func (v *imageView) Destroy() {
	if v == nil {
		return
	}
	if v.d != nil {
		vk.DestroyImageView(v.d.dev, v.view, nil)
	}
	*v = imageView{}
}
