// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
)

// renderPass implements driver.RenderPass.
type renderPass struct {
	d    *Driver
	pass vk.RenderPass
}

// NewRenderPass creates a new render pass with a single
// subpass that writes to every attachment in att.
func (d *Driver) NewRenderPass(att []driver.Attachment) (driver.RenderPass, error) {
	if len(att) == 0 {
		return nil, errors.New("vk: render pass has no attachments")
	}
	descs := make([]vk.AttachmentDescription, len(att))
	refs := make([]vk.AttachmentReference, len(att))
	for i, a := range att {
		final := vk.ImageLayoutColorAttachmentOptimal
		if a.Present {
			final = vk.ImageLayoutPresentSrc
		}
		initial := vk.ImageLayoutUndefined
		if a.Load == driver.LLoad {
			initial = final
		}
		descs[i] = vk.AttachmentDescription{
			Format:         convPixelFmt(a.Format),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         convLoadOp(a.Load),
			StoreOp:        convStoreOp(a.Store),
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  initial,
			FinalLayout:    final,
		}
		refs[i] = vk.AttachmentReference{
			Attachment: uint32(i),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}
	}
	// Acquired images may still be read by the presentation
	// engine until the acquire semaphore is signaled, which
	// color output waits on.
	dep := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	info := &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(descs)),
		PAttachments:    descs,
		SubpassCount:    1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(refs)),
			PColorAttachments:    refs,
		}},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dep},
	}
	var pass vk.RenderPass
	if err := checkResult(vk.CreateRenderPass(d.dev, info, nil, &pass)); err != nil {
		return nil, err
	}
	return &renderPass{d: d, pass: pass}, nil
}

// NewFB creates a new framebuffer.
func (p *renderPass) NewFB(iv []driver.ImageView, size driver.Extent) (driver.Framebuf, error) {
	views := make([]vk.ImageView, len(iv))
	for i := range iv {
		views[i] = iv[i].(*imageView).view
	}
	info := &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      p.pass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           uint32(size.Width),
		Height:          uint32(size.Height),
		Layers:          1,
	}
	var fb vk.Framebuffer
	if err := checkResult(vk.CreateFramebuffer(p.d.dev, info, nil, &fb)); err != nil {
		return nil, err
	}
	return &framebuf{d: p.d, fb: fb}, nil
}

// Destroy destroys the render pass.
func (p *renderPass) Destroy() {
	if p == nil {
		return
	}
	if p.d != nil {
		vk.DestroyRenderPass(p.d.dev, p.pass, nil)
	}
	*p = renderPass{}
}

// framebuf implements driver.Framebuf.
type framebuf struct {
	d  *Driver
	fb vk.Framebuffer
}

// Destroy destroys the framebuffer.
func (f *framebuf) Destroy() {
	if f == nil {
		return
	}
	if f.d != nil {
		vk.DestroyFramebuffer(f.d.dev, f.fb, nil)
	}
	*f = framebuf{}
}
