// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/goki/vulkan"

	"github.com/gviegas/inflight/driver"
)

// cmdPool implements driver.CmdPool.
type cmdPool struct {
	d    *Driver
	pool vk.CommandPool
}

// NewCmdPool creates a new command pool for q's family.
func (d *Driver) NewCmdPool(q driver.Queue) (driver.CmdPool, error) {
	info := &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(q.Family()),
	}
	var pool vk.CommandPool
	if err := checkResult(vk.CreateCommandPool(d.dev, info, nil, &pool)); err != nil {
		return nil, err
	}
	return &cmdPool{d: d, pool: pool}, nil
}

// NewCmdBuffers allocates n primary command buffers.
func (p *cmdPool) NewCmdBuffers(n int) ([]driver.CmdBuffer, error) {
	info := &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(n),
	}
	h := make([]vk.CommandBuffer, n)
	if err := checkResult(vk.AllocateCommandBuffers(p.d.dev, info, h)); err != nil {
		return nil, err
	}
	cbs := make([]driver.CmdBuffer, n)
	for i := range cbs {
		cbs[i] = &cmdBuffer{cb: h[i]}
	}
	return cbs, nil
}

// Free frees command buffers.
func (p *cmdPool) Free(cb []driver.CmdBuffer) {
	if len(cb) == 0 {
		return
	}
	h := make([]vk.CommandBuffer, len(cb))
	for i := range cb {
		h[i] = cb[i].(*cmdBuffer).cb
	}
	vk.FreeCommandBuffers(p.d.dev, p.pool, uint32(len(h)), h)
}

// Reset resets every command buffer of the pool.
func (p *cmdPool) Reset() error {
	return checkResult(vk.ResetCommandPool(p.d.dev, p.pool, 0))
}

// Destroy destroys the pool.
func (p *cmdPool) Destroy() {
	if p == nil {
		return
	}
	if p.d != nil {
		vk.DestroyCommandPool(p.d.dev, p.pool, nil)
	}
	*p = cmdPool{}
}

// cmdBuffer implements driver.CmdBuffer.
type cmdBuffer struct {
	cb vk.CommandBuffer
}

// Begin prepares the command buffer for recording.
// The command buffer can be submitted multiple times.
func (cb *cmdBuffer) Begin() error {
	info := &vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
	return checkResult(vk.BeginCommandBuffer(cb.cb, info))
}

// End ends command recording.
func (cb *cmdBuffer) End() error { return checkResult(vk.EndCommandBuffer(cb.cb)) }

// BeginPass begins a render pass instance.
func (cb *cmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, area driver.Extent, clear []driver.ClearValue) {
	cv := make([]vk.ClearValue, len(clear))
	for i := range clear {
		cv[i] = vk.NewClearValue(clear[i].Color[:])
	}
	info := &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass.(*renderPass).pass,
		Framebuffer: fb.(*framebuf).fb,
		RenderArea: vk.Rect2D{
			Extent: vk.Extent2D{
				Width:  uint32(area.Width),
				Height: uint32(area.Height),
			},
		},
		ClearValueCount: uint32(len(cv)),
		PClearValues:    cv,
	}
	vk.CmdBeginRenderPass(cb.cb, info, vk.SubpassContentsInline)
}

// EndPass ends the current render pass instance.
func (cb *cmdBuffer) EndPass() { vk.CmdEndRenderPass(cb.cb) }

// SetPipeline binds a graphics pipeline.
func (cb *cmdBuffer) SetPipeline(pl driver.Pipeline) {
	vk.CmdBindPipeline(cb.cb, vk.PipelineBindPointGraphics, pl.(*pipeline).pl)
}

// Draw draws primitives.
func (cb *cmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	vk.CmdDraw(cb.cb, uint32(vertCount), uint32(instCount), uint32(baseVert), uint32(baseInst))
}
