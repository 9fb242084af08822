// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/goki/vulkan"

	"github.com/gviegas/inflight/driver"
)

// queue implements driver.Queue.
type queue struct {
	d   *Driver
	q   vk.Queue
	fam int
}

// Family returns the queue family index.
func (q *queue) Family() int { return q.fam }

// Submit submits a batch of command buffers.
func (q *queue) Submit(sub *driver.Submission) error {
	if len(sub.Wait) != len(sub.WaitSync) {
		panic("vk: Submission.Wait and WaitSync lengths differ")
	}
	stages := make([]vk.PipelineStageFlags, len(sub.WaitSync))
	for i, s := range sub.WaitSync {
		stages[i] = convSync(s)
	}
	cbs := make([]vk.CommandBuffer, len(sub.Cmd))
	for i, cb := range sub.Cmd {
		cbs[i] = cb.(*cmdBuffer).cb
	}
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(sub.Wait)),
		PWaitSemaphores:      semaphoreHandles(sub.Wait),
		PWaitDstStageMask:    stages,
		CommandBufferCount:   uint32(len(cbs)),
		PCommandBuffers:      cbs,
		SignalSemaphoreCount: uint32(len(sub.Signal)),
		PSignalSemaphores:    semaphoreHandles(sub.Signal),
	}
	fnc := vk.NullFence
	if sub.Fence != nil {
		fnc = sub.Fence.(*fence).fnc
	}
	return checkResult(vk.QueueSubmit(q.q, 1, []vk.SubmitInfo{info}, fnc))
}

// Present queues an image for presentation.
func (q *queue) Present(sc driver.Swapchain, index int, wait []driver.Semaphore) error {
	info := &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(wait)),
		PWaitSemaphores:    semaphoreHandles(wait),
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.(*swapchain).sc},
		PImageIndices:      []uint32{uint32(index)},
	}
	return swapchainResult(vk.QueuePresent(q.q, info))
}
