// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"time"

	vk "github.com/goki/vulkan"

	"github.com/gviegas/inflight/driver"
)

// semaphore implements driver.Semaphore.
type semaphore struct {
	d   *Driver
	sem vk.Semaphore
}

// NewSemaphore creates a new binary semaphore.
func (d *Driver) NewSemaphore() (driver.Semaphore, error) {
	info := &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var sem vk.Semaphore
	if err := checkResult(vk.CreateSemaphore(d.dev, info, nil, &sem)); err != nil {
		return nil, err
	}
	return &semaphore{d: d, sem: sem}, nil
}

// Destroy destroys the semaphore.
func (s *semaphore) Destroy() {
	if s == nil {
		return
	}
	if s.d != nil {
		vk.DestroySemaphore(s.d.dev, s.sem, nil)
	}
	*s = semaphore{}
}

// fence implements driver.Fence.
type fence struct {
	d   *Driver
	fnc vk.Fence
}

// NewFence creates a new fence.
func (d *Driver) NewFence(signaled bool) (driver.Fence, error) {
	info := &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fnc vk.Fence
	if err := checkResult(vk.CreateFence(d.dev, info, nil, &fnc)); err != nil {
		return nil, err
	}
	return &fence{d: d, fnc: fnc}, nil
}

// Destroy destroys the fence.
func (f *fence) Destroy() {
	if f == nil {
		return
	}
	if f.d != nil {
		vk.DestroyFence(f.d.dev, f.fnc, nil)
	}
	*f = fence{}
}

func fenceHandles(fs []driver.Fence) []vk.Fence {
	h := make([]vk.Fence, len(fs))
	for i, f := range fs {
		h[i] = f.(*fence).fnc
	}
	return h
}

func semaphoreHandles(ss []driver.Semaphore) []vk.Semaphore {
	if len(ss) == 0 {
		return nil
	}
	h := make([]vk.Semaphore, len(ss))
	for i, s := range ss {
		h[i] = s.(*semaphore).sem
	}
	return h
}

// WaitFences waits for every fence in fs.
func (d *Driver) WaitFences(fs []driver.Fence, timeout time.Duration) error {
	if len(fs) == 0 {
		return nil
	}
	h := fenceHandles(fs)
	switch res := vk.WaitForFences(d.dev, uint32(len(h)), h, vk.True, timeoutNS(timeout)); res {
	case vk.Success:
		return nil
	case vk.Timeout:
		return driver.ErrTimeout
	default:
		return checkResult(res)
	}
}

// ResetFences resets every fence in fs.
func (d *Driver) ResetFences(fs []driver.Fence) error {
	if len(fs) == 0 {
		return nil
	}
	h := fenceHandles(fs)
	return checkResult(vk.ResetFences(d.dev, uint32(len(h)), h))
}
