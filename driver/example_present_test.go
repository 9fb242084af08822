// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver_test

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/gviegas/inflight/driver"
	_ "github.com/gviegas/inflight/driver/vk"
	"github.com/gviegas/inflight/wsi"
)

// NFrame is the number of frames in flight.
const NFrame = 2

// T holds the state of the example.
type T struct {
	gpu driver.GPU
	win wsi.Window
	sf  driver.Surface
	sc  driver.Swapchain

	pass  driver.RenderPass
	views []driver.ImageView
	fbs   []driver.Framebuf

	pool driver.CmdPool
	cb   []driver.CmdBuffer

	// Per-slot synchronization.
	acquired [NFrame]driver.Semaphore
	rendered [NFrame]driver.Semaphore
	fence    [NFrame]driver.Fence
	// Slot that last used a given image, or -1.
	inFlight []int

	broken bool
	quit   bool
}

// Example_present clears a window to a varying color
// using the raw frame protocol: wait on the slot's
// fence, acquire, record, submit and present.
func Example_present() {
	if err := wsi.Init(); err != nil {
		log.Fatal(err)
	}
	defer wsi.Terminate()

	drv, ok := driver.Lookup("vulkan")
	if !ok {
		log.Fatal("vulkan driver not registered")
	}
	gpu, err := drv.Open(driver.Options{AppName: "driver.example"})
	if err != nil {
		log.Fatal(err)
	}
	defer drv.Close()

	t := T{gpu: gpu}
	t.setup()
	wsi.SetWindowHandler(&t)
	wsi.SetKeyboardHandler(&t)
	t.renderLoop()
	t.destroy()
}

// setup creates the window and every object that
// outlives the swapchain.
func (t *T) setup() {
	var err error
	if t.win, err = wsi.NewWindow(480, 360, "Present Example"); err != nil {
		log.Fatal(err)
	}
	if err = t.win.Map(); err != nil {
		log.Fatal(err)
	}
	if t.sf, err = t.gpu.NewSurface(t.win); err != nil {
		log.Fatal(err)
	}
	if t.pool, err = t.gpu.NewCmdPool(t.gpu.GraphicsQueue()); err != nil {
		log.Fatal(err)
	}
	if t.cb, err = t.pool.NewCmdBuffers(NFrame); err != nil {
		log.Fatal(err)
	}
	for i := range NFrame {
		if t.acquired[i], err = t.gpu.NewSemaphore(); err != nil {
			log.Fatal(err)
		}
		if t.rendered[i], err = t.gpu.NewSemaphore(); err != nil {
			log.Fatal(err)
		}
		if t.fence[i], err = t.gpu.NewFence(true); err != nil {
			log.Fatal(err)
		}
	}
	t.swapchainSetup()
}

// swapchainSetup creates the swapchain and the objects
// that depend on it.
func (t *T) swapchainSetup() {
	caps, err := t.sf.Caps()
	if err != nil {
		log.Fatal(err)
	}
	fmts, err := t.sf.Formats()
	if err != nil {
		log.Fatal(err)
	}
	ext := caps.CurrentExtent
	if ext == driver.UndefinedExtent {
		ext = t.sf.Size()
	}
	n := caps.MinImages + 1
	if caps.MaxImages > 0 && n > caps.MaxImages {
		n = caps.MaxImages
	}
	sc, err := t.gpu.NewSwapchain(t.sf, &driver.SwapchainInfo{
		ImageCount:     n,
		Format:         fmts[0],
		Extent:         ext,
		PresentMode:    driver.PresentFIFO,
		Transform:      caps.CurrentTransform,
		CompositeAlpha: driver.AlphaOpaque,
		Clipped:        true,
	}, t.sc)
	if err != nil {
		log.Fatal(err)
	}
	if t.sc != nil {
		t.sc.Destroy()
	}
	t.sc = sc

	if t.pass == nil {
		t.pass, err = t.gpu.NewRenderPass([]driver.Attachment{{
			Format:  sc.Format().Format,
			Load:    driver.LClear,
			Store:   driver.SStore,
			Present: true,
		}})
		if err != nil {
			log.Fatal(err)
		}
	}
	imgs := sc.Images()
	t.views = make([]driver.ImageView, len(imgs))
	t.fbs = make([]driver.Framebuf, len(imgs))
	t.inFlight = make([]int, len(imgs))
	for i, img := range imgs {
		if t.views[i], err = img.NewView(); err != nil {
			log.Fatal(err)
		}
		if t.fbs[i], err = t.pass.NewFB(t.views[i:i+1], sc.Extent()); err != nil {
			log.Fatal(err)
		}
		t.inFlight[i] = -1
	}
}

// recreateSwapchain waits for the device to become idle
// and then replaces the swapchain.
func (t *T) recreateSwapchain() {
	if err := t.gpu.WaitIdle(); err != nil {
		log.Fatal(err)
	}
	for i := range t.fbs {
		t.fbs[i].Destroy()
		t.views[i].Destroy()
	}
	t.swapchainSetup()
}

// renderLoop renders until the window is closed.
func (t *T) renderLoop() {
	pq := t.sf.PresentQueue()
	gq := t.gpu.GraphicsQueue()
	t0 := time.Now()
	for frame := 0; !t.quit; {
		wsi.Dispatch()
		if t.broken {
			if t.sf.Size().IsZero() {
				wsi.Wait()
				continue
			}
			t.recreateSwapchain()
			t.broken = false
		}

		// The slot's previous submission must have completed
		// before its command buffer is reused.
		slot := frame % NFrame
		fs := []driver.Fence{t.fence[slot]}
		if err := t.gpu.WaitFences(fs, driver.NoTimeout); err != nil {
			log.Fatal(err)
		}

		next, err := t.sc.Next(driver.NoTimeout, t.acquired[slot])
		switch {
		case err == nil, errors.Is(err, driver.ErrSuboptimal):
		case errors.Is(err, driver.ErrOutOfDate):
			t.broken = true
			continue
		default:
			log.Fatal(err)
		}
		if prev := t.inFlight[next]; prev >= 0 && prev != slot {
			if err := t.gpu.WaitFences([]driver.Fence{t.fence[prev]}, driver.NoTimeout); err != nil {
				log.Fatal(err)
			}
		}
		t.inFlight[next] = slot
		if err := t.gpu.ResetFences(fs); err != nil {
			log.Fatal(err)
		}

		s := float32(time.Since(t0).Seconds())
		cv := driver.ClearValue{Color: [4]float32{
			0.5 + 0.5*float32(math.Sin(float64(s))),
			0.5 + 0.5*float32(math.Sin(float64(s)+2)),
			0.5 + 0.5*float32(math.Sin(float64(s)+4)),
			1,
		}}
		cb := t.cb[slot]
		if err := cb.Begin(); err != nil {
			log.Fatal(err)
		}
		cb.BeginPass(t.pass, t.fbs[next], t.sc.Extent(), []driver.ClearValue{cv})
		cb.EndPass()
		if err := cb.End(); err != nil {
			log.Fatal(err)
		}

		err = gq.Submit(&driver.Submission{
			Wait:     []driver.Semaphore{t.acquired[slot]},
			WaitSync: []driver.Sync{driver.SColorOutput},
			Cmd:      []driver.CmdBuffer{cb},
			Signal:   []driver.Semaphore{t.rendered[slot]},
			Fence:    t.fence[slot],
		})
		if err != nil {
			log.Fatal(err)
		}
		err = pq.Present(t.sc, next, []driver.Semaphore{t.rendered[slot]})
		frame++
		switch {
		case err == nil:
		case errors.Is(err, driver.ErrSuboptimal), errors.Is(err, driver.ErrOutOfDate):
			t.broken = true
		default:
			log.Fatal(err)
		}
	}
}

// destroy destroys everything created by the example.
func (t *T) destroy() {
	if err := t.gpu.WaitIdle(); err != nil {
		log.Print(err)
	}
	for i := range t.fbs {
		t.fbs[i].Destroy()
		t.views[i].Destroy()
	}
	t.pass.Destroy()
	t.sc.Destroy()
	for i := range NFrame {
		t.fence[i].Destroy()
		t.rendered[i].Destroy()
		t.acquired[i].Destroy()
	}
	t.pool.Destroy()
	t.sf.Destroy()
	t.win.Close()
}

func (t *T) WindowClose(win wsi.Window) {
	if win == t.win {
		t.quit = true
	}
}

func (t *T) WindowResize(wsi.Window, int, int) { t.broken = true }

func (t *T) KeyboardIn(wsi.Window)  {}
func (t *T) KeyboardOut(wsi.Window) {}

func (t *T) KeyboardKey(key wsi.Key, pressed bool, _ wsi.Modifier) {
	if key == wsi.KeyEsc {
		t.quit = t.quit || pressed
	}
}
