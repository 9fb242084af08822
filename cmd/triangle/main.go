// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Triangle draws a triangle in a window, keeping up to
// engine.MaxFramesInFlight frames in flight.
//
// The shaders are compiled with glslc:
//
//	go generate ./cmd/triangle
package main

//go:generate glslc shaders/triangle.vert -o shaders/triangle.vert.spv
//go:generate glslc shaders/triangle.frag -o shaders/triangle.frag.spv

import (
	"fmt"
	"os"
	"runtime"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gviegas/inflight/driver"
	_ "github.com/gviegas/inflight/driver/vk"
	"github.com/gviegas/inflight/engine"
	"github.com/gviegas/inflight/wsi"
)

func init() {
	// glfw must be used from the main thread.
	runtime.LockOSThread()
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts.apply(&cfg)
	if err = cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := cfg.newLogger()
	driver.SetLogger(log)
	if err = run(&cfg, opts.Frames, log); err != nil {
		log.WithError(err).Fatal("triangle failed")
	}
}

// app handles window events.
type app struct {
	win  wsi.Window
	eng  *engine.Engine
	quit bool
}

func (a *app) WindowClose(win wsi.Window) {
	if win == a.win {
		a.quit = true
	}
}

func (a *app) WindowResize(win wsi.Window, _, _ int) {
	if win == a.win && a.eng != nil {
		a.eng.Resize()
	}
}

func (a *app) KeyboardIn(wsi.Window)  {}
func (a *app) KeyboardOut(wsi.Window) {}

// KeyboardKey quits on Esc and rebuilds the pipeline on R.
func (a *app) KeyboardKey(key wsi.Key, pressed bool, _ wsi.Modifier) {
	if !pressed {
		return
	}
	switch key {
	case wsi.KeyEsc:
		a.quit = true
	case wsi.KeyR:
		if a.eng != nil {
			a.eng.InvalidatePipeline()
		}
	}
}

func (a *app) size() driver.Extent {
	w, h := a.win.FramebufferSize()
	return driver.Extent{Width: w, Height: h}
}

// run opens the GPU, creates the window and the engine, and
// renders until the window is closed or frames frames were
// presented.
func run(cfg *config, frames int, log *logrus.Logger) error {
	if err := wsi.Init(); err != nil {
		return errors.Wrap(err, "wsi")
	}
	defer wsi.Terminate()
	wsi.SetAppName(cfg.Driver.AppName)
	wsi.SetResizable(cfg.Window.Resizable)

	drv, gpu, err := engine.OpenGPU(cfg.Driver.Name, driver.Options{
		AppName:    cfg.Driver.AppName,
		Validation: cfg.Driver.Validation,
	})
	if err != nil {
		return err
	}
	defer drv.Close()
	log.WithFields(logrus.Fields{
		"driver": drv.Name(),
		"device": gpu.DeviceName(),
	}).Info("GPU opened")

	a := &app{}
	if a.win, err = wsi.NewWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title); err != nil {
		return errors.Wrap(err, "window")
	}
	defer a.win.Close()
	if err = a.win.Map(); err != nil {
		return errors.Wrap(err, "window")
	}

	sf, err := gpu.NewSurface(a.win)
	if err != nil {
		return errors.Wrap(err, "surface")
	}
	pp, err := engine.LoadShaderPipeliner(gpu, cfg.Shaders.Vertex, cfg.Shaders.Fragment)
	if err != nil {
		sf.Destroy()
		return err
	}
	defer pp.Destroy()
	if a.eng, err = engine.New(gpu, sf, pp, &cfg.Engine); err != nil {
		return err
	}
	wsi.SetWindowHandler(a)
	wsi.SetKeyboardHandler(a)

	err = a.loop(frames)
	if serr := a.eng.Shutdown(); err == nil {
		err = serr
	}
	st := a.eng.Stats()
	log.WithFields(logrus.Fields{
		"frames":     st.Frames,
		"skipped":    st.Skipped,
		"recreated":  st.Recreated,
		"suboptimal": st.Suboptimal,
	}).Info("done")
	return err
}

// loop renders frames until the window is closed or
// frames frames were presented. A minimized window blocks
// waiting for events.
func (a *app) loop(frames int) error {
	for !a.quit && !a.win.ShouldClose() {
		wsi.Dispatch()
		size := a.size()
		if size.IsZero() {
			wsi.Wait()
			continue
		}
		if err := a.eng.RenderFrame(size); err != nil {
			return err
		}
		if frames > 0 && a.eng.Stats().Frames >= frames {
			break
		}
	}
	return nil
}
