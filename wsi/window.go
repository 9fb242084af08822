// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// window implements Window.
type window struct {
	win    *glfw.Window
	width  int
	height int
	title  string
}

// newWindow creates a new window.
func newWindow(width, height int, title string) (Window, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	if fixedSize {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	}
	gw, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "wsi: window creation failed")
	}
	w := &window{
		win:    gw,
		width:  width,
		height: height,
		title:  title,
	}
	gw.SetCloseCallback(w.onClose)
	gw.SetSizeCallback(w.onSize)
	gw.SetFramebufferSizeCallback(w.onFramebufferSize)
	gw.SetFocusCallback(w.onFocus)
	gw.SetKeyCallback(w.onKey)
	return w, nil
}

// Map makes the window visible.
func (w *window) Map() error {
	if w.win == nil {
		return errClosed
	}
	w.win.Show()
	return nil
}

// Unmap hides the window.
func (w *window) Unmap() error {
	if w.win == nil {
		return errClosed
	}
	w.win.Hide()
	return nil
}

// Resize resizes the window.
func (w *window) Resize(width, height int) error {
	if w.win == nil {
		return errClosed
	}
	if width < 1 || height < 1 {
		return errors.Errorf("wsi: invalid window size %dx%d", width, height)
	}
	w.win.SetSize(width, height)
	return nil
}

// SetTitle sets the window's title.
func (w *window) SetTitle(title string) error {
	if w.win == nil {
		return errClosed
	}
	w.win.SetTitle(title)
	w.title = title
	return nil
}

// Close closes the window.
func (w *window) Close() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	closeWindow(w)
}

// Width returns the window's width.
func (w *window) Width() int { return w.width }

// Height returns the window's height.
func (w *window) Height() int { return w.height }

// Title returns the window's title.
func (w *window) Title() string { return w.title }

// FramebufferSize returns the size of the drawable area.
func (w *window) FramebufferSize() (width, height int) {
	if w.win == nil {
		return 0, 0
	}
	return w.win.GetFramebufferSize()
}

// ShouldClose reports whether closing was requested.
func (w *window) ShouldClose() bool { return w.win == nil || w.win.ShouldClose() }

// CreateSurface creates a Vulkan surface.
func (w *window) CreateSurface(instance any) (uintptr, error) {
	if w.win == nil {
		return 0, errClosed
	}
	sf, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "wsi: surface creation failed")
	}
	return sf, nil
}

func (w *window) onClose(*glfw.Window) {
	if windowHandler != nil {
		windowHandler.WindowClose(w)
	}
}

func (w *window) onSize(_ *glfw.Window, width, height int) {
	w.width = width
	w.height = height
}

func (w *window) onFramebufferSize(_ *glfw.Window, width, height int) {
	if windowHandler != nil {
		windowHandler.WindowResize(w, width, height)
	}
}

func (w *window) onFocus(_ *glfw.Window, focused bool) {
	if keyboardHandler == nil {
		return
	}
	if focused {
		keyboardHandler.KeyboardIn(w)
	} else {
		keyboardHandler.KeyboardOut(w)
	}
}

func (w *window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if keyboardHandler == nil || action == glfw.Repeat {
		return
	}
	keyboardHandler.KeyboardKey(keyFrom(key), action == glfw.Press, modFrom(mods))
}

var errClosed = errors.New("wsi: window is closed")
