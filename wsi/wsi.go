// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package wsi provides window system integration (WSI)
// for GPU drivers, implemented on top of GLFW.
//
// GLFW requires that most calls be made from the main
// thread. Programs using this package should lock the
// main goroutine to its thread (runtime.LockOSThread)
// and call Init, NewWindow, Dispatch and Terminate from
// there.
package wsi

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// Window is the interface that defines a drawable window.
// The purpose of a window is to provide a surface into
// which a GPU can draw.
type Window interface {
	// Map makes the window visible.
	Map() error

	// Unmap hides the window.
	Unmap() error

	// Resize resizes the window.
	Resize(width, height int) error

	// SetTitle sets the window's title.
	SetTitle(title string) error

	// Close closes the window.
	Close()

	// Width returns the window's width.
	Width() int

	// Height returns the window's height.
	Height() int

	// Title returns the window's title.
	Title() string

	// FramebufferSize returns the size of the window's
	// drawable area in physical pixels. It may differ
	// from the window size on high-density displays,
	// and is zero when the window is minimized.
	FramebufferSize() (width, height int)

	// ShouldClose reports whether the user requested
	// the window to be closed.
	ShouldClose() bool

	// CreateSurface creates a Vulkan surface for the
	// window. instance must be a VkInstance handle.
	// It returns the VkSurfaceKHR handle.
	CreateSurface(instance any) (uintptr, error)
}

// ErrNotInitialized means that Init was not called or
// did not succeed.
var ErrNotInitialized = errors.New("wsi: not initialized")

// Init initializes the window system.
// It must be called before any other function of this
// package, from the main thread.
func Init() error {
	if platform != None {
		return nil
	}
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "wsi: GLFW initialization failed")
	}
	platform = GLFW
	return nil
}

// Terminate closes every window and releases the window
// system.
func Terminate() {
	if platform == None {
		return
	}
	for _, win := range Windows() {
		win.Close()
	}
	glfw.Terminate()
	platform = None
}

// VulkanSupported reports whether a Vulkan loader and an
// installable client driver were found.
func VulkanSupported() bool { return platform != None && glfw.VulkanSupported() }

// RequiredExtensions returns the names of the Vulkan
// instance extensions needed to create surfaces for
// windows. It returns nil if presentation is not
// possible.
func RequiredExtensions() []string {
	if platform == None {
		return nil
	}
	// The receiver is not used.
	var w *glfw.Window
	return w.GetRequiredInstanceExtensions()
}

// VulkanProcAddr returns the address of the loader's
// vkGetInstanceProcAddr, or nil if Init was not called.
func VulkanProcAddr() unsafe.Pointer {
	if platform == None {
		return nil
	}
	return glfw.GetVulkanGetInstanceProcAddress()
}

// NewWindow creates a new window.
// The window is not visible until Map is called.
func NewWindow(width, height int, title string) (Window, error) {
	if platform == None {
		return nil, ErrNotInitialized
	}
	if windowCount >= MaxWindows {
		return nil, errors.New("wsi: too many windows")
	}
	win, err := newWindow(width, height, title)
	if err != nil {
		return nil, err
	}
	for i := range createdWindows {
		if createdWindows[i] == nil {
			createdWindows[i] = win
			windowCount++
			break
		}
	}
	return win, nil
}

// SetResizable sets whether windows created afterwards can
// be resized by the user. The default is true.
func SetResizable(resizable bool) { fixedSize = !resizable }

var fixedSize bool

// The maximum number of windows that can exist at any
// given time.
const MaxWindows = 16

// Windows returns all created windows.
// The returned value becomes out of date after calls to
// NewWindow and Window.Close.
func Windows() []Window {
	if windowCount == 0 {
		return nil
	}
	wins := make([]Window, 0, windowCount)
	for i := range createdWindows {
		if createdWindows[i] != nil {
			wins = append(wins, createdWindows[i])
		}
	}
	return wins
}

// closeWindow removes win from createdWindows and
// decrements windowCount.
func closeWindow(win Window) {
	for i := range createdWindows {
		if createdWindows[i] == win {
			createdWindows[i] = nil
			windowCount--
			return
		}
	}
}

var (
	windowCount    int
	createdWindows [MaxWindows]Window
)

// WindowHandler is the interface that defines the methods
// for handling window events.
type WindowHandler interface {
	// WindowClose is called when the user requests a
	// window to be closed.
	WindowClose(win Window)

	// WindowResize is called when the drawable area of a
	// window is resized. The new size is in physical
	// pixels.
	WindowResize(win Window, newWidth, newHeight int)
}

// SetWindowHandler sets the global WindowHandler.
func SetWindowHandler(wh WindowHandler) {
	windowHandler = wh
}

var windowHandler WindowHandler

// KeyboardHandler is the interface that defines the methods
// for handling keyboard events.
type KeyboardHandler interface {
	// KeyboardIn is called when focus is gained.
	KeyboardIn(win Window)

	// KeyboardOut is called when focus is lost.
	KeyboardOut(win Window)

	// KeyboardKey is called when a key is pressed/released.
	KeyboardKey(key Key, pressed bool, modMask Modifier)
}

// SetKeyboardHandler sets the global KeyboardHandler.
func SetKeyboardHandler(kh KeyboardHandler) {
	keyboardHandler = kh
}

var keyboardHandler KeyboardHandler

// Dispatch dispatches queued events without blocking.
func Dispatch() {
	if platform != None {
		glfw.PollEvents()
	}
}

// Wait blocks until at least one event is queued and then
// dispatches queued events.
func Wait() {
	if platform != None {
		glfw.WaitEvents()
	}
}

// AppName returns the string used to identify the application.
func AppName() string {
	return appName
}

// SetAppName updates the string used to identify the
// application. Drivers use it when creating instances.
func SetAppName(s string) {
	appName = s
}

var appName string

// Platform identifies an underlying platform used to
// implement wsi.
type Platform int

// Platforms.
const (
	// None means that wsi is not available (or that
	// Init was not called). In this case, calls to
	// NewWindow will always fail, and calls to Dispatch
	// will do nothing.
	None Platform = iota
	GLFW
)

// PlatformInUse identifies the underlying platform which
// wsi is using.
func PlatformInUse() Platform {
	return platform
}

var platform Platform
