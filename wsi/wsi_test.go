// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFrom(t *testing.T) {
	for _, x := range [...]struct {
		code glfw.Key
		want Key
	}{
		{glfw.KeyA, KeyA},
		{glfw.KeyR, KeyR},
		{glfw.KeyZ, KeyZ},
		{glfw.KeyF1, KeyF1},
		{glfw.KeyF12, KeyF12},
		{glfw.KeyEscape, KeyEsc},
		{glfw.KeyEnter, KeyReturn},
		{glfw.KeyKPEnter, KeyReturn},
		{glfw.KeyLeft, KeyLeft},
		{glfw.KeyF13, KeyUnknown},
		{glfw.Key1, KeyUnknown},
		{glfw.KeyLeftSuper, KeyUnknown},
		{glfw.KeyUnknown, KeyUnknown},
	} {
		assert.Equal(t, x.want, keyFrom(x.code), "glfw key %d", x.code)
	}
	assert.Equal(t, KeyUnknown, keyFrom(1<<20))
}

func TestModFrom(t *testing.T) {
	assert.Zero(t, modFrom(0))
	assert.Equal(t, ModShift|ModCtrl, modFrom(glfw.ModShift|glfw.ModControl))
	assert.Equal(t, ModAlt|ModMeta|ModCapsLock, modFrom(glfw.ModAlt|glfw.ModSuper|glfw.ModCapsLock))
	assert.Zero(t, modFrom(glfw.ModNumLock))
}

func TestUninitialized(t *testing.T) {
	if PlatformInUse() != None {
		t.Skip("wsi already initialized")
	}
	win, err := NewWindow(480, 360, "Will fail")
	assert.Nil(t, win)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Empty(t, Windows())
	assert.Nil(t, RequiredExtensions())
	assert.False(t, VulkanSupported())
	assert.Nil(t, VulkanProcAddr())
	// Does nothing.
	Dispatch()
}

func TestAppName(t *testing.T) {
	old := AppName()
	defer SetAppName(old)
	SetAppName("My app")
	assert.Equal(t, "My app", AppName())
}

type E struct {
	closed  int
	resized [2]int
}

func (e *E) WindowClose(Window) { e.closed++ }

func (e *E) WindowResize(_ Window, w, h int) { e.resized = [2]int{w, h} }

func TestWindow(t *testing.T) {
	if err := Init(); err != nil {
		t.Skipf("no window system: %v", err)
	}
	defer Terminate()
	assert.Equal(t, GLFW, PlatformInUse())

	var e E
	SetWindowHandler(&e)
	defer SetWindowHandler(nil)

	win, err := NewWindow(480, 360, "My window")
	require.NoError(t, err)
	assert.Len(t, Windows(), 1)
	assert.Equal(t, 480, win.Width())
	assert.Equal(t, 360, win.Height())
	assert.Equal(t, "My window", win.Title())
	assert.False(t, win.ShouldClose())

	require.NoError(t, win.Map())
	require.NoError(t, win.SetTitle("Renamed"))
	assert.Equal(t, "Renamed", win.Title())
	assert.Error(t, win.Resize(0, 10))
	require.NoError(t, win.Resize(320, 240))
	for range 10 {
		Dispatch()
	}
	fw, fh := win.FramebufferSize()
	assert.Positive(t, fw)
	assert.Positive(t, fh)

	win.Close()
	win.Close()
	assert.Empty(t, Windows())
	assert.True(t, win.ShouldClose())
	assert.ErrorIs(t, win.Map(), errClosed)
}
