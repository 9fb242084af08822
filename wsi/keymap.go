// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Key is the type of keyboard keys.
// Only keys that have a use in applications driving a
// render loop are distinguished. Every other key is
// reported as KeyUnknown.
type Key int

// Keyboard keys.
// Letters and function keys are contiguous.
const (
	KeyUnknown Key = iota
	KeyEsc
	KeyReturn
	KeyTab
	KeyBackspace
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifier is the type of modifier flags.
type Modifier int

// Modifier flags.
const (
	ModCapsLock Modifier = 1 << iota
	ModShift
	ModCtrl
	ModAlt
	ModMeta
)

var namedKeys = map[glfw.Key]Key{
	glfw.KeyEscape:    KeyEsc,
	glfw.KeyEnter:     KeyReturn,
	glfw.KeyKPEnter:   KeyReturn,
	glfw.KeyTab:       KeyTab,
	glfw.KeyBackspace: KeyBackspace,
	glfw.KeySpace:     KeySpace,
	glfw.KeyUp:        KeyUp,
	glfw.KeyDown:      KeyDown,
	glfw.KeyLeft:      KeyLeft,
	glfw.KeyRight:     KeyRight,
}

// keyFrom returns the Key value that represents a GLFW
// key code.
func keyFrom(code glfw.Key) Key {
	switch {
	case code >= glfw.KeyA && code <= glfw.KeyZ:
		return KeyA + Key(code-glfw.KeyA)
	case code >= glfw.KeyF1 && code <= glfw.KeyF12:
		return KeyF1 + Key(code-glfw.KeyF1)
	}
	return namedKeys[code]
}

// modFrom converts GLFW modifier bits into a Modifier
// mask.
func modFrom(mods glfw.ModifierKey) (m Modifier) {
	for _, x := range [...]struct {
		bit glfw.ModifierKey
		mod Modifier
	}{
		{glfw.ModCapsLock, ModCapsLock},
		{glfw.ModShift, ModShift},
		{glfw.ModControl, ModCtrl},
		{glfw.ModAlt, ModAlt},
		{glfw.ModSuper, ModMeta},
	} {
		if mods&x.bit != 0 {
			m |= x.mod
		}
	}
	return
}
