// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "fmt"

// PixelFmt describes the format of a pixel.
type PixelFmt int

// Internal format bit.
// Formats that a driver exposes but that have no
// corresponding constant have this bit set. They can be
// used for presentation and in render passes, but their
// layout is opaque to client code.
const FInternal PixelFmt = 1 << 30

// IsInternal returns whether f is an internal format.
func (f PixelFmt) IsInternal() bool { return f&FInternal == FInternal }

// Pixel formats.
const (
	FInvalid PixelFmt = iota
	RGBA8un
	RGBA8sRGB
	BGRA8un
	BGRA8sRGB
	RGB10A2un
	RGBA16f
)

func (f PixelFmt) String() string {
	switch f {
	case FInvalid:
		return "invalid"
	case RGBA8un:
		return "RGBA8un"
	case RGBA8sRGB:
		return "RGBA8sRGB"
	case BGRA8un:
		return "BGRA8un"
	case BGRA8sRGB:
		return "BGRA8sRGB"
	case RGB10A2un:
		return "RGB10A2un"
	case RGBA16f:
		return "RGBA16f"
	}
	if f.IsInternal() {
		return fmt.Sprintf("internal(%d)", int(f&^FInternal))
	}
	return fmt.Sprintf("PixelFmt(%d)", int(f))
}
