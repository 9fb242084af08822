// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/goki/vulkan"

	"github.com/gviegas/inflight/driver"
)

// Color spaces from VK_EXT_swapchain_colorspace.
const (
	colorSpaceDisplayP3Nonlinear vk.ColorSpace = 1000104001
	colorSpaceExtendedSRGBLinear vk.ColorSpace = 1000104002
)

// convPixelFmt converts a driver.PixelFmt to a vk.Format.
func convPixelFmt(pf driver.PixelFmt) vk.Format {
	switch pf {
	case driver.RGBA8un:
		return vk.FormatR8g8b8a8Unorm
	case driver.RGBA8sRGB:
		return vk.FormatR8g8b8a8Srgb
	case driver.BGRA8un:
		return vk.FormatB8g8r8a8Unorm
	case driver.BGRA8sRGB:
		return vk.FormatB8g8r8a8Srgb
	case driver.RGB10A2un:
		return vk.FormatA2b10g10r10UnormPack32
	case driver.RGBA16f:
		return vk.FormatR16g16b16a16Sfloat
	}
	if pf.IsInternal() {
		return vk.Format(pf &^ driver.FInternal)
	}
	return vk.FormatUndefined
}

// pixelFmtFrom converts a vk.Format to a driver.PixelFmt.
// Formats that have no corresponding constant are
// returned as internal formats.
func pixelFmtFrom(f vk.Format) driver.PixelFmt {
	switch f {
	case vk.FormatUndefined:
		return driver.FInvalid
	case vk.FormatR8g8b8a8Unorm:
		return driver.RGBA8un
	case vk.FormatR8g8b8a8Srgb:
		return driver.RGBA8sRGB
	case vk.FormatB8g8r8a8Unorm:
		return driver.BGRA8un
	case vk.FormatB8g8r8a8Srgb:
		return driver.BGRA8sRGB
	case vk.FormatA2b10g10r10UnormPack32:
		return driver.RGB10A2un
	case vk.FormatR16g16b16a16Sfloat:
		return driver.RGBA16f
	}
	return driver.FInternal | driver.PixelFmt(f)
}

// convColorSpace converts a driver.ColorSpace to a
// vk.ColorSpace.
func convColorSpace(cs driver.ColorSpace) vk.ColorSpace {
	switch cs {
	case driver.SRGBNonlinear:
		return vk.ColorSpaceSrgbNonlinear
	case driver.DisplayP3Nonlinear:
		return colorSpaceDisplayP3Nonlinear
	case driver.ExtendedSRGBLinear:
		return colorSpaceExtendedSRGBLinear
	}
	return vk.ColorSpace(cs &^ driver.CSInternal)
}

// colorSpaceFrom converts a vk.ColorSpace to a
// driver.ColorSpace.
func colorSpaceFrom(cs vk.ColorSpace) driver.ColorSpace {
	switch cs {
	case vk.ColorSpaceSrgbNonlinear:
		return driver.SRGBNonlinear
	case colorSpaceDisplayP3Nonlinear:
		return driver.DisplayP3Nonlinear
	case colorSpaceExtendedSRGBLinear:
		return driver.ExtendedSRGBLinear
	}
	return driver.CSInternal | driver.ColorSpace(cs)
}

// surfaceFormatFrom converts a vk.SurfaceFormat.
// A surface that reports an undefined format accepts any
// format, in which case BGRA8sRGB is reported.
func surfaceFormatFrom(sf vk.SurfaceFormat) driver.SurfaceFormat {
	if sf.Format == vk.FormatUndefined {
		return driver.SurfaceFormat{
			Format:     driver.BGRA8sRGB,
			ColorSpace: driver.SRGBNonlinear,
		}
	}
	return driver.SurfaceFormat{
		Format:     pixelFmtFrom(sf.Format),
		ColorSpace: colorSpaceFrom(sf.ColorSpace),
	}
}

// convPresentMode converts a driver.PresentMode to a
// vk.PresentMode.
func convPresentMode(pm driver.PresentMode) vk.PresentMode {
	switch pm {
	case driver.PresentFIFORelaxed:
		return vk.PresentModeFifoRelaxed
	case driver.PresentMailbox:
		return vk.PresentModeMailbox
	case driver.PresentImmediate:
		return vk.PresentModeImmediate
	}
	return vk.PresentModeFifo
}

// presentModeFrom converts a vk.PresentMode to a
// driver.PresentMode.
func presentModeFrom(pm vk.PresentMode) (driver.PresentMode, bool) {
	switch pm {
	case vk.PresentModeFifo:
		return driver.PresentFIFO, true
	case vk.PresentModeFifoRelaxed:
		return driver.PresentFIFORelaxed, true
	case vk.PresentModeMailbox:
		return driver.PresentMailbox, true
	case vk.PresentModeImmediate:
		return driver.PresentImmediate, true
	}
	return 0, false
}

// convAlpha converts a driver.CompositeAlpha to a
// vk.CompositeAlphaFlagBits.
func convAlpha(ca driver.CompositeAlpha) vk.CompositeAlphaFlagBits {
	switch ca {
	case driver.AlphaPremultiplied:
		return vk.CompositeAlphaPreMultipliedBit
	case driver.AlphaPostmultiplied:
		return vk.CompositeAlphaPostMultipliedBit
	case driver.AlphaInherit:
		return vk.CompositeAlphaInheritBit
	}
	return vk.CompositeAlphaOpaqueBit
}

// pickAlpha returns the conversion of ca if it is in
// supported, or the first supported mode otherwise.
func pickAlpha(ca driver.CompositeAlpha, supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	want := convAlpha(ca)
	if supported&vk.CompositeAlphaFlags(want) != 0 {
		return want
	}
	for _, a := range [...]vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if supported&vk.CompositeAlphaFlags(a) != 0 {
			return a
		}
	}
	return want
}

// convSync converts a driver.Sync to a
// vk.PipelineStageFlags.
func convSync(s driver.Sync) vk.PipelineStageFlags {
	if s == driver.SNone {
		return vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	if s&driver.SAll != 0 {
		return vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	}
	var f vk.PipelineStageFlags
	if s&driver.SVertexShading != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit)
	}
	if s&driver.SFragmentShading != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	}
	if s&driver.SColorOutput != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	return f
}

// convLoadOp converts a driver.LoadOp to a
// vk.AttachmentLoadOp.
func convLoadOp(op driver.LoadOp) vk.AttachmentLoadOp {
	switch op {
	case driver.LClear:
		return vk.AttachmentLoadOpClear
	case driver.LLoad:
		return vk.AttachmentLoadOpLoad
	}
	return vk.AttachmentLoadOpDontCare
}

// convStoreOp converts a driver.StoreOp to a
// vk.AttachmentStoreOp.
func convStoreOp(op driver.StoreOp) vk.AttachmentStoreOp {
	if op == driver.SStore {
		return vk.AttachmentStoreOpStore
	}
	return vk.AttachmentStoreOpDontCare
}

// convTopology converts a driver.Topology to a
// vk.PrimitiveTopology.
func convTopology(t driver.Topology) vk.PrimitiveTopology {
	switch t {
	case driver.TPoint:
		return vk.PrimitiveTopologyPointList
	case driver.TLine:
		return vk.PrimitiveTopologyLineList
	case driver.TTriStrip:
		return vk.PrimitiveTopologyTriangleStrip
	}
	return vk.PrimitiveTopologyTriangleList
}

// convCull converts a driver.CullMode to a
// vk.CullModeFlags.
func convCull(c driver.CullMode) vk.CullModeFlags {
	switch c {
	case driver.CFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case driver.CBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	}
	return vk.CullModeFlags(vk.CullModeNone)
}

// convFrontFace converts a winding order to a
// vk.FrontFace.
func convFrontFace(clockwise bool) vk.FrontFace {
	if clockwise {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}
