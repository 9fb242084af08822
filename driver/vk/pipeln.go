// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"encoding/binary"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
)

const spirvMagic uint32 = 0x07230203

var errInvalidShader = errors.New("vk: invalid SPIR-V binary")

// spirvWords decodes a SPIR-V binary into words.
// The byte order is determined from the magic number.
func spirvWords(data []byte) ([]uint32, error) {
	// The header alone has five words.
	if len(data) < 20 || len(data)%4 != 0 {
		return nil, errInvalidShader
	}
	var order binary.ByteOrder
	switch spirvMagic {
	case binary.LittleEndian.Uint32(data):
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(data):
		order = binary.BigEndian
	default:
		return nil, errInvalidShader
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}

// shaderCode implements driver.ShaderCode.
type shaderCode struct {
	d   *Driver
	mod vk.ShaderModule
}

// NewShaderCode creates a shader module from a SPIR-V
// binary.
func (d *Driver) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	words, err := spirvWords(data)
	if err != nil {
		return nil, err
	}
	info := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(words) * 4),
		PCode:    words,
	}
	var mod vk.ShaderModule
	if err := checkResult(vk.CreateShaderModule(d.dev, info, nil, &mod)); err != nil {
		return nil, err
	}
	return &shaderCode{d: d, mod: mod}, nil
}

// Destroy destroys the shader module.
func (s *shaderCode) Destroy() {
	if s == nil {
		return
	}
	if s.d != nil {
		vk.DestroyShaderModule(s.d.dev, s.mod, nil)
	}
	*s = shaderCode{}
}

// pipeline implements driver.Pipeline.
type pipeline struct {
	d      *Driver
	pl     vk.Pipeline
	layout vk.PipelineLayout
}

// NewPipeline creates a new graphics pipeline.
// The pipeline takes no vertex input and has no
// descriptors.
func (d *Driver) NewPipeline(gs *driver.GraphState) (driver.Pipeline, error) {
	if gs.Extent.IsZero() {
		return nil, errors.New("vk: pipeline extent has no area")
	}
	var layout vk.PipelineLayout
	linfo := &vk.PipelineLayoutCreateInfo{SType: vk.StructureTypePipelineLayoutCreateInfo}
	if err := checkResult(vk.CreatePipelineLayout(d.dev, linfo, nil, &layout)); err != nil {
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: gs.VertFunc.Code.(*shaderCode).mod,
			PName:  cstr(gs.VertFunc.Name),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: gs.FragFunc.Code.(*shaderCode).mod,
			PName:  cstr(gs.FragFunc.Name),
		},
	}
	w, h := gs.Extent.Width, gs.Extent.Height
	viewport := vk.Viewport{
		Width:    float32(w),
		Height:   float32(h),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{Width: uint32(w), Height: uint32(h)},
	}
	blend := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	info := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: convTopology(gs.Topology),
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{viewport},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{scissor},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    convCull(gs.Raster.Cull),
			FrontFace:   convFrontFace(gs.Raster.Clockwise),
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blend},
		},
		Layout:            layout,
		RenderPass:        gs.Pass.(*renderPass).pass,
		BasePipelineIndex: -1,
	}
	pls := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(d.dev, vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pls)
	if err := checkResult(res); err != nil {
		vk.DestroyPipelineLayout(d.dev, layout, nil)
		return nil, errors.Wrap(err, "vk: pipeline creation failed")
	}
	return &pipeline{d: d, pl: pls[0], layout: layout}, nil
}

// Destroy destroys the pipeline and its layout.
func (p *pipeline) Destroy() {
	if p == nil {
		return
	}
	if p.d != nil {
		vk.DestroyPipeline(p.d.dev, p.pl, nil)
		vk.DestroyPipelineLayout(p.d.dev, p.layout, nil)
	}
	*p = pipeline{}
}
