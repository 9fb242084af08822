// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"os"

	"github.com/pkg/errors"

	"github.com/gviegas/inflight/driver"
)

// Pipeliner is the interface that provides the render pass
// and the graphics pipeline used to draw every frame.
// The engine owns (and destroys) the values returned by
// these methods.
type Pipeliner interface {
	// NewRenderPass creates a render pass with a single
	// color attachment of format pf that is cleared on
	// load and left ready for presentation.
	NewRenderPass(pf driver.PixelFmt) (driver.RenderPass, error)

	// NewPipeline creates a graphics pipeline for pass
	// whose viewport covers extent.
	NewPipeline(pass driver.RenderPass, extent driver.Extent) (driver.Pipeline, error)
}

// ShaderPipeliner is a Pipeliner that draws non-indexed
// triangles with a vertex and a fragment shader, taking no
// vertex input.
type ShaderPipeliner struct {
	gpu  driver.GPU
	vert driver.ShaderCode
	frag driver.ShaderCode
}

// NewShaderPipeliner creates a ShaderPipeliner from SPIR-V
// binaries. Both shaders must have an entry point named
// "main".
func NewShaderPipeliner(gpu driver.GPU, vert, frag []byte) (*ShaderPipeliner, error) {
	vs, err := gpu.NewShaderCode(vert)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	fs, err := gpu.NewShaderCode(frag)
	if err != nil {
		vs.Destroy()
		return nil, errors.Wrap(err, "fragment shader")
	}
	return &ShaderPipeliner{gpu, vs, fs}, nil
}

// LoadShaderPipeliner calls NewShaderPipeliner with the
// contents of two files.
func LoadShaderPipeliner(gpu driver.GPU, vertPath, fragPath string) (*ShaderPipeliner, error) {
	vert, err := os.ReadFile(vertPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read vertex shader")
	}
	frag, err := os.ReadFile(fragPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read fragment shader")
	}
	return NewShaderPipeliner(gpu, vert, frag)
}

// NewRenderPass implements Pipeliner.
func (p *ShaderPipeliner) NewRenderPass(pf driver.PixelFmt) (driver.RenderPass, error) {
	return p.gpu.NewRenderPass([]driver.Attachment{{
		Format:  pf,
		Load:    driver.LClear,
		Store:   driver.SStore,
		Present: true,
	}})
}

// NewPipeline implements Pipeliner.
func (p *ShaderPipeliner) NewPipeline(pass driver.RenderPass, extent driver.Extent) (driver.Pipeline, error) {
	return p.gpu.NewPipeline(&driver.GraphState{
		VertFunc: driver.ShaderFunc{Code: p.vert, Name: "main"},
		FragFunc: driver.ShaderFunc{Code: p.frag, Name: "main"},
		Topology: driver.TTriangle,
		Raster: driver.RasterState{
			Clockwise: true,
			Cull:      driver.CBack,
		},
		Extent: extent,
		Pass:   pass,
	})
}

// Destroy destroys the shader binaries.
// Pipelines created from p remain valid.
func (p *ShaderPipeliner) Destroy() {
	if p.vert != nil {
		p.vert.Destroy()
		p.frag.Destroy()
		p.vert, p.frag = nil, nil
	}
}
