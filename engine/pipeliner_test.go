// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/internal/gputest"
)

func TestLoadShaderPipeliner(t *testing.T) {
	dir := t.TempDir()
	vp := filepath.Join(dir, "tri.vert.spv")
	fp := filepath.Join(dir, "tri.frag.spv")
	require.NoError(t, os.WriteFile(vp, []byte{0x03, 0x02, 0x23, 0x07}, 0o644))
	require.NoError(t, os.WriteFile(fp, []byte{0x03, 0x02, 0x23, 0x07, 1}, 0o644))

	g := gputest.New()
	pp, err := LoadShaderPipeliner(g, vp, fp)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Live("shader"))
	assert.Len(t, pp.vert.(*gputest.ShaderCode).Data, 4)
	assert.Len(t, pp.frag.(*gputest.ShaderCode).Data, 5)

	pass, err := pp.NewRenderPass(driver.RGBA16f)
	require.NoError(t, err)
	pl, err := pp.NewPipeline(pass, driver.Extent{Width: 16, Height: 9})
	require.NoError(t, err)
	gs := pl.(*gputest.Pipeline).State
	assert.Same(t, pp.vert, gs.VertFunc.Code)
	assert.Equal(t, driver.RasterState{Clockwise: true, Cull: driver.CBack}, gs.Raster)
	assert.Equal(t, driver.Extent{Width: 16, Height: 9}, gs.Extent)

	pp.Destroy()
	pp.Destroy()
	assert.Zero(t, g.Live("shader"))
	assert.Equal(t, 1, g.Live("pipeline"), "pipelines outlive the shader binaries")

	_, err = LoadShaderPipeliner(g, filepath.Join(dir, "missing.spv"), fp)
	assert.ErrorIs(t, err, os.ErrNotExist)

	g.Fail["shader"] = driver.ErrNoHostMemory
	_, err = LoadShaderPipeliner(g, vp, fp)
	assert.ErrorIs(t, err, driver.ErrNoHostMemory)
	assert.Zero(t, g.Live("shader"))
}
