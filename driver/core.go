// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"time"

	"github.com/gviegas/inflight/wsi"
)

// GPU is the main interface to an underlying driver
// implementation.
// It is used to create other types and to wait on
// synchronization primitives.
// A GPU is obtained from a call to Driver.Open.
type GPU interface {
	// Driver returns the Driver that owns the GPU.
	Driver() Driver

	// DeviceName returns a human-readable name for the
	// device in use.
	DeviceName() string

	// GraphicsQueue returns the queue that accepts
	// rendering commands.
	GraphicsQueue() Queue

	// NewSurface creates a presentation surface for win.
	// The surface reports which queue can present to it.
	NewSurface(win wsi.Window) (Surface, error)

	// NewSwapchain creates a new swapchain for sf.
	// If old is not nil, it is retired by the new
	// swapchain and must be destroyed by the caller
	// after this method returns. Its images must not
	// be used anymore.
	NewSwapchain(sf Surface, info *SwapchainInfo, old Swapchain) (Swapchain, error)

	// NewSemaphore creates a new binary semaphore.
	NewSemaphore() (Semaphore, error)

	// NewFence creates a new fence.
	// If signaled is true, the fence is created in the
	// signaled state.
	NewFence(signaled bool) (Fence, error)

	// WaitFences blocks until every fence in fs is
	// signaled.
	// It returns ErrTimeout if timeout elapses first.
	// A negative timeout (e.g., NoTimeout) waits
	// indefinitely.
	WaitFences(fs []Fence, timeout time.Duration) error

	// ResetFences sets every fence in fs to the
	// unsignaled state.
	// Fences must not be pending execution.
	ResetFences(fs []Fence) error

	// WaitIdle blocks until the device has completed
	// all outstanding work.
	WaitIdle() error

	// NewCmdPool creates a new command pool whose
	// command buffers can be submitted to q.
	NewCmdPool(q Queue) (CmdPool, error)

	// NewRenderPass creates a new render pass with a
	// single subpass that writes to every attachment in
	// att.
	NewRenderPass(att []Attachment) (RenderPass, error)

	// NewShaderCode creates a new shader code.
	NewShaderCode(data []byte) (ShaderCode, error)

	// NewPipeline creates a new graphics pipeline.
	NewPipeline(gs *GraphState) (Pipeline, error)
}

// NoTimeout can be used as a timeout value to wait
// indefinitely.
const NoTimeout time.Duration = -1

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may allocate external
// memory that is not managed by GC, so Destroy must be
// called explicitly to ensure such memory is deallocated.
type Destroyer interface {
	Destroy()
}

// Semaphore is the interface that defines a GPU-side
// synchronization primitive.
// Semaphores order work between queue operations
// (acquisition, submission and presentation) and are
// never waited on by the host.
type Semaphore interface {
	Destroyer
}

// Fence is the interface that defines a host-visible
// synchronization primitive.
// A fence is signaled by the GPU when the submission
// that references it completes execution.
type Fence interface {
	Destroyer
}

// Queue is the interface that defines a device queue.
// Queue operations must be externally synchronized.
type Queue interface {
	// Family returns the index of the queue family
	// to which the queue belongs.
	Family() int

	// Submit submits a batch of command buffers for
	// execution.
	Submit(sub *Submission) error

	// Present queues the image identified by index for
	// presentation after every semaphore in wait is
	// signaled.
	// It returns ErrSuboptimal if the image was queued but
	// the swapchain no longer matches the surface exactly,
	// and ErrOutOfDate if the swapchain cannot be used
	// anymore.
	Present(sc Swapchain, index int, wait []Semaphore) error
}

// Submission describes a single batch of work for
// Queue.Submit.
type Submission struct {
	// Wait contains semaphores that must be signaled
	// before execution reaches the stages of the
	// corresponding element in WaitSync.
	Wait     []Semaphore
	WaitSync []Sync

	// Cmd contains the command buffers to execute,
	// in order.
	Cmd []CmdBuffer

	// Signal contains semaphores to signal when the
	// command buffers complete execution.
	Signal []Semaphore

	// Fence, if not nil, is signaled when every
	// command buffer completes execution.
	Fence Fence
}

// Sync is the type of a synchronization scope.
type Sync int

// Synchronization scopes.
const (
	SVertexShading Sync = 1 << iota
	SFragmentShading
	SColorOutput
	SAll
	SNone Sync = 0
)

// CmdPool is the interface that defines a pool from which
// command buffers are allocated.
// Destroying the pool frees every command buffer allocated
// from it.
type CmdPool interface {
	Destroyer

	// NewCmdBuffers allocates n command buffers.
	NewCmdBuffers(n int) ([]CmdBuffer, error)

	// Free frees command buffers allocated from the pool.
	// The command buffers must not be pending execution.
	Free(cb []CmdBuffer)

	// Reset resets every command buffer allocated from
	// the pool to the initial state.
	// None of them may be pending execution.
	Reset() error
}

// CmdBuffer is the interface that defines a command buffer.
// Commands are recorded into command buffers and later
// submitted to a Queue for execution. The usage is as
// follows: call Begin to prepare the command buffer for
// recording, call BeginPass, set the pipeline, record
// draw commands, call EndPass and then End. If End
// succeeds, the command buffer can be submitted any number
// of times until it is reset.
type CmdBuffer interface {
	// Begin prepares the command buffer for recording.
	Begin() error

	// End ends command recording.
	End() error

	// BeginPass begins a render pass instance.
	// clear contains one value for each attachment of
	// pass that is cleared on load.
	BeginPass(pass RenderPass, fb Framebuf, area Extent, clear []ClearValue)

	// EndPass ends the current render pass instance.
	EndPass()

	// SetPipeline binds a graphics pipeline.
	SetPipeline(pl Pipeline)

	// Draw draws primitives.
	Draw(vertCount, instCount, baseVert, baseInst int)
}

// LoadOp is the type of an attachment's load operation.
type LoadOp int

// Load operations.
const (
	LDontCare LoadOp = iota
	LClear
	LLoad
)

// StoreOp is the type of an attachment's store operation.
type StoreOp int

// Store operations.
const (
	SDontCare StoreOp = iota
	SStore
)

// Attachment describes the configuration of a single
// color render target for use in a render pass.
// If Present is true, the render pass leaves the
// attachment ready for presentation.
type Attachment struct {
	Format  PixelFmt
	Load    LoadOp
	Store   StoreOp
	Present bool
}

// RenderPass is the interface that defines a render pass
// into which draw commands operate.
type RenderPass interface {
	Destroyer

	// NewFB creates a new framebuffer.
	// Each image view in iv corresponds to the render
	// pass' attachment of same index.
	// All framebuffers created from a given render pass
	// must be destroyed before the render pass itself
	// is destroyed.
	NewFB(iv []ImageView, size Extent) (Framebuf, error)
}

// Framebuf is the interface that defines the render targets
// of a render pass.
type Framebuf interface {
	Destroyer
}

// ClearValue defines the clear value of a color render
// target.
type ClearValue struct {
	Color [4]float32
}

// ShaderCode is the interface that defines a shader binary
// for execution in a programmable pipeline stage.
type ShaderCode interface {
	Destroyer
}

// ShaderFunc specifies a function within a shader binary.
type ShaderFunc struct {
	Code ShaderCode
	Name string
}

// Topology is the type of primitive topologies,
// which determines how vertex data is assembled.
type Topology int

// Primitive topologies.
const (
	TPoint Topology = iota
	TLine
	TTriangle
	TTriStrip
)

// CullMode is the type of cull modes.
type CullMode int

// Cull modes.
const (
	CNone CullMode = iota
	CFront
	CBack
)

// RasterState defines the rasterization state of a
// graphics pipeline.
type RasterState struct {
	Clockwise bool
	Cull      CullMode
}

// GraphState defines the combination of programmable and
// fixed stages of a graphics pipeline.
// Viewport and scissor are static and cover Extent, so a
// pipeline must be recreated when the render area changes.
type GraphState struct {
	VertFunc ShaderFunc
	FragFunc ShaderFunc
	Topology Topology
	Raster   RasterState
	Extent   Extent
	Pass     RenderPass
}

// Pipeline is the interface that defines a GPU pipeline.
type Pipeline interface {
	Destroyer
}

// Image is the interface that defines a GPU image.
// Presentable images are owned by a Swapchain and are
// never destroyed by client code.
type Image interface {
	// NewView creates a new 2D image view covering a
	// single layer and mip level of the color aspect.
	// All views created from a given image must be
	// destroyed before the image itself is destroyed.
	NewView() (ImageView, error)
}

// ImageView is the interface that defines a typed view of
// an Image resource.
type ImageView interface {
	Destroyer
}
