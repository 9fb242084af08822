// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package gputest provides an in-memory implementation of
// driver.GPU for tests.
//
// GPU work completes lazily: a submission is considered
// done when the host waits on its fence or waits for the
// device to go idle. Every call is appended to GPU.Calls,
// and misuse of the synchronization protocol (e.g., reusing
// an image before its previous fence was observed, resetting
// a pending fence, waiting on a semaphore that nothing will
// signal) is appended to GPU.Violations instead of failing.
package gputest

import (
	"fmt"
	"time"

	"github.com/gviegas/inflight/driver"
	"github.com/gviegas/inflight/wsi"
)

// Acquire is a scripted outcome of Swapchain.Next.
type Acquire struct {
	Index int
	Err   error
}

// GPU implements driver.GPU.
// It is not safe for concurrent use.
type GPU struct {
	// AcquireScript is consumed by Swapchain.Next.
	// When empty, images are acquired in round-robin
	// order.
	AcquireScript []Acquire

	// PresentScript is consumed by Queue.Present.
	// When empty, presentation succeeds.
	PresentScript []error

	// Fail maps an object kind (e.g., "swapchain") to
	// an error returned by the next attempt to create
	// an object of that kind.
	Fail map[string]error

	// SubmitErr, if not nil, is returned by the next
	// call to Queue.Submit.
	SubmitErr error

	// Hang makes waits on pending fences time out.
	Hang bool

	// PresentFamily is the queue family used by new
	// surfaces for presentation. If it differs from
	// the graphics family (0), a separate queue is
	// created.
	PresentFamily int

	// Calls records every operation, in order.
	Calls []string

	// Violations records every protocol error.
	Violations []string

	// MaxPending is the highest number of fences that
	// were pending at the same time.
	MaxPending int

	gq        *Queue
	objs      []*Object
	ids       map[string]int
	pending   int
	imgUse    map[*Image]*submission
	fenceList []*Fence
}

// New creates a new GPU.
func New() *GPU {
	g := &GPU{
		Fail:   make(map[string]error),
		ids:    make(map[string]int),
		imgUse: make(map[*Image]*submission),
	}
	g.gq = &Queue{g: g, family: 0}
	return g
}

func (g *GPU) call(format string, args ...any) {
	g.Calls = append(g.Calls, fmt.Sprintf(format, args...))
}

func (g *GPU) violate(format string, args ...any) {
	g.Violations = append(g.Violations, fmt.Sprintf(format, args...))
}

func (g *GPU) fail(kind string) error {
	if err, ok := g.Fail[kind]; ok {
		delete(g.Fail, kind)
		return err
	}
	return nil
}

func (g *GPU) newObject(kind string) *Object {
	id := g.ids[kind]
	g.ids[kind]++
	o := &Object{g: g, Kind: kind, ID: id}
	g.objs = append(g.objs, o)
	return o
}

// Live returns the number of objects of a given kind
// that were created and not yet destroyed.
// An empty kind counts every object.
func (g *GPU) Live(kind string) int {
	n := 0
	for _, o := range g.objs {
		if !o.Dead && (kind == "" || o.Kind == kind) {
			n++
		}
	}
	return n
}

// Pending returns the number of fences whose submission
// has not completed yet.
func (g *GPU) Pending() int { return g.pending }

// Mark returns the current length of g.Calls, for use
// with Since.
func (g *GPU) Mark() int { return len(g.Calls) }

// Since returns the calls recorded after mark.
func (g *GPU) Since(mark int) []string { return g.Calls[mark:] }

// Object is the common part of every object created
// by GPU.
type Object struct {
	g    *GPU
	Kind string
	ID   int
	Dead bool
}

func (o *Object) String() string { return fmt.Sprintf("%s#%d", o.Kind, o.ID) }

// Destroy marks the object as destroyed.
func (o *Object) Destroy() {
	if o.Dead {
		o.g.violate("%s: destroyed twice", o)
		return
	}
	o.Dead = true
	o.g.call("destroy %s", o)
}

func (o *Object) checkLive(op string) {
	if o.Dead {
		o.g.violate("%s: %s after Destroy", o, op)
	}
}

// Driver implements driver.Driver.
type Driver struct{ G *GPU }

// Open returns d.G.
func (d Driver) Open(driver.Options) (driver.GPU, error) { return d.G, nil }

// Name returns "gputest".
func (Driver) Name() string { return "gputest" }

// Close does nothing.
func (Driver) Close() {}

// Driver returns a Driver wrapping g.
func (g *GPU) Driver() driver.Driver { return Driver{g} }

// DeviceName returns "gputest".
func (g *GPU) DeviceName() string { return "gputest" }

// GraphicsQueue returns the graphics queue.
func (g *GPU) GraphicsQueue() driver.Queue { return g.gq }

// NewSurface creates a new Surface.
// win is ignored and may be nil.
func (g *GPU) NewSurface(win wsi.Window) (driver.Surface, error) {
	if err := g.fail("surface"); err != nil {
		return nil, err
	}
	return g.NewTestSurface(), nil
}

// NewTestSurface creates a new Surface with default
// properties that tests can modify:
// 800x600, 2 to 8 images, BGRA8un and BGRA8sRGB formats,
// FIFO and mailbox present modes.
func (g *GPU) NewTestSurface() *Surface {
	pq := g.gq
	if g.PresentFamily != g.gq.family {
		pq = &Queue{g: g, family: g.PresentFamily}
	}
	return &Surface{
		Object: g.newObject("surface"),
		CapsValue: driver.SurfaceCaps{
			MinImages:        2,
			MaxImages:        8,
			CurrentExtent:    driver.Extent{Width: 800, Height: 600},
			MinExtent:        driver.Extent{Width: 1, Height: 1},
			MaxExtent:        driver.Extent{Width: 4096, Height: 4096},
			CurrentTransform: driver.TIdentity,
		},
		FormatList: []driver.SurfaceFormat{
			{Format: driver.BGRA8un, ColorSpace: driver.SRGBNonlinear},
			{Format: driver.BGRA8sRGB, ColorSpace: driver.SRGBNonlinear},
		},
		ModeList: []driver.PresentMode{driver.PresentFIFO, driver.PresentMailbox},
		Sz:       driver.Extent{Width: 800, Height: 600},
		pq:       pq,
	}
}

// Surface implements driver.Surface.
type Surface struct {
	*Object
	CapsValue  driver.SurfaceCaps
	FormatList []driver.SurfaceFormat
	ModeList   []driver.PresentMode
	Sz         driver.Extent
	pq         *Queue
}

// Caps returns s.CapsValue.
func (s *Surface) Caps() (driver.SurfaceCaps, error) {
	s.checkLive("Caps")
	return s.CapsValue, s.g.fail("caps")
}

// Formats returns s.FormatList.
func (s *Surface) Formats() ([]driver.SurfaceFormat, error) { return s.FormatList, nil }

// PresentModes returns s.ModeList.
func (s *Surface) PresentModes() ([]driver.PresentMode, error) { return s.ModeList, nil }

// Size returns s.Sz.
func (s *Surface) Size() driver.Extent { return s.Sz }

// PresentQueue returns the present queue.
func (s *Surface) PresentQueue() driver.Queue { return s.pq }

// Resize sets the window size. The current extent follows
// unless it is driver.UndefinedExtent.
func (s *Surface) Resize(e driver.Extent) {
	s.Sz = e
	if s.CapsValue.CurrentExtent != driver.UndefinedExtent {
		s.CapsValue.CurrentExtent = e
	}
}

// Swapchain implements driver.Swapchain.
type Swapchain struct {
	*Object
	Info    driver.SwapchainInfo
	Sharing []int
	Retired bool
	images  []driver.Image
	next    int
}

// NewSwapchain creates a new Swapchain.
func (g *GPU) NewSwapchain(sf driver.Surface, info *driver.SwapchainInfo, old driver.Swapchain) (driver.Swapchain, error) {
	if err := g.fail("swapchain"); err != nil {
		return nil, err
	}
	s := sf.(*Surface)
	s.checkLive("NewSwapchain")
	if info.Extent.IsZero() {
		g.violate("swapchain with zero extent")
	}
	if old != nil {
		o := old.(*Swapchain)
		o.checkLive("retire")
		o.Retired = true
	}
	sc := &Swapchain{Object: g.newObject("swapchain"), Info: *info}
	if s.pq.family != g.gq.family {
		sc.Sharing = []int{g.gq.family, s.pq.family}
	}
	sc.images = make([]driver.Image, info.ImageCount)
	for i := range sc.images {
		sc.images[i] = &Image{sc: sc, Index: i}
	}
	g.call("create %s %v %v %v n=%d", sc.Object, info.Extent, info.Format.Format, info.PresentMode, info.ImageCount)
	return sc, nil
}

// Images returns the swapchain images.
func (s *Swapchain) Images() []driver.Image { return s.images }

// Format returns the format in s.Info.
func (s *Swapchain) Format() driver.SurfaceFormat { return s.Info.Format }

// Extent returns the extent in s.Info.
func (s *Swapchain) Extent() driver.Extent { return s.Info.Extent }

// Next acquires the next image.
func (s *Swapchain) Next(timeout time.Duration, signal driver.Semaphore) (int, error) {
	s.checkLive("Next")
	if s.Retired {
		s.g.violate("%s: Next on retired swapchain", s.Object)
	}
	idx, err := s.next, error(nil)
	if len(s.g.AcquireScript) > 0 {
		a := s.g.AcquireScript[0]
		s.g.AcquireScript = s.g.AcquireScript[1:]
		idx, err = a.Index, a.Err
	} else {
		s.next = (s.next + 1) % len(s.images)
	}
	if err != nil && err != driver.ErrSuboptimal {
		s.g.call("acquire %v", err)
		return -1, err
	}
	if idx < 0 || idx >= len(s.images) {
		panic("gputest: scripted image index out of range")
	}
	sem := signal.(*Semaphore)
	if sem.Signaled {
		s.g.violate("%s: acquire signals %s twice", s.Object, sem.Object)
	}
	sem.Signaled = true
	s.g.call("acquire %d", idx)
	return idx, err
}

// Image implements driver.Image.
type Image struct {
	sc    *Swapchain
	Index int
}

// NewView creates a new View.
func (m *Image) NewView() (driver.ImageView, error) {
	if err := m.sc.g.fail("view"); err != nil {
		return nil, err
	}
	return &View{Object: m.sc.g.newObject("view"), Img: m}, nil
}

// View implements driver.ImageView.
type View struct {
	*Object
	Img *Image
}

// Semaphore implements driver.Semaphore.
type Semaphore struct {
	*Object
	Signaled bool
}

// NewSemaphore creates a new Semaphore.
func (g *GPU) NewSemaphore() (driver.Semaphore, error) {
	if err := g.fail("semaphore"); err != nil {
		return nil, err
	}
	return &Semaphore{Object: g.newObject("semaphore")}, nil
}

// Fence implements driver.Fence.
type Fence struct {
	*Object
	Signaled bool
	sub      *submission
}

type submission struct {
	fence    *Fence
	done     bool
	observed bool
}

// NewFence creates a new Fence.
func (g *GPU) NewFence(signaled bool) (driver.Fence, error) {
	if err := g.fail("fence"); err != nil {
		return nil, err
	}
	return &Fence{Object: g.newObject("fence"), Signaled: signaled}, nil
}

func (g *GPU) complete(s *submission) {
	if s.done {
		return
	}
	s.done = true
	s.fence.Signaled = true
	g.pending--
}

// WaitFences completes the submissions of fs.
func (g *GPU) WaitFences(fs []driver.Fence, timeout time.Duration) error {
	for _, x := range fs {
		f := x.(*Fence)
		f.checkLive("WaitFences")
		g.call("wait %s", f.Object)
		if f.sub != nil && !f.sub.done {
			if g.Hang {
				return driver.ErrTimeout
			}
			g.complete(f.sub)
		}
		if !f.Signaled {
			g.violate("%s: waiting on a fence that will never signal", f.Object)
			return driver.ErrTimeout
		}
		if f.sub != nil {
			f.sub.observed = true
		}
	}
	return nil
}

// ResetFences unsignals fs.
func (g *GPU) ResetFences(fs []driver.Fence) error {
	for _, x := range fs {
		f := x.(*Fence)
		f.checkLive("ResetFences")
		if f.sub != nil && !f.sub.done {
			g.violate("%s: reset while pending", f.Object)
		}
		f.Signaled = false
		f.sub = nil
		g.call("reset %s", f.Object)
	}
	return nil
}

// WaitIdle completes every submission.
func (g *GPU) WaitIdle() error {
	g.call("wait-idle")
	for _, s := range g.imgUse {
		g.complete(s)
		s.observed = true
	}
	for _, f := range g.fenceList {
		if f.sub != nil {
			g.complete(f.sub)
			f.sub.observed = true
		}
	}
	return g.fail("idle")
}

// Queue implements driver.Queue.
type Queue struct {
	g      *GPU
	family int
}

// Family returns the queue family.
func (q *Queue) Family() int { return q.family }

// Submit submits sub.
func (q *Queue) Submit(sub *driver.Submission) error {
	g := q.g
	if g.SubmitErr != nil {
		err := g.SubmitErr
		g.SubmitErr = nil
		g.call("submit %v", err)
		return err
	}
	if len(sub.Wait) != len(sub.WaitSync) {
		g.violate("submit: %d wait semaphores, %d scopes", len(sub.Wait), len(sub.WaitSync))
	}
	for _, x := range sub.Wait {
		s := x.(*Semaphore)
		s.checkLive("Submit")
		if !s.Signaled {
			g.violate("submit: waiting on %s, which will never signal", s.Object)
		}
		s.Signaled = false
	}
	var rec *submission
	if sub.Fence != nil {
		f := sub.Fence.(*Fence)
		f.checkLive("Submit")
		if f.Signaled {
			g.violate("submit: %s not reset", f.Object)
		}
		if f.sub != nil && !f.sub.done {
			g.violate("submit: %s already pending", f.Object)
		}
		rec = &submission{fence: f}
		f.sub = rec
		g.fenceList = appendUnique(g.fenceList, f)
		g.pending++
		g.MaxPending = max(g.MaxPending, g.pending)
	}
	imgs := ""
	for _, x := range sub.Cmd {
		cb := x.(*CmdBuffer)
		if !cb.Ended {
			g.violate("submit: command buffer not ended")
		}
		if cb.FB == nil {
			continue
		}
		for _, v := range cb.FB.Views {
			img := v.Img
			if prev := g.imgUse[img]; prev != nil && !prev.observed {
				g.violate("submit: image %d reused before %s was observed signaled", img.Index, prev.fence.Object)
			}
			if rec != nil {
				g.imgUse[img] = rec
			}
			imgs += fmt.Sprint(img.Index)
		}
		cb.Submits++
	}
	for _, x := range sub.Signal {
		s := x.(*Semaphore)
		s.checkLive("Submit")
		s.Signaled = true
	}
	if rec != nil {
		g.call("submit image=%s %s", imgs, rec.fence.Object)
	} else {
		g.call("submit image=%s", imgs)
	}
	return nil
}

// Present presents an image.
func (q *Queue) Present(sc driver.Swapchain, index int, wait []driver.Semaphore) error {
	g := q.g
	s := sc.(*Swapchain)
	s.checkLive("Present")
	if s.Retired {
		g.violate("%s: Present on retired swapchain", s.Object)
	}
	if index < 0 || index >= len(s.images) {
		g.violate("%s: Present of invalid index %d", s.Object, index)
	}
	for _, x := range wait {
		sem := x.(*Semaphore)
		if !sem.Signaled {
			g.violate("present: waiting on %s, which will never signal", sem.Object)
		}
		sem.Signaled = false
	}
	var err error
	if len(g.PresentScript) > 0 {
		err = g.PresentScript[0]
		g.PresentScript = g.PresentScript[1:]
	}
	if err != nil {
		g.call("present %d %v", index, err)
	} else {
		g.call("present %d", index)
	}
	return err
}

// CmdPool implements driver.CmdPool.
type CmdPool struct {
	*Object
	Bufs []*CmdBuffer
}

// NewCmdPool creates a new CmdPool.
func (g *GPU) NewCmdPool(q driver.Queue) (driver.CmdPool, error) {
	if err := g.fail("cmdpool"); err != nil {
		return nil, err
	}
	return &CmdPool{Object: g.newObject("cmdpool")}, nil
}

// NewCmdBuffers allocates n CmdBuffers.
func (p *CmdPool) NewCmdBuffers(n int) ([]driver.CmdBuffer, error) {
	p.checkLive("NewCmdBuffers")
	if err := p.g.fail("cmdbuffer"); err != nil {
		return nil, err
	}
	cb := make([]driver.CmdBuffer, n)
	for i := range cb {
		b := &CmdBuffer{pool: p}
		p.Bufs = append(p.Bufs, b)
		cb[i] = b
	}
	return cb, nil
}

// Free frees cb.
func (p *CmdPool) Free(cb []driver.CmdBuffer) {
	for _, x := range cb {
		b := x.(*CmdBuffer)
		b.Freed = true
	}
	p.g.call("free %d cmdbuffers", len(cb))
}

// Reset resets every command buffer of p.
func (p *CmdPool) Reset() error {
	p.checkLive("Reset")
	for _, b := range p.Bufs {
		b.reset()
	}
	p.g.call("reset %s", p.Object)
	return nil
}

// CmdBuffer implements driver.CmdBuffer.
type CmdBuffer struct {
	pool     *CmdPool
	Commands []string
	FB       *Framebuf
	Pipeline *Pipeline
	Ended    bool
	Freed    bool
	Submits  int
}

func (b *CmdBuffer) reset() {
	b.Commands = nil
	b.FB = nil
	b.Pipeline = nil
	b.Ended = false
}

func (b *CmdBuffer) record(format string, args ...any) {
	if b.Freed {
		b.pool.g.violate("command buffer used after Free")
	}
	b.Commands = append(b.Commands, fmt.Sprintf(format, args...))
}

// Begin begins recording.
func (b *CmdBuffer) Begin() error {
	b.reset()
	b.record("begin")
	return nil
}

// End ends recording.
func (b *CmdBuffer) End() error {
	b.record("end")
	b.Ended = true
	return nil
}

// BeginPass records a render pass begin.
func (b *CmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, area driver.Extent, clear []driver.ClearValue) {
	f := fb.(*Framebuf)
	f.checkLive("BeginPass")
	pass.(*RenderPass).checkLive("BeginPass")
	b.FB = f
	b.record("begin-pass %v %v", area, clear)
}

// EndPass records a render pass end.
func (b *CmdBuffer) EndPass() { b.record("end-pass") }

// SetPipeline records a pipeline bind.
func (b *CmdBuffer) SetPipeline(pl driver.Pipeline) {
	p := pl.(*Pipeline)
	p.checkLive("SetPipeline")
	b.Pipeline = p
	b.record("pipeline %s", p.Object)
}

// Draw records a draw.
func (b *CmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	b.record("draw %d %d %d %d", vertCount, instCount, baseVert, baseInst)
}

// RenderPass implements driver.RenderPass.
type RenderPass struct {
	*Object
	Att []driver.Attachment
}

// NewRenderPass creates a new RenderPass.
func (g *GPU) NewRenderPass(att []driver.Attachment) (driver.RenderPass, error) {
	if err := g.fail("renderpass"); err != nil {
		return nil, err
	}
	return &RenderPass{Object: g.newObject("renderpass"), Att: att}, nil
}

// NewFB creates a new Framebuf.
func (p *RenderPass) NewFB(iv []driver.ImageView, size driver.Extent) (driver.Framebuf, error) {
	p.checkLive("NewFB")
	if err := p.g.fail("framebuf"); err != nil {
		return nil, err
	}
	fb := &Framebuf{Object: p.g.newObject("framebuf"), Pass: p, Size: size}
	for _, v := range iv {
		x := v.(*View)
		x.checkLive("NewFB")
		fb.Views = append(fb.Views, x)
	}
	if len(p.Att) > 0 {
		fb.Format = p.Att[0].Format
	}
	return fb, nil
}

// Framebuf implements driver.Framebuf.
type Framebuf struct {
	*Object
	Pass   *RenderPass
	Views  []*View
	Size   driver.Extent
	Format driver.PixelFmt
}

// ShaderCode implements driver.ShaderCode.
type ShaderCode struct {
	*Object
	Data []byte
}

// NewShaderCode creates a new ShaderCode.
func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	if err := g.fail("shader"); err != nil {
		return nil, err
	}
	return &ShaderCode{Object: g.newObject("shader"), Data: data}, nil
}

// Pipeline implements driver.Pipeline.
type Pipeline struct {
	*Object
	State driver.GraphState
}

// NewPipeline creates a new Pipeline.
func (g *GPU) NewPipeline(gs *driver.GraphState) (driver.Pipeline, error) {
	if err := g.fail("pipeline"); err != nil {
		return nil, err
	}
	gs.Pass.(*RenderPass).checkLive("NewPipeline")
	return &Pipeline{Object: g.newObject("pipeline"), State: *gs}, nil
}

func appendUnique[T comparable](s []T, x T) []T {
	for _, y := range s {
		if y == x {
			return s
		}
	}
	return append(s, x)
}
