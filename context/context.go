// Package context emulates a stateful, GL-style graphics API on top of
// the wgpu hal command-buffer backend.
//
// Callers bind a program, vertex buffers and uniforms through mutating
// calls, then issue draws. The context snapshots the bound state at each
// draw, resolves it to a cached render pipeline and a transient bind
// group, and records the draw into the frame's command encoder. State
// persists across draws and frames the way a GL context's does.
//
// A Context is single-threaded by contract. The mutex serializes
// resource creation against the frame loop, it does not make draw
// recording concurrent.
package context

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

// fenceTimeout bounds the per-frame GPU wait in EndFrame.
const fenceTimeout = 5 * time.Second

// Options configures a new Context.
type Options struct {
	// ClearColor fills the frame before the first draw.
	ClearColor gputypes.Color

	// DepthTest enables depth testing for new frames. Individual draws
	// can override it with SetDepthTest.
	DepthTest bool
}

// DefaultOptions returns the options used when New receives nil:
// an opaque dark gray clear color with depth testing on.
func DefaultOptions() Options {
	return Options{
		ClearColor: gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		DepthTest:  true,
	}
}

// bindState is the mutable GL-style state snapshotted at each draw.
type bindState struct {
	program     *Program
	vertex      [numSlots]*Buffer
	index       *Buffer
	indexFormat gputypes.IndexFormat
	texture     hal.TextureView
	sampler     hal.Sampler
	topology    Topology
	depthTest   bool
	cullBack    bool
	uniforms    []byte
}

// frameGarbage holds per-draw transient GPU objects. They are destroyed
// in EndFrame after the fence confirms the GPU is done with them.
type frameGarbage struct {
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
}

// Context owns the device-facing half of the engine: shader programs,
// the pipeline cache, the depth buffer and the per-frame encoder.
type Context struct {
	mu sync.Mutex

	device  hal.Device
	queue   hal.Queue
	surface Surface
	opts    Options

	state State
	bind  bindState

	// Frame-scoped objects, valid between BeginFrame and EndFrame.
	encoder     hal.CommandEncoder
	pass        hal.RenderPassEncoder
	surfaceView hal.TextureView
	garbage     frameGarbage

	programs      map[uint64]*Program
	nextProgramID uint64
	pipelines     map[pipelineKey]hal.RenderPipeline

	bindLayout     hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout

	depthTex    hal.Texture
	depthView   hal.TextureView
	depthW      uint32
	depthH      uint32
	whiteTex    hal.Texture
	whiteView   hal.TextureView
	defaultSamp hal.Sampler
}

// New creates a Context over the hal device exposed by provider,
// rendering into surface. A nil opts selects DefaultOptions.
//
// The provider must expose the underlying hal types the way gogpu
// providers do, via HalDevice() any and HalQueue() any.
func New(provider any, surface Surface, opts *Options) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("context: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("context: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("context: provider HalQueue is not hal.Queue")
	}
	return NewWithDevice(device, queue, surface, opts)
}

// NewWithDevice creates a Context directly over a hal device and queue.
// Hosts that already hold hal types, and tests running on the noop
// backend, use this instead of New.
func NewWithDevice(device hal.Device, queue hal.Queue, surface Surface, opts *Options) (*Context, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("context: device and queue must not be nil")
	}
	if surface == nil {
		return nil, fmt.Errorf("context: surface must not be nil")
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}

	c := &Context{
		device:    device,
		queue:     queue,
		surface:   surface,
		opts:      o,
		programs:  make(map[uint64]*Program),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
	c.bind.depthTest = o.DepthTest
	c.nextProgramID = 1

	var err error
	c.bindLayout, err = c.createBindGroupLayout()
	if err != nil {
		return nil, fmt.Errorf("context: create bind group layout: %w", err)
	}
	c.pipelineLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "g3d.object",
		BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		c.destroyStatic()
		return nil, fmt.Errorf("context: create pipeline layout: %w", err)
	}
	c.defaultSamp, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "g3d.default_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeRepeat,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		c.destroyStatic()
		return nil, fmt.Errorf("context: create default sampler: %w", err)
	}
	if err := c.createWhiteTexture(); err != nil {
		c.destroyStatic()
		return nil, err
	}
	w, h := surface.Size()
	if err := c.ensureDepthTexture(w, h); err != nil {
		c.destroyStatic()
		return nil, err
	}

	c.state = StateDeviceReady
	return c, nil
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Device returns the underlying hal device. Resource managers use it
// to create meshes and textures outside the frame loop.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the underlying hal queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// SurfaceSize returns the current surface dimensions in pixels.
func (c *Context) SurfaceSize() (uint32, uint32) { return c.surface.Size() }

func (c *Context) checkAlive() error {
	switch c.state {
	case StateFaulted, StateUninitialized:
		return ErrDeviceLost
	default:
		return nil
	}
}

func (c *Context) fault() {
	c.state = StateFaulted
}

// createWhiteTexture builds the 1x1 opaque white texture bound whenever
// a draw has no texture, so untextured and textured materials share one
// shader.
func (c *Context) createWhiteTexture() error {
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "g3d.white",
		Size:          hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("context: create white texture: %w", err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "g3d.white_view",
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		return fmt.Errorf("context: create white texture view: %w", err)
	}
	c.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		[]byte{0xFF, 0xFF, 0xFF, 0xFF},
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	c.whiteTex = tex
	c.whiteView = view
	return nil
}

// ensureDepthTexture recreates the depth buffer when the surface size
// changes. Callers hold c.mu or run during construction.
func (c *Context) ensureDepthTexture(w, h uint32) error {
	if c.depthTex != nil && c.depthW == w && c.depthH == h {
		return nil
	}
	if c.depthView != nil {
		c.device.DestroyTextureView(c.depthView)
		c.depthView = nil
	}
	if c.depthTex != nil {
		c.device.DestroyTexture(c.depthTex)
		c.depthTex = nil
	}
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "g3d.depth",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("context: create depth texture: %w", err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "g3d.depth_view",
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		return fmt.Errorf("context: create depth texture view: %w", err)
	}
	c.depthTex = tex
	c.depthView = view
	c.depthW = w
	c.depthH = h
	return nil
}

// Resize reconfigures the surface and depth buffer. It must be called
// between frames, never with a frame open.
func (c *Context) Resize(w, h uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	if c.state != StateDeviceReady {
		return ErrFrameAlreadyOpen
	}
	c.surface.Configure(w, h)
	return c.ensureDepthTexture(w, h)
}

// BeginFrame acquires the next surface image and opens a command
// encoder. On ErrSurfaceUnavailable the context state is unchanged and
// the caller may reconfigure and retry; any other error is fatal.
func (c *Context) BeginFrame() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	if c.state != StateDeviceReady {
		return ErrFrameAlreadyOpen
	}

	view, err := c.surface.Acquire()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}
	w, h := c.surface.Size()
	if err := c.ensureDepthTexture(w, h); err != nil {
		c.fault()
		return err
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "g3d.frame",
	})
	if err != nil {
		c.fault()
		return fmt.Errorf("context: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("g3d_frame"); err != nil {
		c.fault()
		return fmt.Errorf("context: begin encoding: %w", err)
	}

	c.encoder = encoder
	c.surfaceView = view
	c.state = StateFrameOpen
	return nil
}

// PassConfig describes one render pass within a frame.
type PassConfig struct {
	// Target selects the color attachment. Nil renders to the surface
	// image acquired by BeginFrame.
	Target hal.TextureView

	// Load preserves the existing attachment contents instead of
	// clearing. Post-processing overlay passes set it.
	Load bool

	// ClearColor overrides the context clear color for this pass.
	ClearColor *gputypes.Color
}

// BeginRenderPass opens a render pass. A frame may contain several
// passes in sequence; exactly one may be open at a time.
func (c *Context) BeginRenderPass(cfg PassConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	switch c.state {
	case StateRenderPassOpen:
		return ErrRenderPassAlreadyOpen
	case StateFrameOpen:
	default:
		return ErrFrameNotOpen
	}

	view := cfg.Target
	if view == nil {
		view = c.surfaceView
	}
	clear := c.opts.ClearColor
	if cfg.ClearColor != nil {
		clear = *cfg.ClearColor
	}
	loadOp := gputypes.LoadOpClear
	depthLoadOp := gputypes.LoadOpClear
	if cfg.Load {
		loadOp = gputypes.LoadOpLoad
		depthLoadOp = gputypes.LoadOpLoad
	}

	c.pass = c.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "g3d.pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     loadOp,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clear,
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              c.depthView,
			DepthLoadOp:       depthLoadOp,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     depthLoadOp,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	c.state = StateRenderPassOpen
	return nil
}

// EndRenderPass closes the open render pass. The frame stays open for
// further passes or EndFrame.
func (c *Context) EndRenderPass() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	if c.state != StateRenderPassOpen {
		return ErrNoActiveRenderPass
	}
	c.pass.End()
	c.pass = nil
	c.state = StateFrameOpen
	return nil
}

// EndFrame submits the recorded commands, waits for the GPU, destroys
// the frame's transient objects and presents the surface. An open
// render pass is closed implicitly.
func (c *Context) EndFrame() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	switch c.state {
	case StateRenderPassOpen:
		c.pass.End()
		c.pass = nil
	case StateFrameOpen:
	default:
		return ErrFrameNotOpen
	}

	cmdBuf, err := c.encoder.EndEncoding()
	c.encoder = nil
	c.surfaceView = nil
	if err != nil {
		c.fault()
		return fmt.Errorf("context: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		c.fault()
		return fmt.Errorf("context: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		c.fault()
		return fmt.Errorf("%w: submit: %v", ErrDeviceLost, err)
	}
	ok, err := c.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		c.fault()
		return fmt.Errorf("%w: wait for GPU: ok=%v err=%v", ErrDeviceLost, ok, err)
	}

	c.collectGarbage()
	c.surface.Present()
	c.state = StateDeviceReady
	return nil
}

func (c *Context) collectGarbage() {
	for _, bg := range c.garbage.bindGroups {
		c.device.DestroyBindGroup(bg)
	}
	for _, buf := range c.garbage.buffers {
		c.device.DestroyBuffer(buf)
	}
	c.garbage.bindGroups = c.garbage.bindGroups[:0]
	c.garbage.buffers = c.garbage.buffers[:0]
}

// UseProgram makes p the active program. Its uniform block is reset to
// zero; uniforms set afterwards persist across draws until the next
// UseProgram.
func (c *Context) UseProgram(p *Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	if p == nil {
		return ErrNoProgramBound
	}
	c.bind.program = p
	if uint32(cap(c.bind.uniforms)) < p.blockSize {
		c.bind.uniforms = make([]byte, p.blockSize)
	} else {
		c.bind.uniforms = c.bind.uniforms[:p.blockSize]
		for i := range c.bind.uniforms {
			c.bind.uniforms[i] = 0
		}
	}
	return nil
}

// BindVertexBuffer attaches buf to a vertex input slot. Slot 0 carries
// positions, 1 normals, 2 texture coordinates and 3 per-instance data.
// A nil buf unbinds the slot.
func (c *Context) BindVertexBuffer(slot int, buf *Buffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	if slot < 0 || slot >= numSlots {
		return fmt.Errorf("context: vertex slot %d out of range", slot)
	}
	if buf != nil && buf.released {
		return ErrBufferReleased
	}
	c.bind.vertex[slot] = buf
	return nil
}

// BindIndexBuffer attaches buf as the element index source.
func (c *Context) BindIndexBuffer(buf *Buffer, format gputypes.IndexFormat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	if buf != nil && buf.released {
		return ErrBufferReleased
	}
	c.bind.index = buf
	c.bind.indexFormat = format
	return nil
}

// BindTexture sets the texture and sampler for subsequent draws. Nil
// arguments select the built-in white texture and default sampler.
func (c *Context) BindTexture(view hal.TextureView, sampler hal.Sampler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind.texture = view
	c.bind.sampler = sampler
}

// SetTopology selects primitive assembly for subsequent draws.
func (c *Context) SetTopology(t Topology) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind.topology = t
}

// SetDepthTest toggles depth testing for subsequent draws.
func (c *Context) SetDepthTest(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind.depthTest = on
}

// SetCullBack toggles back-face culling for subsequent draws.
func (c *Context) SetCullBack(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind.cullBack = on
}

func (c *Context) setUniform(name string, kind UniformKind, data []byte) error {
	if err := c.checkAlive(); err != nil {
		return err
	}
	p := c.bind.program
	if p == nil {
		return ErrNoProgramBound
	}
	f, ok := p.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q in program %s", ErrUnknownUniform, name, p.label)
	}
	if f.Kind != kind {
		return fmt.Errorf("context: uniform %q of program %s has kind %d, set with kind %d",
			name, p.label, f.Kind, kind)
	}
	copy(c.bind.uniforms[f.Offset:], data)
	return nil
}

// SetUniformMat4 stores a column-major 4x4 matrix into the bound
// program's uniform block.
func (c *Context) SetUniformMat4(name string, m [16]float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf [64]byte
	putF32(buf[:], m[:])
	return c.setUniform(name, UniformMat4, buf[:])
}

// SetUniformVec4 stores a 4-vector into the bound program's uniform block.
func (c *Context) SetUniformVec4(name string, v [4]float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf [16]byte
	putF32(buf[:], v[:])
	return c.setUniform(name, UniformVec4, buf[:])
}

// SetUniformVec3 stores a 3-vector into the bound program's uniform
// block. The fourth component of the slot is left zero.
func (c *Context) SetUniformVec3(name string, v [3]float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf [12]byte
	putF32(buf[:], v[:])
	return c.setUniform(name, UniformVec3, buf[:])
}

// SetUniformFloat stores a scalar into the bound program's uniform block.
func (c *Context) SetUniformFloat(name string, v float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return c.setUniform(name, UniformFloat, buf[:])
}

func putF32(dst []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// prepareDraw validates the bound state and records pipeline, bind group
// and buffer bindings into the open pass. Callers hold c.mu.
func (c *Context) prepareDraw(needIndex bool, instanced bool) error {
	if err := c.checkAlive(); err != nil {
		return err
	}
	if c.state != StateRenderPassOpen {
		return ErrNoActiveRenderPass
	}
	prog := c.bind.program
	if prog == nil {
		return ErrNoProgramBound
	}
	if c.bind.vertex[SlotPosition] == nil {
		return ErrNoVertexBuffer
	}
	if needIndex && c.bind.index == nil {
		return ErrNoIndexBuffer
	}
	if instanced && c.bind.vertex[SlotInstance] == nil {
		return ErrNoVertexBuffer
	}

	var slots uint8
	for i, b := range c.bind.vertex {
		if b != nil {
			slots |= 1 << uint(i)
		}
	}
	if !instanced {
		slots &^= 1 << SlotInstance
	}

	pipeline, err := c.ensurePipeline(pipelineKey{
		programID: prog.id,
		topology:  c.bind.topology,
		slots:     slots,
		depthTest: c.bind.depthTest,
		cullBack:  c.bind.cullBack,
	}, prog)
	if err != nil {
		// Pipeline creation failure is scoped to this draw; the pass
		// and frame stay usable for other objects.
		return err
	}

	// Snapshot the uniform block into a transient buffer so later
	// SetUniform calls cannot retroactively change this draw.
	ubuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "g3d.draw_uniforms",
		Size:  uint64(prog.blockSize),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("context: create draw uniform buffer: %w", err)
	}
	c.garbage.buffers = append(c.garbage.buffers, ubuf)
	c.queue.WriteBuffer(ubuf, 0, c.bind.uniforms)

	texView := c.bind.texture
	if texView == nil {
		texView = c.whiteView
	}
	sampler := c.bind.sampler
	if sampler == nil {
		sampler = c.defaultSamp
	}

	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "g3d.draw_bind",
		Layout: c.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: 0,
				Resource: gputypes.BufferBinding{
					Buffer: ubuf.NativeHandle(),
					Offset: 0,
					Size:   0, // whole buffer
				},
			},
			{
				Binding: 1,
				Resource: gputypes.TextureViewBinding{
					TextureView: texView.NativeHandle(),
				},
			},
			{
				Binding: 2,
				Resource: gputypes.SamplerBinding{
					Sampler: sampler.NativeHandle(),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("context: create draw bind group: %w", err)
	}
	c.garbage.bindGroups = append(c.garbage.bindGroups, bg)

	c.pass.SetPipeline(pipeline)
	c.pass.SetBindGroup(0, bg, nil)
	binding := 0
	for i, b := range c.bind.vertex {
		if slots&(1<<uint(i)) == 0 {
			continue
		}
		c.pass.SetVertexBuffer(uint32(binding), b.raw, 0)
		binding++
	}
	if needIndex {
		c.pass.SetIndexBuffer(c.bind.index.raw, c.bind.indexFormat, 0)
	}
	return nil
}

// Draw records a non-indexed draw of count vertices starting at first.
func (c *Context) Draw(first, count uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepareDraw(false, false); err != nil {
		return err
	}
	c.pass.Draw(count, 1, first, 0)
	return nil
}

// DrawIndexed records an indexed draw of count elements.
func (c *Context) DrawIndexed(count uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepareDraw(true, false); err != nil {
		return err
	}
	c.pass.DrawIndexed(count, 1, 0, 0, 0)
	return nil
}

// DrawIndexedInstanced records an indexed draw replicated across the
// bound instance buffer.
func (c *Context) DrawIndexedInstanced(count, instances uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepareDraw(true, true); err != nil {
		return err
	}
	c.pass.DrawIndexed(count, instances, 0, 0, 0)
	return nil
}

func (c *Context) destroyStatic() {
	if c.depthView != nil {
		c.device.DestroyTextureView(c.depthView)
		c.depthView = nil
	}
	if c.depthTex != nil {
		c.device.DestroyTexture(c.depthTex)
		c.depthTex = nil
	}
	if c.whiteView != nil {
		c.device.DestroyTextureView(c.whiteView)
		c.whiteView = nil
	}
	if c.whiteTex != nil {
		c.device.DestroyTexture(c.whiteTex)
		c.whiteTex = nil
	}
	if c.defaultSamp != nil {
		c.device.DestroySampler(c.defaultSamp)
		c.defaultSamp = nil
	}
	if c.pipelineLayout != nil {
		c.device.DestroyPipelineLayout(c.pipelineLayout)
		c.pipelineLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
}

// Reset recovers a faulted context. Any half-recorded frame is
// discarded along with its transient objects; programs, pipelines and
// static resources survive. On a context that is not faulted it does
// nothing.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateFaulted {
		return
	}
	if c.encoder != nil {
		c.encoder.DiscardEncoding()
		c.encoder = nil
		c.pass = nil
	}
	c.surfaceView = nil
	c.collectGarbage()
	c.bind = bindState{depthTest: c.opts.DepthTest}
	c.state = StateDeviceReady
}

// Close releases every GPU object the context owns. A frame left open
// is discarded, not submitted.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUninitialized {
		return
	}
	if c.encoder != nil {
		c.encoder.DiscardEncoding()
		c.encoder = nil
		c.pass = nil
	}
	c.collectGarbage()
	for key, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
		delete(c.pipelines, key)
	}
	for key, p := range c.programs {
		c.device.DestroyShaderModule(p.vertex)
		c.device.DestroyShaderModule(p.fragment)
		delete(c.programs, key)
	}
	c.destroyStatic()
	c.state = StateUninitialized
}
