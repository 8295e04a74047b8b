package g3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/event"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/scene"
)

// Options configures the engine's graphics context.
type Options = context.Options

// DefaultOptions returns a dark gray clear color with depth testing on.
func DefaultOptions() Options {
	return context.DefaultOptions()
}

// Engine ties the context, the resource managers, the scene graph and
// the renderer together behind one handle. The host owns the window
// and the event loop; the engine renders one frame per RenderFrame
// call and reads input from its event queue.
type Engine struct {
	ctx      *context.Context
	set      *resource.Set
	root     *scene.Node
	renderer *render.Renderer
	events   *event.Queue
}

// New creates an engine on a shared GPU device and a surface. The
// provider comes from the host (for example gogpu's GPUContextProvider)
// and must also implement gpucontext.HalProvider for direct HAL
// access. A nil opts selects DefaultOptions.
func New(provider gpucontext.DeviceProvider, surface context.Surface, opts *Options) (*Engine, error) {
	ctx, err := context.New(provider, surface, opts)
	if err != nil {
		return nil, fmt.Errorf("g3d: %w", err)
	}
	return fromContext(ctx)
}

// NewWithDevice creates an engine directly on a hal device and queue.
// Tests and embedders that already hold hal handles use this instead
// of a provider.
func NewWithDevice(device hal.Device, queue hal.Queue, surface context.Surface, opts *Options) (*Engine, error) {
	ctx, err := context.NewWithDevice(device, queue, surface, opts)
	if err != nil {
		return nil, fmt.Errorf("g3d: %w", err)
	}
	return fromContext(ctx)
}

func fromContext(ctx *context.Context) (*Engine, error) {
	set, err := resource.NewSet(ctx)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("g3d: %w", err)
	}
	return &Engine{
		ctx:      ctx,
		set:      set,
		root:     scene.NewRoot(set),
		renderer: render.New(set),
		events:   event.NewQueue(),
	}, nil
}

// Root returns the scene graph root. Nodes added below it are drawn
// every frame.
func (e *Engine) Root() *scene.Node { return e.root }

// Resources returns the resource managers backing the scene.
func (e *Engine) Resources() *resource.Set { return e.set }

// Context returns the graphics context for hosts that record extra
// draws themselves.
func (e *Engine) Context() *context.Context { return e.ctx }

// Events returns the input queue. The host pushes translated platform
// events here; RenderFrame drains it into the active camera.
func (e *Engine) Events() *event.Queue { return e.events }

// SetLight replaces the scene light.
func (e *Engine) SetLight(l render.Light) { e.renderer.SetLight(l) }

// SetEffect installs a full-screen post-processing effect, or removes
// it when nil.
func (e *Engine) SetEffect(eff render.Effect) { e.renderer.SetEffect(eff) }

// DrawLine queues a debug line for the next frame.
func (e *Engine) DrawLine(a, b, color mgl32.Vec3) { e.renderer.DrawLine(a, b, color) }

// DrawPoint queues a debug point for the next frame.
func (e *Engine) DrawPoint(p, color mgl32.Vec3) { e.renderer.DrawPoint(p, color) }

// Resize reconfigures the surface and depth buffer after the host
// window changes size.
func (e *Engine) Resize(width, height uint32) error {
	return e.ctx.Resize(width, height)
}

// RenderFrame drains pending input into cam and draws one frame of
// the scene graph. Resize events are applied before the frame. A
// failed resize is reported only after the rest of the drained input
// reached the camera, so no event is lost.
func (e *Engine) RenderFrame(cam camera.Camera) error {
	var resizeErr error
	for _, ev := range e.events.Drain() {
		if ev.Kind == event.KindFramebufferSize {
			if err := e.Resize(ev.Width, ev.Height); err != nil && resizeErr == nil {
				resizeErr = err
			}
			continue
		}
		cam.HandleEvent(ev)
	}
	if resizeErr != nil {
		return resizeErr
	}
	return e.renderer.RenderFrame(e.root, cam)
}

// Close releases the scene, the managed resources and the context, in
// that order. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.root.Release()
	e.renderer.Close()
	e.set.Close()
	e.ctx.Close()
}
