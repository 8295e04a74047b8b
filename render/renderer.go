package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/internal/logx"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/scene"
)

// Renderer draws a scene graph once per RenderFrame call. A broken
// object (missing mesh, failed material) is skipped with a warning so
// one bad node never takes down the frame.
type Renderer struct {
	ctx   *context.Context
	set   *resource.Set
	light Light
	batch *lineBatch
	post  *postPass
	start time.Time
}

// New creates a renderer over the set's context. The light defaults to
// sticking to the camera.
func New(set *resource.Set) *Renderer {
	return &Renderer{
		ctx:   set.Context(),
		set:   set,
		light: LightStickToCamera(),
		batch: newLineBatch(),
		start: time.Now(),
	}
}

// Light returns the active light.
func (r *Renderer) Light() Light { return r.light }

// SetLight replaces the scene light.
func (r *Renderer) SetLight(l Light) { r.light = l }

// SetEffect installs a post-processing effect, or removes it when e is
// nil. The effect program links lazily on the next frame.
func (r *Renderer) SetEffect(e Effect) {
	if r.post != nil {
		r.post.destroy(r.ctx)
		r.post = nil
	}
	if e != nil {
		r.post = &postPass{effect: e}
	}
}

// DrawLine queues a debug line for the next frame.
func (r *Renderer) DrawLine(a, b, color mgl32.Vec3) {
	r.batch.addLine(a, b, color)
}

// DrawPoint queues a debug point for the next frame.
func (r *Renderer) DrawPoint(p, color mgl32.Vec3) {
	r.batch.addPoint(p, color)
}

// RenderFrame updates the camera, draws the scene below root and
// presents. When the surface has no image available the swapchain is
// reconfigured at its current size and acquisition retried once; a
// second failure skips the frame and returns nil, the caller just
// tries again next tick.
func (r *Renderer) RenderFrame(root *scene.Node, cam camera.Camera) error {
	cam.Update()

	err := r.ctx.BeginFrame()
	if errors.Is(err, context.ErrSurfaceUnavailable) {
		w, h := r.ctx.SurfaceSize()
		if rerr := r.ctx.Resize(w, h); rerr != nil {
			return fmt.Errorf("render: reconfigure surface: %w", rerr)
		}
		err = r.ctx.BeginFrame()
	}
	if err != nil {
		if errors.Is(err, context.ErrSurfaceUnavailable) {
			logx.Get().Warn("surface unavailable, skipping frame", "error", err)
			r.batch.reset()
			return nil
		}
		return fmt.Errorf("render: begin frame: %w", err)
	}

	// With an effect installed the scene goes to an offscreen target
	// and a second pass draws it onto the surface.
	var sceneTarget hal.TextureView
	if r.post != nil {
		if err := r.post.prepare(r.ctx); err != nil {
			logx.Get().Warn("post effect disabled for this frame", "error", err)
		} else {
			sceneTarget = r.post.target.View()
		}
	}

	if err := r.ctx.BeginRenderPass(context.PassConfig{Target: sceneTarget}); err != nil {
		r.ctx.EndFrame()
		return fmt.Errorf("render: scene pass: %w", err)
	}

	w, h := r.ctx.SurfaceSize()
	proj := cam.Projection(w, h)
	view := cam.ViewTransform()
	lightPos := r.light.Position(cam.EyePosition())

	root.Walk(func(n *scene.Node) bool {
		if n.Object() == nil {
			return true
		}
		if err := r.drawObject(n, proj, view, lightPos); err != nil {
			logx.Get().Warn("skipping object", "node", n.Name(), "error", err)
		}
		return true
	})

	r.batch.flush(r.ctx, r.set, proj, view)
	r.batch.reset()

	if err := r.ctx.EndRenderPass(); err != nil {
		r.ctx.EndFrame()
		return fmt.Errorf("render: scene pass: %w", err)
	}

	if sceneTarget != nil {
		if err := r.ctx.BeginRenderPass(context.PassConfig{}); err != nil {
			r.ctx.EndFrame()
			return fmt.Errorf("render: effect pass: %w", err)
		}
		elapsed := float32(time.Since(r.start).Seconds())
		if err := r.post.apply(r.ctx, r.set, elapsed); err != nil {
			logx.Get().Warn("post effect draw failed", "effect", r.post.effect.Name(), "error", err)
		}
		if err := r.ctx.EndRenderPass(); err != nil {
			r.ctx.EndFrame()
			return fmt.Errorf("render: effect pass: %w", err)
		}
	}

	if err := r.ctx.EndFrame(); err != nil {
		return fmt.Errorf("render: end frame: %w", err)
	}
	return nil
}

func (r *Renderer) drawObject(n *scene.Node, proj, view mgl32.Mat4, lightPos mgl32.Vec3) error {
	obj := n.Object()
	mesh := obj.Mesh()
	mat := obj.Material()
	if mesh == nil || mat == nil {
		return fmt.Errorf("render: node %q has no mesh or material", n.Name())
	}
	// Wireframe draws are never instanced; the edge pass records one
	// indexed draw without the instance buffer bound.
	wire := obj.Wireframe() && obj.LinesWidth() > 0

	// Objects on the default material switch to its instanced variant
	// when they carry instances; custom materials are used as-is. The
	// instanced shader requires the instance slot, so wireframe draws
	// stay on the plain material.
	if obj.Instanced() && !wire && obj.MaterialKey() == resource.MaterialObject {
		if m, ok := r.set.Materials.Get(resource.MaterialInstanced); ok {
			mat = m
		}
	}

	if err := mat.Activate(r.ctx); err != nil {
		return err
	}
	model := n.WorldTransform()
	if err := r.ctx.SetUniformMat4("proj", [16]float32(proj)); err != nil {
		return err
	}
	if err := r.ctx.SetUniformMat4("view", [16]float32(view)); err != nil {
		return err
	}
	if err := r.ctx.SetUniformMat4("model", [16]float32(model)); err != nil {
		return err
	}
	if err := r.ctx.SetUniformVec4("color", [4]float32(obj.Color())); err != nil {
		return err
	}
	if err := r.ctx.SetUniformVec4("lightPos", [4]float32{lightPos.X(), lightPos.Y(), lightPos.Z(), 1}); err != nil {
		return err
	}

	if tex := obj.Texture(); tex != nil {
		r.ctx.BindTexture(tex.View(), nil)
	} else {
		r.ctx.BindTexture(nil, nil)
	}
	r.ctx.SetDepthTest(true)

	if wire {
		if err := mesh.BindEdges(r.ctx); err != nil {
			return err
		}
		r.ctx.SetTopology(context.Lines)
		r.ctx.SetCullBack(false)
		return r.ctx.DrawIndexed(mesh.EdgeCount())
	}

	if err := mesh.Bind(r.ctx); err != nil {
		return err
	}
	if obj.PointsSize() > 0 {
		r.ctx.SetTopology(context.Points)
		r.ctx.SetCullBack(false)
	} else {
		r.ctx.SetTopology(context.Triangles)
		r.ctx.SetCullBack(obj.CullBack())
	}

	if obj.Instanced() {
		buf, count, err := obj.EnsureInstanceBuffer(r.ctx)
		if err != nil {
			return err
		}
		if err := r.ctx.BindVertexBuffer(context.SlotInstance, buf); err != nil {
			return err
		}
		return r.ctx.DrawIndexedInstanced(mesh.IndexCount(), count)
	}
	return r.ctx.DrawIndexed(mesh.IndexCount())
}

// Close releases renderer-owned GPU state. The context and resource
// set are owned by the caller.
func (r *Renderer) Close() {
	if r.post != nil {
		r.post.destroy(r.ctx)
		r.post = nil
	}
}
