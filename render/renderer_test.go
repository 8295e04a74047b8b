//go:build !nogpu

package render

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/scene"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

type offscreenSurface struct {
	device   hal.Device
	tex      hal.Texture
	view     hal.TextureView
	w, h     uint32
	presents int

	// failAcquires makes that many Acquire calls fail before the
	// surface recovers.
	failAcquires int
	configures   int
}

func (s *offscreenSurface) Acquire() (hal.TextureView, error) {
	if s.failAcquires > 0 {
		s.failAcquires--
		return nil, errors.New("swapchain outdated")
	}
	return s.view, nil
}
func (s *offscreenSurface) Present()                          { s.presents++ }
func (s *offscreenSurface) Size() (uint32, uint32)            { return s.w, s.h }
func (s *offscreenSurface) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func (s *offscreenSurface) Configure(w, h uint32) {
	s.configures++
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.device.DestroyTexture(s.tex)
	}
	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "offscreen_view"})
	if err != nil {
		panic(err)
	}
	s.tex = tex
	s.view = view
	s.w = w
	s.h = h
}

func newTestRenderer(t *testing.T) (*Renderer, *scene.Node, *offscreenSurface, func()) {
	t.Helper()
	device, queue, cleanupDev := createNoopDevice(t)
	surface := &offscreenSurface{device: device}
	surface.Configure(256, 256)
	ctx, err := context.NewWithDevice(device, queue, surface, nil)
	if err != nil {
		cleanupDev()
		t.Fatalf("NewWithDevice failed: %v", err)
	}
	set, err := resource.NewSet(ctx)
	if err != nil {
		ctx.Close()
		cleanupDev()
		t.Fatalf("NewSet failed: %v", err)
	}
	r := New(set)
	root := scene.NewRoot(set)
	cleanup := func() {
		r.Close()
		set.Close()
		ctx.Close()
		cleanupDev()
	}
	return r, root, surface, cleanup
}

func TestRenderFrameEmptyScene(t *testing.T) {
	r, root, surface, cleanup := newTestRenderer(t)
	defer cleanup()

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if surface.presents != 1 {
		t.Fatalf("presents = %d, want 1", surface.presents)
	}
}

func TestRenderFramePrimitives(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	cube, err := root.AddCube(1, 1, 1)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	cube.SetPosition(mgl32.Vec3{-1, 0, 0})
	cube.Object().SetColor(1, 0, 0, 1)

	sphere, err := root.AddSphere(0.5)
	if err != nil {
		t.Fatalf("AddSphere failed: %v", err)
	}
	sphere.SetPosition(mgl32.Vec3{1, 0, 0})

	cam := camera.NewArcBall(mgl32.Vec3{0, 2, 5}, mgl32.Vec3{})
	for i := 0; i < 3; i++ {
		cube.Rotate(mgl32.QuatRotate(0.05, mgl32.Vec3{0, 1, 0}))
		if err := r.RenderFrame(root, cam); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
}

func TestRenderFrameWireframe(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	cube, err := root.AddCube(1, 1, 1)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	cube.Object().SetWireframe(true)

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
}

func TestRenderFrameInstanced(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	cube, err := root.AddCube(0.2, 0.2, 0.2)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	var inst []scene.Instance
	for i := 0; i < 8; i++ {
		inst = append(inst, scene.Instance{
			Model: mgl32.Translate3D(float32(i), 0, 0),
			Color: mgl32.Vec4{1, 1, 1, 1},
		})
	}
	cube.Object().SetInstances(inst)

	cam := camera.NewArcBall(mgl32.Vec3{4, 4, 10}, mgl32.Vec3{4, 0, 0})
	for i := 0; i < 2; i++ {
		if err := r.RenderFrame(root, cam); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
}

func TestRenderFrameInvisibleSkipped(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	group := root.AddGroup("hidden")
	if _, err := group.AddCube(1, 1, 1); err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	group.SetVisible(false)

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
}

func TestRenderFrameDebugLines(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	r.DrawLine(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, 0})
	r.DrawLine(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})
	r.DrawPoint(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, 1})

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if !r.batch.empty() {
		t.Fatal("batch must be drained after the frame")
	}
	// Queued draws last one frame only.
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("second frame: %v", err)
	}
}

func TestRenderFramePostEffect(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	if _, err := root.AddSphere(1); err != nil {
		t.Fatalf("AddSphere failed: %v", err)
	}
	r.SetEffect(Grayscale{})

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	for i := 0; i < 2; i++ {
		if err := r.RenderFrame(root, cam); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}

	r.SetEffect(Waves{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("waves frame: %v", err)
	}

	r.SetEffect(nil)
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("plain frame: %v", err)
	}
}

func TestLightPosition(t *testing.T) {
	eye := mgl32.Vec3{1, 2, 3}

	l := LightStickToCamera()
	if got := l.Position(eye); got != eye {
		t.Errorf("stick-to-camera Position() = %v, want %v", got, eye)
	}

	fixed := mgl32.Vec3{10, 20, 30}
	l = LightAbsolute(fixed)
	if got := l.Position(eye); got != fixed {
		t.Errorf("absolute Position() = %v, want %v", got, fixed)
	}
}

func TestSetLight(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	r.SetLight(LightAbsolute(mgl32.Vec3{0, 10, 0}))
	if _, err := root.AddCube(1, 1, 1); err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
}

func TestRenderFramePoints(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	sphere, err := root.AddSphere(1)
	if err != nil {
		t.Fatalf("AddSphere failed: %v", err)
	}
	sphere.Object().SetPointsSize(2)

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
}

func TestRenderFrameWireframeZeroWidth(t *testing.T) {
	r, root, _, cleanup := newTestRenderer(t)
	defer cleanup()

	cube, err := root.AddCube(1, 1, 1)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	// Zero lines width disables the wireframe mode again.
	cube.Object().SetWireframe(true)
	cube.Object().SetLinesWidth(0)

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
}

func TestRenderFrameSurfaceRecovery(t *testing.T) {
	r, root, surface, cleanup := newTestRenderer(t)
	defer cleanup()
	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})

	// One bad acquire: the renderer reconfigures and retries within
	// the same call, so the frame still presents.
	surface.failAcquires = 1
	before := surface.configures
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if surface.configures != before+1 {
		t.Errorf("configures = %d, want %d", surface.configures, before+1)
	}
	if surface.presents != 1 {
		t.Errorf("presents = %d, want 1", surface.presents)
	}

	// A surface that stays unavailable skips the frame without error.
	surface.failAcquires = 2
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame on dead surface = %v, want nil", err)
	}
	if surface.presents != 1 {
		t.Errorf("presents = %d after skipped frame, want 1", surface.presents)
	}

	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame after recovery failed: %v", err)
	}
	if surface.presents != 2 {
		t.Errorf("presents = %d, want 2", surface.presents)
	}
}

func TestRenderFrameBrokenObjectSkipped(t *testing.T) {
	device, queue, cleanupDev := createNoopDevice(t)
	defer cleanupDev()
	surface := &offscreenSurface{device: device}
	surface.Configure(256, 256)
	ctx, err := context.NewWithDevice(device, queue, surface, nil)
	if err != nil {
		t.Fatalf("NewWithDevice failed: %v", err)
	}
	defer ctx.Close()
	set, err := resource.NewSet(ctx)
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	defer set.Close()
	r := New(set)
	defer r.Close()
	root := scene.NewRoot(set)

	if _, err := root.AddCube(1, 1, 1); err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	if _, err := root.AddMesh("doomed", resource.CubeMesh()); err != nil {
		t.Fatalf("AddMesh failed: %v", err)
	}
	// Pull the mesh out from under the node. Its draw fails, the rest
	// of the frame must still reach the surface.
	if err := set.Meshes.Release("doomed"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	cam := camera.NewArcBall(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if surface.presents != 1 {
		t.Errorf("presents = %d, want 1", surface.presents)
	}
}

func TestRenderFrameInstancedWireframe(t *testing.T) {
	r, root, surface, cleanup := newTestRenderer(t)
	defer cleanup()

	cube, err := root.AddCube(1, 1, 1)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	var inst []scene.Instance
	for i := 0; i < 4; i++ {
		inst = append(inst, scene.Instance{
			Model: mgl32.Translate3D(float32(i), 0, 0),
			Color: mgl32.Vec4{1, 1, 1, 1},
		})
	}
	cube.Object().SetInstances(inst)
	// Wireframe records a plain edge draw; the instanced shader must
	// not be activated without its instance slot.
	cube.Object().SetWireframe(true)

	cam := camera.NewArcBall(mgl32.Vec3{2, 2, 8}, mgl32.Vec3{})
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if surface.presents != 1 {
		t.Errorf("presents = %d, want 1", surface.presents)
	}

	// Back to solid rendering, the instanced path takes over again.
	cube.Object().SetWireframe(false)
	if err := r.RenderFrame(root, cam); err != nil {
		t.Fatalf("solid frame failed: %v", err)
	}
}
