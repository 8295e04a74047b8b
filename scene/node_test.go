//go:build !nogpu

package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/resource"
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
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
	w, h   uint32
}

func (s *offscreenSurface) Acquire() (hal.TextureView, error) { return s.view, nil }
func (s *offscreenSurface) Present()                          {}
func (s *offscreenSurface) Size() (uint32, uint32)            { return s.w, s.h }
func (s *offscreenSurface) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func (s *offscreenSurface) Configure(w, h uint32) {
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

func newTestScene(t *testing.T) (*Node, *resource.Set, func()) {
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
	root := NewRoot(set)
	cleanup := func() {
		set.Close()
		ctx.Close()
		surface.device.DestroyTextureView(surface.view)
		surface.device.DestroyTexture(surface.tex)
		cleanupDev()
	}
	return root, set, cleanup
}

func vec3Near(a, b mgl32.Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}

func worldTranslation(n *Node) mgl32.Vec3 {
	m := n.WorldTransform()
	return mgl32.Vec3{m[12], m[13], m[14]}
}

func TestWorldTransformComposition(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	parent := root.AddGroup("parent")
	parent.SetPosition(mgl32.Vec3{5, 0, 0})
	child := parent.AddGroup("child")
	child.SetPosition(mgl32.Vec3{1, 0, 0})

	if got := worldTranslation(child); !vec3Near(got, mgl32.Vec3{6, 0, 0}, 1e-5) {
		t.Fatalf("child world translation = %v, want (6, 0, 0)", got)
	}

	// Moving the parent flows down without touching the child.
	parent.Translate(mgl32.Vec3{0, 1, 0})
	if got := worldTranslation(child); !vec3Near(got, mgl32.Vec3{6, 1, 0}, 1e-5) {
		t.Fatalf("child world translation = %v, want (6, 1, 0)", got)
	}
}

func TestWorldTransformLazy(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	a := root.AddGroup("a")
	b := a.AddGroup("b")
	b.SetPosition(mgl32.Vec3{1, 2, 3})

	_ = b.WorldTransform()
	stamp := b.worldStamp

	// Untouched subtree: repeated queries reuse the cache.
	_ = b.WorldTransform()
	_ = b.WorldTransform()
	if b.worldStamp != stamp {
		t.Error("world transform recomputed without a mutation")
	}

	a.SetPosition(mgl32.Vec3{10, 0, 0})
	_ = b.WorldTransform()
	if b.worldStamp == stamp {
		t.Error("parent mutation must invalidate the child cache")
	}
}

func TestWorldTransformScaleRotation(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	n := root.AddGroup("n")
	n.SetScale(mgl32.Vec3{2, 2, 2})
	n.SetRotation(mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0}))
	n.SetPosition(mgl32.Vec3{0, 0, 1})

	// T * R * S applied to (1, 0, 0): scale to (2,0,0), rotate 90deg
	// about y to (0,0,-2), translate to (0,0,-1).
	p := n.WorldTransform().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if !vec3Near(p.Vec3(), mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Fatalf("transformed point = %v, want (0, 0, -1)", p.Vec3())
	}
}

func TestAddChildCycleRejected(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	a := root.AddGroup("a")
	b := a.AddGroup("b")
	c := b.AddGroup("c")

	if err := c.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Fatalf("AddChild = %v, want ErrCycle", err)
	}
	// The graph is unchanged.
	if a.Parent() != root {
		t.Error("a must still hang off the root")
	}
	if len(c.Children()) != 0 {
		t.Error("c must have no children after the rejected attach")
	}
	if err := a.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Fatalf("self attach = %v, want ErrCycle", err)
	}
}

func TestAddChildReparent(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	a := root.AddGroup("a")
	b := root.AddGroup("b")
	n := a.AddGroup("n")
	a.SetPosition(mgl32.Vec3{5, 0, 0})
	b.SetPosition(mgl32.Vec3{0, 7, 0})

	if err := b.AddChild(n); err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
	if n.Parent() != b {
		t.Error("n must hang off b")
	}
	if len(a.Children()) != 0 {
		t.Error("a must have lost n")
	}
	if got := worldTranslation(n); !vec3Near(got, mgl32.Vec3{0, 7, 0}, 1e-5) {
		t.Fatalf("n world translation = %v, want (0, 7, 0)", got)
	}
}

func TestSharedMeshRefCount(t *testing.T) {
	root, set, cleanup := newTestScene(t)
	defer cleanup()

	base := set.Meshes.RefCount(resource.MeshCube)

	c1, err := root.AddCube(1, 1, 1)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	c2, err := root.AddCube(2, 1, 1)
	if err != nil {
		t.Fatalf("second AddCube failed: %v", err)
	}
	if c1.Object().Mesh() != c2.Object().Mesh() {
		t.Error("both cubes must share one mesh")
	}
	if got := set.Meshes.RefCount(resource.MeshCube); got != base+2 {
		t.Errorf("RefCount = %d, want %d", got, base+2)
	}

	c1.Release()
	if got := set.Meshes.RefCount(resource.MeshCube); got != base+1 {
		t.Errorf("RefCount after release = %d, want %d", got, base+1)
	}
	c2.Release()
	if got := set.Meshes.RefCount(resource.MeshCube); got != base {
		t.Errorf("RefCount after both releases = %d, want %d", got, base)
	}
}

func TestReleaseSubtree(t *testing.T) {
	root, set, cleanup := newTestScene(t)
	defer cleanup()

	base := set.Meshes.RefCount(resource.MeshSphere)

	group := root.AddGroup("group")
	if _, err := group.AddSphere(0.5); err != nil {
		t.Fatalf("AddSphere failed: %v", err)
	}
	if _, err := group.AddSphere(1.0); err != nil {
		t.Fatalf("AddSphere failed: %v", err)
	}

	group.Release()
	if got := set.Meshes.RefCount(resource.MeshSphere); got != base {
		t.Errorf("RefCount = %d, want %d", got, base)
	}
	if len(root.Children()) != 0 {
		t.Error("released subtree must be detached")
	}
}

func TestPrimitiveScales(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	cube, err := root.AddCube(2, 3, 4)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	if got := cube.Local().Scale; !vec3Near(got, mgl32.Vec3{2, 3, 4}, 1e-6) {
		t.Errorf("cube scale = %v, want (2, 3, 4)", got)
	}

	sphere, err := root.AddSphere(3)
	if err != nil {
		t.Fatalf("AddSphere failed: %v", err)
	}
	// The unit sphere has diameter 1, so radius r needs scale 2r.
	if got := sphere.Local().Scale; !vec3Near(got, mgl32.Vec3{6, 6, 6}, 1e-6) {
		t.Errorf("sphere scale = %v, want (6, 6, 6)", got)
	}

	cone, err := root.AddCone(1, 4)
	if err != nil {
		t.Fatalf("AddCone failed: %v", err)
	}
	if got := cone.Local().Scale; !vec3Near(got, mgl32.Vec3{2, 4, 2}, 1e-6) {
		t.Errorf("cone scale = %v, want (2, 4, 2)", got)
	}
}

func TestWalkSkipsInvisible(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	a := root.AddGroup("a")
	a.AddGroup("a1")
	b := root.AddGroup("b")
	b.AddGroup("b1")
	b.SetVisible(false)

	var seen []string
	root.Walk(func(n *Node) bool {
		seen = append(seen, n.Name())
		return true
	})

	want := []string{"root", "a", "a1"}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("visited %v, want %v", seen, want)
		}
	}
}

func TestObjectState(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	cube, err := root.AddCube(1, 1, 1)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	obj := cube.Object()

	if got := obj.Color(); got != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("default color = %v, want white", got)
	}
	obj.SetColor(1, 0, 0, 1)
	if got := obj.Color(); got != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("color = %v, want red", got)
	}

	if obj.Wireframe() {
		t.Error("wireframe must default to off")
	}
	obj.SetWireframe(true)
	if !obj.Wireframe() {
		t.Error("SetWireframe(true) not applied")
	}

	if !obj.CullBack() {
		t.Error("back-face culling must default to on")
	}

	if obj.Instanced() {
		t.Error("object must not be instanced by default")
	}
	obj.SetInstances([]Instance{
		{Model: mgl32.Ident4(), Color: mgl32.Vec4{1, 0, 0, 1}},
		{Model: mgl32.Translate3D(2, 0, 0), Color: mgl32.Vec4{0, 1, 0, 1}},
	})
	if !obj.Instanced() || obj.InstanceCount() != 2 {
		t.Errorf("InstanceCount = %d, want 2", obj.InstanceCount())
	}
}

func TestSetTextureOnGroupFails(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	g := root.AddGroup("g")
	if err := g.SetTexture("x", nil); !errors.Is(err, ErrNotRenderable) {
		t.Fatalf("SetTexture on group = %v, want ErrNotRenderable", err)
	}
}

func TestAddQuadSubdivided(t *testing.T) {
	root, set, cleanup := newTestScene(t)
	defer cleanup()

	flat, err := root.AddQuad(2, 2, 1, 1)
	if err != nil {
		t.Fatalf("AddQuad failed: %v", err)
	}
	builtin, _ := set.Meshes.Get(resource.MeshQuad)
	if flat.Object().Mesh() != builtin {
		t.Error("single-cell quad must share the built-in mesh")
	}

	grid, err := root.AddQuad(2, 2, 4, 3)
	if err != nil {
		t.Fatalf("subdivided AddQuad failed: %v", err)
	}
	if grid.Object().Mesh() == builtin {
		t.Error("subdivided quad must get its own mesh")
	}
	want := uint32(4 * 3 * 6)
	if got := grid.Object().Mesh().IndexCount(); got != want {
		t.Errorf("grid index count = %d, want %d", got, want)
	}

	// Same grid size shares one mesh.
	grid2, err := root.AddQuad(5, 1, 4, 3)
	if err != nil {
		t.Fatalf("second subdivided AddQuad failed: %v", err)
	}
	if grid2.Object().Mesh() != grid.Object().Mesh() {
		t.Error("same subdivision must dedup to one mesh")
	}
}

func TestAddObjectCustomMaterial(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	n, err := root.AddObject(resource.MeshSphere, resource.MaterialFlat, mgl32.Vec3{1, 1, 1})
	if err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}
	if got := n.Object().MaterialKey(); got != resource.MaterialFlat {
		t.Errorf("MaterialKey() = %q, want %q", got, resource.MaterialFlat)
	}

	if _, err := root.AddObject("no_such_mesh", resource.MaterialFlat, mgl32.Vec3{1, 1, 1}); err == nil {
		t.Error("unknown mesh key must fail")
	}
}

func TestRotateLocal(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	n := root.AddGroup("n")
	n.SetRotation(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}))
	n.RotateLocal(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0}))

	// Parent-side rotate of the same pair composes the other way.
	m := root.AddGroup("m")
	m.SetRotation(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0}))
	m.Rotate(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}))

	vn := n.Rotation().Rotate(mgl32.Vec3{0, 0, 1})
	vm := m.Rotation().Rotate(mgl32.Vec3{0, 0, 1})
	if !vec3Near(vn, vm, 1e-5) {
		t.Errorf("local-then vs pre-composed rotations differ: %v vs %v", vn, vm)
	}
}

func TestReorient(t *testing.T) {
	root, _, cleanup := newTestScene(t)
	defer cleanup()

	n := root.AddGroup("n")
	n.SetPosition(mgl32.Vec3{0, 0, 0})
	n.Reorient(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 1, 0})

	// -z already faces the target, the rotation stays near identity.
	fwd := n.Rotation().Rotate(mgl32.Vec3{0, 0, -1})
	if !vec3Near(fwd, mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("forward = %v, want -z", fwd)
	}

	n.Reorient(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{0, 1, 0})
	fwd = n.Rotation().Rotate(mgl32.Vec3{0, 0, -1})
	if !vec3Near(fwd, mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("forward = %v, want +x", fwd)
	}
}

func TestUnlinkKeepsSubtree(t *testing.T) {
	root, set, cleanup := newTestScene(t)
	defer cleanup()

	group := root.AddGroup("group")
	cube, err := group.AddCube(1, 1, 1)
	if err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	refs := set.Meshes.RefCount(resource.MeshCube)

	group.Unlink()
	if group.Parent() != nil {
		t.Error("Unlink left the parent pointer set")
	}
	if len(root.Children()) != 0 {
		t.Errorf("root keeps %d children after Unlink", len(root.Children()))
	}
	if got := set.Meshes.RefCount(resource.MeshCube); got != refs {
		t.Errorf("RefCount = %d after Unlink, want %d", got, refs)
	}
	if cube.Parent() != group {
		t.Error("subtree broke apart on Unlink")
	}

	// The detached subtree can be attached again.
	if err := root.AddChild(group); err != nil {
		t.Fatalf("re-attach failed: %v", err)
	}
}
