package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/resource"
)

// Scene graph errors.
var (
	// ErrCycle is returned by AddChild when the reparenting would make
	// a node its own ancestor. The graph is left unchanged.
	ErrCycle = errors.New("scene: reparenting would create a cycle")

	// ErrNotRenderable is returned by object operations on group nodes.
	ErrNotRenderable = errors.New("scene: node has no renderable object")
)

// Node is one element of the scene graph. Group nodes only carry a
// transform; leaf nodes built by the Add helpers also carry an Object.
//
// World transforms are cached lazily: mutating a node bumps a version
// counter and the cache revalidates against it, and against the
// parent's, on the next WorldTransform call. Nothing is recomputed for
// untouched subtrees.
type Node struct {
	name     string
	parent   *Node
	children []*Node
	set      *resource.Set

	local   Transform
	visible bool
	object  *Object

	localVersion uint64
	cachedLocal  uint64
	cachedParent uint64
	worldStamp   uint64
	worldMat     mgl32.Mat4
}

// NewRoot creates the root of a scene graph over the given resource
// set. All descendants share the set.
func NewRoot(set *resource.Set) *Node {
	return &Node{
		name:         "root",
		set:          set,
		local:        IdentityTransform(),
		visible:      true,
		localVersion: 1,
	}
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's direct children. The slice is the node's
// own; callers must not mutate it.
func (n *Node) Children() []*Node { return n.children }

// Object returns the renderable payload, nil for group nodes.
func (n *Node) Object() *Object { return n.object }

// Visible reports the node's own visibility flag.
func (n *Node) Visible() bool { return n.visible }

// SetVisible shows or hides the node and, effectively, its subtree:
// traversal skips hidden nodes entirely.
func (n *Node) SetVisible(v bool) { n.visible = v }

// isAncestorOf reports whether n is node or one of node's ancestors.
func (n *Node) isAncestorOf(node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// AddChild attaches child to n, detaching it from its previous parent.
// Attaching a node to its own descendant fails with ErrCycle and
// leaves both trees untouched.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return fmt.Errorf("scene: child must not be nil")
	}
	if child.isAncestorOf(n) {
		return ErrCycle
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
	child.set = n.set
	// The child's cached world was computed against the old parent.
	child.invalidate()
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child from n. The child keeps its resources and
// can be re-attached; use Release to free it instead.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	n.detach(child)
	child.parent = nil
	child.invalidate()
}

// Unlink detaches the node from its parent, keeping the subtree alive.
func (n *Node) Unlink() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Release detaches the node and releases the resource references of
// its entire subtree. The node must not be used afterwards.
func (n *Node) Release() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	n.releaseSubtree()
}

func (n *Node) releaseSubtree() {
	for _, c := range n.children {
		c.releaseSubtree()
	}
	n.children = nil
	if n.object != nil {
		n.object.release(n.set)
		n.object = nil
	}
}

// invalidate forces the next WorldTransform to recompute.
func (n *Node) invalidate() {
	n.localVersion++
}

// Local returns the node's local transform.
func (n *Node) Local() Transform { return n.local }

// SetLocal replaces the local transform.
func (n *Node) SetLocal(t Transform) {
	n.local = t
	n.invalidate()
}

// Position returns the local translation.
func (n *Node) Position() mgl32.Vec3 { return n.local.Translation }

// SetPosition sets the local translation.
func (n *Node) SetPosition(p mgl32.Vec3) {
	n.local.Translation = p
	n.invalidate()
}

// Translate offsets the local translation.
func (n *Node) Translate(d mgl32.Vec3) {
	n.local.Translation = n.local.Translation.Add(d)
	n.invalidate()
}

// Rotation returns the local rotation.
func (n *Node) Rotation() mgl32.Quat { return n.local.Rotation }

// SetRotation sets the local rotation.
func (n *Node) SetRotation(q mgl32.Quat) {
	n.local.Rotation = q
	n.invalidate()
}

// Rotate applies q on top of the current local rotation.
func (n *Node) Rotate(q mgl32.Quat) {
	n.local.Rotation = q.Mul(n.local.Rotation).Normalize()
	n.invalidate()
}

// RotateLocal applies q before the current local rotation, spinning
// the node around its own axes instead of its parent's.
func (n *Node) RotateLocal(q mgl32.Quat) {
	n.local.Rotation = n.local.Rotation.Mul(q).Normalize()
	n.invalidate()
}

// Reorient rotates the node so its -z axis points at the target, with
// up as the vertical reference.
func (n *Node) Reorient(at, up mgl32.Vec3) {
	n.local.Rotation = mgl32.QuatLookAtV(n.local.Translation, at, up).Inverse().Normalize()
	n.invalidate()
}

// SetScale sets the local non-uniform scale.
func (n *Node) SetScale(s mgl32.Vec3) {
	n.local.Scale = s
	n.invalidate()
}

// WorldTransform returns the node's world matrix, recomputing only the
// path of nodes whose caches went stale.
func (n *Node) WorldTransform() mgl32.Mat4 {
	if n.parent == nil {
		if n.cachedLocal != n.localVersion {
			n.worldMat = n.local.Matrix()
			n.cachedLocal = n.localVersion
			n.worldStamp++
		}
		return n.worldMat
	}
	parentWorld := n.parent.WorldTransform()
	if n.cachedLocal != n.localVersion || n.cachedParent != n.parent.worldStamp {
		n.worldMat = parentWorld.Mul4(n.local.Matrix())
		n.cachedLocal = n.localVersion
		n.cachedParent = n.parent.worldStamp
		n.worldStamp++
	}
	return n.worldMat
}

// Walk visits the subtree depth first, skipping invisible nodes. The
// visit function returning false prunes the node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if !n.visible {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// AddGroup adds an empty child node for grouping.
func (n *Node) AddGroup(name string) *Node {
	child := &Node{
		name:         name,
		set:          n.set,
		local:        IdentityTransform(),
		visible:      true,
		localVersion: 1,
	}
	// Cycle-free by construction.
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// addObjectNode builds a leaf node over a registered mesh, taking one
// reference on the mesh and one on the material.
func (n *Node) addObjectNode(name, meshKey, materialKey string, scale mgl32.Vec3) (*Node, error) {
	mesh, err := n.set.Meshes.GetOrCreate(meshKey, func() (*resource.Mesh, error) {
		return nil, fmt.Errorf("mesh %q not registered", meshKey)
	})
	if err != nil {
		return nil, err
	}
	mat, err := n.set.Materials.GetOrCreate(materialKey, func() (*resource.Material, error) {
		return nil, fmt.Errorf("material %q not registered", materialKey)
	})
	if err != nil {
		_ = n.set.Meshes.Release(meshKey)
		return nil, err
	}

	child := n.AddGroup(name)
	child.local.Scale = scale
	child.invalidate()
	child.object = &Object{
		meshKey:     meshKey,
		mesh:        mesh,
		materialKey: materialKey,
		material:    mat,
		color:       mgl32.Vec4{1, 1, 1, 1},
		cullBack:    true,
		linesWidth:  1,
	}
	return child, nil
}

// AddObject adds a leaf node over a registered mesh and material, both
// referenced by their manager keys.
func (n *Node) AddObject(meshKey, materialKey string, scale mgl32.Vec3) (*Node, error) {
	return n.addObjectNode(meshKey, meshKey, materialKey, scale)
}

// AddMesh registers data under key (sharing any previous registration)
// and adds a leaf node rendering it.
func (n *Node) AddMesh(key string, data *resource.MeshData) (*Node, error) {
	if _, err := n.set.LoadMesh(key, data); err != nil {
		return nil, err
	}
	child, err := n.addObjectNode(key, key, resource.MaterialObject, mgl32.Vec3{1, 1, 1})
	if err != nil {
		_ = n.set.Meshes.Release(key)
		return nil, err
	}
	// addObjectNode took its own reference.
	_ = n.set.Meshes.Release(key)
	return child, nil
}

// AddCube adds a box with extents (w, h, d).
func (n *Node) AddCube(w, h, d float32) (*Node, error) {
	return n.addObjectNode("cube", resource.MeshCube, resource.MaterialObject, mgl32.Vec3{w, h, d})
}

// AddSphere adds a sphere of radius r.
func (n *Node) AddSphere(r float32) (*Node, error) {
	return n.addObjectNode("sphere", resource.MeshSphere, resource.MaterialObject, mgl32.Vec3{2 * r, 2 * r, 2 * r})
}

// AddCone adds a cone of base radius r and height h, apex up.
func (n *Node) AddCone(r, h float32) (*Node, error) {
	return n.addObjectNode("cone", resource.MeshCone, resource.MaterialObject, mgl32.Vec3{2 * r, h, 2 * r})
}

// AddCylinder adds a cylinder of radius r and height h along the y axis.
func (n *Node) AddCylinder(r, h float32) (*Node, error) {
	return n.addObjectNode("cylinder", resource.MeshCylinder, resource.MaterialObject, mgl32.Vec3{2 * r, h, 2 * r})
}

// AddQuad adds a w by h plane facing +z, subdivided into usub by vsub
// cells. The single-cell plane shares the built-in quad mesh;
// subdivided planes are registered per grid size.
func (n *Node) AddQuad(w, h float32, usub, vsub int) (*Node, error) {
	scale := mgl32.Vec3{w, h, 1}
	if usub <= 1 && vsub <= 1 {
		return n.addObjectNode("quad", resource.MeshQuad, resource.MaterialObject, scale)
	}
	key := fmt.Sprintf("quad_%dx%d", usub, vsub)
	if _, err := n.set.LoadMesh(key, resource.PlaneMesh(usub, vsub)); err != nil {
		return nil, err
	}
	child, err := n.addObjectNode(key, key, resource.MaterialObject, scale)
	if err != nil {
		_ = n.set.Meshes.Release(key)
		return nil, err
	}
	_ = n.set.Meshes.Release(key)
	return child, nil
}
