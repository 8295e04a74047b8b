package scene

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/resource"
)

// Instance is one replica of an instanced object: a model matrix
// applied on top of the node's world transform, and a color.
type Instance struct {
	Model mgl32.Mat4
	Color mgl32.Vec4
}

// instanceStride matches the GPU instance vertex layout: four matrix
// columns plus a color, all vec4.
const instanceStride = 80

// Object is the renderable payload of a node: a shared mesh, a
// material, render state and optional texture and instance data.
type Object struct {
	meshKey     string
	mesh        *resource.Mesh
	materialKey string
	material    *resource.Material
	textureKey  string
	texture     *resource.Texture

	color      mgl32.Vec4
	wireframe  bool
	cullBack   bool
	linesWidth float32
	pointsSize float32

	instances      []Instance
	instanceBuf    *context.Buffer
	instanceCount  uint32
	instancesDirty bool
}

// Mesh returns the shared mesh.
func (o *Object) Mesh() *resource.Mesh { return o.mesh }

// Material returns the object's material.
func (o *Object) Material() *resource.Material { return o.material }

// Texture returns the bound texture, nil when untextured.
func (o *Object) Texture() *resource.Texture { return o.texture }

// Color returns the RGBA base color.
func (o *Object) Color() mgl32.Vec4 { return o.color }

// SetColor sets the RGBA base color. Components are 0 to 1.
func (o *Object) SetColor(r, g, b, a float32) {
	o.color = mgl32.Vec4{r, g, b, a}
}

// Wireframe reports whether the object renders as lines.
func (o *Object) Wireframe() bool { return o.wireframe }

// SetWireframe switches between filled and line rendering.
func (o *Object) SetWireframe(on bool) { o.wireframe = on }

// CullBack reports whether back faces are culled.
func (o *Object) CullBack() bool { return o.cullBack }

// SetCullBack toggles back-face culling.
func (o *Object) SetCullBack(on bool) { o.cullBack = on }

// LinesWidth returns the wireframe line width.
func (o *Object) LinesWidth() float32 { return o.linesWidth }

// SetLinesWidth sets the wireframe line width. Zero or negative
// disables wireframe rendering even when the flag is set; widths other
// than one draw one pixel wide, which is all the backend supports.
func (o *Object) SetLinesWidth(w float32) { o.linesWidth = w }

// PointsSize returns the point size used by point-cloud rendering.
func (o *Object) PointsSize() float32 { return o.pointsSize }

// SetPointsSize enables point-cloud rendering of the mesh vertices
// when size is positive. Zero restores surface rendering.
func (o *Object) SetPointsSize(s float32) { o.pointsSize = s }

// MaterialKey returns the manager key of the object's material.
func (o *Object) MaterialKey() string { return o.materialKey }

// Instanced reports whether the object draws its instance list instead
// of a single copy.
func (o *Object) Instanced() bool { return len(o.instances) > 0 }

// InstanceCount returns the number of instances.
func (o *Object) InstanceCount() int { return len(o.instances) }

// SetInstances replaces the instance list. The GPU buffer is rebuilt
// on the next draw. An empty list returns the object to single-copy
// rendering.
func (o *Object) SetInstances(instances []Instance) {
	o.instances = instances
	o.instancesDirty = true
}

// EnsureInstanceBuffer uploads the instance list if it changed since
// the last draw, returning the buffer and instance count. The renderer
// calls it outside the render pass.
func (o *Object) EnsureInstanceBuffer(ctx *context.Context) (*context.Buffer, uint32, error) {
	if !o.instancesDirty {
		return o.instanceBuf, o.instanceCount, nil
	}

	data := make([]byte, len(o.instances)*instanceStride)
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(v))
		off += 4
	}
	for _, inst := range o.instances {
		for _, v := range inst.Model {
			put(v)
		}
		put(inst.Color.X())
		put(inst.Color.Y())
		put(inst.Color.Z())
		put(inst.Color.W())
	}

	if o.instanceBuf != nil && o.instanceBuf.Size() >= uint64(len(data)) {
		if err := ctx.UploadBuffer(o.instanceBuf, 0, data); err != nil {
			return nil, 0, err
		}
	} else {
		if o.instanceBuf != nil {
			ctx.DestroyBuffer(o.instanceBuf)
			o.instanceBuf = nil
		}
		buf, err := ctx.CreateBufferInit("instances", context.BufferVertex, data)
		if err != nil {
			return nil, 0, err
		}
		o.instanceBuf = buf
	}
	o.instanceCount = uint32(len(o.instances))
	o.instancesDirty = false
	return o.instanceBuf, o.instanceCount, nil
}

// release drops the object's resource references and GPU state.
func (o *Object) release(set *resource.Set) {
	if o.meshKey != "" {
		_ = set.Meshes.Release(o.meshKey)
		o.meshKey = ""
		o.mesh = nil
	}
	if o.materialKey != "" {
		_ = set.Materials.Release(o.materialKey)
		o.materialKey = ""
		o.material = nil
	}
	if o.textureKey != "" {
		_ = set.Textures.Release(o.textureKey)
		o.textureKey = ""
		o.texture = nil
	}
	if o.instanceBuf != nil {
		set.Context().DestroyBuffer(o.instanceBuf)
		o.instanceBuf = nil
	}
}

// SetTexture loads img under key through the texture manager and binds
// it to the object. Loading the same key twice shares the texture.
func (n *Node) SetTexture(key string, img image.Image) error {
	if n.object == nil {
		return ErrNotRenderable
	}
	tex, err := n.set.LoadTexture(key, img)
	if err != nil {
		return err
	}
	if n.object.textureKey != "" {
		_ = n.set.Textures.Release(n.object.textureKey)
	}
	n.object.textureKey = key
	n.object.texture = tex
	return nil
}
