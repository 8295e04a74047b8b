package resource

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/context"
)

const meshIndexFormat = gputypes.IndexFormatUint32

// MeshData is a CPU-side triangle mesh. Positions and normals are
// packed xyz, texture coordinates packed uv.
type MeshData struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (d *MeshData) VertexCount() int { return len(d.Positions) / 3 }

// validate checks attribute arrays agree on the vertex count and every
// index is in range.
func (d *MeshData) validate() error {
	n := d.VertexCount()
	if len(d.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d not a multiple of 3", len(d.Positions))
	}
	if len(d.Normals) != n*3 {
		return fmt.Errorf("normals hold %d vertices, positions hold %d", len(d.Normals)/3, n)
	}
	if len(d.UVs) != n*2 {
		return fmt.Errorf("uvs hold %d vertices, positions hold %d", len(d.UVs)/2, n)
	}
	if len(d.Indices)%3 != 0 {
		return fmt.Errorf("index count %d not a multiple of 3", len(d.Indices))
	}
	for _, i := range d.Indices {
		if int(i) >= n {
			return fmt.Errorf("index %d out of range, mesh has %d vertices", i, n)
		}
	}
	return nil
}

// edgeIndices extracts the unique undirected edges of the triangle
// list, for wireframe rendering as a line list.
func (d *MeshData) edgeIndices() []uint32 {
	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(d.Indices))
	out := make([]uint32, 0, len(d.Indices)*2)
	add := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		e := edge{a, b}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, a, b)
	}
	for i := 0; i+2 < len(d.Indices); i += 3 {
		a, b, c := d.Indices[i], d.Indices[i+1], d.Indices[i+2]
		add(a, b)
		add(b, c)
		add(c, a)
	}
	return out
}

// Mesh is a mesh uploaded to the GPU: one buffer per vertex attribute,
// a triangle index buffer and a derived line index buffer for
// wireframe draws.
type Mesh struct {
	positions *context.Buffer
	normals   *context.Buffer
	uvs       *context.Buffer
	indices   *context.Buffer
	edges     *context.Buffer

	indexCount uint32
	edgeCount  uint32
}

// IndexCount returns the number of triangle list indices.
func (m *Mesh) IndexCount() uint32 { return m.indexCount }

// EdgeCount returns the number of line list indices.
func (m *Mesh) EdgeCount() uint32 { return m.edgeCount }

// Bind attaches the mesh's triangle buffers to the context.
func (m *Mesh) Bind(ctx *context.Context) error {
	if err := ctx.BindVertexBuffer(context.SlotPosition, m.positions); err != nil {
		return err
	}
	if err := ctx.BindVertexBuffer(context.SlotNormal, m.normals); err != nil {
		return err
	}
	if err := ctx.BindVertexBuffer(context.SlotUV, m.uvs); err != nil {
		return err
	}
	return ctx.BindIndexBuffer(m.indices, meshIndexFormat)
}

// BindEdges attaches the position and line index buffers for a
// wireframe draw.
func (m *Mesh) BindEdges(ctx *context.Context) error {
	if err := ctx.BindVertexBuffer(context.SlotPosition, m.positions); err != nil {
		return err
	}
	if err := ctx.BindVertexBuffer(context.SlotNormal, m.normals); err != nil {
		return err
	}
	if err := ctx.BindVertexBuffer(context.SlotUV, m.uvs); err != nil {
		return err
	}
	return ctx.BindIndexBuffer(m.edges, meshIndexFormat)
}

func f32Bytes(src []float32) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func u32Bytes(src []uint32) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// UploadMesh creates GPU buffers for d. The returned mesh is typically
// stored in a mesh Manager rather than held directly.
func UploadMesh(ctx *context.Context, label string, d *MeshData) (*Mesh, error) {
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("resource: mesh %s: %w", label, err)
	}
	edges := d.edgeIndices()

	m := &Mesh{
		indexCount: uint32(len(d.Indices)),
		edgeCount:  uint32(len(edges)),
	}
	var err error
	if m.positions, err = ctx.CreateBufferInit(label+".pos", context.BufferVertex, f32Bytes(d.Positions)); err != nil {
		return nil, err
	}
	if m.normals, err = ctx.CreateBufferInit(label+".nrm", context.BufferVertex, f32Bytes(d.Normals)); err != nil {
		m.Destroy(ctx)
		return nil, err
	}
	if m.uvs, err = ctx.CreateBufferInit(label+".uv", context.BufferVertex, f32Bytes(d.UVs)); err != nil {
		m.Destroy(ctx)
		return nil, err
	}
	if m.indices, err = ctx.CreateBufferInit(label+".idx", context.BufferIndex, u32Bytes(d.Indices)); err != nil {
		m.Destroy(ctx)
		return nil, err
	}
	if m.edges, err = ctx.CreateBufferInit(label+".edge", context.BufferIndex, u32Bytes(edges)); err != nil {
		m.Destroy(ctx)
		return nil, err
	}
	return m, nil
}

// Destroy releases the mesh's GPU buffers.
func (m *Mesh) Destroy(ctx *context.Context) {
	ctx.DestroyBuffer(m.positions)
	ctx.DestroyBuffer(m.normals)
	ctx.DestroyBuffer(m.uvs)
	ctx.DestroyBuffer(m.indices)
	ctx.DestroyBuffer(m.edges)
}
