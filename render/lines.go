package render

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/internal/logx"
	"github.com/gogpu/g3d/resource"
)

// lineBatch accumulates debug lines and points for one frame. The flat
// shader colors a whole draw with one uniform, so vertices are grouped
// by color and each group becomes a single transient draw.
type lineBatch struct {
	lines  map[mgl32.Vec3][]float32
	points map[mgl32.Vec3][]float32
}

func newLineBatch() *lineBatch {
	return &lineBatch{
		lines:  make(map[mgl32.Vec3][]float32),
		points: make(map[mgl32.Vec3][]float32),
	}
}

func (b *lineBatch) addLine(a, c, color mgl32.Vec3) {
	b.lines[color] = append(b.lines[color],
		a.X(), a.Y(), a.Z(),
		c.X(), c.Y(), c.Z(),
	)
}

func (b *lineBatch) addPoint(p, color mgl32.Vec3) {
	b.points[color] = append(b.points[color], p.X(), p.Y(), p.Z())
}

// empty reports whether any group holds vertices. reset keeps drained
// groups around for slice reuse, so map size alone says nothing.
func (b *lineBatch) empty() bool {
	for _, v := range b.lines {
		if len(v) > 0 {
			return false
		}
	}
	for _, v := range b.points {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// reset keeps the map slices alive between frames; the vertex data from
// the previous frame is discarded.
func (b *lineBatch) reset() {
	for k, v := range b.lines {
		b.lines[k] = v[:0]
	}
	for k, v := range b.points {
		b.points[k] = v[:0]
	}
}

// flush draws every accumulated group inside the open render pass.
// Vertex buffers are transient and freed after the frame's fence.
func (b *lineBatch) flush(ctx *context.Context, set *resource.Set, proj, view mgl32.Mat4) {
	if b.empty() {
		return
	}

	flat, ok := set.Materials.Get(resource.MaterialFlat)
	if !ok {
		logx.Get().Warn("flat material unavailable, dropping debug draws")
		return
	}
	if err := flat.Activate(ctx); err != nil {
		logx.Get().Warn("flat material activation failed", "error", err)
		return
	}
	if err := ctx.SetUniformMat4("proj", [16]float32(proj)); err != nil {
		logx.Get().Warn("debug draw uniform", "error", err)
		return
	}
	if err := ctx.SetUniformMat4("view", [16]float32(view)); err != nil {
		logx.Get().Warn("debug draw uniform", "error", err)
		return
	}
	if err := ctx.SetUniformMat4("model", [16]float32(mgl32.Ident4())); err != nil {
		logx.Get().Warn("debug draw uniform", "error", err)
		return
	}

	// The flat shader reads positions only.
	ctx.BindVertexBuffer(context.SlotNormal, nil)
	ctx.BindVertexBuffer(context.SlotUV, nil)
	ctx.BindTexture(nil, nil)
	ctx.SetCullBack(false)

	b.drawGroups(ctx, b.lines, context.Lines)
	b.drawGroups(ctx, b.points, context.Points)
}

func (b *lineBatch) drawGroups(ctx *context.Context, groups map[mgl32.Vec3][]float32, topo context.Topology) {
	for color, verts := range groups {
		if len(verts) == 0 {
			continue
		}
		buf, err := ctx.CreateBufferInit("g3d_debug_verts", context.BufferVertex, f32LE(verts))
		if err != nil {
			logx.Get().Warn("debug vertex buffer", "error", err)
			continue
		}
		if err := ctx.BindVertexBuffer(context.SlotPosition, buf); err != nil {
			ctx.DestroyBufferAfterFrame(buf)
			continue
		}
		ctx.SetTopology(topo)
		ctx.SetUniformVec4("color", [4]float32{color.X(), color.Y(), color.Z(), 1})
		if err := ctx.Draw(0, uint32(len(verts)/3)); err != nil {
			logx.Get().Warn("debug draw", "topology", topo.String(), "error", err)
		}
		ctx.DestroyBufferAfterFrame(buf)
	}
}

func f32LE(src []float32) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
