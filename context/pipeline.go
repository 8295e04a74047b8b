package context

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Topology selects the primitive assembly mode of a draw.
type Topology int

const (
	// Triangles assembles filled triangles from every three vertices.
	Triangles Topology = iota
	// Lines assembles line segments from every two vertices. Wireframe
	// rendering uses a line-index variant of the mesh with this mode.
	Lines
	// Points rasterizes each vertex as a single fragment.
	Points
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case Points:
		return "points"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

func (t Topology) primitive() gputypes.PrimitiveTopology {
	switch t {
	case Lines:
		return gputypes.PrimitiveTopologyLineList
	case Points:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

// pipelineKey identifies a cached render pipeline. Every field that
// changes the compiled pipeline object must be part of the key.
type pipelineKey struct {
	programID uint64
	topology  Topology
	slots     uint8
	depthTest bool
	cullBack  bool
}

// Vertex attribute slots. The object shaders consume positions, normals
// and texture coordinates from separate buffers, plus an optional
// per-instance buffer carrying a model matrix and a color.
const (
	SlotPosition = 0
	SlotNormal   = 1
	SlotUV       = 2
	SlotInstance = 3
	numSlots     = 4
)

// instanceStride is 4 vec4 matrix columns plus one vec4 color.
const instanceStride = 80

// slotLayouts holds the fixed per-slot vertex buffer layouts. A draw's
// pipeline includes the layout of each bound slot, in slot order, so a
// program only has to declare the inputs it consumes.
var slotLayouts = [numSlots]gputypes.VertexBufferLayout{
	SlotPosition: {
		ArrayStride: 12,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	},
	SlotNormal: {
		ArrayStride: 12,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
		},
	},
	SlotUV: {
		ArrayStride: 8,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 2},
		},
	},
	SlotInstance: {
		ArrayStride: instanceStride,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 3},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 4},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 5},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 6},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 7},
		},
	},
}

func vertexLayouts(slots uint8) []gputypes.VertexBufferLayout {
	layouts := make([]gputypes.VertexBufferLayout, 0, numSlots)
	for i := 0; i < numSlots; i++ {
		if slots&(1<<uint(i)) != 0 {
			layouts = append(layouts, slotLayouts[i])
		}
	}
	return layouts
}

// createBindGroupLayout builds the single bind group layout all object
// pipelines share: a uniform block, a 2D texture and a filtering sampler.
func (c *Context) createBindGroupLayout() (hal.BindGroupLayout, error) {
	return c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "g3d.object",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
}

// ensurePipeline returns the cached pipeline for the current bind state,
// compiling it on first use. Callers hold c.mu.
func (c *Context) ensurePipeline(key pipelineKey, prog *Program) (hal.RenderPipeline, error) {
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}

	cullMode := gputypes.CullModeNone
	if key.cullBack {
		cullMode = gputypes.CullModeBack
	}
	depthCompare := gputypes.CompareFunctionAlways
	depthWrite := false
	if key.depthTest {
		depthCompare = gputypes.CompareFunctionLess
		depthWrite = true
	}

	blend := gputypes.BlendStatePremultiplied()
	p, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("g3d.%s.%s", prog.label, key.topology),
		Layout: c.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     prog.vertex,
			EntryPoint: "vs_main",
			Buffers:    vertexLayouts(key.slots),
		},
		Fragment: &hal.FragmentState{
			Module:     prog.fragment,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    c.surface.Format(),
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: depthWrite,
			DepthCompare:      depthCompare,
			StencilFront:      hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways},
			StencilBack:       hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways},
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Primitive: gputypes.PrimitiveState{
			Topology: key.topology.primitive(),
			CullMode: cullMode,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("context: create pipeline for %s: %w", prog.label, err)
	}
	c.pipelines[key] = p
	return p, nil
}
