package context

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// UniformKind is the data type of a single field in a uniform block.
type UniformKind int

const (
	// UniformMat4 is a 4x4 float32 column-major matrix, 64 bytes.
	UniformMat4 UniformKind = iota
	// UniformVec4 is a float32 4-vector, 16 bytes.
	UniformVec4
	// UniformVec3 is a float32 3-vector padded to 16 bytes.
	UniformVec3
	// UniformFloat is a single float32 padded to 16 bytes.
	UniformFloat
)

// byteSize returns the std140 slot size of the field.
func (k UniformKind) byteSize() uint32 {
	if k == UniformMat4 {
		return 64
	}
	return 16
}

// UniformField names one field of a uniform block and its byte offset.
type UniformField struct {
	Name   string
	Kind   UniformKind
	Offset uint32
}

// UniformLayout describes the single uniform block shared by the vertex
// and fragment stages of a program. BlockSize of zero selects the default
// block size.
type UniformLayout struct {
	Fields    []UniformField
	BlockSize uint32
}

// defaultBlockSize is the uniform block allocation when a layout does
// not set its own. It matches the minimum dynamic offset alignment so
// per-draw blocks can be suballocated from one buffer.
const defaultBlockSize = 256

// DefaultUniformLayout returns the block layout the built-in object
// shaders use: projection, view and model matrices, an RGBA color and a
// light position.
func DefaultUniformLayout() UniformLayout {
	return UniformLayout{
		Fields: []UniformField{
			{Name: "proj", Kind: UniformMat4, Offset: 0},
			{Name: "view", Kind: UniformMat4, Offset: 64},
			{Name: "model", Kind: UniformMat4, Offset: 128},
			{Name: "color", Kind: UniformVec4, Offset: 192},
			{Name: "lightPos", Kind: UniformVec4, Offset: 208},
		},
	}
}

// Program is a linked vertex/fragment shader pair with its uniform
// layout. Programs are deduplicated by source hash and owned by the
// Context.
type Program struct {
	id        uint64
	label     string
	vertex    hal.ShaderModule
	fragment  hal.ShaderModule
	layout    UniformLayout
	fields    map[string]UniformField
	blockSize uint32
}

// Label returns the name the program was linked under.
func (p *Program) Label() string { return p.label }

// Layout returns the uniform block layout of the program.
func (p *Program) Layout() UniformLayout { return p.layout }

// looksLikeGLSL reports whether src is legacy GLSL rather than WGSL.
// The markers are unambiguous: none of them appear in valid WGSL.
func looksLikeGLSL(src string) bool {
	return strings.Contains(src, "#version") ||
		strings.Contains(src, "gl_Position") ||
		strings.Contains(src, "gl_FragColor")
}

func sourceHash(vertexSrc, fragmentSrc string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(vertexSrc))
	h.Write([]byte{0})
	h.Write([]byte(fragmentSrc))
	return h.Sum64()
}

// compileWGSL translates WGSL to SPIR-V words for the hal backend.
func compileWGSL(src string) ([]uint32, error) {
	spv, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}
	if len(spv)%4 != 0 {
		return nil, fmt.Errorf("spir-v blob length %d not word aligned", len(spv))
	}
	words := make([]uint32, len(spv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spv[i*4:])
	}
	return words, nil
}

// LinkProgram compiles a WGSL vertex/fragment source pair into a Program.
// Identical source pairs return the same Program. Legacy GLSL sources are
// rejected with ErrUnsupportedShaderFormat so callers can skip the
// material rather than abort the frame.
func (c *Context) LinkProgram(label, vertexSrc, fragmentSrc string, layout UniformLayout) (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return nil, err
	}
	if looksLikeGLSL(vertexSrc) || looksLikeGLSL(fragmentSrc) {
		return nil, fmt.Errorf("%w: %s uses legacy GLSL", ErrUnsupportedShaderFormat, label)
	}

	key := sourceHash(vertexSrc, fragmentSrc)
	if p, ok := c.programs[key]; ok {
		return p, nil
	}

	blockSize := layout.BlockSize
	if blockSize == 0 {
		blockSize = defaultBlockSize
		for _, f := range layout.Fields {
			if f.Offset+f.Kind.byteSize() > blockSize {
				return nil, fmt.Errorf("%w: %s field %q ends at %d",
					ErrUniformBlockOverflow, label, f.Name, f.Offset+f.Kind.byteSize())
			}
		}
	}

	vertex, err := c.createShaderModule(label+".vs", vertexSrc)
	if err != nil {
		return nil, fmt.Errorf("context: link %s vertex stage: %w", label, err)
	}
	fragment, err := c.createShaderModule(label+".fs", fragmentSrc)
	if err != nil {
		c.device.DestroyShaderModule(vertex)
		return nil, fmt.Errorf("context: link %s fragment stage: %w", label, err)
	}

	fields := make(map[string]UniformField, len(layout.Fields))
	for _, f := range layout.Fields {
		fields[f.Name] = f
	}
	p := &Program{
		id:        c.nextProgramID,
		label:     label,
		vertex:    vertex,
		fragment:  fragment,
		layout:    layout,
		fields:    fields,
		blockSize: blockSize,
	}
	c.nextProgramID++
	c.programs[key] = p
	return p, nil
}

func (c *Context) createShaderModule(label, src string) (hal.ShaderModule, error) {
	words, err := compileWGSL(src)
	if err != nil {
		return nil, err
	}
	return c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
}
