package resource

import (
	"github.com/gogpu/g3d/context"
)

// Material pairs a linked shader program with the state needed to draw
// with it. Materials are cheap: shader modules are deduplicated inside
// the context, so two materials over the same sources share them.
type Material struct {
	program *context.Program
}

// NewMaterial links the given WGSL pair through ctx and wraps it.
// Linking a legacy GLSL source fails with
// context.ErrUnsupportedShaderFormat; the renderer skips such
// materials instead of aborting the frame.
func NewMaterial(ctx *context.Context, label, vertexSrc, fragmentSrc string, layout context.UniformLayout) (*Material, error) {
	p, err := ctx.LinkProgram(label, vertexSrc, fragmentSrc, layout)
	if err != nil {
		return nil, err
	}
	return &Material{program: p}, nil
}

// Program returns the linked program.
func (m *Material) Program() *context.Program { return m.program }

// Activate binds the material's program on the context.
func (m *Material) Activate(ctx *context.Context) error {
	return ctx.UseProgram(m.program)
}
