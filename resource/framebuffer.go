package resource

import (
	"github.com/gogpu/g3d/context"
)

// Framebuffer is a named offscreen render target. Post-processing
// effects render the scene into one and sample it in a later pass.
type Framebuffer struct {
	target *context.RenderTexture
}

// NewFramebuffer allocates an offscreen target matching the surface.
func NewFramebuffer(ctx *context.Context, label string) (*Framebuffer, error) {
	t, err := ctx.CreateRenderTexture(label)
	if err != nil {
		return nil, err
	}
	return &Framebuffer{target: t}, nil
}

// Target returns the underlying render texture.
func (f *Framebuffer) Target() *context.RenderTexture { return f.target }

// Destroy releases the GPU texture.
func (f *Framebuffer) Destroy(ctx *context.Context) {
	ctx.DestroyRenderTexture(f.target)
}
