package context

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderTexture is an offscreen color target in the surface format. A
// pass can render into it and a later pass can sample it, which is how
// full-screen post-processing effects are chained.
type RenderTexture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// View returns the texture view, usable both as a pass target and as a
// sampled texture binding.
func (t *RenderTexture) View() hal.TextureView { return t.view }

// Size returns the texture dimensions in pixels.
func (t *RenderTexture) Size() (uint32, uint32) { return t.width, t.height }

// CreateRenderTexture allocates an offscreen target matching the
// current surface size and format.
func (c *Context) CreateRenderTexture(label string) (*RenderTexture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return nil, err
	}
	w, h := c.surface.Size()
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        c.surface.Format(),
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("context: create render texture %q: %w", label, err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		return nil, fmt.Errorf("context: create render texture view %q: %w", label, err)
	}
	return &RenderTexture{tex: tex, view: view, width: w, height: h}, nil
}

// DestroyRenderTexture releases the offscreen target.
func (c *Context) DestroyRenderTexture(t *RenderTexture) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t == nil || t.tex == nil || c.state == StateFaulted {
		return
	}
	c.device.DestroyTextureView(t.view)
	c.device.DestroyTexture(t.tex)
	t.view = nil
	t.tex = nil
}
