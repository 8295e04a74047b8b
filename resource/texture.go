package resource

import (
	"fmt"
	"image"
	stddraw "image/draw"
	"math/bits"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/g3d/context"
)

// Texture is a sampled 2D texture with a full mip chain.
type Texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// View returns the texture view for binding.
func (t *Texture) View() hal.TextureView { return t.view }

// Size returns the base level dimensions in pixels.
func (t *Texture) Size() (uint32, uint32) { return t.width, t.height }

func mipLevelCount(w, h uint32) uint32 {
	m := w
	if h > m {
		m = h
	}
	return uint32(bits.Len32(m))
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	stddraw.Draw(rgba, rgba.Bounds(), img, b.Min, stddraw.Src)
	return rgba
}

// UploadTexture converts img to RGBA, builds a mip chain with
// Catmull-Rom downscaling and uploads every level.
func UploadTexture(ctx *context.Context, label string, img image.Image) (*Texture, error) {
	rgba := toRGBA(img)
	b := rgba.Bounds()
	w := uint32(b.Dx())
	h := uint32(b.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("resource: texture %s is empty", label)
	}
	levels := mipLevelCount(w, h)

	device := ctx.Device()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("resource: create texture %s: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("resource: create texture view %s: %w", label, err)
	}

	queue := ctx.Queue()
	level := rgba
	for mip := uint32(0); mip < levels; mip++ {
		lw := uint32(level.Bounds().Dx())
		lh := uint32(level.Bounds().Dy())
		queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, MipLevel: mip},
			level.Pix,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(level.Stride),
				RowsPerImage: lh,
			},
			&hal.Extent3D{Width: lw, Height: lh, DepthOrArrayLayers: 1},
		)
		if mip+1 == levels {
			break
		}
		nw := lw / 2
		if nw == 0 {
			nw = 1
		}
		nh := lh / 2
		if nh == 0 {
			nh = 1
		}
		next := image.NewRGBA(image.Rect(0, 0, int(nw), int(nh)))
		draw.CatmullRom.Scale(next, next.Bounds(), level, level.Bounds(), draw.Src, nil)
		level = next
	}

	return &Texture{tex: tex, view: view, width: w, height: h}, nil
}

// Destroy releases the GPU texture.
func (t *Texture) Destroy(ctx *context.Context) {
	if t.tex == nil {
		return
	}
	device := ctx.Device()
	device.DestroyTextureView(t.view)
	device.DestroyTexture(t.tex)
	t.view = nil
	t.tex = nil
}
