package context

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Surface abstracts the presentable target a Context renders into. Hosts
// back it with a windowing swapchain; tests back it with an offscreen
// texture. All methods are called from the frame-loop goroutine only.
type Surface interface {
	// Acquire returns the texture view for the next frame. It returns
	// an error when no image is available, for example mid-resize. The
	// caller reconfigures and retries.
	Acquire() (hal.TextureView, error)

	// Present hands the acquired image back for display. Implementations
	// without a swapchain (offscreen targets) may make it a no-op.
	Present()

	// Configure resizes the surface backing store.
	Configure(width, height uint32)

	// Size reports the current backing store size in pixels.
	Size() (width, height uint32)

	// Format reports the color format render pipelines must target.
	Format() gputypes.TextureFormat
}
