package context

import "errors"

// Context errors, grouped by severity.
//
// Device-level errors (ErrDeviceLost, ErrFrameAlreadyOpen, ErrFrameNotOpen)
// are fatal: the frame loop must stop and the context must be torn down.
// ErrSurfaceUnavailable is recoverable: reconfigure the surface and retry.
// The remaining errors signal caller bugs and are reported loudly rather
// than worked around.
var (
	// ErrSurfaceUnavailable is returned by BeginFrame when the swapchain
	// cannot produce an image, typically after a resize. The caller must
	// reconfigure the surface and retry; the context state is unchanged.
	ErrSurfaceUnavailable = errors.New("context: surface unavailable, reconfigure and retry")

	// ErrDeviceLost is returned once the device or surface is irrecoverably
	// gone. Every subsequent call fails with it until the context is torn
	// down and reinitialized.
	ErrDeviceLost = errors.New("context: device lost")

	// ErrFrameAlreadyOpen is returned by BeginFrame when a frame is already
	// open. Begin/End imbalance is a fatal contract violation.
	ErrFrameAlreadyOpen = errors.New("context: frame already open")

	// ErrFrameNotOpen is returned by EndFrame without a matching BeginFrame.
	ErrFrameNotOpen = errors.New("context: no frame open")

	// ErrNoActiveRenderPass is returned by draw calls recorded outside an
	// open render pass. This is a caller bug, not a runtime condition.
	ErrNoActiveRenderPass = errors.New("context: no active render pass")

	// ErrRenderPassAlreadyOpen is returned by BeginRenderPass while a pass
	// is still open.
	ErrRenderPassAlreadyOpen = errors.New("context: render pass already open")

	// ErrNoProgramBound is returned by uniform and draw calls with no
	// program bound.
	ErrNoProgramBound = errors.New("context: no program bound")

	// ErrNoVertexBuffer is returned by draw calls with no position buffer
	// bound.
	ErrNoVertexBuffer = errors.New("context: no vertex buffer bound")

	// ErrNoIndexBuffer is returned by DrawElements with no index buffer
	// bound.
	ErrNoIndexBuffer = errors.New("context: no index buffer bound")

	// ErrBufferReleased is returned when a buffer handle is used after
	// DestroyBuffer. Using released handles is a caller bug.
	ErrBufferReleased = errors.New("context: buffer has been released")

	// ErrUnsupportedShaderFormat is returned by LinkProgram for shader
	// sources the backend cannot consume (legacy GLSL). Callers may skip
	// the offending material instead of aborting the frame.
	ErrUnsupportedShaderFormat = errors.New("context: unsupported shader source format")

	// ErrUnknownUniform is returned when setting a uniform the bound
	// program's layout does not declare.
	ErrUnknownUniform = errors.New("context: uniform not declared in program layout")

	// ErrUniformBlockOverflow is returned when a uniform layout runs past
	// its declared block size.
	ErrUniformBlockOverflow = errors.New("context: uniform layout exceeds block size")
)
