// Package camera provides the view and projection half of the render
// state: an orbiting arc-ball camera and a free-flying first-person
// camera, both driven by the engine's event stream.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/event"
)

// Projection defaults shared by both cameras: a 45 degree vertical
// field of view with generous clip planes.
const (
	defaultNear = 0.1
	defaultFar  = 1024.0
)

// Camera produces the view and projection matrices for a frame and
// consumes input events between frames.
type Camera interface {
	// ViewTransform returns the world-to-eye matrix.
	ViewTransform() mgl32.Mat4

	// Projection returns the projection matrix for a viewport of the
	// given pixel size.
	Projection(width, height uint32) mgl32.Mat4

	// EyePosition returns the camera position in world space, used for
	// headlight placement.
	EyePosition() mgl32.Vec3

	// HandleEvent feeds one input event to the camera.
	HandleEvent(e event.Event)

	// Update advances camera motion once per frame, after the frame's
	// events have been handled.
	Update()
}

func perspective(width, height uint32) mgl32.Mat4 {
	aspect := float32(1)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(45), aspect, defaultNear, defaultFar)
}
