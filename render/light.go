// Package render drives frames: it walks a scene graph, feeds each
// renderable object's matrices and material state into the graphics
// context, batches debug lines and points, and applies optional
// full-screen post-processing effects.
package render

import "github.com/go-gl/mathgl/mgl32"

// Light is the single point light illuminating the scene. It either
// sits at a fixed world position or sticks to the camera eye.
type Light struct {
	absolute bool
	pos      mgl32.Vec3
}

// LightStickToCamera returns a light that follows the camera eye, so
// whatever the camera looks at is lit head-on.
func LightStickToCamera() Light {
	return Light{}
}

// LightAbsolute returns a light fixed at a world-space position.
func LightAbsolute(pos mgl32.Vec3) Light {
	return Light{absolute: true, pos: pos}
}

// Position resolves the light's world position for a frame rendered
// from the given camera eye.
func (l Light) Position(eye mgl32.Vec3) mgl32.Vec3 {
	if l.absolute {
		return l.pos
	}
	return eye
}
