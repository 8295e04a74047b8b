// Package scene implements the retained scene graph: a tree of nodes
// with local transforms, lazily cached world transforms and optional
// renderable objects referencing shared GPU assets.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a translation, rotation and non-uniform scale, composed
// as T * R * S.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns the no-op transform.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform into a 4x4 matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	m = m.Mul4(t.Rotation.Mat4())
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
