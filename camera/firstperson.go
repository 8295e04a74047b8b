package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/event"
)

// FirstPerson is a free-flying camera: WASD and the arrow keys move,
// dragging with the left button looks around.
type FirstPerson struct {
	eye   mgl32.Vec3
	yaw   float32
	pitch float32

	moveStep  float32
	lookSpeed float32

	looking bool
	held    map[event.Key]bool

	lastX, lastY float64
}

// NewFirstPerson creates a first-person camera at eye looking toward at.
func NewFirstPerson(eye, at mgl32.Vec3) *FirstPerson {
	c := &FirstPerson{
		moveStep:  0.1,
		lookSpeed: 0.005,
		held:      make(map[event.Key]bool),
	}
	c.LookAt(eye, at)
	return c
}

// LookAt repositions the camera and aims it at the given point.
func (c *FirstPerson) LookAt(eye, at mgl32.Vec3) {
	c.eye = eye
	d := at.Sub(eye)
	if d.Len() < 1e-6 {
		return
	}
	c.yaw = float32(math.Atan2(float64(d.Z()), float64(d.X())))
	c.pitch = clampPitch(float32(math.Acos(float64(d.Y() / d.Len()))))
}

// forward returns the unit view direction.
func (c *FirstPerson) forward() mgl32.Vec3 {
	sp := float32(math.Sin(float64(c.pitch)))
	return mgl32.Vec3{
		sp * float32(math.Cos(float64(c.yaw))),
		float32(math.Cos(float64(c.pitch))),
		sp * float32(math.Sin(float64(c.yaw))),
	}
}

// EyePosition returns the camera position in world space.
func (c *FirstPerson) EyePosition() mgl32.Vec3 { return c.eye }

// ViewTransform returns the world-to-eye matrix.
func (c *FirstPerson) ViewTransform() mgl32.Mat4 {
	return mgl32.LookAtV(c.eye, c.eye.Add(c.forward()), mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the viewport.
func (c *FirstPerson) Projection(width, height uint32) mgl32.Mat4 {
	return perspective(width, height)
}

// HandleEvent consumes one input event.
func (c *FirstPerson) HandleEvent(e event.Event) {
	switch e.Kind {
	case event.KindKey:
		switch e.Action {
		case event.Press, event.Repeat:
			c.held[e.Key] = true
		case event.Release:
			delete(c.held, e.Key)
		}
	case event.KindMouseButton:
		if e.Button == event.MouseButtonLeft {
			c.looking = e.Action == event.Press
		}
		c.lastX, c.lastY = e.X, e.Y
	case event.KindCursorPos:
		dx := float32(e.X - c.lastX)
		dy := float32(e.Y - c.lastY)
		c.lastX, c.lastY = e.X, e.Y
		if c.looking {
			c.yaw += dx * c.lookSpeed
			c.pitch = clampPitch(c.pitch - dy*c.lookSpeed)
		}
	case event.KindScroll:
		c.eye = c.eye.Add(c.forward().Mul(float32(e.DY) * c.moveStep))
	}
}

// Update applies one step of motion for each held movement key.
func (c *FirstPerson) Update() {
	fwd := c.forward()
	// Move in the ground plane; vertical motion comes from pitch only
	// for scroll zoom.
	flat := mgl32.Vec3{fwd.X(), 0, fwd.Z()}
	if flat.Len() > 1e-6 {
		flat = flat.Normalize()
	}
	right := flat.Cross(mgl32.Vec3{0, 1, 0})

	var move mgl32.Vec3
	if c.held[event.KeyW] || c.held[event.KeyUp] {
		move = move.Add(flat)
	}
	if c.held[event.KeyS] || c.held[event.KeyDown] {
		move = move.Sub(flat)
	}
	if c.held[event.KeyD] || c.held[event.KeyRight] {
		move = move.Add(right)
	}
	if c.held[event.KeyA] || c.held[event.KeyLeft] {
		move = move.Sub(right)
	}
	if move.Len() > 1e-6 {
		c.eye = c.eye.Add(move.Normalize().Mul(c.moveStep))
	}
}
