package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/event"
)

// ArcBall orbit limits. The pitch stays strictly inside (0, pi) so the
// eye never crosses the poles, and the distance stays positive so the
// view matrix never degenerates.
const (
	minPitch    = 0.01
	maxPitch    = math.Pi - 0.01
	minDistance = 1e-5
)

// ArcBall orbits a focus point at a spherical (yaw, pitch, distance)
// offset. Dragging with the left button rotates, dragging with the
// right button pans the focus, scrolling zooms.
type ArcBall struct {
	at    mgl32.Vec3
	yaw   float32
	pitch float32
	dist  float32

	rotateSpeed float32
	zoomSpeed   float32
	panSpeed    float32

	rotating bool
	panning  bool

	lastX, lastY float64
}

// NewArcBall creates an arc-ball looking from eye toward at.
func NewArcBall(eye, at mgl32.Vec3) *ArcBall {
	c := &ArcBall{
		rotateSpeed: 0.005,
		zoomSpeed:   0.9,
		panSpeed:    0.005,
	}
	c.LookAt(eye, at)
	return c
}

// LookAt repositions the camera by decomposing the eye offset into
// yaw, pitch and distance around at.
func (c *ArcBall) LookAt(eye, at mgl32.Vec3) {
	d := eye.Sub(at)
	dist := d.Len()
	c.at = at
	c.dist = clampDist(dist)
	if dist < minDistance {
		c.yaw = 0
		c.pitch = math.Pi / 2
		return
	}
	c.pitch = clampPitch(float32(math.Acos(float64(d.Y() / dist))))
	c.yaw = float32(math.Atan2(float64(d.Z()), float64(d.X())))
}

// At returns the focus point.
func (c *ArcBall) At() mgl32.Vec3 { return c.at }

// Distance returns the eye distance from the focus point.
func (c *ArcBall) Distance() float32 { return c.dist }

// EyePosition returns the camera position in world space.
func (c *ArcBall) EyePosition() mgl32.Vec3 {
	sp := float32(math.Sin(float64(c.pitch)))
	return c.at.Add(mgl32.Vec3{
		c.dist * sp * float32(math.Cos(float64(c.yaw))),
		c.dist * float32(math.Cos(float64(c.pitch))),
		c.dist * sp * float32(math.Sin(float64(c.yaw))),
	})
}

// ViewTransform returns the world-to-eye matrix.
func (c *ArcBall) ViewTransform() mgl32.Mat4 {
	return mgl32.LookAtV(c.EyePosition(), c.at, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the viewport.
func (c *ArcBall) Projection(width, height uint32) mgl32.Mat4 {
	return perspective(width, height)
}

// HandleEvent consumes one input event.
func (c *ArcBall) HandleEvent(e event.Event) {
	switch e.Kind {
	case event.KindMouseButton:
		pressed := e.Action == event.Press
		switch e.Button {
		case event.MouseButtonLeft:
			c.rotating = pressed
		case event.MouseButtonRight:
			c.panning = pressed
		}
		c.lastX, c.lastY = e.X, e.Y
	case event.KindCursorPos:
		dx := float32(e.X - c.lastX)
		dy := float32(e.Y - c.lastY)
		c.lastX, c.lastY = e.X, e.Y
		if c.rotating {
			c.yaw += dx * c.rotateSpeed
			c.pitch = clampPitch(c.pitch - dy*c.rotateSpeed)
		}
		if c.panning {
			c.pan(dx, dy)
		}
	case event.KindScroll:
		c.Zoom(float32(e.DY))
	}
}

// Zoom moves the eye toward (positive steps) or away from the focus.
func (c *ArcBall) Zoom(steps float32) {
	factor := float32(math.Pow(float64(c.zoomSpeed), float64(steps)))
	c.dist = clampDist(c.dist * factor)
}

// pan shifts the focus point in the view plane, scaled by distance so
// the motion tracks the cursor regardless of zoom.
func (c *ArcBall) pan(dx, dy float32) {
	view := c.ViewTransform()
	right := mgl32.Vec3{view[0], view[4], view[8]}
	up := mgl32.Vec3{view[1], view[5], view[9]}
	scale := c.panSpeed * c.dist
	c.at = c.at.Sub(right.Mul(dx * scale)).Add(up.Mul(dy * scale))
}

// Update is a no-op; the arc-ball has no per-frame motion.
func (c *ArcBall) Update() {}

func clampPitch(p float32) float32 {
	if p < minPitch {
		return minPitch
	}
	if p > maxPitch {
		return maxPitch
	}
	return p
}

func clampDist(d float32) float32 {
	if d < minDistance {
		return minDistance
	}
	return d
}
