package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLineBatchAccumulate(t *testing.T) {
	b := newLineBatch()
	if !b.empty() {
		t.Fatal("fresh batch not empty")
	}

	red := mgl32.Vec3{1, 0, 0}
	b.addLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, red)
	b.addLine(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, red)
	b.addPoint(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, 1})

	if b.empty() {
		t.Error("batch with vertices reports empty")
	}
	if got := len(b.lines[red]); got != 12 {
		t.Errorf("red line group holds %d floats, want 12", got)
	}
}

func TestLineBatchResetEmpties(t *testing.T) {
	b := newLineBatch()
	color := mgl32.Vec3{1, 1, 0}
	b.addLine(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, color)
	b.addPoint(mgl32.Vec3{2, 0, 0}, color)

	b.reset()
	if !b.empty() {
		t.Fatalf("empty() = false after reset: lines=%d points=%d", len(b.lines[color]), len(b.points[color]))
	}

	// The drained groups stay usable for the next frame.
	b.addLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, color)
	if b.empty() {
		t.Error("batch reports empty after adding to a reused group")
	}
	if got := len(b.lines[color]); got != 6 {
		t.Errorf("reused group holds %d floats, want 6", got)
	}
}
