package resource

import "math"

// Procedural unit primitives. Each fits in a unit bounding box centered
// at the origin, so node-level scale gives the final dimensions: a cube
// scaled by (w, h, d) spans those extents, a sphere scaled by 2r has
// radius r.

const (
	sphereStacks   = 16
	sphereSlices   = 32
	circleSegments = 32
)

// CubeMesh returns a unit cube with per-face normals and UVs.
func CubeMesh() *MeshData {
	// Four vertices per face so normals stay flat.
	faces := [6]struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	}
	uv := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	d := &MeshData{}
	for fi, f := range faces {
		base := uint32(fi * 4)
		for vi, p := range f.corners {
			d.Positions = append(d.Positions, p[0], p[1], p[2])
			d.Normals = append(d.Normals, f.normal[0], f.normal[1], f.normal[2])
			d.UVs = append(d.UVs, uv[vi][0], uv[vi][1])
		}
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return d
}

// SphereMesh returns a UV sphere of diameter 1.
func SphereMesh() *MeshData {
	d := &MeshData{}
	for stack := 0; stack <= sphereStacks; stack++ {
		phi := math.Pi * float64(stack) / sphereStacks
		y := 0.5 * math.Cos(phi)
		r := 0.5 * math.Sin(phi)
		for slice := 0; slice <= sphereSlices; slice++ {
			theta := 2 * math.Pi * float64(slice) / sphereSlices
			x := r * math.Cos(theta)
			z := r * math.Sin(theta)
			d.Positions = append(d.Positions, float32(x), float32(y), float32(z))
			// Unit sphere: the normal is the position direction.
			d.Normals = append(d.Normals, float32(2*x), float32(2*y), float32(2*z))
			d.UVs = append(d.UVs,
				float32(slice)/sphereSlices,
				float32(stack)/sphereStacks)
		}
	}
	cols := uint32(sphereSlices + 1)
	for stack := uint32(0); stack < sphereStacks; stack++ {
		for slice := uint32(0); slice < sphereSlices; slice++ {
			a := stack*cols + slice
			b := a + cols
			d.Indices = append(d.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return d
}

// CylinderMesh returns a cylinder of diameter 1 and height 1 along the
// y axis, with caps.
func CylinderMesh() *MeshData {
	d := &MeshData{}

	// Side wall.
	for seg := 0; seg <= circleSegments; seg++ {
		theta := 2 * math.Pi * float64(seg) / circleSegments
		x := float32(0.5 * math.Cos(theta))
		z := float32(0.5 * math.Sin(theta))
		nx := float32(math.Cos(theta))
		nz := float32(math.Sin(theta))
		u := float32(seg) / circleSegments
		d.Positions = append(d.Positions, x, -0.5, z, x, 0.5, z)
		d.Normals = append(d.Normals, nx, 0, nz, nx, 0, nz)
		d.UVs = append(d.UVs, u, 1, u, 0)
	}
	for seg := uint32(0); seg < circleSegments; seg++ {
		a := seg * 2
		d.Indices = append(d.Indices, a, a+1, a+2, a+2, a+1, a+3)
	}

	// Caps.
	appendCap(d, 0.5, [3]float32{0, 1, 0})
	appendCap(d, -0.5, [3]float32{0, -1, 0})
	return d
}

// appendCap adds a triangle-fan disc of radius 0.5 at height y.
func appendCap(d *MeshData, y float32, normal [3]float32) {
	center := uint32(d.VertexCount())
	d.Positions = append(d.Positions, 0, y, 0)
	d.Normals = append(d.Normals, normal[0], normal[1], normal[2])
	d.UVs = append(d.UVs, 0.5, 0.5)
	for seg := 0; seg <= circleSegments; seg++ {
		theta := 2 * math.Pi * float64(seg) / circleSegments
		x := float32(0.5 * math.Cos(theta))
		z := float32(0.5 * math.Sin(theta))
		d.Positions = append(d.Positions, x, y, z)
		d.Normals = append(d.Normals, normal[0], normal[1], normal[2])
		d.UVs = append(d.UVs, 0.5+x, 0.5+z)
	}
	for seg := uint32(0); seg < circleSegments; seg++ {
		a := center + 1 + seg
		if normal[1] > 0 {
			d.Indices = append(d.Indices, center, a+1, a)
		} else {
			d.Indices = append(d.Indices, center, a, a+1)
		}
	}
}

// ConeMesh returns a cone of base diameter 1 and height 1 along the y
// axis, apex up, with a base cap.
func ConeMesh() *MeshData {
	d := &MeshData{}

	// Slanted wall. The apex vertex is duplicated per segment so each
	// wall strip gets its own normal and UV seam.
	slant := float32(1 / math.Sqrt(1.25)) // normalizes (cos, 0.5, sin)
	for seg := 0; seg <= circleSegments; seg++ {
		theta := 2 * math.Pi * float64(seg) / circleSegments
		c := math.Cos(theta)
		s := math.Sin(theta)
		x := float32(0.5 * c)
		z := float32(0.5 * s)
		nx := float32(c) * slant
		ny := 0.5 * slant
		nz := float32(s) * slant
		u := float32(seg) / circleSegments
		d.Positions = append(d.Positions, x, -0.5, z, 0, 0.5, 0)
		d.Normals = append(d.Normals, nx, ny, nz, nx, ny, nz)
		d.UVs = append(d.UVs, u, 1, u, 0)
	}
	for seg := uint32(0); seg < circleSegments; seg++ {
		a := seg * 2
		d.Indices = append(d.Indices, a, a+1, a+2)
	}

	appendCap(d, -0.5, [3]float32{0, -1, 0})
	return d
}

// QuadMesh returns a unit plane in the xy plane facing +z.
func QuadMesh() *MeshData {
	return &MeshData{
		Positions: []float32{
			-0.5, -0.5, 0,
			0.5, -0.5, 0,
			0.5, 0.5, 0,
			-0.5, 0.5, 0,
		},
		Normals: []float32{
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
		},
		UVs: []float32{
			0, 1,
			1, 1,
			1, 0,
			0, 0,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// PlaneMesh builds a unit plane facing +z subdivided into usub by vsub
// cells, with UVs spanning the whole grid. Counts below one are
// clamped to one.
func PlaneMesh(usub, vsub int) *MeshData {
	if usub < 1 {
		usub = 1
	}
	if vsub < 1 {
		vsub = 1
	}
	d := &MeshData{}
	for j := 0; j <= vsub; j++ {
		v := float32(j) / float32(vsub)
		for i := 0; i <= usub; i++ {
			u := float32(i) / float32(usub)
			d.Positions = append(d.Positions, u-0.5, v-0.5, 0)
			d.Normals = append(d.Normals, 0, 0, 1)
			d.UVs = append(d.UVs, u, 1-v)
		}
	}
	cols := uint32(usub + 1)
	for j := 0; j < vsub; j++ {
		for i := 0; i < usub; i++ {
			a := uint32(j)*cols + uint32(i)
			b := a + 1
			c := a + cols
			e := c + 1
			d.Indices = append(d.Indices, a, b, e, a, e, c)
		}
	}
	return d
}
