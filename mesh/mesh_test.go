package mesh

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_mesh01(tst *testing.T) {

	chk.PrintTitle("Test mesh01: load two_facing.vtk")

	m, err := Load("../testdata/two_facing.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	chk.IntAssert(m.NElements(), 2)

	chk.Vector(tst, "element 0 normal", 1e-12, m.Tris[0].Normal[:], []float64{0, 0, 1})
	chk.Vector(tst, "element 1 normal", 1e-12, m.Tris[1].Normal[:], []float64{0, 0, -1})

	c0 := m.Centroid(0)
	chk.Scalar(tst, "centroid0.z", 1e-12, c0[2], 0)
}

func Test_mesh02(tst *testing.T) {

	chk.PrintTitle("Test mesh02: bad mesh files are rejected")

	if _, err := Load("../testdata/does_not_exist.vtk"); err == nil {
		tst.Errorf("expected error for missing file")
	}
}

func Test_mesh03(tst *testing.T) {

	chk.PrintTitle("Test mesh03: Rotate is a rigid transform")

	m, err := Load("../testdata/two_facing.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}

	axis, angle := [3]float64{0, 0, 1}, math.Pi/2
	m.Rotate(axis, angle)

	// a 90deg rotation about +z sends (0,0,1) normal to (0,0,1): z-axis
	// rotation leaves z-aligned normals unchanged.
	chk.Vector(tst, "element 0 normal after Rz(90deg)", 1e-9, m.Tris[0].Normal[:], []float64{0, 0, 1})

	// and (1,0,0) should rotate to (0,1,0)
	got := mulMat3Vec(rotationMatrix(axis, angle), [3]float64{1, 0, 0})
	chk.Vector(tst, "Rz(90deg)*ex", 1e-9, got[:], []float64{0, 1, 0})
}

func Test_mesh04(tst *testing.T) {

	chk.PrintTitle("Test mesh04: LookAtSun aligns +Z with sunDir")

	axis, angle := LookAtSun([3]float64{0, 0, 5})
	chk.Scalar(tst, "angle for sun already on +Z", 1e-12, angle, 0)
	_ = axis

	axis, angle = LookAtSun([3]float64{1, 0, 0})
	z := [3]float64{0, 0, 1}
	rz := mulMat3Vec(rotationMatrix(axis, angle), z)
	chk.Vector(tst, "R*ez aligned with sunDir", 1e-9, rz[:], []float64{1, 0, 0})
}
