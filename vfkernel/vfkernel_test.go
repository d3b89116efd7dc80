package vfkernel

import (
	"math/rand"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/radview/bvh"
	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/props"
)

// fullAbsorberAtlas returns an atlas where every element absorbs on first
// contact (alpha_ir=1), the "no reflections" condition the original
// backwards-pyramid scenario exercises first.
func fullAbsorberAtlas(n int) *props.Atlas {
	a := &props.Atlas{
		MaterialIndex: make([]int, n),
		AlphaIR:       make([]float64, n),
		TwoSides:      make([]bool, n),
	}
	for i := range a.AlphaIR {
		a.AlphaIR[i] = 1
	}
	return a
}

// mirrorAtlas returns an atlas where every element reflects forever
// (alpha_ir=0), the "full reflections" scenario.
func mirrorAtlas(n int) *props.Atlas {
	a := fullAbsorberAtlas(n)
	for i := range a.AlphaIR {
		a.AlphaIR[i] = 0
	}
	return a
}

func Test_vfkernel01(tst *testing.T) {

	chk.PrintTitle("Test vfkernel01: tetrahedron cavity, full absorption (backwards-pyramid, no reflections)")

	m, err := mesh.Load("../testdata/tetra_cavity.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	chk.IntAssert(m.NElements(), 4)
	tree := bvh.Build(m)
	atlas := fullAbsorberAtlas(4)

	rng := rand.New(rand.NewSource(42))
	row := make([]float64, 4)
	const rays = 4000
	ElementElement(m, tree, atlas, 0, rays, 10, row, rng)

	// a closed, fully-absorbing, regular-tetrahedron cavity: by symmetry
	// element 0 sees each of the other 3 faces equally (~1/3) and never
	// itself (row[0] == 0, no self-intersection on a convex cavity).
	chk.Scalar(tst, "row[0] (self)", 1e-9, row[0], 0)
	tol := 0.03
	for j := 1; j < 4; j++ {
		if row[j] < 1.0/3-tol || row[j] > 1.0/3+tol {
			tst.Errorf("row[%d] = %g, want ~1/3 (tol %g)", j, row[j], tol)
		}
	}
	sum := row[0] + row[1] + row[2] + row[3]
	if sum < 1-tol || sum > 1+tol {
		tst.Errorf("row sum = %g, want ~1 (closed cavity, full absorption)", sum)
	}
}

func Test_vfkernel02(tst *testing.T) {

	chk.PrintTitle("Test vfkernel02: tetrahedron cavity, full reflection never absorbs")

	m, err := mesh.Load("../testdata/tetra_cavity.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := bvh.Build(m)
	atlas := mirrorAtlas(4)

	rng := rand.New(rand.NewSource(7))
	row := make([]float64, 4)
	ElementElement(m, tree, atlas, 0, 500, 10, row, rng)

	sum := row[0] + row[1] + row[2] + row[3]
	chk.Scalar(tst, "row sum with alpha_ir=0 everywhere", 1e-12, sum, 0)
}

func Test_vfkernel03(tst *testing.T) {

	chk.PrintTitle("Test vfkernel03: BuildMatrix assembles one row per element")

	m, err := mesh.Load("../testdata/tetra_cavity.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := bvh.Build(m)
	atlas := fullAbsorberAtlas(4)

	runSequential := func(n int, work func(row int, rng *rand.Rand)) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < n; i++ {
			work(i, rng)
		}
	}

	mat := BuildMatrix(m, tree, atlas, 1000, 10, runSequential)
	chk.IntAssert(mat.Rows, 4)
	chk.IntAssert(mat.Cols, 4)
	for i := 0; i < 4; i++ {
		if mat.Data[i][i] != 0 {
			tst.Errorf("diagonal element %d should be zero (no self-view on a convex cavity face)", i)
		}
	}
}

func Test_vfkernel04(tst *testing.T) {

	chk.PrintTitle("Test vfkernel04: ElementSun is zero when the element's own centroid ray is occluded")

	m, err := mesh.Load("../testdata/occluder.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := bvh.Build(m)

	out := ElementSun(m, tree, [3]float64{0, 0, 1})
	chk.IntAssert(len(out), 3)
	chk.Scalar(tst, "element 0 (blocked)", 1e-9, float64(out[0]), 0)
	if out[1] <= 0 {
		tst.Errorf("element 1 should see the sun, got %g", out[1])
	}
}

func Test_vfkernel05(tst *testing.T) {

	chk.PrintTitle("Test vfkernel05: ElementSun scales with cos(incidence)")

	m, err := mesh.Load("../testdata/two_facing.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := bvh.Build(m)

	// element 0's normal is +z; a straight-overhead sun gives cos=1, but
	// the ray toward the sun is blocked by element 1 directly above it at
	// z=2, so visibility is zero despite favorable incidence.
	out := ElementSun(m, tree, [3]float64{0, 0, 1})
	chk.Scalar(tst, "element 0 occluded by element 1 overhead", 1e-9, float64(out[0]), 0)

	// element 1 faces -z; looking further +z (away from element 0) it is
	// unobstructed, and cos(incidence) with a straight +z sun is 1.
	chk.Scalar(tst, "element 1 unobstructed, normal incidence", 1e-6, float64(out[1]), 1)
}

func Test_vfkernel06(tst *testing.T) {

	chk.PrintTitle("Test vfkernel06: ElementEarth IR and albedo are non-negative and bounded")

	m, err := mesh.Load("../testdata/two_facing.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := bvh.Build(m)

	rng := rand.New(rand.NewSource(11))
	res := ElementEarth(m, tree, 2000, [3]float64{0, 0, -1}, [3]float64{1, 0, 0}, 0.5, rng)

	chk.IntAssert(len(res.IR), 2)
	chk.IntAssert(len(res.Albedo), 2)
	for i, v := range res.IR {
		if v < 0 {
			tst.Errorf("IR[%d] = %g is negative", i, v)
		}
	}
	for i, v := range res.Albedo {
		if v < 0 || v > 1 {
			tst.Errorf("Albedo[%d] = %g out of [0,1]", i, v)
		}
	}
	// element 0 is the lower triangle (z=0) and Earth is at -z: nothing
	// lies between element 0 and the Earth, so every ray it casts misses
	// the mesh and it should collect a positive IR contribution.
	if res.IR[0] <= 0 {
		tst.Errorf("element 0 (unobstructed toward Earth) should have positive IR, got %g", res.IR[0])
	}
}

func Test_vfkernel07(tst *testing.T) {

	chk.PrintTitle("Test vfkernel07: penumbraEdge zeroes deep-umbra rays and passes sunlit ones")

	// p=0: hard shadow edge at the Earth-facing horizon (x=0).
	chk.Scalar(tst, "hard shadow, deep umbra", 1e-12, penumbraEdge(-1, 0), 0)
	chk.Scalar(tst, "hard shadow, fully sunlit", 1e-12, penumbraEdge(1, 0), 1)

	// p=1: the transition spans the full hemisphere; even x=-1 passes.
	got := penumbraEdge(-1, 1)
	if got <= 0 {
		tst.Errorf("p=1 should let x=-1 through with nonzero weight, got %g", got)
	}
}
