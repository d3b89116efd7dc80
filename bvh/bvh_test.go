package bvh

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/radview/mesh"
)

func Test_bvh01(tst *testing.T) {

	chk.PrintTitle("Test bvh01: FirstHit on two facing triangles")

	m, err := mesh.Load("../testdata/two_facing.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := Build(m)

	// a ray from just above element 0, going +z, must hit element 1
	origin := [3]float64{0.2, 0.2, Eps}
	dir := [3]float64{0, 0, 1}
	hit := tree.FirstHit(origin, dir)
	chk.IntAssert(hit, 1)

	// the reverse ray from element 1 going -z must hit element 0
	origin2 := [3]float64{0.2, 0.2, 2 - Eps}
	dir2 := [3]float64{0, 0, -1}
	hit2 := tree.FirstHit(origin2, dir2)
	chk.IntAssert(hit2, 0)

	// a ray that misses both triangles entirely (outside their footprint)
	miss := tree.FirstHit([3]float64{5, 5, 0}, [3]float64{0, 0, 1})
	chk.IntAssert(miss, Miss)
}

func Test_bvh02(tst *testing.T) {

	chk.PrintTitle("Test bvh02: occluder blocks element 0 but not element 1")

	m, err := mesh.Load("../testdata/occluder.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := Build(m)

	c0 := m.Centroid(0)
	o0 := [3]float64{c0[0], c0[1], c0[2] + Eps}
	chk.IntAssert(tree.FirstHit(o0, [3]float64{0, 0, 1}), 2) // hits the blocker (element 2)

	c1 := m.Centroid(1)
	o1 := [3]float64{c1[0], c1[1], c1[2] + Eps}
	chk.IntAssert(tree.FirstHit(o1, [3]float64{0, 0, 1}), Miss) // nothing above element 1
}

func Test_bvh03(tst *testing.T) {

	chk.PrintTitle("Test bvh03: FirstHitPoint returns the intersection point")

	m, err := mesh.Load("../testdata/two_facing.vtk")
	if err != nil {
		tst.Errorf("Load failed: %v", err)
		return
	}
	tree := Build(m)

	id, p, ok := tree.FirstHitPoint([3]float64{0.2, 0.2, Eps}, [3]float64{0, 0, 1})
	if !ok {
		tst.Errorf("expected a hit")
		return
	}
	chk.IntAssert(id, 1)
	chk.Scalar(tst, "hit point z", 1e-9, p[2], 2)
}
