// Package bvh implements a bounding-volume hierarchy over a triangle mesh,
// used to accelerate the ray queries the view-factor kernels depend on.
package bvh

import (
	"math"
	"sort"

	"github.com/dpedroso/radview/mesh"
)

// Eps is the forward ray-origin displacement, in mesh units, used
// throughout the preprocessor to avoid self-intersection acne.
const Eps = 1e-4

// Miss is the sentinel element id returned by FirstHit when a ray hits
// nothing.
const Miss = -1

type box struct {
	lo, hi [3]float64
}

func (b box) union(o box) box {
	var r box
	for k := 0; k < 3; k++ {
		r.lo[k] = math.Min(b.lo[k], o.lo[k])
		r.hi[k] = math.Max(b.hi[k], o.hi[k])
	}
	return r
}

func triBox(t *mesh.Triangle) box {
	b := box{lo: t.V[0], hi: t.V[0]}
	for _, v := range t.V[1:] {
		for k := 0; k < 3; k++ {
			b.lo[k] = math.Min(b.lo[k], v[k])
			b.hi[k] = math.Max(b.hi[k], v[k])
		}
	}
	return b
}

func (b box) hit(origin, inv [3]float64) bool {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for k := 0; k < 3; k++ {
		t0 := (b.lo[k] - origin[k]) * inv[k]
		t1 := (b.hi[k] - origin[k]) * inv[k]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmax < tmin {
			return false
		}
	}
	return tmax >= 0
}

type node struct {
	bound       box
	left, right int // node indices, -1 if leaf
	start, n    int // leaf range into Tree.order
}

// Tree is the opaque acceleration structure built once over a mesh.
type Tree struct {
	mesh  *mesh.Mesh
	nodes []node
	order []int // triangle indices, reordered by the build
	root  int
}

// Build constructs a BVH over m. The mesh must not be mutated afterwards
// without rebuilding.
func Build(m *mesh.Mesh) *Tree {
	n := m.NElements()
	t := &Tree{mesh: m, order: make([]int, n)}
	for i := range t.order {
		t.order[i] = i
	}
	if n == 0 {
		return t
	}
	t.root = t.build(0, n)
	return t
}

const leafSize = 4

func (t *Tree) build(start, n int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{})

	var bound box
	for i := 0; i < n; i++ {
		b := triBox(&t.mesh.Tris[t.order[start+i]])
		if i == 0 {
			bound = b
		} else {
			bound = bound.union(b)
		}
	}

	if n <= leafSize {
		t.nodes[idx] = node{bound: bound, left: -1, right: -1, start: start, n: n}
		return idx
	}

	extent := [3]float64{bound.hi[0] - bound.lo[0], bound.hi[1] - bound.lo[1], bound.hi[2] - bound.lo[2]}
	axis := 0
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}

	slice := t.order[start : start+n]
	sort.Slice(slice, func(i, j int) bool {
		ci := centroidAxis(&t.mesh.Tris[slice[i]], axis)
		cj := centroidAxis(&t.mesh.Tris[slice[j]], axis)
		return ci < cj
	})

	mid := n / 2
	left := t.build(start, mid)
	right := t.build(start+mid, n-mid)
	t.nodes[idx] = node{bound: bound, left: left, right: right, start: start, n: n}
	return idx
}

func centroidAxis(tr *mesh.Triangle, axis int) float64 {
	return (tr.V[0][axis] + tr.V[1][axis] + tr.V[2][axis]) / 3
}

// rayTriangle implements the Möller–Trumbore intersection test. Returns
// whether the ray hits the triangle at a positive parameter t.
func rayTriangle(origin, dir [3]float64, tr *mesh.Triangle) (t float64, ok bool) {
	const eps = 1e-12
	e1 := sub(tr.V[1], tr.V[0])
	e2 := sub(tr.V[2], tr.V[0])
	pvec := cross(dir, e2)
	det := dot(e1, pvec)
	if math.Abs(det) < eps {
		return 0, false
	}
	invDet := 1 / det
	tvec := sub(origin, tr.V[0])
	u := dot(tvec, pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}
	qvec := cross(tvec, e1)
	v := dot(dir, qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}
	tt := dot(e2, qvec) * invDet
	if tt <= 0 {
		return 0, false
	}
	return tt, true
}

func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func dot(a, b [3]float64) float64    { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func invDir(dir [3]float64) [3]float64 {
	var inv [3]float64
	for k := 0; k < 3; k++ {
		if dir[k] == 0 {
			inv[k] = math.Inf(1)
		} else {
			inv[k] = 1 / dir[k]
		}
	}
	return inv
}

// FirstHit returns the index of the first triangle the ray (origin,
// direction) intersects, or Miss. The caller is responsible for offsetting
// origin by Eps along direction before calling.
func (t *Tree) FirstHit(origin, direction [3]float64) int {
	if len(t.mesh.Tris) == 0 {
		return Miss
	}
	best := Miss
	bestT := math.Inf(1)
	inv := invDir(direction)
	t.walk(t.root, origin, direction, inv, func(leafStart, leafN int) {
		for i := 0; i < leafN; i++ {
			idx := t.order[leafStart+i]
			if tt, ok := rayTriangle(origin, direction, &t.mesh.Tris[idx]); ok && tt < bestT {
				bestT = tt
				best = idx
			}
		}
	})
	return best
}

// FirstHitPoint is FirstHit plus the hit location, for callers that need to
// continue a ray from the intersection (e.g. a reflection walk).
func (t *Tree) FirstHitPoint(origin, direction [3]float64) (elementID int, point [3]float64, ok bool) {
	id := t.FirstHit(origin, direction)
	if id == Miss {
		return Miss, [3]float64{}, false
	}
	tt, _ := rayTriangle(origin, direction, &t.mesh.Tris[id])
	p := [3]float64{
		origin[0] + direction[0]*tt,
		origin[1] + direction[1]*tt,
		origin[2] + direction[2]*tt,
	}
	return id, p, true
}

// AnyHit reports, for each (origin, direction) pair, whether the ray hits
// any triangle.
func (t *Tree) AnyHit(origins, directions [][3]float64) []bool {
	out := make([]bool, len(origins))
	for i := range origins {
		out[i] = t.FirstHit(origins[i], directions[i]) != Miss
	}
	return out
}

// Hit is the result of a batched first-hit query: which ray, which
// triangle, and where.
type Hit struct {
	RayID     int
	ElementID int
	Point     [3]float64
}

// Hits returns, for each ray that hits something, the single first-hit
// tuple. Rays that miss are absent from the result.
func (t *Tree) Hits(origins, directions [][3]float64) []Hit {
	var out []Hit
	for i := range origins {
		id := t.FirstHit(origins[i], directions[i])
		if id == Miss {
			continue
		}
		tt, _ := rayTriangle(origins[i], directions[i], &t.mesh.Tris[id])
		p := [3]float64{
			origins[i][0] + directions[i][0]*tt,
			origins[i][1] + directions[i][1]*tt,
			origins[i][2] + directions[i][2]*tt,
		}
		out = append(out, Hit{RayID: i, ElementID: id, Point: p})
	}
	return out
}

func (t *Tree) walk(n int, origin, dir, inv [3]float64, onLeaf func(start, count int)) {
	nd := &t.nodes[n]
	if !nd.bound.hit(origin, inv) {
		return
	}
	if nd.left == -1 {
		onLeaf(nd.start, nd.n)
		return
	}
	t.walk(nd.left, origin, dir, inv, onLeaf)
	t.walk(nd.right, origin, dir, inv, onLeaf)
}
