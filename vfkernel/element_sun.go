package vfkernel

import (
	"math"

	"github.com/dpedroso/radview/bvh"
	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/sampling"
)

// ElementSun computes the single deterministic element-Sun view-factor
// snapshot: one ray per element's centroid along sunDir, zeroed out on
// self-occlusion. No stochastic sampling (§4.3, "Element↔Sun").
func ElementSun(m *mesh.Mesh, tree *bvh.Tree, sunDir [3]float64) []float32 {
	d := sampling.Normalize(sunDir)
	n := m.NElements()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		tri := &m.Tris[i]
		origin := sampling.Offset(m.Centroid(i), d, bvh.Eps)
		vf := math.Abs(sampling.Dot(tri.Normal, d))
		if tree.FirstHit(origin, d) != bvh.Miss {
			vf = 0
		}
		out[i] = float32(vf)
	}
	return out
}
