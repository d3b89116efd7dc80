package vfkernel

import (
	"math"
	"math/rand"

	"github.com/dpedroso/radview/bvh"
	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/sampling"
)

// IRScale is the empirical normalizer calibrating the stochastic Earth-IR
// estimator against the analytic flat-plate-above-Earth limit. Do not
// modify without recalibrating the test suite (SPEC_FULL.md §4.3).
const IRScale = 2.35

// EarthResult holds the per-element IR and albedo view factors of a single
// Earth kernel evaluation.
type EarthResult struct {
	IR     []float32
	Albedo []float32
}

// ElementEarth evaluates the element-Earth kernel (IR + albedo) at one
// orbit sample. earthDir and sunDir must already be expressed in the mesh's
// current (sun-aligned) frame — see mesh.RotateVector. penumbra is the
// penumbra fraction p in [0,1] (0 = hard shadow, 1 = eclipse disabled).
func ElementEarth(m *mesh.Mesh, tree *bvh.Tree, rays int, earthDir, sunDir [3]float64, penumbra float64, rng *rand.Rand) EarthResult {
	earth := sampling.Normalize(earthDir)
	negSun := sampling.Normalize([3]float64{-sunDir[0], -sunDir[1], -sunDir[2]})
	n := m.NElements()
	res := EarthResult{IR: make([]float32, n), Albedo: make([]float32, n)}

	for i := 0; i < n; i++ {
		tri := &m.Tris[i]
		var sumIR, sumAlbedo float64
		for r := 0; r < rays; r++ {
			origin := sampling.TrianglePoint(rng, tri.V[0], tri.V[1], tri.V[2])
			dir := sampling.OrientToward(sampling.SphereDirection(rng), earth)
			rayOrigin := sampling.Offset(origin, dir, bvh.Eps)

			if tree.FirstHit(rayOrigin, dir) != bvh.Miss {
				continue // occluded by the satellite itself: no contribution
			}

			folded := sampling.FlipAroundAxis(dir, earth)
			cosSat := math.Abs(sampling.Dot(folded, tri.Normal))
			cosEarth := math.Max(sampling.Dot(folded, earth), 0)
			cosSun := sampling.Dot(folded, negSun)

			sumIR += cosEarth * cosSat
			sumAlbedo += cosEarth * cosSat * penumbraEdge(cosSun, penumbra)
		}
		res.IR[i] = float32(IRScale / float64(rays) * sumIR)
		res.Albedo[i] = float32(sumAlbedo / float64(rays))
	}
	return res
}

// penumbraEdge is the absolute-value continuous variant of the penumbra
// edge function A(x, p): rays from deep in Earth's umbra contribute zero;
// the penumbra fraction p controls the width of the soft transition. The
// corpus also shows a zero/one-sided variant (zero the Earth-side, one the
// sun-side); that form discards the cosθ factor discontinuously and is
// rejected here in favor of this continuous one (SPEC_FULL.md, DESIGN.md).
func penumbraEdge(x, p float64) float64 {
	threshold := -math.Cos((1 - p) * math.Pi / 2)
	if x < threshold {
		return 0
	}
	return math.Abs(x)
}
