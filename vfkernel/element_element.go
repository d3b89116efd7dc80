package vfkernel

import (
	"math/rand"

	"github.com/dpedroso/radview/bvh"
	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/props"
	"github.com/dpedroso/radview/sampling"
	"github.com/dpedroso/radview/vf"
)

// ElementElement evaluates the element-element kernel for emitting element
// i, writing absorbed-ray counts (divided by rays) into row, a slice of
// length m.NElements() owned exclusively by the caller for the duration of
// this call (SPEC_FULL.md §5).
//
// The mesh must already be in its sun-aligned frame (BVH built after the
// look-at rotation); this kernel never rotates anything itself.
func ElementElement(m *mesh.Mesh, tree *bvh.Tree, atlas *props.Atlas, i, rays, maxReflections int, row []float64, rng *rand.Rand) {
	tri := &m.Tris[i]

	for r := 0; r < rays; r++ {
		origin := sampling.TrianglePoint(rng, tri.V[0], tri.V[1], tri.V[2])
		dir := sampling.SphereDirection(rng)
		if !atlas.TwoSides[i] {
			dir = sampling.OrientToward(dir, tri.Normal)
		}

		curOrigin := sampling.Offset(origin, dir, bvh.Eps)
		curDir := dir

		for bounce := 0; bounce < maxReflections; bounce++ {
			hitID, hitPoint, ok := tree.FirstHitPoint(curOrigin, curDir)
			if !ok {
				break // escaped to space
			}

			if rng.Float64() <= atlas.AlphaIR[hitID] {
				row[hitID]++
				break // absorbed
			}

			hitNormal := m.Tris[hitID].Normal
			curDir = sampling.Reflect(curDir, hitNormal)
			curOrigin = sampling.Offset(hitPoint, hitNormal, bvh.Eps)
		}
	}

	for j := range row {
		row[j] /= float64(rays)
	}
}

// BuildMatrix runs ElementElement for every element through runRows, which
// may spread the rows over goroutines (see the workers package), and returns
// the assembled dense matrix.
func BuildMatrix(m *mesh.Mesh, tree *bvh.Tree, atlas *props.Atlas, rays, maxReflections int, runRows func(n int, work func(row int, rng *rand.Rand))) *vf.Matrix {
	n := m.NElements()
	mat := vf.NewMatrix(n)
	runRows(n, func(i int, rng *rand.Rand) {
		ElementElement(m, tree, atlas, i, rays, maxReflections, mat.Row(i), rng)
	})
	return mat
}
