// Package sampling provides the Monte Carlo primitives shared by the three
// view-factor kernels: random points on a triangle, random directions on
// the unit sphere, and the vector-algebra helpers used to orient and fold
// them.
package sampling

import (
	"math"
	"math/rand"
)

// TrianglePoint draws a point uniformly distributed over the triangle with
// vertices v0, v1, v2, using the standard two-uniforms barycentric fold.
func TrianglePoint(rng *rand.Rand, v0, v1, v2 [3]float64) [3]float64 {
	r1 := rng.Float64()
	r2 := rng.Float64()
	sr1 := math.Sqrt(r1)
	a := 1 - sr1
	b := sr1 * (1 - r2)
	c := sr1 * r2
	return [3]float64{
		a*v0[0] + b*v1[0] + c*v2[0],
		a*v0[1] + b*v1[1] + c*v2[1],
		a*v0[2] + b*v1[2] + c*v2[2],
	}
}

// SphereDirection draws a unit vector uniformly distributed on the sphere
// by normalizing three independent standard-normal samples.
func SphereDirection(rng *rand.Rand) [3]float64 {
	for {
		x := rng.NormFloat64()
		y := rng.NormFloat64()
		z := rng.NormFloat64()
		n := math.Sqrt(x*x + y*y + z*z)
		if n > 1e-12 {
			return [3]float64{x / n, y / n, z / n}
		}
	}
}

// OrientToward flips v if it points away from d, turning a full-sphere
// sample into a hemisphere sample around d. Vectors orthogonal to d are
// left unchanged (a documented zero-contribution pathology).
func OrientToward(v, d [3]float64) [3]float64 {
	if Dot(v, d) < 0 {
		return [3]float64{-v[0], -v[1], -v[2]}
	}
	return v
}

// FlipAroundAxis rotates v by π about axis, i.e. reflects it through the
// axis: v' = 2(v·â)â - v.
func FlipAroundAxis(v, axis [3]float64) [3]float64 {
	a := Normalize(axis)
	d := Dot(v, a)
	return [3]float64{
		2*d*a[0] - v[0],
		2*d*a[1] - v[1],
		2*d*a[2] - v[2],
	}
}

// Reflect computes the specular reflection of direction d about unit
// normal n: r = d - 2(d·n)n.
func Reflect(d, n [3]float64) [3]float64 {
	k := 2 * Dot(d, n)
	return [3]float64{
		d[0] - k*n[0],
		d[1] - k*n[1],
		d[2] - k*n[2],
	}
}

// Dot is the Euclidean inner product.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Normalize returns v scaled to unit length; the zero vector is returned
// unchanged.
func Normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(Dot(v, v))
	if n == 0 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// Offset moves origin by eps along direction, the standard acne-avoidance
// step applied before every ray query.
func Offset(origin, direction [3]float64, eps float64) [3]float64 {
	return [3]float64{
		origin[0] + direction[0]*eps,
		origin[1] + direction[1]*eps,
		origin[2] + direction[2]*eps,
	}
}
