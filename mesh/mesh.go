// Package mesh loads the triangulated spacecraft surface and exposes
// per-element geometry to the rest of the preprocessor.
package mesh

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadMesh is returned when the mesh file is unreadable or contains
// unsupported cell types.
var ErrBadMesh = errors.New("mesh: bad mesh")

// Triangle holds one element: three vertices and the outward unit normal
// consistent with the vertex winding order.
type Triangle struct {
	V      [3][3]float64
	Normal [3]float64
}

// Mesh is a finite ordered sequence of triangles sharing a right-handed
// Cartesian frame (meters).
type Mesh struct {
	Tris []Triangle
}

// NElements returns the element count.
func (m *Mesh) NElements() int { return len(m.Tris) }

// Centroid returns the centroid of element i.
func (m *Mesh) Centroid(i int) [3]float64 {
	t := &m.Tris[i]
	return [3]float64{
		(t.V[0][0] + t.V[1][0] + t.V[2][0]) / 3,
		(t.V[0][1] + t.V[1][1] + t.V[2][1]) / 3,
		(t.V[0][2] + t.V[1][2] + t.V[2][2]) / 3,
	}
}

// Load reads a legacy VTK ASCII unstructured grid, retaining only triangle
// cells (VTK cell type 5). Any other cell type yields ErrBadMesh.
//
// The expected sections, in order, are POINTS, CELLS and CELL_TYPES; this
// mirrors the subset of the legacy format that the upstream CAD front-end
// emits. See shp.VTK_TRIANGLE in the gofem lineage this package descends
// from for the cell-type code.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrBadMesh, "cannot open mesh file %s: %v", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	var points [][3]float64
	var cellVerts [][]int
	var cellTypes []int

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "POINTS"):
			n, err := parseCount(line, "POINTS")
			if err != nil {
				return nil, errors.Wrapf(ErrBadMesh, "mesh: bad POINTS header in %s: %v", path, err)
			}
			points = make([][3]float64, 0, n)
			for len(points) < n && sc.Scan() {
				fields := strings.Fields(sc.Text())
				for len(fields) >= 3 && len(points) < n {
					x, e1 := strconv.ParseFloat(fields[0], 64)
					y, e2 := strconv.ParseFloat(fields[1], 64)
					z, e3 := strconv.ParseFloat(fields[2], 64)
					if e1 != nil || e2 != nil || e3 != nil {
						return nil, errors.Wrapf(ErrBadMesh, "mesh: bad point coordinate in %s", path)
					}
					if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) || math.IsInf(x, 0) || math.IsInf(y, 0) || math.IsInf(z, 0) {
						return nil, errors.Wrapf(ErrBadMesh, "mesh: non-finite vertex in %s", path)
					}
					points = append(points, [3]float64{x, y, z})
					fields = fields[3:]
				}
			}

		case strings.HasPrefix(line, "CELLS"):
			n, err := parseCount(line, "CELLS")
			if err != nil {
				return nil, errors.Wrapf(ErrBadMesh, "mesh: bad CELLS header in %s: %v", path, err)
			}
			cellVerts = make([][]int, 0, n)
			for len(cellVerts) < n && sc.Scan() {
				fields := strings.Fields(sc.Text())
				if len(fields) == 0 {
					continue
				}
				nv, err := strconv.Atoi(fields[0])
				if err != nil || nv+1 > len(fields) {
					return nil, errors.Wrapf(ErrBadMesh, "mesh: malformed cell row in %s", path)
				}
				ids := make([]int, nv)
				for i := 0; i < nv; i++ {
					id, err := strconv.Atoi(fields[1+i])
					if err != nil {
						return nil, errors.Wrapf(ErrBadMesh, "mesh: bad vertex id in %s", path)
					}
					ids[i] = id
				}
				cellVerts = append(cellVerts, ids)
			}

		case strings.HasPrefix(line, "CELL_TYPES"):
			n, err := parseCount(line, "CELL_TYPES")
			if err != nil {
				return nil, errors.Wrapf(ErrBadMesh, "mesh: bad CELL_TYPES header in %s: %v", path, err)
			}
			cellTypes = make([]int, 0, n)
			for len(cellTypes) < n && sc.Scan() {
				fields := strings.Fields(sc.Text())
				for _, f := range fields {
					if len(cellTypes) >= n {
						break
					}
					ct, err := strconv.Atoi(f)
					if err != nil {
						return nil, errors.Wrapf(ErrBadMesh, "mesh: bad cell type in %s", path)
					}
					cellTypes = append(cellTypes, ct)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrBadMesh, "mesh: read error in %s: %v", path, err)
	}

	if len(cellVerts) != len(cellTypes) {
		return nil, errors.Wrapf(ErrBadMesh, "mesh: %s has %d cells but %d cell types", path, len(cellVerts), len(cellTypes))
	}
	if len(cellVerts) == 0 {
		return nil, errors.Wrapf(ErrBadMesh, "mesh: %s has no cells", path)
	}

	m := &Mesh{Tris: make([]Triangle, 0, len(cellVerts))}
	for i, ids := range cellVerts {
		const vtkTriangle = 5
		if cellTypes[i] != vtkTriangle {
			return nil, errors.Wrapf(ErrBadMesh, "mesh: %s cell %d has unsupported type %d (only triangle cells, type 5, are supported)", path, i, cellTypes[i])
		}
		if len(ids) != 3 {
			return nil, errors.Wrapf(ErrBadMesh, "mesh: %s cell %d has %d vertices, expected 3", path, i, len(ids))
		}
		for _, id := range ids {
			if id < 0 || id >= len(points) {
				return nil, errors.Wrapf(ErrBadMesh, "mesh: %s cell %d references out-of-range vertex %d", path, i, id)
			}
		}
		tri := Triangle{V: [3][3]float64{points[ids[0]], points[ids[1]], points[ids[2]]}}
		tri.Normal = faceNormal(tri.V)
		m.Tris = append(m.Tris, tri)
	}
	return m, nil
}

func parseCount(line, keyword string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != keyword {
		return 0, fmt.Errorf("expected %s header, got %q", keyword, line)
	}
	return strconv.Atoi(fields[1])
}

func faceNormal(v [3][3]float64) [3]float64 {
	var e1, e2 [3]float64
	for k := 0; k < 3; k++ {
		e1[k] = v[1][k] - v[0][k]
		e2[k] = v[2][k] - v[0][k]
	}
	n := [3]float64{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	length := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if length == 0 {
		return n
	}
	return [3]float64{n[0] / length, n[1] / length, n[2] / length}
}

// Rotate applies an in-place rigid rotation by angle radians about axis
// (need not be normalized). Callers must rebuild the BVH afterwards.
func (m *Mesh) Rotate(axis [3]float64, angle float64) {
	R := rotationMatrix(axis, angle)
	for i := range m.Tris {
		t := &m.Tris[i]
		for k := 0; k < 3; k++ {
			t.V[k] = mulMat3Vec(R, t.V[k])
		}
		t.Normal = mulMat3Vec(R, t.Normal)
	}
}

func rotationMatrix(axis [3]float64, angle float64) [3][3]float64 {
	length := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if length == 0 {
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	x, y, z := axis[0]/length, axis[1]/length, axis[2]/length
	c, s := math.Cos(angle), math.Sin(angle)
	C := 1 - c
	return [3][3]float64{
		{x*x*C + c, x*y*C - z*s, x*z*C + y*s},
		{y*x*C + z*s, y*y*C + c, y*z*C - x*s},
		{z*x*C - y*s, z*y*C + x*s, z*z*C + c},
	}
}

func mulMat3Vec(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// RotateVector applies the same rigid rotation Rotate would apply to mesh
// vertices to an arbitrary vector, without touching the mesh. Used to bring
// a world-frame direction (e.g. a per-sample Earth direction) into the
// sun-aligned frame the mesh was rotated into, without re-rotating the mesh
// itself (see SPEC_FULL.md §9 on BVH invalidation).
func RotateVector(v, axis [3]float64, angle float64) [3]float64 {
	return mulMat3Vec(rotationMatrix(axis, angle), v)
}

// LookAtSun returns the axis/angle that rotates the mesh so its local +Z
// axis aligns with sunDir (which need not be normalized).
func LookAtSun(sunDir [3]float64) (axis [3]float64, angle float64) {
	length := math.Sqrt(sunDir[0]*sunDir[0] + sunDir[1]*sunDir[1] + sunDir[2]*sunDir[2])
	if length == 0 {
		return [3]float64{0, 0, 1}, 0
	}
	d := [3]float64{sunDir[0] / length, sunDir[1] / length, sunDir[2] / length}
	z := [3]float64{0, 0, 1}
	axis = [3]float64{z[1]*d[2] - z[2]*d[1], z[2]*d[0] - z[0]*d[2], z[0]*d[1] - z[1]*d[0]}
	axisLen := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	dot := z[0]*d[0] + z[1]*d[1] + z[2]*d[2]
	if axisLen < 1e-12 {
		if dot > 0 {
			return [3]float64{1, 0, 0}, 0
		}
		return [3]float64{1, 0, 0}, math.Pi
	}
	return axis, math.Atan2(axisLen, dot)
}
