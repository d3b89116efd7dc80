// Package viewer implements the viewm/viewn interactive visualizations.
// Neither analyzes anything; both exist only to satisfy the CLI's view
// subcommands (SPEC_FULL.md §4.7) and are never on the process path.
//
// Grounded on the gazed/vu OpenGL bootstrap shown in the corpus's
// "eg-rt.go" example: device.New(title, x, y, w, h) opens a window, then
// the caller drives its own render loop until dev.IsAlive() goes false.
package viewer

import (
	"github.com/gazed/vu/device"
	"github.com/gazed/vu/render/gl"
	"github.com/pkg/errors"

	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/props"
)

// ErrViewerUnavailable is returned, before any file is touched, when the
// host has no usable display device.
var ErrViewerUnavailable = errors.New("viewer: unavailable")

// colorFunc assigns a flat RGB color to triangle i.
type colorFunc func(i int) (r, g, b float32)

// scene holds one flat-shaded triangle soup: 3 verts + 1 color per element,
// uploaded once and redrawn every frame.
type scene struct {
	vao    uint32
	nverts int32
}

func open(title string) (device.Device, error) {
	dev := device.New(title, 100, 100, 800, 600)
	if dev == nil {
		return nil, errors.Wrap(ErrViewerUnavailable, "no display device available")
	}
	return dev, nil
}

func buildScene(m *mesh.Mesh, color colorFunc) scene {
	n := m.NElements()
	verts := make([]float32, 0, n*3*3)
	colors := make([]float32, 0, n*3*3)
	for i := 0; i < n; i++ {
		t := &m.Tris[i]
		r, g, b := color(i)
		for v := 0; v < 3; v++ {
			verts = append(verts, float32(t.V[v][0]), float32(t.V[v][1]), float32(t.V[v][2]))
			colors = append(colors, r, g, b)
		}
	}

	gl.Init()
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var vbuff uint32
	gl.GenBuffers(1, &vbuff)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbuff)
	gl.BufferData(gl.ARRAY_BUFFER, int64(len(verts)*4), gl.Pointer(&verts[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(0)

	var cbuff uint32
	gl.GenBuffers(1, &cbuff)
	gl.BindBuffer(gl.ARRAY_BUFFER, cbuff)
	gl.BufferData(gl.ARRAY_BUFFER, int64(len(colors)*4), gl.Pointer(&colors[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(1)

	return scene{vao: vao, nverts: int32(len(verts) / 3)}
}

func run(dev device.Device, sc scene) error {
	dev.Open()
	for dev.IsAlive() {
		gl.BindVertexArray(sc.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, sc.nverts)
		dev.SwapBuffers()
	}
	return nil
}

// materialColor assigns a stable RGB triple per material index so repeated
// runs color the same element the same way.
func materialColor(materialIndex int) (r, g, b float32) {
	if materialIndex < 0 {
		return 0.5, 0.5, 0.5 // unassigned: neutral gray
	}
	const golden = 0.61803398875
	h := float32(materialIndex)*golden - float32(int(float32(materialIndex)*golden))
	return hsvToRGB(h, 0.55, 0.85)
}

func hsvToRGB(h, s, v float32) (r, g, b float32) {
	i := int(h * 6)
	f := h*6 - float32(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

// ShowMaterials launches an interactive view of the mesh with each triangle
// colored by its assigned material.
func ShowMaterials(m *mesh.Mesh, atlas *props.Atlas) error {
	dev, err := open("radview: materials")
	if err != nil {
		return err
	}
	defer dev.Dispose()

	sc := buildScene(m, func(i int) (float32, float32, float32) {
		return materialColor(atlas.MaterialIndex[i])
	})
	return run(dev, sc)
}

// ShowNormals launches an interactive view with each triangle colored by
// the half-space its normal points into (+Z vs -Z of the mesh frame).
func ShowNormals(m *mesh.Mesh) error {
	dev, err := open("radview: normals")
	if err != nil {
		return err
	}
	defer dev.Dispose()

	sc := buildScene(m, func(i int) (float32, float32, float32) {
		if m.Tris[i].Normal[2] >= 0 {
			return 0.2, 0.6, 0.9 // +Z facing
		}
		return 0.9, 0.4, 0.2 // -Z facing
	})
	return run(dev, sc)
}
