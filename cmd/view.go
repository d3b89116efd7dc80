package cmd

import (
	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/props"
	"github.com/dpedroso/radview/viewer"
)

// ViewMaterials implements the viewm subcommand.
func ViewMaterials(dir string) error {
	in, err := discoverInputs(dir)
	if err != nil {
		return err
	}
	m, err := mesh.Load(in.mesh)
	if err != nil {
		return err
	}
	doc, err := props.Load(in.properties)
	if err != nil {
		return err
	}
	atlas, err := props.BuildAtlas(doc, m.NElements())
	if err != nil {
		return err
	}
	return viewer.ShowMaterials(m, atlas)
}

// ViewNormals implements the viewn subcommand.
func ViewNormals(dir string) error {
	in, err := discoverInputs(dir)
	if err != nil {
		return err
	}
	m, err := mesh.Load(in.mesh)
	if err != nil {
		return err
	}
	return viewer.ShowNormals(m)
}
