package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/orbit"
	"github.com/dpedroso/radview/props"
	"github.com/dpedroso/radview/viewer"
)

// isBadInput reports whether err (or something it wraps) is one of the
// parse-phase sentinel errors, which all map to ExitBadInput.
func isBadInput(err error) bool {
	return errors.Is(err, mesh.ErrBadMesh) ||
		errors.Is(err, props.ErrBadProperties) ||
		errors.Is(err, orbit.ErrBadOrbit) ||
		errors.Is(err, orbit.ErrTooFewOrbitSamples) ||
		errors.Is(err, viewer.ErrViewerUnavailable)
}

// inputFiles holds the resolved paths of the four required inputs.
type inputFiles struct {
	mesh, properties, report, eclipse string
}

// discoverInputs resolves the required input files within dir: mesh.vtk,
// properties.json by fixed name, plus one file each whose name contains
// "ReportFile" and "EclipseLocator", per SPEC_FULL.md §6.
func discoverInputs(dir string) (inputFiles, error) {
	var in inputFiles

	in.mesh = filepath.Join(dir, "mesh.vtk")
	if !exists(in.mesh) {
		return in, errors.Wrapf(ErrMissingFile, "missing %s", in.mesh)
	}

	in.properties = filepath.Join(dir, "properties.json")
	if !exists(in.properties) {
		return in, errors.Wrapf(ErrMissingFile, "missing %s", in.properties)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return in, errors.Wrapf(ErrMissingFile, "cannot read directory %s: %v", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, "ReportFile") && in.report == "" {
			in.report = filepath.Join(dir, name)
		}
		if strings.Contains(name, "EclipseLocator") && in.eclipse == "" {
			in.eclipse = filepath.Join(dir, name)
		}
	}
	if in.report == "" {
		return in, errors.Wrapf(ErrMissingFile, "no file matching *ReportFile* in %s", dir)
	}
	if in.eclipse == "" {
		return in, errors.Wrapf(ErrMissingFile, "no file matching *EclipseLocator* in %s", dir)
	}
	return in, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
