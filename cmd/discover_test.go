package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/pkg/errors"
)

func stageDir(tst *testing.T, files map[string]string) string {
	dir := tst.TempDir()
	for name, src := range files {
		data, err := os.ReadFile(src)
		if err != nil {
			tst.Fatalf("cannot read fixture %s: %v", src, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			tst.Fatalf("cannot stage %s: %v", name, err)
		}
	}
	return dir
}

func Test_discover01(tst *testing.T) {

	chk.PrintTitle("Test discover01: discoverInputs finds the four required files")

	dir := stageDir(tst, map[string]string{
		"mesh.vtk":                  "../testdata/two_facing.vtk",
		"properties.json":           "../testdata/properties.json",
		"Sat_ReportFile1.txt":       "../testdata/orbit_report.txt",
		"Sat_EclipseLocator1.txt":   "../testdata/eclipse_report.txt",
	})

	in, err := discoverInputs(dir)
	if err != nil {
		tst.Errorf("discoverInputs failed: %v", err)
		return
	}
	if in.mesh == "" || in.properties == "" || in.report == "" || in.eclipse == "" {
		tst.Errorf("discoverInputs left a field empty: %+v", in)
	}
}

func Test_discover02(tst *testing.T) {

	chk.PrintTitle("Test discover02: missing mesh.vtk is ErrMissingFile")

	dir := stageDir(tst, map[string]string{
		"properties.json":         "../testdata/properties.json",
		"Sat_ReportFile1.txt":     "../testdata/orbit_report.txt",
		"Sat_EclipseLocator1.txt": "../testdata/eclipse_report.txt",
	})

	_, err := discoverInputs(dir)
	if err == nil {
		tst.Errorf("expected ErrMissingFile for a directory without mesh.vtk")
		return
	}
	if !errors.Is(err, ErrMissingFile) {
		tst.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func Test_discover03(tst *testing.T) {

	chk.PrintTitle("Test discover03: missing ReportFile is ErrMissingFile")

	dir := stageDir(tst, map[string]string{
		"mesh.vtk":                "../testdata/two_facing.vtk",
		"properties.json":         "../testdata/properties.json",
		"Sat_EclipseLocator1.txt": "../testdata/eclipse_report.txt",
	})

	_, err := discoverInputs(dir)
	if err == nil {
		tst.Errorf("expected an error when no *ReportFile* file is present")
	}
}
