package cmd

import (
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"github.com/dpedroso/radview/bvh"
	"github.com/dpedroso/radview/codec"
	"github.com/dpedroso/radview/mesh"
	"github.com/dpedroso/radview/orbit"
	"github.com/dpedroso/radview/props"
	"github.com/dpedroso/radview/sampling"
	"github.com/dpedroso/radview/vf"
	"github.com/dpedroso/radview/vfkernel"
	"github.com/dpedroso/radview/workers"
)

// Process runs the full pipeline over dir: loads mesh, properties and orbit
// reports, computes the three view-factor families, writes
// dir/view_factors.vf and rewrites dir/properties.json with the
// orbit-derived global_properties fields merged in.
func Process(dir string) error {
	in, err := discoverInputs(dir)
	if err != nil {
		return err
	}

	m, err := mesh.Load(in.mesh)
	if err != nil {
		return err
	}
	log.Printf("process: mesh loaded: %d elements\n", m.NElements())

	doc, err := props.Load(in.properties)
	if err != nil {
		return err
	}
	atlas, err := props.BuildAtlas(doc, m.NElements())
	if err != nil {
		return err
	}

	od, err := orbit.ParseReport(in.report)
	if err != nil {
		return err
	}
	eclipseStart, eclipseEnd, err := orbit.ParseEclipse(in.eclipse, od.Period)
	if err != nil {
		return err
	}
	log.Printf("process: orbit parsed: %d samples, period=%.1fs, eclipse=[%.1f,%.1f]\n",
		len(od.Samples), od.Period, eclipseStart, eclipseEnd)

	k := doc.GlobalProperties.OrbitDivisions
	divisions, err := orbit.Divisions(od.Samples, od.Period, k)
	if err != nil {
		return err
	}

	// Rotate the mesh so its local +Z aligns with the sun direction, then
	// build the BVH once. Every subsequent kernel assumes this frame; the
	// per-sample Earth direction is rotated to match instead of re-rotating
	// the mesh (SPEC_FULL.md §9).
	axis, angle := mesh.LookAtSun(od.SunDir)
	m.Rotate(axis, angle)
	tree := bvh.Build(m)
	sunDirMesh := sampling.Normalize(mesh.RotateVector(od.SunDir, axis, angle))

	nWorkers := runtime.GOMAXPROCS(0)
	runRows := func(n int, work func(row int, rng *rand.Rand)) {
		workers.Run(nWorkers, n, work)
	}

	elemRays := orDefault(doc.GlobalProperties.ElementRayAmount, 1000)
	maxReflections := orDefault(doc.GlobalProperties.ElementMaxReflectionsAmount, 10)
	earthRays := orDefault(doc.GlobalProperties.EarthRayAmount, 1000)
	penumbra := doc.GlobalProperties.Penumbra()

	elemMatrix := vfkernel.BuildMatrix(m, tree, atlas, elemRays, maxReflections, runRows)
	log.Printf("process: element-element matrix computed: %dx%d\n", elemMatrix.Rows, elemMatrix.Cols)

	sunValues := vfkernel.ElementSun(m, tree, sunDirMesh)
	sunStream := vf.Stream{{Timestamp: od.Samples[0].ElapsedSec, Values: sunValues}}

	irStream := make(vf.Stream, 0, len(divisions))
	albedoStream := make(vf.Stream, 0, len(divisions))
	for _, s := range divisions {
		sample := od.Samples[s]
		earthDirWorld := sampling.Normalize([3]float64{-sample.SatPos[0], -sample.SatPos[1], -sample.SatPos[2]})
		earthDirMesh := mesh.RotateVector(earthDirWorld, axis, angle)

		seed := int64(s) + 1
		rng := rand.New(rand.NewSource(seed))
		res := vfkernel.ElementEarth(m, tree, earthRays, earthDirMesh, sunDirMesh, penumbra, rng)

		irStream = append(irStream, vf.Sample{Timestamp: sample.ElapsedSec, Values: res.IR})
		albedoStream = append(albedoStream, vf.Sample{Timestamp: sample.ElapsedSec, Values: res.Albedo})
	}
	log.Printf("process: %d orbit divisions evaluated\n", len(divisions))

	outPath := filepath.Join(dir, "view_factors.vf")
	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "process: cannot create %s", outPath)
	}
	err = codec.WriteViewFactors(f, irStream, albedoStream, sunStream, elemMatrix)
	closeErr := f.Close()
	if err != nil {
		return errors.Wrapf(err, "process: cannot write %s", outPath)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "process: cannot close %s", outPath)
	}
	log.Printf("process: wrote %s\n", outPath)

	if err := doc.Rewrite(in.properties, od.Beta, od.Period, eclipseStart, eclipseEnd); err != nil {
		return err
	}
	log.Printf("process: rewrote %s\n", in.properties)
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
