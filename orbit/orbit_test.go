package orbit

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_orbit01(tst *testing.T) {

	chk.PrintTitle("Test orbit01: ParseReport reads the GMAT-style report table")

	d, err := ParseReport("../testdata/orbit_report.txt")
	if err != nil {
		tst.Errorf("ParseReport failed: %v", err)
		return
	}

	chk.IntAssert(len(d.Samples), 5)
	chk.Vector(tst, "sun direction (first row)", 1e-9, d.SunDir[:], []float64{149600000.0, 0, 0})
	chk.Scalar(tst, "beta angle", 1e-9, d.Beta, 23.5)
	chk.Scalar(tst, "semi-major axis", 1e-9, d.SMA, 7000.0)
	chk.Scalar(tst, "altitude", 1e-9, d.Altitude, 621.8)

	chk.Vector(tst, "sample 0 position", 1e-9, d.Samples[0].SatPos[:], []float64{7000, 0, 0})
	chk.Scalar(tst, "sample 0 elapsed", 1e-9, d.Samples[0].ElapsedSec, 0)
	chk.Vector(tst, "sample 2 position", 1e-9, d.Samples[2].SatPos[:], []float64{-7000, 0, 0})
	chk.Scalar(tst, "sample 4 elapsed", 1e-9, d.Samples[4].ElapsedSec, 5896.0)

	if d.Period <= 0 {
		tst.Errorf("expected a positive period, got %g", d.Period)
	}
}

func Test_orbit02(tst *testing.T) {

	chk.PrintTitle("Test orbit02: Period matches the geostationary sidereal day")

	// a = 42164 km is the textbook GEO semi-major axis; its period is one
	// sidereal day, 86164.0905s.
	T := Period(42164.0)
	chk.Scalar(tst, "GEO period vs sidereal day", 50, T, 86164.0905)
}

func Test_orbit03(tst *testing.T) {

	chk.PrintTitle("Test orbit03: Period formula matches 2*pi*sqrt(a^3/mu)")

	a := 8000.0
	want := 2 * math.Pi * math.Sqrt(a*a*a/MuEarth)
	chk.Scalar(tst, "Period(8000)", 1e-9, Period(a), want)
}

func Test_orbit04(tst *testing.T) {

	chk.PrintTitle("Test orbit04: missing report file is an error")

	if _, err := ParseReport("../testdata/does_not_exist.txt"); err == nil {
		tst.Errorf("expected an error for a missing report")
	}
}
