// Package orbit parses the orbit and eclipse report files produced by the
// orbit-propagator and derives the period, eclipse window and the
// representative samples the Earth kernel is evaluated at.
package orbit

import (
	"bufio"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadOrbit is returned on header or numeric parse failures.
var ErrBadOrbit = errors.New("orbit: bad orbit report")

// ErrTooFewOrbitSamples is returned by Divisions when K divisions are
// requested but fewer samples are available inside one period.
var ErrTooFewOrbitSamples = errors.New("orbit: too few orbit samples")

// MuEarth is Earth's gravitational parameter, km^3/s^2.
const MuEarth = 398600.4415

// Sample is one row of the satellite position time series.
type Sample struct {
	ElapsedSec float64
	SatPos     [3]float64
}

// Data is everything derived from the two orbit reports.
type Data struct {
	Samples      []Sample
	SunDir       [3]float64
	Beta         float64 // degrees
	SMA          float64 // km
	Altitude     float64 // km
	Period       float64 // s
	EclipseStart float64 // s; not set by ParseReport (ParseEclipse returns the window)
	EclipseEnd   float64 // s; not set by ParseReport (ParseEclipse returns the window)
}

// columnSuffixes names each report column by the suffix that identifies it,
// independent of the satellite label prefix GMAT-style reports prepend.
var columnSuffixes = []string{
	".EarthMJ2000Eq.X",
	".EarthMJ2000Eq.Y",
	".EarthMJ2000Eq.Z",
	"Sun.EarthMJ2000Eq.X",
	"Sun.EarthMJ2000Eq.Y",
	"Sun.EarthMJ2000Eq.Z",
	".Earth.BetaAngle",
	".UTCGregorian",
	".Earth.SMA",
	".Earth.Altitude",
	".ElapsedSecs",
}

var colSplit = regexp.MustCompile(`\s{2,}`)

// ParseReport parses the whitespace(>=2)-delimited orbit report table.
func ParseReport(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrBadOrbit, "cannot open orbit report %s: %v", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<16), 1<<24)

	var header []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		header = colSplit.Split(line, -1)
		break
	}
	if header == nil {
		return nil, errors.Wrapf(ErrBadOrbit, "orbit report %s has no header line", path)
	}

	col := make(map[string]int, len(columnSuffixes))
	for _, suffix := range columnSuffixes {
		idx, err := findColumn(header, suffix)
		if err != nil {
			return nil, errors.Wrapf(ErrBadOrbit, "orbit report %s: %v", path, err)
		}
		col[suffix] = idx
	}

	d := &Data{}
	firstRow := true
	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := colSplit.Split(line, -1)
		if len(fields) < len(header) {
			return nil, errors.Wrapf(ErrBadOrbit, "orbit report %s line %d: expected %d columns, got %d", path, lineNo, len(header), len(fields))
		}

		if firstRow {
			sunX, err := num(fields, col, "Sun.EarthMJ2000Eq.X", path, lineNo)
			if err != nil {
				return nil, err
			}
			sunY, err := num(fields, col, "Sun.EarthMJ2000Eq.Y", path, lineNo)
			if err != nil {
				return nil, err
			}
			sunZ, err := num(fields, col, "Sun.EarthMJ2000Eq.Z", path, lineNo)
			if err != nil {
				return nil, err
			}
			d.SunDir = [3]float64{sunX, sunY, sunZ}

			d.Beta, err = num(fields, col, ".Earth.BetaAngle", path, lineNo)
			if err != nil {
				return nil, err
			}
			d.SMA, err = num(fields, col, ".Earth.SMA", path, lineNo)
			if err != nil {
				return nil, err
			}
			d.Altitude, err = num(fields, col, ".Earth.Altitude", path, lineNo)
			if err != nil {
				return nil, err
			}
			firstRow = false
		}

		px, err := num(fields, col, ".EarthMJ2000Eq.X", path, lineNo)
		if err != nil {
			return nil, err
		}
		py, err := num(fields, col, ".EarthMJ2000Eq.Y", path, lineNo)
		if err != nil {
			return nil, err
		}
		pz, err := num(fields, col, ".EarthMJ2000Eq.Z", path, lineNo)
		if err != nil {
			return nil, err
		}
		elapsed, err := num(fields, col, ".ElapsedSecs", path, lineNo)
		if err != nil {
			return nil, err
		}
		d.Samples = append(d.Samples, Sample{ElapsedSec: elapsed, SatPos: [3]float64{px, py, pz}})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrBadOrbit, "orbit report %s: read error: %v", path, err)
	}
	if len(d.Samples) == 0 {
		return nil, errors.Wrapf(ErrBadOrbit, "orbit report %s has no data rows", path)
	}

	d.Period = Period(d.SMA)
	return d, nil
}

// findColumn locates the header column whose name ends with suffix, under
// any satellite label prefix (e.g. "Sat.EarthMJ2000Eq.X" matches
// ".EarthMJ2000Eq.X").
func findColumn(header []string, suffix string) (int, error) {
	for i, name := range header {
		if strings.HasSuffix(name, suffix) {
			return i, nil
		}
	}
	return 0, errors.Errorf("missing required column with suffix %q", suffix)
}

func num(fields []string, col map[string]int, suffix, path string, lineNo int) (float64, error) {
	idx := col[suffix]
	if idx >= len(fields) {
		return 0, errors.Wrapf(ErrBadOrbit, "%s line %d: missing field for column %q", path, lineNo, suffix)
	}
	v, err := strconv.ParseFloat(fields[idx], 64)
	if err != nil {
		return 0, errors.Wrapf(ErrBadOrbit, "%s line %d: bad numeric value for column %q: %v", path, lineNo, suffix, err)
	}
	return v, nil
}

// Period returns the Keplerian orbital period, seconds, for a semi-major
// axis given in kilometers: T = 2π sqrt(a^3 / μ).
func Period(smaKM float64) float64 {
	a3 := smaKM * smaKM * smaKM
	return 2 * math.Pi * math.Sqrt(a3/MuEarth)
}
