package orbit

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ParseEclipse parses the eclipse/umbra report: a fixed preamble, a header
// line starting with "Start Time", and data rows. It returns the start and
// stop time, in seconds relative to the report's start epoch, of the first
// Umbra event with event number 2, clamped into a single orbital period
// (subtracting one period when the event straddles the start epoch). When
// no such event exists, it returns (-1, -1).
func ParseEclipse(path string, period float64) (startSec, endSec float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrBadOrbit, "cannot open eclipse report %s: %v", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<16), 1<<24)

	var epoch time.Time
	haveEpoch := false
	inTable := false

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if !inTable {
			if strings.HasPrefix(line, "Start Time") {
				inTable = true
			}
			continue
		}

		fields := colSplit.Split(line, -1)
		if len(fields) < 6 {
			continue
		}
		// fields: Start Time, Stop Time, Duration, Occ Body, Type, Event Number, ...
		startTime, errS := parseUTCGregorian(fields[0])
		stopTime, errE := parseUTCGregorian(fields[1])
		eventType := fields[4]
		eventNum, errN := strconv.Atoi(strings.TrimSpace(fields[len(fields)-1]))
		if errS != nil || errE != nil || errN != nil {
			continue
		}
		if !haveEpoch {
			epoch = startTime
			haveEpoch = true
		}
		if eventNum == 2 && strings.EqualFold(eventType, "Umbra") {
			start := startTime.Sub(epoch).Seconds()
			stop := stopTime.Sub(epoch).Seconds()
			return clampIntoPeriod(start, period), clampIntoPeriod(stop, period), nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, errors.Wrapf(ErrBadOrbit, "eclipse report %s: read error: %v", path, err)
	}
	return -1, -1, nil
}

// parseUTCGregorian parses GMAT-style "01 Jan 2026 00:00:00.000" timestamps.
func parseUTCGregorian(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"02 Jan 2006 15:04:05.000",
		"02 Jan 2006 15:04:05",
	}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// clampIntoPeriod subtracts one period from t when the umbra event straddles
// the start epoch and the computed time exceeds the orbital period.
func clampIntoPeriod(t, period float64) float64 {
	if period > 0 && t > period {
		return t - period
	}
	return t
}
