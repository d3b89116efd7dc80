package orbit

import (
	"log"

	"github.com/pkg/errors"
)

// Divisions chooses k representative sample indices closest to the times
// {0, T/k, 2T/k, ..., (k-1)T/k}, per the closeness rule: sample s is the
// division-j representative if elapsed[s+1] > j*T/k and
// |j*T/k - elapsed[s]| <= |j*T/k - elapsed[s+1]|; the last sample is always
// eligible as the final division. A sample picked by more than one division
// is kept once and a warning is logged, so fewer than k indices can be
// returned.
func Divisions(samples []Sample, period float64, k int) ([]int, error) {
	if k <= 0 {
		return nil, nil
	}
	if k > len(samples) {
		return nil, errors.Wrapf(ErrTooFewOrbitSamples, "requested %d divisions but only %d samples available", k, len(samples))
	}

	chosen := make([]int, 0, k)
	seen := make(map[int]bool, k)
	for j := 0; j < k; j++ {
		target := float64(j) * period / float64(k)
		s := pickClosest(samples, target)
		if !seen[s] {
			seen[s] = true
			chosen = append(chosen, s)
		} else {
			log.Printf("orbit: warning: division %d selects sample %d again; skipped\n", j, s)
		}
	}
	if len(chosen) < 1 {
		return nil, errors.Wrapf(ErrTooFewOrbitSamples, "requested %d divisions but only %d distinct samples were selected", k, len(chosen))
	}
	return chosen, nil
}

func pickClosest(samples []Sample, target float64) int {
	last := len(samples) - 1
	for s := 0; s < last; s++ {
		if samples[s+1].ElapsedSec > target {
			if absf(target-samples[s].ElapsedSec) <= absf(target-samples[s+1].ElapsedSec) {
				return s
			}
			return s + 1
		}
	}
	return last
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
