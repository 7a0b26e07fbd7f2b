// Package analytics serves the legacy query-time summaries over free-form
// report samples: monthly averages with bootstrap confidence intervals,
// noised and suppressed before anything leaves the process.
package analytics

import (
	"sort"

	"worklens/internal/privacy"
)

// BootstrapCI estimates a (1-alpha) percentile confidence interval of the
// sample mean by resampling with replacement. Degenerate inputs are defined
// cases, not errors: an empty sample list yields (nil, nil) and a single
// element collapses to a zero-width interval.
//
// Resampling draws from the same cryptographically strong source as the
// Laplace mechanism; a predictable resample sequence would undermine the
// noise applied on top.
func BootstrapCI(samples []float64, iterations int, alpha float64) (*float64, *float64) {
	if len(samples) == 0 {
		return nil, nil
	}
	if len(samples) == 1 {
		v := samples[0]
		return &v, &v
	}

	means := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		var sum float64
		for j := 0; j < len(samples); j++ {
			sum += samples[privacy.Intn(len(samples))]
		}
		means[i] = sum / float64(len(samples))
	}
	sort.Float64s(means)

	lowerIdx := int(alpha/2*float64(iterations)) - 1
	if lowerIdx < 0 {
		lowerIdx = 0
	}
	upperIdx := int((1 - alpha/2) * float64(iterations))
	if upperIdx > iterations-1 {
		upperIdx = iterations - 1
	}
	lo, hi := means[lowerIdx], means[upperIdx]
	return &lo, &hi
}

// noiseBounds perturbs both interval bounds independently with Laplace noise
// of fixed scale, then restores their order if the draws inverted them.
func noiseBounds(lower, upper *float64, scale float64) (*float64, *float64) {
	if lower == nil || upper == nil {
		return lower, upper
	}
	lo := *lower + privacy.Noise(scale)
	hi := *upper + privacy.Noise(scale)
	lo, hi = privacy.OrderBounds(lo, hi)
	return &lo, &hi
}
