// Package privacy implements the noise mechanism and calibration rules that
// make published statistics resistant to re-identification.
package privacy

// Noise draws a zero-mean Laplace variate with the given scale via inverse-CDF
// sampling: u uniform in (-0.5, 0.5), the sign of u picks the branch.
func Noise(scale float64) float64 {
	u := uniform() - 0.5
	if u < 0 {
		return scale * (1 + 2*u)
	}
	return -scale * (1 - 2*u)
}

// LaplaceNoise draws noise calibrated to sensitivity/epsilon, the scale that
// makes the perturbed statistic epsilon-differentially private.
func LaplaceNoise(sensitivity, epsilon float64) float64 {
	return Noise(sensitivity / epsilon)
}

// MeanSensitivity bounds how far one contributor can move a group mean: with
// per-period contributions capped at ceiling, one record shifts a mean over n
// contributors by at most ceiling/n. It shrinks as cohorts grow, so it is
// recomputed per cohort rather than fixed globally.
func MeanSensitivity(ceiling float64, n int) float64 {
	if n < 1 {
		return ceiling
	}
	return ceiling / float64(n)
}

// ClampNonNegative floors physically non-negative quantities after noise
// addition. Overtime is deliberately not clamped; a deficit is meaningful.
func ClampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// OrderBounds restores lower <= upper after independent noise draws may have
// inverted an interval.
func OrderBounds(lower, upper float64) (float64, float64) {
	if lower > upper {
		return upper, lower
	}
	return lower, upper
}
