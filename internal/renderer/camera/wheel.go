package camera

import "math"

// WheelOptions controls the conversion of raw wheel deltas into zoom factors.
type WheelOptions struct {
	// ScrollBase is raised to -delta/100, so a delta of 100 zooms by 1/ScrollBase.
	ScrollBase float64

	// BoostThreshold is the |delta| below which small (trackpad) deltas are boosted.
	BoostThreshold float64

	// Boost is the extra delta added at zero, fading to none at the threshold.
	Boost float64
}

// DefaultWheelOptions returns the default wheel tuning.
func DefaultWheelOptions() WheelOptions {
	return WheelOptions{
		ScrollBase:     1.2,
		BoostThreshold: 10,
		Boost:          6,
	}
}

// BoostDelta enlarges small deltas along sign(d)·(|d| + B·(1 − |d|/T)²).
// At |d| == T the boost term is zero, so the curve joins the identity.
func BoostDelta(d float64, opts WheelOptions) float64 {
	abs := math.Abs(d)
	if d == 0 || opts.BoostThreshold <= 0 || abs >= opts.BoostThreshold {
		return d
	}
	fade := 1 - abs/opts.BoostThreshold
	return math.Copysign(abs+opts.Boost*fade*fade, d)
}

// ZoomFactor converts a wheel delta into a multiplicative zoom factor.
// Positive deltas (scrolling down) zoom out.
func ZoomFactor(delta float64, opts WheelOptions) float64 {
	base := opts.ScrollBase
	if !(base > 1) {
		base = DefaultWheelOptions().ScrollBase
	}
	return math.Pow(base, -BoostDelta(delta, opts)/100)
}
