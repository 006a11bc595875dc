package engine

import "math"

// PriceConsistent reports whether the current instant prices agree with an
// item's historical statistics. Absent stats reject unconditionally. All
// four gates are independent: both prices must sit within 2 standard
// deviations of their historical averages AND inside the 5th-95th
// percentile band.
func PriceConsistent(currentHigh, currentLow int64, h *HistoricalStats) bool {
	if h == nil {
		return false
	}

	highWithinStd := math.Abs(float64(currentHigh)-h.AvgHigh) <= 2*h.HighStd
	lowWithinStd := math.Abs(float64(currentLow)-h.AvgLow) <= 2*h.LowStd

	highWithinBand := h.High5th <= currentHigh && currentHigh <= h.High95th
	lowWithinBand := h.Low5th <= currentLow && currentLow <= h.Low95th

	return highWithinStd && lowWithinStd && highWithinBand && lowWithinBand
}
