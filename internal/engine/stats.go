package engine

import (
	"errors"
	"math"
	"sort"

	"osrs-flipper/internal/wiki"
)

// ErrInsufficientHistory means the price series is too short for
// percentile-trimmed statistics: with fewer than 20 usable samples the 5%
// tails are empty and their means are undefined.
var ErrInsufficientHistory = errors.New("insufficient history for percentile statistics")

// ComputeHistoricalStats turns a daily price series into percentile and
// variance statistics. Samples with a zero price are skipped per side;
// volumes are averaged over non-zero samples without percentile trimming.
// minPoints is the smallest usable series length per side (0 = default 20).
func ComputeHistoricalStats(entries []wiki.TimeseriesEntry, minPoints int) (*HistoricalStats, error) {
	if minPoints <= 0 {
		minPoints = DefaultMinHistoryPoints
	}

	var highs, lows []int64
	for _, e := range entries {
		if e.AvgHighPrice > 0 {
			highs = append(highs, e.AvgHighPrice)
		}
		if e.AvgLowPrice > 0 {
			lows = append(lows, e.AvgLowPrice)
		}
	}

	if len(highs) < minPoints || len(lows) < minPoints {
		return nil, ErrInsufficientHistory
	}

	sort.Slice(highs, func(i, j int) bool { return highs[i] < highs[j] })
	sort.Slice(lows, func(i, j int) bool { return lows[i] < lows[j] })

	hi, err := trimmedStats(highs)
	if err != nil {
		return nil, err
	}
	lo, err := trimmedStats(lows)
	if err != nil {
		return nil, err
	}

	var highVolSum, lowVolSum float64
	var highVolN, lowVolN int
	for _, e := range entries {
		if e.HighPriceVolume > 0 {
			highVolSum += float64(e.HighPriceVolume)
			highVolN++
		}
		if e.LowPriceVolume > 0 {
			lowVolSum += float64(e.LowPriceVolume)
			lowVolN++
		}
	}
	avgHighVolume := 0.0
	if highVolN > 0 {
		avgHighVolume = highVolSum / float64(highVolN)
	}
	avgLowVolume := 0.0
	if lowVolN > 0 {
		avgLowVolume = lowVolSum / float64(lowVolN)
	}

	return &HistoricalStats{
		AvgHigh:       hi.avg,
		AvgLow:        lo.avg,
		HighStd:       hi.std,
		LowStd:        lo.std,
		High5th:       hi.p5,
		High95th:      hi.p95,
		Low5th:        lo.p5,
		Low95th:       lo.p95,
		AvgHigh5th:    hi.avgBottom,
		AvgLow5th:     lo.avgBottom,
		AvgHigh95th:   hi.avgTop,
		AvgLow95th:    lo.avgTop,
		AvgHighVolume: avgHighVolume,
		AvgLowVolume:  avgLowVolume,
		DataPoints:    len(entries),
	}, nil
}

type sideStats struct {
	p5, p95        int64
	avgBottom      float64
	avgTop         float64
	avg, std       float64
}

// trimmedStats computes percentile boundaries, tail means, and the mean and
// population standard deviation of the middle 90% of an ascending-sorted
// price array. The middle-slice divisor is 0.9*n, not the slice length;
// callers depend on that exact value.
func trimmedStats(sorted []int64) (sideStats, error) {
	n := len(sorted)
	idx5 := int(float64(n) * 0.05)
	idx95 := int(float64(n) * 0.95)
	if idx5 == 0 || idx95 >= n {
		return sideStats{}, ErrInsufficientHistory
	}

	var bottomSum int64
	for _, v := range sorted[:idx5] {
		bottomSum += v
	}
	var topSum int64
	for _, v := range sorted[idx95:] {
		topSum += v
	}

	middleSize := float64(n) * 0.9
	var middleSum int64
	for _, v := range sorted[idx5:idx95] {
		middleSum += v
	}
	avg := float64(middleSum) / middleSize

	var variance float64
	for _, v := range sorted[idx5:idx95] {
		diff := float64(v) - avg
		variance += diff * diff
	}
	variance /= middleSize

	return sideStats{
		p5:        sorted[idx5],
		p95:       sorted[idx95],
		avgBottom: float64(bottomSum) / float64(idx5),
		avgTop:    float64(topSum) / float64(n-idx95),
		avg:       avg,
		std:       math.Sqrt(variance),
	}, nil
}
