package engine

import "math"

// Score formula constants. These are contract values: changing any of them
// changes the ranking, so they are not exposed as configuration.
const (
	minProfitPerTrade = 100 // gp; below this the item scores zero

	profitTier1       = 100_000
	profitTier2       = 500_000
	profitTier3       = 1_000_000
	profitTier1Mult   = 1.4
	profitTier2Mult   = 1.7
	profitTier3Mult   = 2.0
	volumePenaltyExp  = 1.5
	buyLimitBonusBase = 5000.0
	volumeRatioCap    = 2.0
)

// OpportunityScore rates a flip candidate by expected daily profit, scaled
// by how tradable it actually is: thin volume relative to the buy limit is
// penalized, large per-trade profits and generous buy limits are rewarded.
// Returns 0 when the profit per trade is under minProfitPerTrade gp.
func OpportunityScore(marginPercent float64, highVolume, lowVolume, sellPrice, buyLimit int64, resetTime int) float64 {
	profitPerTrade := float64(sellPrice) * (marginPercent / 100)
	if profitPerTrade < minProfitPerTrade {
		return 0
	}

	periodsPerDay := 86400 / float64(resetTime)
	highVolumePerPeriod := float64(highVolume) / periodsPerDay
	lowVolumePerPeriod := float64(lowVolume) / periodsPerDay

	potentialProfitPerDay := profitPerTrade * float64(buyLimit) * periodsPerDay

	// Flipping needs both sides: volume to buy at the low and volume to
	// sell at the high. The thinner side caps throughput.
	minVolume := float64(highVolume)
	if float64(lowVolume) < minVolume {
		minVolume = float64(lowVolume)
	}
	maxPossibleTrades := float64(buyLimit) * periodsPerDay
	if minVolume < maxPossibleTrades {
		potentialProfitPerDay *= math.Pow(minVolume/maxPossibleTrades, volumePenaltyExp)
	}

	// Penalize items where a full buy limit cannot be filled each window.
	if lowVolumePerPeriod < float64(buyLimit) {
		potentialProfitPerDay *= math.Pow(lowVolumePerPeriod/float64(buyLimit), volumePenaltyExp)
	}

	profitMultiplier := 1.0
	switch {
	case profitPerTrade > profitTier3:
		profitMultiplier = profitTier3Mult
	case profitPerTrade > profitTier2:
		profitMultiplier = profitTier2Mult
	case profitPerTrade > profitTier1:
		profitMultiplier = profitTier1Mult
	}

	buyLimitMultiplier := 1.0 + float64(buyLimit)/buyLimitBonusBase

	volumeRatio := math.Min(highVolumePerPeriod, lowVolumePerPeriod) / float64(buyLimit)
	volumeMultiplier := 1.0 + math.Min(volumeRatio, volumeRatioCap)

	return potentialProfitPerDay * profitMultiplier * buyLimitMultiplier * volumeMultiplier
}
