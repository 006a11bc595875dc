package engine

import (
	"math"

	"osrs-flipper/internal/wiki"
)

const (
	// maxInstantSpread is the spread above which the instant prices are
	// considered unreliable (price spike or dead market side).
	maxInstantSpread = 0.5
	// taxFreeCeiling is the sell price at or below which no tax is due.
	taxFreeCeiling = 100
	// capitalBuffer pads the required capital for price fluctuations.
	capitalBuffer = 1.05
)

// GETax returns the Grand Exchange tax for a sale: 1% of the sell price,
// floored, waived at or below taxFreeCeiling gp.
func GETax(sellPrice int64) int64 {
	if sellPrice <= taxFreeCeiling {
		return 0
	}
	return sellPrice / 100
}

// BondConversionCost returns the 10% fee to make a bond tradeable, floored.
func BondConversionCost(sellPrice int64) int64 {
	return sellPrice / 10
}

// RequiredCapital returns the gp needed to fill a full buy limit, padded
// by capitalBuffer and rounded up.
func RequiredCapital(buyPrice, buyLimit, tax, bondCost int64) int64 {
	total := buyPrice*buyLimit + tax + bondCost
	return int64(math.Ceil(capitalBuffer * float64(total)))
}

// Evaluate applies the per-item business filters in order and either
// returns a fully populated Opportunity or the reason the item dropped.
// Filters are strictly sequential; the first failing one wins.
func Evaluate(itemID int, snap wiki.PriceSnapshot, daily wiki.DailyStats, meta wiki.ItemMetadata, params AnalyzeParams) (*Opportunity, DropReason) {
	p := params.withDefaults()

	sellPrice := snap.High
	buyPrice := snap.Low

	// 1. Prices must be present and positive on all three timescales we
	// read here: the instant snapshot and the 24h aggregates.
	if sellPrice <= 0 || buyPrice <= 0 || daily.AvgHigh <= 0 || daily.AvgLow <= 0 {
		return nil, DropMissingData
	}

	// 2. A huge instant spread means one side of the book is stale.
	spread := float64(sellPrice-buyPrice) / float64(buyPrice)
	if spread > maxInstantSpread {
		return nil, DropUnrealisticSpread
	}

	// 3. Both sides need volume: lows to buy, highs to sell.
	if daily.HighVolume < p.MinVolume || daily.LowVolume < p.MinVolume {
		return nil, DropLowVolume
	}

	// 4. Margin after tax and (for bonds) the conversion cost.
	tax := GETax(sellPrice)
	var bondCost int64
	if itemID == p.BondItemID {
		bondCost = BondConversionCost(sellPrice)
	}
	margin := sellPrice - buyPrice - tax - bondCost
	marginPercent := float64(margin) / float64(buyPrice) * 100
	if marginPercent < p.MinMarginPercent {
		return nil, DropLowMargin
	}

	// 5. Without a known buy limit the capital and throughput math is
	// undefined.
	if meta.BuyLimit <= 0 {
		return nil, DropMissingMetadata
	}
	resetTime := meta.ResetTime
	if resetTime <= 0 {
		resetTime = wiki.DefaultResetTime
	}

	// 6. Capital filter, only when a budget was given.
	requiredCapital := RequiredCapital(buyPrice, meta.BuyLimit, tax, bondCost)
	if p.AvailableCash > 0 && requiredCapital > p.AvailableCash {
		return nil, DropInsufficientCapital
	}

	periodsPerDay := 86400 / float64(resetTime)
	lowVolumePerPeriod := float64(daily.LowVolume) / periodsPerDay

	achievableItems := meta.BuyLimit
	if v := int64(lowVolumePerPeriod); v < achievableItems {
		achievableItems = v
	}
	profitPerWindow := margin * achievableItems

	// 7. The score function has its own minimum-profit cutoff.
	rawScore := OpportunityScore(marginPercent, daily.HighVolume, daily.LowVolume, sellPrice, meta.BuyLimit, resetTime)
	if rawScore == 0 {
		return nil, DropZeroScore
	}

	return &Opportunity{
		ItemID:             itemID,
		Name:               meta.Name,
		BuyLimit:           meta.BuyLimit,
		ResetTime:          resetTime,
		BuyPrice:           buyPrice,
		SellPrice:          sellPrice,
		Tax:                tax,
		BondConversionCost: bondCost,
		DailyAvgHigh:       daily.AvgHigh,
		DailyAvgLow:        daily.AvgLow,
		HighVolume:         daily.HighVolume,
		LowVolume:          daily.LowVolume,
		Margin:             margin,
		MarginPercent:      marginPercent,
		AchievableItems:    achievableItems,
		ProfitPerWindow:    profitPerWindow,
		RequiredCapital:    requiredCapital,
		ExpectedCapital:    requiredCapital + profitPerWindow,
		RawScore:           rawScore,
	}, DropNone
}
