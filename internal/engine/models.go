package engine

// DropReason tags why an item was excluded from the result set.
// Reasons are diagnostic only; they never drive control flow beyond the drop.
type DropReason string

const (
	DropNone                 DropReason = ""
	DropMissingData          DropReason = "missing_data"
	DropUnrealisticSpread    DropReason = "unrealistic_spread"
	DropLowVolume            DropReason = "low_volume"
	DropLowMargin            DropReason = "low_margin"
	DropMissingMetadata      DropReason = "missing_metadata"
	DropInsufficientCapital  DropReason = "insufficient_capital"
	DropZeroScore            DropReason = "zero_score"
	DropInconsistentHistory  DropReason = "inconsistent_history"
	DropInsufficientHistory  DropReason = "insufficient_history"
)

// Opportunity is a scored, capital-bounded flip candidate. It is built once
// by the evaluator; WeeklyAvgHigh/WeeklyAvgLow are filled only when the item
// survives the consistency filter, and Score only in the final
// normalization pass.
type Opportunity struct {
	ItemID             int
	Name               string
	BuyLimit           int64
	ResetTime          int // seconds per buy-limit window
	BuyPrice           int64
	SellPrice          int64
	Tax                int64
	BondConversionCost int64
	DailyAvgHigh       int64
	DailyAvgLow        int64
	HighVolume         int64
	LowVolume          int64
	Margin             int64
	MarginPercent      float64
	AchievableItems    int64
	ProfitPerWindow    int64
	RequiredCapital    int64
	ExpectedCapital    int64
	RawScore           float64
	Score              float64 // 0-100, relative to the best accepted candidate
	WeeklyAvgHigh      float64
	WeeklyAvgLow       float64
}

// HistoricalStats holds percentile/variance statistics computed from an
// item's daily price series. Immutable once built.
type HistoricalStats struct {
	AvgHigh       float64
	AvgLow        float64
	HighStd       float64
	LowStd        float64
	High5th       int64
	High95th      int64
	Low5th        int64
	Low95th       int64
	AvgHigh5th    float64 // mean of the bottom 5% of high prices
	AvgLow5th     float64
	AvgHigh95th   float64 // mean of the top 5% of high prices
	AvgLow95th    float64
	AvgHighVolume float64
	AvgLowVolume  float64
	DataPoints    int
}

// AnalyzeParams holds the input parameters for one analysis run.
type AnalyzeParams struct {
	MinVolume        int64
	MinMarginPercent float64
	AvailableCash    int64 // 0 = no capital filter

	TopCandidates      int // 0 = default 20
	ReplacementBatch   int // 0 = default 5
	HistoryConcurrency int // 0 = default 10
	MinHistoryPoints   int // 0 = default 20
	BondItemID         int // 0 = default 13190
}

// Selection and retrieval defaults.
const (
	DefaultTopCandidates      = 20
	DefaultReplacementBatch   = 5
	DefaultHistoryConcurrency = 10
	DefaultMinHistoryPoints   = 20
	DefaultBondItemID         = 13190
)

// withDefaults returns a copy of p with zero fields replaced by defaults.
func (p AnalyzeParams) withDefaults() AnalyzeParams {
	if p.TopCandidates <= 0 {
		p.TopCandidates = DefaultTopCandidates
	}
	if p.ReplacementBatch <= 0 {
		p.ReplacementBatch = DefaultReplacementBatch
	}
	if p.HistoryConcurrency <= 0 {
		p.HistoryConcurrency = DefaultHistoryConcurrency
	}
	if p.MinHistoryPoints <= 0 {
		p.MinHistoryPoints = DefaultMinHistoryPoints
	}
	if p.BondItemID <= 0 {
		p.BondItemID = DefaultBondItemID
	}
	return p
}

// AnalysisResult is the outcome of one analysis run: the accepted
// opportunities in rank order plus a tally of every drop reason.
type AnalysisResult struct {
	Opportunities []Opportunity
	DropCounts    map[DropReason]int
}

func newAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		DropCounts: make(map[DropReason]int),
	}
}
