package engine

import (
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"osrs-flipper/internal/wiki"
)

// PriceProvider is the fetch-layer collaborator: raw price, volume, and
// metadata records. *wiki.Client implements it.
type PriceProvider interface {
	FetchLatestPrices() (map[int]wiki.PriceSnapshot, error)
	FetchDailyStats() (map[int]wiki.DailyStats, error)
	FetchItemMapping() (map[int]wiki.ItemMetadata, error)
	FetchTimeseries(itemID int) ([]wiki.TimeseriesEntry, error)
}

// HistoryCache is an optional persistent cache for timeseries data.
type HistoryCache interface {
	GetTimeseries(itemID int) ([]wiki.TimeseriesEntry, bool)
	SetTimeseries(itemID int, entries []wiki.TimeseriesEntry)
}

// Analyzer orchestrates the opportunity pipeline: evaluate every item,
// rank by raw score, validate the top candidates against their 7-day
// history, and backfill rejected slots from the ranked pool.
type Analyzer struct {
	Provider PriceProvider
	History  HistoryCache

	sf singleflight.Group
}

// NewAnalyzer creates an Analyzer. history may be nil (no disk cache).
func NewAnalyzer(provider PriceProvider, history HistoryCache) *Analyzer {
	return &Analyzer{Provider: provider, History: history}
}

// Analyze runs one full analysis. Provider failures degrade to empty data
// and are only reflected in the drop counts; Analyze never aborts the run.
func (a *Analyzer) Analyze(params AnalyzeParams, progress func(string)) *AnalysisResult {
	if progress == nil {
		progress = func(string) {}
	}
	p := params.withDefaults()
	res := newAnalysisResult()

	progress("Fetching latest prices, 24h stats, and item mapping...")
	latest, daily, mapping := a.fetchBaseData()
	log.Printf("[ENGINE] base data: %d snapshots, %d daily, %d mapped items",
		len(latest), len(daily), len(mapping))

	// First pass: evaluate every item independently.
	survivors := make([]Opportunity, 0, 256)
	for itemID, snap := range latest {
		d, ok := daily[itemID]
		if !ok {
			res.DropCounts[DropMissingData]++
			continue
		}
		opp, reason := Evaluate(itemID, snap, d, mapping[itemID], p)
		if reason != DropNone {
			res.DropCounts[reason]++
			continue
		}
		survivors = append(survivors, *opp)
	}

	// Rank descending by raw score; ties break on item ID so the order is
	// deterministic across runs.
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].RawScore != survivors[j].RawScore {
			return survivors[i].RawScore > survivors[j].RawScore
		}
		return survivors[i].ItemID < survivors[j].ItemID
	})
	log.Printf("[ENGINE] %d candidates after evaluation", len(survivors))

	res.Opportunities = a.selectConsistent(survivors, p, res.DropCounts, progress)

	// Final pass: normalize scores against the best accepted candidate.
	if len(res.Opportunities) > 0 {
		maxScore := res.Opportunities[0].RawScore
		for _, opp := range res.Opportunities {
			if opp.RawScore > maxScore {
				maxScore = opp.RawScore
			}
		}
		for i := range res.Opportunities {
			res.Opportunities[i].Score = res.Opportunities[i].RawScore / maxScore * 100
		}
	}

	progress(fmt.Sprintf("Found %d opportunities", len(res.Opportunities)))
	return res
}

// fetchBaseData fetches the three bulk endpoints in parallel. Each failure
// degrades to an empty map; the pipeline then simply finds nothing.
func (a *Analyzer) fetchBaseData() (map[int]wiki.PriceSnapshot, map[int]wiki.DailyStats, map[int]wiki.ItemMetadata) {
	var (
		latest  map[int]wiki.PriceSnapshot
		daily   map[int]wiki.DailyStats
		mapping map[int]wiki.ItemMetadata
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if latest, err = a.Provider.FetchLatestPrices(); err != nil {
			log.Printf("[ENGINE] latest prices fetch failed: %v", err)
			latest = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if daily, err = a.Provider.FetchDailyStats(); err != nil {
			log.Printf("[ENGINE] daily stats fetch failed: %v", err)
			daily = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if mapping, err = a.Provider.FetchItemMapping(); err != nil {
			log.Printf("[ENGINE] item mapping fetch failed: %v", err)
			mapping = nil
		}
		return nil
	})
	g.Wait()

	return latest, daily, mapping
}

// selectConsistent runs the windowed consistency check with iterative
// replacement. The ranked pool is consumed in strictly increasing rank
// order: the initial window is TopCandidates wide, the second round is as
// wide as the first round's reject count, and every later round pulls
// ReplacementBatch candidates, until the result is full or the pool runs
// out. Rounds are sequential; within a round the stats fetches fan out.
func (a *Analyzer) selectConsistent(ranked []Opportunity, p AnalyzeParams, drops map[DropReason]int, progress func(string)) []Opportunity {
	accepted := make([]Opportunity, 0, p.TopCandidates)
	next := 0
	windowSize := p.TopCandidates
	firstRound := true

	for len(accepted) < p.TopCandidates && next < len(ranked) && windowSize > 0 {
		end := next + windowSize
		if end > len(ranked) {
			end = len(ranked)
		}
		batch := ranked[next:end]
		next = end

		ids := make([]int, len(batch))
		for i, opp := range batch {
			ids[i] = opp.ItemID
		}
		progress(fmt.Sprintf("Fetching 7-day history for %d candidates...", len(ids)))
		history := a.fetchHistoryBatch(ids, p)

		rejects := 0
		for _, opp := range batch {
			hr := history[opp.ItemID]
			if hr.insufficient {
				drops[DropInsufficientHistory]++
				rejects++
				continue
			}
			if !PriceConsistent(opp.SellPrice, opp.BuyPrice, hr.stats) {
				drops[DropInconsistentHistory]++
				rejects++
				continue
			}
			opp.WeeklyAvgHigh = hr.stats.AvgHigh
			opp.WeeklyAvgLow = hr.stats.AvgLow
			accepted = append(accepted, opp)
			if len(accepted) >= p.TopCandidates {
				break
			}
		}

		if firstRound {
			firstRound = false
			windowSize = rejects
		} else {
			windowSize = p.ReplacementBatch
		}
	}

	return accepted
}
