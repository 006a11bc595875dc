package engine

import (
	"errors"
	"log"
	"strconv"

	"osrs-flipper/internal/wiki"
)

// historyResult is the per-item outcome of one historical-stats retrieval.
// stats == nil means the item has no usable statistics; insufficient
// distinguishes a too-short series from a failed fetch (both reject, but
// they are tallied separately).
type historyResult struct {
	stats        *HistoricalStats
	insufficient bool
}

// timeseries returns an item's daily price series, cache-aside through the
// HistoryCache when one is configured. Concurrent fetches for the same item
// are coalesced.
func (a *Analyzer) timeseries(itemID int) ([]wiki.TimeseriesEntry, error) {
	if a.History != nil {
		if entries, ok := a.History.GetTimeseries(itemID); ok {
			return entries, nil
		}
	}

	v, err, _ := a.sf.Do(strconv.Itoa(itemID), func() (interface{}, error) {
		entries, err := a.Provider.FetchTimeseries(itemID)
		if err != nil {
			return nil, err
		}
		if a.History != nil {
			a.History.SetTimeseries(itemID, entries)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]wiki.TimeseriesEntry), nil
}

// fetchHistoryBatch retrieves historical stats for one replacement round
// with bounded concurrency and joins before returning: replacement batch
// sizing depends on the whole round's outcome, so the round is a barrier.
// A failed fetch degrades to "stats absent" and never blocks the round.
func (a *Analyzer) fetchHistoryBatch(ids []int, p AnalyzeParams) map[int]historyResult {
	type outcome struct {
		id  int
		res historyResult
	}

	sem := make(chan struct{}, p.HistoryConcurrency)
	ch := make(chan outcome, len(ids))

	for _, id := range ids {
		sem <- struct{}{}
		go func(id int) {
			defer func() { <-sem }()

			entries, err := a.timeseries(id)
			if err != nil {
				log.Printf("[ENGINE] timeseries fetch failed for item %d: %v", id, err)
				ch <- outcome{id, historyResult{}}
				return
			}

			stats, err := ComputeHistoricalStats(entries, p.MinHistoryPoints)
			if err != nil {
				ch <- outcome{id, historyResult{insufficient: errors.Is(err, ErrInsufficientHistory)}}
				return
			}
			ch <- outcome{id, historyResult{stats: stats}}
		}(id)
	}

	out := make(map[int]historyResult, len(ids))
	for range ids {
		o := <-ch
		out[o.id] = o.res
	}
	return out
}
