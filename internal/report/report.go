package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"osrs-flipper/internal/engine"
	"osrs-flipper/internal/logger"
)

// profitRange buckets opportunities by profit per trade (margin).
type profitRange struct {
	min  int64
	max  int64 // exclusive; 0 = unbounded
	name string
}

var profitRanges = []profitRange{
	{0, 100_000, "0-100k"},
	{100_000, 500_000, "100k-500k"},
	{500_000, 1_000_000, "500k-1m"},
	{1_000_000, 0, "1m+"},
}

func (r profitRange) contains(margin int64) bool {
	if margin < r.min {
		return false
	}
	return r.max == 0 || margin < r.max
}

// Save writes one text file per profit-per-trade bucket under outputDir.
// Within a bucket, entries are ordered by ascending margin.
func Save(outputDir string, opportunities []engine.Opportunity) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	for _, r := range profitRanges {
		var bucket []engine.Opportunity
		for _, o := range opportunities {
			if r.contains(o.Margin) {
				bucket = append(bucket, o)
			}
		}
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Margin < bucket[j].Margin })

		path := filepath.Join(outputDir, fmt.Sprintf("flipping_opportunities_%s.txt", r.name))
		if err := writeBucket(path, r.name, timestamp, bucket); err != nil {
			return err
		}
		logger.Info("REPORT", fmt.Sprintf("Saved %d opportunities (%s profit per trade) to %s", len(bucket), r.name, path))
	}
	return nil
}

func writeBucket(path, rangeName, timestamp string, opps []engine.Opportunity) error {
	var b strings.Builder

	fmt.Fprintf(&b, "OSRS Flipping Opportunities (%s profit per trade) - Generated at %s\n", rangeName, timestamp)
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, o := range opps {
		b.WriteString(Format(o))
		b.WriteString(strings.Repeat("-", 30) + "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Format renders one opportunity as the multi-line block used in both
// report files and the console summary.
func Format(o engine.Opportunity) string {
	var b strings.Builder

	resetHours := float64(o.ResetTime) / 3600
	periodsPerDay := 86400 / float64(o.ResetTime)
	highPerPeriod := float64(o.HighVolume) / periodsPerDay
	lowPerPeriod := float64(o.LowVolume) / periodsPerDay

	fmt.Fprintf(&b, "Item: %s\n", o.Name)
	fmt.Fprintf(&b, "Buy Limit: %s per %.1fh\n", humanize.Comma(o.BuyLimit), resetHours)
	fmt.Fprintf(&b, "Buy Price: %s gp\n", humanize.Comma(o.BuyPrice))
	fmt.Fprintf(&b, "Current Sell Price: %s gp\n", humanize.Comma(o.SellPrice))
	fmt.Fprintf(&b, "GE Tax: %s gp\n", humanize.Comma(o.Tax))
	if o.BondConversionCost > 0 {
		fmt.Fprintf(&b, "Bond Conversion Cost: %s gp\n", humanize.Comma(o.BondConversionCost))
	}
	fmt.Fprintf(&b, "24h Avg High: %s gp\n", humanize.Comma(o.DailyAvgHigh))
	fmt.Fprintf(&b, "24h Avg Low: %s gp\n", humanize.Comma(o.DailyAvgLow))
	fmt.Fprintf(&b, "Potential Profit (after tax): %s gp (%.2f%%)\n", humanize.Comma(o.Margin), o.MarginPercent)
	fmt.Fprintf(&b, "Profit per buy window: %s gp (achievable items: %s)\n",
		humanize.Comma(o.ProfitPerWindow), humanize.Comma(o.AchievableItems))
	fmt.Fprintf(&b, "Required Capital: %s gp\n", humanize.Comma(o.RequiredCapital))
	fmt.Fprintf(&b, "Expected Capital After Flip: %s gp\n", humanize.Comma(o.ExpectedCapital))
	fmt.Fprintf(&b, "24h High Price Volume: %s\n", humanize.Comma(o.HighVolume))
	fmt.Fprintf(&b, "24h Low Price Volume: %s\n", humanize.Comma(o.LowVolume))
	fmt.Fprintf(&b, "High Price Volume per %.1fh: %s\n", resetHours, humanize.CommafWithDigits(highPerPeriod, 1))
	fmt.Fprintf(&b, "Low Price Volume per %.1fh: %s\n", resetHours, humanize.CommafWithDigits(lowPerPeriod, 1))
	fmt.Fprintf(&b, "Raw Score: %s\n", humanize.CommafWithDigits(o.RawScore, 0))
	fmt.Fprintf(&b, "Normalized Score: %.1f/100\n", o.Score)

	return b.String()
}
