package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"osrs-flipper/internal/db"
	"osrs-flipper/internal/engine"
	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/report"
	"osrs-flipper/internal/wiki"
)

var version = "dev"

func main() {
	minVolume := flag.Int64("volume", -1, "Minimum 24h volume on both sides")
	minMargin := flag.Float64("margin", -1, "Minimum post-tax margin percentage")
	cashMillions := flag.Float64("cash", -1, "Available cash in millions (e.g. 10 for 10M); 0 disables the capital filter")
	outputDir := flag.String("out", "", "Directory for the report files")
	contact := flag.String("contact", "", "Contact info for the wiki API User-Agent")
	flag.Parse()

	godotenv.Load()

	logger.Banner(version)

	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfg := database.LoadConfig()
	if *minVolume >= 0 {
		cfg.MinVolume = *minVolume
	}
	if *minMargin >= 0 {
		cfg.MinMarginPercent = *minMargin
	}
	if *cashMillions >= 0 {
		cfg.AvailableCash = int64(*cashMillions * 1_000_000)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *contact != "" {
		cfg.Contact = *contact
	}
	if cfg.Contact == "" {
		cfg.Contact = os.Getenv("WIKI_CONTACT")
	}
	cfg.Normalize()
	if err := database.SaveConfig(cfg); err != nil {
		logger.Warn("DB", fmt.Sprintf("Failed to persist settings: %v", err))
	}
	database.SetHistoryTTL(time.Duration(cfg.HistoryTTLMinutes) * time.Minute)

	client := wiki.NewClient(cfg.Contact)
	if !client.HealthCheck() {
		logger.Error("API", "Price API unreachable")
		os.Exit(1)
	}
	logger.Success("API", "Price API reachable")

	logger.Section("Analysis")
	logger.Stats("Min volume", cfg.MinVolume)
	logger.Stats("Min margin %", cfg.MinMarginPercent)
	if cfg.AvailableCash > 0 {
		logger.Stats("Available cash", humanize.Comma(cfg.AvailableCash)+" gp")
	} else {
		logger.Stats("Available cash", "unlimited")
	}

	analyzer := engine.NewAnalyzer(client, database)
	params := engine.AnalyzeParams{
		MinVolume:          cfg.MinVolume,
		MinMarginPercent:   cfg.MinMarginPercent,
		AvailableCash:      cfg.AvailableCash,
		TopCandidates:      cfg.TopCandidates,
		ReplacementBatch:   cfg.ReplacementBatch,
		HistoryConcurrency: cfg.HistoryConcurrency,
		MinHistoryPoints:   cfg.MinHistoryPoints,
		BondItemID:         cfg.BondItemID,
	}

	started := time.Now()
	res := analyzer.Analyze(params, func(msg string) {
		logger.Info("ENGINE", msg)
	})
	logger.Success("ENGINE", fmt.Sprintf("Analysis finished in %s", time.Since(started).Round(time.Millisecond)))

	printDropCounts(res, cfg.AvailableCash > 0)

	topRaw := 0.0
	if len(res.Opportunities) > 0 {
		topRaw = res.Opportunities[0].RawScore
	}
	analysisID := database.InsertAnalysis(params, len(res.Opportunities), topRaw)
	if analysisID > 0 {
		database.InsertOpportunities(analysisID, res.Opportunities)
	}

	if err := report.Save(cfg.OutputDir, res.Opportunities); err != nil {
		logger.Error("REPORT", fmt.Sprintf("Failed to write reports: %v", err))
		os.Exit(1)
	}

	printSummary(res.Opportunities)
}

func printDropCounts(res *engine.AnalysisResult, capitalFiltered bool) {
	logger.Section("Filters")
	logger.Stats("Missing data", res.DropCounts[engine.DropMissingData])
	logger.Stats("Unrealistic spread", res.DropCounts[engine.DropUnrealisticSpread])
	logger.Stats("Low volume", res.DropCounts[engine.DropLowVolume])
	logger.Stats("Low margin", res.DropCounts[engine.DropLowMargin])
	logger.Stats("Missing buy limit", res.DropCounts[engine.DropMissingMetadata])
	logger.Stats("Profit below cutoff", res.DropCounts[engine.DropZeroScore])
	if capitalFiltered {
		logger.Stats("Insufficient capital", res.DropCounts[engine.DropInsufficientCapital])
	}
	logger.Stats("Inconsistent history", res.DropCounts[engine.DropInconsistentHistory])
	logger.Stats("Insufficient history", res.DropCounts[engine.DropInsufficientHistory])
}

func printSummary(opps []engine.Opportunity) {
	logger.Section(fmt.Sprintf("Top %d Opportunities", len(opps)))
	if len(opps) == 0 {
		logger.Warn("ENGINE", "No opportunities matched the current filters")
		return
	}
	for i, o := range opps {
		fmt.Printf("\n%d. %s (score %.1f/100)\n", i+1, o.Name, o.Score)
		fmt.Printf("   Buy: %s gp, Sell: %s gp, Margin: %s gp (%.2f%%)\n",
			humanize.Comma(o.BuyPrice), humanize.Comma(o.SellPrice),
			humanize.Comma(o.Margin), o.MarginPercent)
		fmt.Printf("   Buy limit: %s per %.1fh, 7d avg: %s / %s gp\n",
			humanize.Comma(o.BuyLimit), float64(o.ResetTime)/3600,
			humanize.CommafWithDigits(o.WeeklyAvgHigh, 0), humanize.CommafWithDigits(o.WeeklyAvgLow, 0))
		fmt.Printf("   Profit per buy window: %s gp (achievable items: %s)\n",
			humanize.Comma(o.ProfitPerWindow), humanize.Comma(o.AchievableItems))
		fmt.Printf("   Required capital: %s gp\n", humanize.Comma(o.RequiredCapital))
	}
}
