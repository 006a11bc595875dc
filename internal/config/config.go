package config

// Config holds application settings (in-memory representation).
// Persistence is handled by the internal/db package.
type Config struct {
	MinVolume        int64   `json:"min_volume"`         // minimum 24h volume on both sides
	MinMarginPercent float64 `json:"min_margin_percent"` // minimum post-tax margin %
	AvailableCash    int64   `json:"available_cash"`     // gp budget; 0 = no capital filter

	// Candidate selection.
	TopCandidates    int `json:"top_candidates"`    // size of the final accepted set (K)
	ReplacementBatch int `json:"replacement_batch"` // ranked-pool chunk size after the first replacement round

	// Historical stats retrieval.
	HistoryConcurrency int `json:"history_concurrency"`  // max in-flight timeseries fetches per round
	HistoryTTLMinutes  int `json:"history_ttl_minutes"`  // disk-cache freshness window
	MinHistoryPoints   int `json:"min_history_points"`   // samples needed for percentile-trimmed stats

	// Grand Exchange rules.
	BondItemID       int `json:"bond_item_id"`       // item paying the 10% conversion cost
	DefaultResetTime int `json:"default_reset_time"` // buy-limit reset, seconds

	// Reporting.
	OutputDir string `json:"output_dir"`

	// Contact string appended to the wiki API User-Agent (the API asks for one).
	Contact string `json:"contact"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		MinVolume:          100,
		MinMarginPercent:   0.5,
		AvailableCash:      0,
		TopCandidates:      20,
		ReplacementBatch:   5,
		HistoryConcurrency: 10,
		HistoryTTLMinutes:  60,
		MinHistoryPoints:   20,
		BondItemID:         13190,
		DefaultResetTime:   14400,
		OutputDir:          "reports",
	}
}

// Normalize fills zero or negative fields with defaults so a partially
// populated config (old settings row, flag overrides) stays usable.
func (c *Config) Normalize() {
	d := Default()
	if c.TopCandidates <= 0 {
		c.TopCandidates = d.TopCandidates
	}
	if c.ReplacementBatch <= 0 {
		c.ReplacementBatch = d.ReplacementBatch
	}
	if c.HistoryConcurrency <= 0 {
		c.HistoryConcurrency = d.HistoryConcurrency
	}
	if c.HistoryTTLMinutes <= 0 {
		c.HistoryTTLMinutes = d.HistoryTTLMinutes
	}
	if c.MinHistoryPoints <= 0 {
		c.MinHistoryPoints = d.MinHistoryPoints
	}
	if c.BondItemID <= 0 {
		c.BondItemID = d.BondItemID
	}
	if c.DefaultResetTime <= 0 {
		c.DefaultResetTime = d.DefaultResetTime
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
}
