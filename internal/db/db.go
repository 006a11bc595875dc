package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"osrs-flipper/internal/config"
	"osrs-flipper/internal/engine"
	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/wiki"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql        *sql.DB
	historyTTL time.Duration
}

func dbPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "flipper.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "flipper.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	return openPath(dbPath())
}

func openPath(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB, historyTTL: time.Hour}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// SetHistoryTTL sets the freshness window for cached timeseries data.
func (d *DB) SetHistoryTTL(ttl time.Duration) {
	if ttl > 0 {
		d.historyTTL = ttl
	}
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS settings (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS timeseries (
				item_id     INTEGER NOT NULL,
				ts          INTEGER NOT NULL,
				avg_high    INTEGER,
				avg_low     INTEGER,
				high_volume INTEGER,
				low_volume  INTEGER,
				PRIMARY KEY (item_id, ts)
			);

			CREATE TABLE IF NOT EXISTS timeseries_meta (
				item_id    INTEGER PRIMARY KEY,
				updated_at TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS analysis_history (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp      TEXT NOT NULL,
				min_volume     INTEGER NOT NULL,
				min_margin     REAL NOT NULL,
				available_cash INTEGER NOT NULL,
				result_count   INTEGER NOT NULL,
				top_raw_score  REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis_history(timestamp);

			CREATE TABLE IF NOT EXISTS opportunity_results (
				id                INTEGER PRIMARY KEY AUTOINCREMENT,
				analysis_id       INTEGER NOT NULL REFERENCES analysis_history(id),
				item_id           INTEGER,
				name              TEXT,
				buy_limit         INTEGER,
				reset_time        INTEGER,
				buy_price         INTEGER,
				sell_price        INTEGER,
				tax               INTEGER,
				bond_cost         INTEGER,
				margin            INTEGER,
				margin_pct        REAL,
				achievable_items  INTEGER,
				profit_per_window INTEGER,
				required_capital  INTEGER,
				expected_capital  INTEGER,
				raw_score         REAL,
				score             REAL,
				weekly_avg_high   REAL,
				weekly_avg_low    REAL
			);
			CREATE INDEX IF NOT EXISTS idx_opportunity_analysis ON opportunity_results(analysis_id);
			CREATE INDEX IF NOT EXISTS idx_opportunity_item ON opportunity_results(item_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}

// LoadConfig reads the persisted settings blob, falling back to defaults
// when none exists or it fails to parse.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	var raw string
	err := d.sql.QueryRow("SELECT value FROM settings WHERE key = 'config'").Scan(&raw)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		logger.Warn("DB", fmt.Sprintf("Bad settings blob, using defaults: %v", err))
		return config.Default()
	}
	cfg.Normalize()
	return cfg
}

// SaveConfig persists the settings blob.
func (d *DB) SaveConfig(cfg *config.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = d.sql.Exec(
		"INSERT INTO settings (key, value) VALUES ('config', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		string(raw))
	return err
}

// GetTimeseries returns a cached series if it exists and is fresh.
// Implements engine.HistoryCache.
func (d *DB) GetTimeseries(itemID int) ([]wiki.TimeseriesEntry, bool) {
	var updatedAt string
	err := d.sql.QueryRow("SELECT updated_at FROM timeseries_meta WHERE item_id = ?", itemID).Scan(&updatedAt)
	if err != nil {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil || time.Since(t) > d.historyTTL {
		return nil, false
	}

	rows, err := d.sql.Query(
		"SELECT ts, avg_high, avg_low, high_volume, low_volume FROM timeseries WHERE item_id = ? ORDER BY ts",
		itemID)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var entries []wiki.TimeseriesEntry
	for rows.Next() {
		var e wiki.TimeseriesEntry
		if err := rows.Scan(&e.Timestamp, &e.AvgHighPrice, &e.AvgLowPrice, &e.HighPriceVolume, &e.LowPriceVolume); err != nil {
			return nil, false
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// SetTimeseries replaces the cached series for an item and stamps it fresh.
// Implements engine.HistoryCache.
func (d *DB) SetTimeseries(itemID int, entries []wiki.TimeseriesEntry) {
	tx, err := d.sql.Begin()
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("timeseries cache write failed: %v", err))
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM timeseries WHERE item_id = ?", itemID); err != nil {
		return
	}
	for _, e := range entries {
		if _, err := tx.Exec(
			"INSERT INTO timeseries (item_id, ts, avg_high, avg_low, high_volume, low_volume) VALUES (?, ?, ?, ?, ?, ?)",
			itemID, e.Timestamp, e.AvgHighPrice, e.AvgLowPrice, e.HighPriceVolume, e.LowPriceVolume); err != nil {
			return
		}
	}
	if _, err := tx.Exec(
		"INSERT INTO timeseries_meta (item_id, updated_at) VALUES (?, ?) ON CONFLICT(item_id) DO UPDATE SET updated_at = excluded.updated_at",
		itemID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return
	}
	tx.Commit()
}

// InsertAnalysis records one analysis run and returns its row ID.
func (d *DB) InsertAnalysis(params engine.AnalyzeParams, resultCount int, topRawScore float64) int64 {
	res, err := d.sql.Exec(
		"INSERT INTO analysis_history (timestamp, min_volume, min_margin, available_cash, result_count, top_raw_score) VALUES (?, ?, ?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), params.MinVolume, params.MinMarginPercent, params.AvailableCash, resultCount, topRawScore)
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("InsertAnalysis failed: %v", err))
		return 0
	}
	id, _ := res.LastInsertId()
	return id
}

// InsertOpportunities stores the accepted opportunities of one run.
func (d *DB) InsertOpportunities(analysisID int64, opps []engine.Opportunity) {
	tx, err := d.sql.Begin()
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("InsertOpportunities failed: %v", err))
		return
	}
	defer tx.Rollback()

	for _, o := range opps {
		if _, err := tx.Exec(`
			INSERT INTO opportunity_results (
				analysis_id, item_id, name, buy_limit, reset_time, buy_price, sell_price,
				tax, bond_cost, margin, margin_pct, achievable_items, profit_per_window,
				required_capital, expected_capital, raw_score, score, weekly_avg_high, weekly_avg_low
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			analysisID, o.ItemID, o.Name, o.BuyLimit, o.ResetTime, o.BuyPrice, o.SellPrice,
			o.Tax, o.BondConversionCost, o.Margin, o.MarginPercent, o.AchievableItems, o.ProfitPerWindow,
			o.RequiredCapital, o.ExpectedCapital, o.RawScore, o.Score, o.WeeklyAvgHigh, o.WeeklyAvgLow); err != nil {
			logger.Warn("DB", fmt.Sprintf("InsertOpportunities row failed: %v", err))
			return
		}
	}
	tx.Commit()
}

// GetOpportunities returns the stored opportunities for one analysis run.
func (d *DB) GetOpportunities(analysisID int64) []engine.Opportunity {
	rows, err := d.sql.Query(`
		SELECT item_id, name, buy_limit, reset_time, buy_price, sell_price,
		       tax, bond_cost, margin, margin_pct, achievable_items, profit_per_window,
		       required_capital, expected_capital, raw_score, score, weekly_avg_high, weekly_avg_low
		FROM opportunity_results WHERE analysis_id = ? ORDER BY raw_score DESC`, analysisID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var opps []engine.Opportunity
	for rows.Next() {
		var o engine.Opportunity
		if err := rows.Scan(
			&o.ItemID, &o.Name, &o.BuyLimit, &o.ResetTime, &o.BuyPrice, &o.SellPrice,
			&o.Tax, &o.BondConversionCost, &o.Margin, &o.MarginPercent, &o.AchievableItems, &o.ProfitPerWindow,
			&o.RequiredCapital, &o.ExpectedCapital, &o.RawScore, &o.Score, &o.WeeklyAvgHigh, &o.WeeklyAvgLow); err != nil {
			return opps
		}
		opps = append(opps, o)
	}
	return opps
}
