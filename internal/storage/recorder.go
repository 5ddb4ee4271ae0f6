// Package storage persists completed deliberation runs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// RunRecord is one deliberation run.
type RunRecord struct {
	ID            string
	Symbol        string
	TradeDate     string
	Market        string
	Decision      string
	FinalDecision string
	ModelCalls    int
	Status        string
}

// RunWithMeta adds the timestamps the database assigns.
type RunWithMeta struct {
	RunRecord
	CreatedAt string
	UpdatedAt string
}

// Recorder stores run records in sqlite.
type Recorder struct {
	db *sql.DB
}

// Open opens or creates the run database at dbPath.
func Open(dbPath string) (*Recorder, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    trade_date TEXT NOT NULL,
    market TEXT,
    decision TEXT,
    final_decision TEXT NOT NULL DEFAULT '',
    model_calls INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_symbol_date ON runs(symbol, trade_date);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init runs schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveRun inserts or updates a run by id.
func (r *Recorder) SaveRun(ctx context.Context, run RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if run.Status == "" {
		run.Status = StatusRunning
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO runs (id, symbol, trade_date, market, decision, final_decision, model_calls, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    symbol=excluded.symbol,
    trade_date=excluded.trade_date,
    market=excluded.market,
    decision=excluded.decision,
    final_decision=excluded.final_decision,
    model_calls=excluded.model_calls,
    status=excluded.status,
    updated_at=CURRENT_TIMESTAMP
`, run.ID, run.Symbol, run.TradeDate, run.Market, run.Decision, run.FinalDecision, run.ModelCalls, run.Status)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetRun loads one run by id.
func (r *Recorder) GetRun(ctx context.Context, id string) (*RunWithMeta, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, symbol, trade_date, market, decision, final_decision, model_calls, status, created_at, updated_at
FROM runs WHERE id = ?
`, id)

	var run RunWithMeta
	err := row.Scan(&run.ID, &run.Symbol, &run.TradeDate, &run.Market, &run.Decision,
		&run.FinalDecision, &run.ModelCalls, &run.Status, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs for a symbol, or all symbols when
// symbol is empty.
func (r *Recorder) ListRuns(ctx context.Context, symbol string, limit int) ([]RunWithMeta, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
SELECT id, symbol, trade_date, market, decision, final_decision, model_calls, status, created_at, updated_at
FROM runs
`
	args := []interface{}{}
	if symbol != "" {
		query += "WHERE symbol = ?\n"
		args = append(args, symbol)
	}
	query += "ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunWithMeta
	for rows.Next() {
		var run RunWithMeta
		if err := rows.Scan(&run.ID, &run.Symbol, &run.TradeDate, &run.Market, &run.Decision,
			&run.FinalDecision, &run.ModelCalls, &run.Status, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
