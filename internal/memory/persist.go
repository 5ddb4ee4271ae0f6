package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB persists memory records across runs. Each Store loads its collection at
// startup and writes new records through SaveRecords.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the memory database at dbPath.
func OpenDB(dbPath string) (*DB, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("memory db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create memory db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
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
CREATE TABLE IF NOT EXISTS memories (
    collection TEXT NOT NULL,
    situation TEXT NOT NULL,
    recommendation TEXT NOT NULL,
    embedding TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_memories_collection ON memories(collection);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init memory schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SaveRecords appends records to a collection. Embeddings are stored as JSON
// arrays so the schema stays driver-portable.
func (d *DB) SaveRecords(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin memory tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO memories (collection, situation, recommendation, embedding)
VALUES (?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare memory insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		vec, err := json.Marshal(rec.embedding)
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, collection, rec.Situation, rec.Recommendation, string(vec)); err != nil {
			return fmt.Errorf("insert memory: %w", err)
		}
	}
	return tx.Commit()
}

// LoadRecords returns all records of a collection in insertion order.
func (d *DB) LoadRecords(ctx context.Context, collection string) ([]Record, error) {
	rows, err := d.db.QueryContext(ctx, `
SELECT situation, recommendation, embedding
FROM memories
WHERE collection = ?
ORDER BY rowid ASC
`, collection)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var vec string
		if err := rows.Scan(&rec.Situation, &rec.Recommendation, &vec); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		if err := json.Unmarshal([]byte(vec), &rec.embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LoadInto replaces a store's records with the persisted collection.
func (d *DB) LoadInto(ctx context.Context, store *Store) error {
	records, err := d.LoadRecords(ctx, store.Name())
	if err != nil {
		return err
	}
	store.mu.Lock()
	store.records = records
	store.mu.Unlock()
	return nil
}

// Flush persists any store records not yet written for the collection.
func (d *DB) Flush(ctx context.Context, store *Store) error {
	persisted, err := d.LoadRecords(ctx, store.Name())
	if err != nil {
		return err
	}
	store.mu.RLock()
	pending := store.records[min(len(persisted), len(store.records)):]
	fresh := make([]Record, len(pending))
	copy(fresh, pending)
	store.mu.RUnlock()
	return d.SaveRecords(ctx, store.Name(), fresh)
}
