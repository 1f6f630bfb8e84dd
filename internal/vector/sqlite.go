package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteIndex persists embedding records in a SQLite database and serves
// searches from an in-memory mirror. Batch inserts run in one transaction and
// one lock acquisition, so concurrent readers observe either none or all of a
// batch. The schema and mirror are initialized lazily on first access, exactly
// once per process.
type SQLiteIndex struct {
	dimensions int
	db         *sql.DB
	records    []Record
	mu         sync.RWMutex

	initOnce sync.Once
	initErr  error
}

// NewSQLiteIndex opens or creates a SQLite-backed index at dbPath.
// Parent directories are created if they do not exist. The database is not
// touched until the first Add/Search/Size call.
func NewSQLiteIndex(dbPath string, dimensions int) (*SQLiteIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	return &SQLiteIndex{dimensions: dimensions, db: db}, nil
}

// ensureReady initializes the schema and loads the mirror. Concurrent first
// accesses share a single initialization.
func (s *SQLiteIndex) ensureReady() error {
	s.initOnce.Do(func() {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			s.initErr = fmt.Errorf("failed to enable WAL: %w", err)
			return
		}
		schema := `
	CREATE TABLE IF NOT EXISTS embedding_records (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		content TEXT NOT NULL,
		vector BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_source ON embedding_records(source);
	`
		if _, err := s.db.Exec(schema); err != nil {
			s.initErr = fmt.Errorf("failed to initialize schema: %w", err)
			return
		}
		s.initErr = s.loadMirror()
	})
	return s.initErr
}

// loadMirror reads all records into memory in insertion (rowid) order.
func (s *SQLiteIndex) loadMirror() error {
	rows, err := s.db.Query(`SELECT id, source, content, vector FROM embedding_records ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Content, &blob); err != nil {
			return fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Vector = bytesToFloat32Slice(blob)
		if len(rec.Vector) != s.dimensions {
			return fmt.Errorf("stored vector dimension mismatch for %s: got %d, expected %d",
				rec.ID, len(rec.Vector), s.dimensions)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// Add inserts records in a single transaction and publishes them to the
// mirror atomically.
func (s *SQLiteIndex) Add(ctx context.Context, records []Record) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := checkRecords(records, s.dimensions); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embedding_records (id, source, content, vector) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	copied := make([]Record, len(records))
	for i, rec := range records {
		vec := make([]float32, s.dimensions)
		copy(vec, rec.Vector)
		rec.Vector = vec
		copied[i] = rec
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Source, rec.Content, float32SliceToBytes(rec.Vector)); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
		}
	}
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	s.mu.Lock()
	s.records = append(s.records, copied...)
	s.mu.Unlock()
	return nil
}

// Search returns the top-k records by inner product from the mirror.
func (s *SQLiteIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return searchRecords(s.records, query, s.dimensions, k)
}

// Size returns the number of records in the index.
func (s *SQLiteIndex) Size() int {
	if err := s.ensureReady(); err != nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close closes the underlying database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func float32SliceToBytes(v []float32) []byte {
	const size = 4
	out := make([]byte, len(v)*size)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(f))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
