package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/villagerag/internal/models"
)

// SQLiteStore persists collections in a SQLite file and searches them by brute-force cosine,
// which is adequate for a corpus of a few thousand chunks.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		dimensions INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS points (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		source TEXT NOT NULL,
		page INTEGER NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		overlap_prefix TEXT NOT NULL,
		vector BLOB NOT NULL,
		PRIMARY KEY (collection, id),
		FOREIGN KEY (collection) REFERENCES collections(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_points_collection ON points(collection);
	`
	_, err := db.Exec(schema)
	return err
}

// CollectionInfo reports the exact point count.
func (s *SQLiteStore) CollectionInfo(ctx context.Context, name string) (CollectionInfo, error) {
	var dims int
	err := s.db.QueryRowContext(ctx, `SELECT dimensions FROM collections WHERE name = ?`, name).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return CollectionInfo{}, nil
	}
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("collection info: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM points WHERE collection = ?`, name).Scan(&n); err != nil {
		return CollectionInfo{}, fmt.Errorf("count points: %w", err)
	}
	return CollectionInfo{Exists: true, PointCount: n, CountKnown: true}, nil
}

// Search loads the collection's vectors and returns the top-k by cosine similarity.
func (s *SQLiteStore) Search(ctx context.Context, name string, query []float32, k int) ([]Hit, error) {
	var dims int
	err := s.db.QueryRowContext(ctx, `SELECT dimensions FROM collections WHERE name = ?`, name).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("search %s: %w", name, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", name, err)
	}
	if len(query) != dims {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), dims)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, page, chunk_index, content, overlap_prefix, vector
		 FROM points WHERE collection = ? ORDER BY rowid`, name)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", name, err)
	}
	defer rows.Close()

	var entries []models.IndexEntry
	for rows.Next() {
		var e models.IndexEntry
		var blob []byte
		if err := rows.Scan(&e.Chunk.ID, &e.Chunk.SourceID, &e.Chunk.Page, &e.Chunk.Index,
			&e.Chunk.Text, &e.Chunk.OverlapPrefix, &blob); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		e.Vector = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return topK(query, entries, k), nil
}

// CreateFromEntries replaces the collection in a single transaction.
func (s *SQLiteStore) CreateFromEntries(ctx context.Context, name string, dimensions int, entries []models.IndexEntry) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM points WHERE collection = ?`, name); err != nil {
		return fmt.Errorf("failed to clear points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO collections (name, dimensions) VALUES (?, ?)`, name, dimensions); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO points (collection, id, source, page, chunk_index, content, overlap_prefix, vector)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if len(e.Vector) != dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), dimensions)
		}
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx, name, c.ID, c.SourceID, c.Page, c.Index, c.Text, c.OverlapPrefix,
			float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("failed to insert point %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
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
