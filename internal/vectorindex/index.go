package vectorindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	// StateDirName is the per-directory state subdirectory
	StateDirName = ".vs"
	// DBFileName is the vector database file name inside the state directory
	DBFileName = "vectors.db"
)

var (
	// ErrDimensionMismatch is returned when a vector's size does not match
	// the index's configured dimensionality. Caller error, never retried.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Index is an append-only exact nearest-neighbor index over squared L2
// distance, persisted in SQLite. A vector's 0-based insertion position is
// its identity; there is no delete or update.
type Index struct {
	db  *sql.DB
	dim int
}

// DBPath returns the vector database path for a directory
func DBPath(dir string) string {
	return filepath.Join(dir, StateDirName, DBFileName)
}

// Open opens (or creates) the vector index for a directory with a fixed
// embedding dimensionality. Opening an existing index with a different
// dimensionality fails with ErrDimensionMismatch.
func Open(ctx context.Context, dir string, dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrDimensionMismatch, dim)
	}

	if err := os.MkdirAll(filepath.Join(dir, StateDirName), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := openDatabase(DBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("open vector database: %w", err)
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	if err := pinDimension(ctx, db, dim); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Index{db: db, dim: dim}, nil
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// pinDimension stores the dimensionality on first open and verifies it on
// every subsequent open.
func pinDimension(ctx context.Context, db *sql.DB, dim int) error {
	var stored int
	err := db.QueryRowContext(ctx, "SELECT dimension FROM index_meta WHERE id = 1").Scan(&stored)
	if err == sql.ErrNoRows {
		if _, err := db.ExecContext(ctx, "INSERT INTO index_meta (id, dimension) VALUES (1, ?)", dim); err != nil {
			return fmt.Errorf("store dimension: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read dimension: %w", err)
	}

	if stored != dim {
		return fmt.Errorf("%w: index has dimension %d, caller configured %d", ErrDimensionMismatch, stored, dim)
	}

	return nil
}

// Dimension returns the configured embedding dimensionality
func (ix *Index) Dimension() int {
	return ix.dim
}

// Add appends vectors at the end of the index, in call order. All vectors
// must match the configured dimensionality. The batch is appended atomically.
func (ix *Index) Add(ctx context.Context, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrDimensionMismatch, i, len(v), ix.dim)
		}
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&next); err != nil {
		return fmt.Errorf("count vectors: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO vectors (position, vector) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, v := range vectors {
		if _, err := stmt.ExecContext(ctx, next+int64(i), serializeVector(v)); err != nil {
			return fmt.Errorf("append vector %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}

	return nil
}

// Search returns the k nearest vectors to query by squared L2 distance,
// distances ascending, ids being 0-based insertion positions. Fewer than k
// results are returned when the index is smaller than k.
func (ix *Index) Search(ctx context.Context, query []float32, k int) (distances []float32, ids []int64, err error) {
	if len(query) != ix.dim {
		return nil, nil, fmt.Errorf("%w: query has dimension %d, want %d", ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil, nil
	}

	rows, err := ix.db.QueryContext(ctx, "SELECT position, vector FROM vectors ORDER BY position")
	if err != nil {
		return nil, nil, fmt.Errorf("load vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type candidate struct {
		id       int64
		distance float32
	}
	var candidates []candidate

	for rows.Next() {
		var position int64
		var blob []byte
		if err := rows.Scan(&position, &blob); err != nil {
			return nil, nil, fmt.Errorf("scan vector: %w", err)
		}

		vector := deserializeVector(blob)
		if len(vector) != ix.dim {
			return nil, nil, fmt.Errorf("%w: stored vector %d has dimension %d, want %d", ErrDimensionMismatch, position, len(vector), ix.dim)
		}

		candidates = append(candidates, candidate{id: position, distance: squaredL2(query, vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	distances = make([]float32, k)
	ids = make([]int64, k)
	for i := 0; i < k; i++ {
		distances[i] = candidates[i].distance
		ids[i] = candidates[i].id
	}

	return distances, ids, nil
}

// Size returns the total number of vectors in the index
func (ix *Index) Size(ctx context.Context) (int64, error) {
	var count int64
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&count); err != nil {
		return 0, fmt.Errorf("count vectors: %w", err)
	}
	return count, nil
}

// Close closes the underlying database
func (ix *Index) Close() error {
	return ix.db.Close()
}
