// Package store caches network section records in a SQLite database.
// Records are kept in their wire form, compressed with zstd.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/OCharnyshevich/chunksection/internal/section"
	"github.com/OCharnyshevich/chunksection/internal/wire"
)

// ErrNotFound is returned by Get when no record is stored under a key.
var ErrNotFound = errors.New("section not cached")

// Key identifies one cached section.
type Key struct {
	Dimension   section.Dimension
	X, Z        int32
	Y           int8
	DataVersion int
}

// Stats describes the cache contents.
type Stats struct {
	Sections    int
	RawBytes    int64
	StoredBytes int64
}

// Store is a section cache backed by one SQLite file.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	log *slog.Logger
}

// Open opens or creates the cache at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Store{db: db, enc: enc, dec: dec, log: log}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sections (
			dimension INTEGER NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			y INTEGER NOT NULL,
			data_version INTEGER NOT NULL,
			raw_size INTEGER NOT NULL,
			payload BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (dimension, x, z, y, data_version)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sections_column ON sections(dimension, x, z);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close releases the database and codecs.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Put stores the wire record of sec under k, replacing any previous one.
// The section's Y is taken from k.
func (s *Store) Put(ctx context.Context, k Key, sec *section.Section) error {
	var buf bytes.Buffer
	if err := sec.WriteWire(wire.NewWriter(&buf), k.Dimension); err != nil {
		return fmt.Errorf("encode section: %w", err)
	}
	payload := s.enc.EncodeAll(buf.Bytes(), nil)

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sections(dimension,x,z,y,data_version,raw_size,payload,updated_at) VALUES(?,?,?,?,?,?,?,?)`,
		int(k.Dimension), k.X, k.Z, k.Y, k.DataVersion, buf.Len(), payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store section (%d,%d,%d): %w", k.X, k.Y, k.Z, err)
	}
	s.log.Debug("cached section", "x", k.X, "y", k.Y, "z", k.Z, "raw", buf.Len(), "stored", len(payload))
	return nil
}

// Get decodes the section stored under k. The format follows k.DataVersion.
func (s *Store) Get(ctx context.Context, k Key) (*section.Section, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sections WHERE dimension=? AND x=? AND z=? AND y=? AND data_version=?`,
		int(k.Dimension), k.X, k.Z, k.Y, k.DataVersion,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("section (%d,%d,%d): %w", k.X, k.Y, k.Z, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load section (%d,%d,%d): %w", k.X, k.Y, k.Z, err)
	}

	raw, err := s.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress section (%d,%d,%d): %w", k.X, k.Y, k.Z, err)
	}
	f := section.FormatFor(k.DataVersion, nil)
	sec, err := section.ReadWire(wire.NewReader(bytes.NewReader(raw)), k.Y, f, k.Dimension)
	if err != nil {
		return nil, fmt.Errorf("decode section (%d,%d,%d): %w", k.X, k.Y, k.Z, err)
	}
	return sec, nil
}

// Delete removes every cached section of a column.
func (s *Store) Delete(ctx context.Context, dim section.Dimension, x, z int32) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sections WHERE dimension=? AND x=? AND z=?`, int(dim), x, z)
	if err != nil {
		return 0, fmt.Errorf("delete column (%d,%d): %w", x, z, err)
	}
	return res.RowsAffected()
}

// Keys lists the cached sections of a dimension ordered by position.
func (s *Store) Keys(ctx context.Context, dim section.Dimension) ([]Key, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT x,z,y,data_version FROM sections WHERE dimension=? ORDER BY x,z,y,data_version`, int(dim))
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		k := Key{Dimension: dim}
		if err := rows.Scan(&k.X, &k.Z, &k.Y, &k.DataVersion); err != nil {
			return nil, fmt.Errorf("scan section key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Stats summarises the cache.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(raw_size),0), COALESCE(SUM(LENGTH(payload)),0) FROM sections`,
	).Scan(&st.Sections, &st.RawBytes, &st.StoredBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}
