// Package store provides a SQLite-backed cache of odometer readings.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/leaselad/leaselad/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed reading storage.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveReading stores one odometer reading. A missing ID is generated.
func (c *Cache) SaveReading(r model.Reading) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FetchedAt.IsZero() {
		r.FetchedAt = time.Now()
	}

	_, err := c.db.Exec(`INSERT OR REPLACE INTO readings
		(reading_id, vin, odometer, source, fetched_at, fetched_at_ns)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.VIN, r.Odometer, r.Source,
		r.FetchedAt.UTC().Format(time.RFC3339Nano), r.FetchedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving reading: %w", err)
	}
	return nil
}

// LatestReading returns the newest reading for vin, or nil when none exist.
// An empty vin names no vehicle and always returns nil.
func (c *Cache) LatestReading(vin string) (*model.Reading, error) {
	if vin == "" {
		return nil, nil
	}

	r, err := scanReading(c.db.QueryRow(`SELECT reading_id, vin, odometer, source, fetched_at_ns
		FROM readings WHERE vin = ? ORDER BY fetched_at_ns DESC LIMIT 1`, vin))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Readings returns up to limit readings for vin, newest first.
// limit <= 0 returns all of them.
func (c *Cache) Readings(vin string, limit int) ([]model.Reading, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := c.db.Query(`SELECT reading_id, vin, odometer, source, fetched_at_ns
		FROM readings WHERE vin = ? ORDER BY fetched_at_ns DESC LIMIT ?`, vin, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// DeleteBefore removes readings older than t and returns how many went.
func (c *Cache) DeleteBefore(t time.Time) (int64, error) {
	res, err := c.db.Exec("DELETE FROM readings WHERE fetched_at_ns < ?", t.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReadingCount returns the number of cached readings.
func (c *Cache) ReadingCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(s rowScanner) (*model.Reading, error) {
	var r model.Reading
	var ns int64
	if err := s.Scan(&r.ID, &r.VIN, &r.Odometer, &r.Source, &ns); err != nil {
		return nil, err
	}
	r.FetchedAt = time.Unix(0, ns)
	return &r, nil
}
