// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/containerwarden/warden/record"
)

// SQLiteStore is the canonical, durable implementation of record.Store. It
// is backed by a pure-Go SQLite driver (modernc.org/sqlite, no cgo) so the
// daemon binary has no C toolchain dependency.
//
// Every query below is parameterized; digests and paths originate inside
// scanned image content and must never be interpolated into SQL text.
type SQLiteStore struct {
	db *sql.DB
}

var _ record.Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if necessary) the sqlite database at path
// and ensures its schema is current.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// A single monitor loop is the only writer, but WAL still lets the
	// `warden inspect`/`warden store export` diagnostics read concurrently
	// without blocking ingestion.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.WithField("path", path).Debug("opened sqlite store")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS images (
			digest TEXT PRIMARY KEY,
			hashed INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS fingerprints (
			digest TEXT NOT NULL REFERENCES images(digest) ON DELETE CASCADE,
			path   TEXT NOT NULL,
			hash   TEXT NOT NULL,
			PRIMARY KEY (digest, path)
		);
	`)
	return err
}

// IsHashed reports whether digest has been fully ingested.
func (s *SQLiteStore) IsHashed(ctx context.Context, digest record.ImageDigest) (bool, error) {
	var hashed int
	err := s.db.QueryRowContext(ctx,
		`SELECT hashed FROM images WHERE digest = ?`, string(digest)).Scan(&hashed)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return hashed != 0, nil
}

// MarkHashed sets Hashed = true for digest, inserting the ImageRecord if
// absent. Callers must invoke this only after every layer has been applied
// and every discovered executable committed via PutFingerprint, since once
// set it is never cleared.
func (s *SQLiteStore) MarkHashed(ctx context.Context, digest record.ImageDigest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO images (digest, hashed) VALUES (?, 1)
		ON CONFLICT(digest) DO UPDATE SET hashed = 1
	`, string(digest))
	return err
}

// PutFingerprint inserts or replaces the (digest, path) row so a later
// layer's version of path always wins over an earlier one.
func (s *SQLiteStore) PutFingerprint(ctx context.Context, digest record.ImageDigest, path string, hash string) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO images (digest, hashed) VALUES (?, 0)
		ON CONFLICT(digest) DO NOTHING
	`, string(digest)); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fingerprints (digest, path, hash) VALUES (?, ?, ?)
		ON CONFLICT(digest, path) DO UPDATE SET hash = excluded.hash
	`, string(digest), path, hash)
	return err
}

// GetFingerprint looks up the stored hash for (digest, path).
func (s *SQLiteStore) GetFingerprint(ctx context.Context, digest record.ImageDigest, path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT hash FROM fingerprints WHERE digest = ? AND path = ?`,
		string(digest), path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// AllFingerprints returns every fingerprint row recorded for digest, used by
// the `warden inspect` and `warden store export` diagnostics.
func (s *SQLiteStore) AllFingerprints(ctx context.Context, digest record.ImageDigest) ([]record.FileFingerprint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT digest, path, hash FROM fingerprints WHERE digest = ? ORDER BY path`,
		string(digest))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.FileFingerprint
	for rows.Next() {
		var fp record.FileFingerprint
		var digestStr string
		if err := rows.Scan(&digestStr, &fp.Path, &fp.Hash); err != nil {
			return nil, err
		}
		fp.Digest = record.ImageDigest(digestStr)
		out = append(out, fp)
	}
	return out, rows.Err()
}

// AllImages returns every known ImageRecord, used by snapshot export.
func (s *SQLiteStore) AllImages(ctx context.Context) ([]record.ImageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT digest, hashed FROM images ORDER BY digest`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.ImageRecord
	for rows.Next() {
		var digestStr string
		var hashed int
		if err := rows.Scan(&digestStr, &hashed); err != nil {
			return nil, err
		}
		out = append(out, record.ImageRecord{Digest: record.ImageDigest(digestStr), Hashed: hashed != 0})
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
