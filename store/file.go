// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package store

import (
	"context"
	"os"

	"github.com/golang/snappy"
	"gopkg.in/yaml.v2"

	"github.com/containerwarden/warden/record"
)

// sourceStore is the subset of SQLiteStore a Snapshot is built from. It is
// declared separately from record.Store because dumping every row for
// export needs the All* accessors, which are an extension of the core Store
// contract (CachingStore also uses them to warm its filter).
type sourceStore interface {
	AllImages(ctx context.Context) ([]record.ImageRecord, error)
	AllFingerprints(ctx context.Context, digest record.ImageDigest) ([]record.FileFingerprint, error)
}

// Snapshot is a serializable point-in-time copy of every ImageRecord and
// FileFingerprint known to a Store. It exists purely as an operator
// convenience for backing up or inspecting a running daemon's database
// outside of sqlite tooling; the canonical store is always SQLiteStore.
type Snapshot struct {
	Images       []record.ImageRecord
	Fingerprints []record.FileFingerprint
}

// NewSnapshot walks every image known to src and collects its fingerprints.
func NewSnapshot(ctx context.Context, src sourceStore) (*Snapshot, error) {
	images, err := src.AllImages(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Images: images}
	for _, img := range images {
		fps, err := src.AllFingerprints(ctx, img.Digest)
		if err != nil {
			return nil, err
		}
		snap.Fingerprints = append(snap.Fingerprints, fps...)
	}
	return snap, nil
}

// WriteTo writes the snapshot to path as snappy-compressed YAML.
func (s *Snapshot) WriteTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sw := snappy.NewBufferedWriter(f)
	enc := yaml.NewEncoder(sw)
	if err := enc.Encode(s); err != nil {
		log.WithError(err).Error("failed to encode snapshot")
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return sw.Flush()
}

// ReadSnapshot loads a Snapshot previously written by WriteTo.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sr := snappy.NewReader(f)
	dec := yaml.NewDecoder(sr)
	snap := new(Snapshot)
	if err := dec.Decode(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore writes every fingerprint in the snapshot into dst, overwriting any
// existing rows for the same (digest, path), then marks every image recorded
// as hashed. ImageRecords with Hashed false are not written themselves; such
// an image only gets a row through its fingerprints.
func (s *Snapshot) Restore(ctx context.Context, dst record.Store) error {
	for _, fp := range s.Fingerprints {
		if err := dst.PutFingerprint(ctx, fp.Digest, fp.Path, fp.Hash); err != nil {
			return err
		}
	}
	for _, img := range s.Images {
		if !img.Hashed {
			continue
		}
		if err := dst.MarkHashed(ctx, img.Digest); err != nil {
			return err
		}
	}
	return nil
}
