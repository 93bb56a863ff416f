// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/containerwarden/warden/record"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIsHashedUnknownDigestIsFalseNotError(t *testing.T) {
	s := openTestStore(t)
	hashed, err := s.IsHashed(context.Background(), record.ImageDigest("unknown"))
	if err != nil {
		t.Fatalf("IsHashed returned error for unknown digest: %v", err)
	}
	if hashed {
		t.Error("IsHashed(unknown digest) = true, want false")
	}
}

func TestMarkHashedIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	digest := record.ImageDigest("sha256:abc")

	if err := s.MarkHashed(ctx, digest); err != nil {
		t.Fatalf("first MarkHashed: %v", err)
	}
	if err := s.MarkHashed(ctx, digest); err != nil {
		t.Fatalf("second MarkHashed: %v", err)
	}
	hashed, err := s.IsHashed(ctx, digest)
	if err != nil {
		t.Fatalf("IsHashed: %v", err)
	}
	if !hashed {
		t.Error("expected digest to be hashed after MarkHashed")
	}
}

func TestPutFingerprintUpsertsOnRepeatedPath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	digest := record.ImageDigest("sha256:layered")

	if err := s.PutFingerprint(ctx, digest, "/bin/app", "hash-from-layer-1"); err != nil {
		t.Fatalf("first PutFingerprint: %v", err)
	}
	if err := s.PutFingerprint(ctx, digest, "/bin/app", "hash-from-layer-2"); err != nil {
		t.Fatalf("second PutFingerprint: %v", err)
	}

	got, ok, err := s.GetFingerprint(ctx, digest, "/bin/app")
	if err != nil {
		t.Fatalf("GetFingerprint: %v", err)
	}
	if !ok {
		t.Fatal("GetFingerprint reported not found for a path that was written twice")
	}
	if got != "hash-from-layer-2" {
		t.Errorf("GetFingerprint() = %q, want the later layer's hash %q", got, "hash-from-layer-2")
	}
}

func TestGetFingerprintUnknownPath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	digest := record.ImageDigest("sha256:empty")
	if err := s.MarkHashed(ctx, digest); err != nil {
		t.Fatalf("MarkHashed: %v", err)
	}

	_, ok, err := s.GetFingerprint(ctx, digest, "/does/not/exist")
	if err != nil {
		t.Fatalf("GetFingerprint: %v", err)
	}
	if ok {
		t.Error("GetFingerprint found a row for a path that was never written")
	}
}

func TestAllFingerprintsAndAllImages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	digest := record.ImageDigest("sha256:multi")

	paths := map[string]string{"/bin/a": "hash-a", "/bin/b": "hash-b"}
	for path, hash := range paths {
		if err := s.PutFingerprint(ctx, digest, path, hash); err != nil {
			t.Fatalf("PutFingerprint(%s): %v", path, err)
		}
	}
	if err := s.MarkHashed(ctx, digest); err != nil {
		t.Fatalf("MarkHashed: %v", err)
	}

	fps, err := s.AllFingerprints(ctx, digest)
	if err != nil {
		t.Fatalf("AllFingerprints: %v", err)
	}
	if len(fps) != len(paths) {
		t.Fatalf("AllFingerprints returned %d rows, want %d", len(fps), len(paths))
	}
	for _, fp := range fps {
		if paths[fp.Path] != fp.Hash {
			t.Errorf("AllFingerprints row %+v does not match written (%s, %s)", fp, fp.Path, paths[fp.Path])
		}
	}

	images, err := s.AllImages(ctx)
	if err != nil {
		t.Fatalf("AllImages: %v", err)
	}
	if len(images) != 1 || images[0].Digest != digest || !images[0].Hashed {
		t.Errorf("AllImages() = %+v, want one hashed record for %s", images, digest)
	}
}
