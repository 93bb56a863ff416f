// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package store

import (
	"context"
	"testing"

	"github.com/containerwarden/warden/record"
)

// countingStore wraps a SQLiteStore and counts backing-store calls, so tests
// can assert the cache actually avoids the round trip it claims to.
type countingStore struct {
	*SQLiteStore
	getCalls int
}

func (c *countingStore) GetFingerprint(ctx context.Context, digest record.ImageDigest, path string) (string, bool, error) {
	c.getCalls++
	return c.SQLiteStore.GetFingerprint(ctx, digest, path)
}

func newCountingStore(t *testing.T) *countingStore {
	return &countingStore{SQLiteStore: openTestStore(t)}
}

func TestCachingStorePassesThroughCorrectness(t *testing.T) {
	back := newCountingStore(t)
	ctx := context.Background()
	c, err := NewCachingStore(ctx, back)
	if err != nil {
		t.Fatalf("NewCachingStore: %v", err)
	}
	defer c.Close()

	digest := record.ImageDigest("sha256:cached")

	if err := c.PutFingerprint(ctx, digest, "/bin/app", "abc123"); err != nil {
		t.Fatalf("PutFingerprint: %v", err)
	}
	if err := c.MarkHashed(ctx, digest); err != nil {
		t.Fatalf("MarkHashed: %v", err)
	}

	hash, ok, err := c.GetFingerprint(ctx, digest, "/bin/app")
	if err != nil || !ok || hash != "abc123" {
		t.Fatalf("GetFingerprint() = (%q, %v, %v), want (abc123, true, nil)", hash, ok, err)
	}

	hashed, err := c.IsHashed(ctx, digest)
	if err != nil || !hashed {
		t.Fatalf("IsHashed() = (%v, %v), want (true, nil)", hashed, err)
	}
}

func TestCachingStoreServesHitsFromMemory(t *testing.T) {
	back := newCountingStore(t)
	ctx := context.Background()
	c, err := NewCachingStore(ctx, back)
	if err != nil {
		t.Fatalf("NewCachingStore: %v", err)
	}
	defer c.Close()

	digest := record.ImageDigest("sha256:hot")
	if err := c.PutFingerprint(ctx, digest, "/bin/app", "abc123"); err != nil {
		t.Fatalf("PutFingerprint: %v", err)
	}

	before := back.getCalls
	for i := 0; i < 5; i++ {
		if _, _, err := c.GetFingerprint(ctx, digest, "/bin/app"); err != nil {
			t.Fatalf("GetFingerprint: %v", err)
		}
	}
	if back.getCalls != before {
		t.Errorf("GetFingerprint hit the backing store %d times for a path primed by PutFingerprint, want 0", back.getCalls-before)
	}
}

// A CachingStore opened against a backing store that already holds
// fingerprints (the restart case) must serve them correctly, not treat the
// empty-at-construction filter as proof they don't exist.
func TestNewCachingStoreWarmsFromBackingStore(t *testing.T) {
	backing := openTestStore(t)
	ctx := context.Background()
	digest := record.ImageDigest("sha256:preexisting")

	if err := backing.PutFingerprint(ctx, digest, "/bin/app", "abc123"); err != nil {
		t.Fatalf("seeding backing store: %v", err)
	}
	if err := backing.MarkHashed(ctx, digest); err != nil {
		t.Fatalf("MarkHashed: %v", err)
	}

	c, err := NewCachingStore(ctx, backing)
	if err != nil {
		t.Fatalf("NewCachingStore: %v", err)
	}
	defer c.Close()

	hashed, err := c.IsHashed(ctx, digest)
	if err != nil || !hashed {
		t.Fatalf("IsHashed() = (%v, %v), want (true, nil) for an image hashed before the cache was constructed", hashed, err)
	}

	hash, ok, err := c.GetFingerprint(ctx, digest, "/bin/app")
	if err != nil || !ok || hash != "abc123" {
		t.Fatalf("GetFingerprint() = (%q, %v, %v), want (abc123, true, nil) for a fingerprint written before the cache was constructed", hash, ok, err)
	}
}

func TestCachingStoreNegativeLookupAvoidsBackingStore(t *testing.T) {
	back := newCountingStore(t)
	ctx := context.Background()
	c, err := NewCachingStore(ctx, back)
	if err != nil {
		t.Fatalf("NewCachingStore: %v", err)
	}
	defer c.Close()

	digest := record.ImageDigest("sha256:sparse")
	if err := c.PutFingerprint(ctx, digest, "/bin/known", "abc123"); err != nil {
		t.Fatalf("PutFingerprint: %v", err)
	}

	before := back.getCalls
	_, ok, err := c.GetFingerprint(ctx, digest, "/bin/never-written")
	if err != nil {
		t.Fatalf("GetFingerprint: %v", err)
	}
	if ok {
		t.Error("GetFingerprint found a path that was never written")
	}
	if back.getCalls != before {
		t.Errorf("bloom filter should have proven absence without touching the backing store, got %d calls", back.getCalls-before)
	}
}
