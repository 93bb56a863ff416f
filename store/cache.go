// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package store

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"hash"

	lru "github.com/hashicorp/golang-lru"
	"github.com/steakknife/bloomfilter"

	"github.com/containerwarden/warden/record"
)

// defaultFingerprintCacheSize bounds the number of (digest, path) -> hash
// rows kept hot in memory. A running host typically has a handful of
// distinct images, each with at most a few thousand executables, so this
// comfortably covers a busy node without unbounded growth.
const defaultFingerprintCacheSize = 1 << 16

// bloomFalsePositiveRate trades memory for the bloom filter's accuracy.
// A false positive only costs a wasted backing-store lookup; a false
// negative would be a correctness bug, and the filter never produces one.
const bloomFalsePositiveRate = 0.0001

// CachingStore wraps a backing record.Store with an LRU of recently-seen
// fingerprints and a Bloom filter that lets negative GetFingerprint lookups
// (the common case: "is this path new to the image?") skip the backing
// store's IO entirely. It implements record.Store itself so it is a drop-in
// decorator around store.SQLiteStore in the monitor's hot path.
type CachingStore struct {
	back record.Store

	fingerprints *lru.ARCCache
	seen         *bloomfilter.Filter

	hashedImages *lru.ARCCache
}

var _ record.Store = (*CachingStore)(nil)

// bloomKey is the hash.Hash64-satisfying key the bloom filter indexes
// (digest, path) pairs by. It is already a finalized 64-bit summary, not a
// hash.Hash actually accumulating writes, so Write/Reset/BlockSize are
// unreachable stubs provided only so the type satisfies the interface the
// filter requires.
type bloomKey uint64

func (bloomKey) Write([]byte) (int, error) { panic("bloomKey is already finalized") }
func (bloomKey) Reset()                    { panic("bloomKey is already finalized") }
func (bloomKey) BlockSize() int            { panic("bloomKey is already finalized") }
func (bloomKey) Size() int                 { return 8 }
func (k bloomKey) Sum(in []byte) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(k))
	return append(in, b...)
}
func (k bloomKey) Sum64() uint64 { return uint64(k) }

var _ hash.Hash64 = bloomKey(0)

func fingerprintKey(digest record.ImageDigest, path string) string {
	return string(digest) + "\x00" + path
}

func bloomKeyFor(digest record.ImageDigest, path string) bloomKey {
	sum := sha256.Sum256([]byte(fingerprintKey(digest, path)))
	return bloomKey(binary.LittleEndian.Uint64(sum[:8]))
}

// fingerprintLister is implemented by backing stores (SQLiteStore, and
// anything embedding it) that can enumerate everything they hold. It lets
// NewCachingStore warm the Bloom filter from durable state instead of
// trusting it to start empty.
type fingerprintLister interface {
	AllImages(ctx context.Context) ([]record.ImageRecord, error)
	AllFingerprints(ctx context.Context, digest record.ImageDigest) ([]record.FileFingerprint, error)
}

// NewCachingStore wraps back with an in-memory read-through cache. The
// Bloom filter and the hashed-image cache are warmed from back's existing
// contents before returning: back is durable and may already hold
// fingerprints from a previous run, and an empty filter would treat every
// one of them as a negative lookup, classifying every legitimate process as
// foreign on restart.
func NewCachingStore(ctx context.Context, back record.Store) (*CachingStore, error) {
	fingerprints, err := lru.NewARC(defaultFingerprintCacheSize)
	if err != nil {
		return nil, err
	}
	hashedImages, err := lru.NewARC(1024)
	if err != nil {
		return nil, err
	}
	filter := bloomfilter.NewOptimal(defaultFingerprintCacheSize, bloomFalsePositiveRate)

	c := &CachingStore{
		back:         back,
		fingerprints: fingerprints,
		seen:         filter,
		hashedImages: hashedImages,
	}
	if err := c.warm(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// warm populates the Bloom filter and the hashed-image cache from every
// fingerprint already durable in the backing store, if it supports listing
// them. A backing store that doesn't (a test fake with no need for the
// diagnostics' list methods) leaves the filter empty, which is only safe
// when that backing store is also known to start empty.
func (c *CachingStore) warm(ctx context.Context) error {
	lister, ok := c.back.(fingerprintLister)
	if !ok {
		return nil
	}

	images, err := lister.AllImages(ctx)
	if err != nil {
		return err
	}
	for _, img := range images {
		c.hashedImages.Add(img.Digest, img.Hashed)

		fps, err := lister.AllFingerprints(ctx, img.Digest)
		if err != nil {
			return err
		}
		for _, fp := range fps {
			c.seen.Add(bloomKeyFor(fp.Digest, fp.Path))
		}
	}
	return nil
}

// IsHashed reports whether digest has been fully ingested, consulting the
// hot cache before the backing store.
func (c *CachingStore) IsHashed(ctx context.Context, digest record.ImageDigest) (bool, error) {
	if v, ok := c.hashedImages.Get(digest); ok {
		return v.(bool), nil
	}
	hashed, err := c.back.IsHashed(ctx, digest)
	if err != nil {
		return false, err
	}
	c.hashedImages.Add(digest, hashed)
	return hashed, nil
}

// MarkHashed marks digest as hashed in both the backing store and the cache.
func (c *CachingStore) MarkHashed(ctx context.Context, digest record.ImageDigest) error {
	if err := c.back.MarkHashed(ctx, digest); err != nil {
		return err
	}
	c.hashedImages.Add(digest, true)
	return nil
}

// PutFingerprint writes through to the backing store and primes both the LRU
// and the Bloom filter so an immediately following GetFingerprint for the
// same path is served from memory.
func (c *CachingStore) PutFingerprint(ctx context.Context, digest record.ImageDigest, path string, hash string) error {
	if err := c.back.PutFingerprint(ctx, digest, path, hash); err != nil {
		return err
	}
	c.fingerprints.Add(fingerprintKey(digest, path), hash)
	c.seen.Add(bloomKeyFor(digest, path))
	return nil
}

// GetFingerprint looks up the stored hash for (digest, path). An LRU hit is
// served from memory. On an LRU miss, a Bloom filter miss proves the pair was
// never written and is answered as not found without touching the backing
// store; a filter hit falls through to the backing store.
func (c *CachingStore) GetFingerprint(ctx context.Context, digest record.ImageDigest, path string) (string, bool, error) {
	key := fingerprintKey(digest, path)
	if v, ok := c.fingerprints.Get(key); ok {
		return v.(string), true, nil
	}
	if !c.seen.Contains(bloomKeyFor(digest, path)) {
		return "", false, nil
	}
	hash, ok, err := c.back.GetFingerprint(ctx, digest, path)
	if err != nil {
		return "", false, err
	}
	if ok {
		c.fingerprints.Add(key, hash)
	}
	return hash, ok, nil
}

// Close releases the backing store's resources. The in-memory cache layers
// need no explicit teardown.
func (c *CachingStore) Close() error {
	return c.back.Close()
}
