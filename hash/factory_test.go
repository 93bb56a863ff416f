// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
)

func digestOf(t *testing.T, algorithm string, size int64, data []byte) Digest {
	t.Helper()
	h, err := NewAsyncHash(algorithm, size)
	if err != nil {
		t.Fatalf("NewAsyncHash(%s): %v", algorithm, err)
	}
	if _, err := h.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	h.Close()
	return <-h.Done()
}

func TestNewAsyncHashDispatchesKnownAlgorithms(t *testing.T) {
	data := []byte("the quick brown fox")

	tests := []struct {
		algorithm string
		want      string
	}{
		{"md5", fmt.Sprintf("%x", md5.Sum(data))},
		{"sha1", fmt.Sprintf("%x", sha1.Sum(data))},
		{"sha256", fmt.Sprintf("%x", sha256.Sum256(data))},
	}
	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			d := digestOf(t, tt.algorithm, int64(len(data)), data)
			if d.String() != tt.want {
				t.Errorf("%s digest = %s, want %s", tt.algorithm, d.String(), tt.want)
			}
		})
	}
}

func TestNewAsyncHashUnknownAlgorithm(t *testing.T) {
	if _, err := NewAsyncHash("rot13", 0); err == nil {
		t.Error("NewAsyncHash(rot13) returned no error, want an error for an unsupported algorithm")
	}
}

// git and gitsha are aliases for the same blob-salted sha1 hasher.
func TestNewAsyncHashGitAliasesAgree(t *testing.T) {
	data := []byte("blob contents")

	a := digestOf(t, "git", int64(len(data)), data)
	b := digestOf(t, "gitsha", int64(len(data)), data)

	if a == nil || b == nil {
		t.Fatal("expected both git and gitsha to produce a digest for a correctly-sized write")
	}
	if a.String() != b.String() {
		t.Errorf("git digest %s != gitsha digest %s, want the same algorithm", a, b)
	}
}

// The git blob salt is "blob <size>\x00"; a known vector pins the format.
func TestNewAsyncHashGitShaKnownVector(t *testing.T) {
	data := []byte("hello\n")
	d := digestOf(t, "git", int64(len(data)), data)
	if d == nil {
		t.Fatal("expected a digest for a correctly-sized write")
	}

	header := []byte(fmt.Sprintf("blob %d\x00", len(data)))
	h := sha1.New()
	h.Write(header)
	h.Write(data)
	want := hex.EncodeToString(h.Sum(nil))

	if d.String() != want {
		t.Errorf("gitsha(%q) = %s, want %s", data, d, want)
	}
}

// A gitsha hasher that is told the wrong size discards the result rather
// than silently returning a digest of the wrong blob header.
func TestNewAsyncHashGitShaDiscardsOnSizeMismatch(t *testing.T) {
	data := []byte("hello\n")
	d := digestOf(t, "git", int64(len(data))+1, data)
	if d != nil {
		t.Errorf("expected a nil digest on size mismatch, got %v", d)
	}
}
