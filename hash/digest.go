// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package hash

import (
	"encoding/base64"
	"encoding/hex"
	"hash"
)

// Digest is a finalized hash.Hash. It conforms to the hash.Hash interface, but
// it does not support operations that modify the finalized checksum
type Digest interface {
	Sum(b []byte) []byte
	Size() int

	// IsZero returns true for Digests that are the zero-value of their type
	// (aka, all 0s)
	IsZero() bool

	// String returns the hex string representing the checksum
	String() string

	// Base64 returns the checksum as a base64 string
	Base64() string

	// Bytes returns the finalized checksum bytes, similar to Sum(), but
	// simplified for hashes that have already been finalized
	Bytes() []byte
}

// digest64 is a finalized 64-bit checksum. In addition to satisfying the Digest
// (and hash.Hash) interface, it also satisfies the hash.Hash64 interface for
// returning the calculated sum as a single uint64
type digest64 [64 / 8]byte

// digest128 is a finalized 128-bit checksum
type digest128 [128 / 8]byte

// digest160 is a finalized 160-bit checksum
type digest160 [160 / 8]byte

// digest256 is a finalized 256-bit checksum
type digest256 [256 / 8]byte

// digest384 is a finalized 384-bit checksum
type digest384 [384 / 8]byte

// digest512 is a finalized 512-bit checksum
type digest512 [512 / 8]byte

// let the compiler tell us when any of the digest implementations are
// incomplete even if we don't use them as a Digest instance directly in the
// code anywhere
var _ []Digest = []Digest{digest64{}, digest128{}, digest160{}, digest256{}, digest384{}, digest512{}}
var _ hash.Hash64 = digest64{}

func fmtSRI(prefix string, bytes []byte) string {
	return prefix + "-" + base64.StdEncoding.EncodeToString(bytes)
}

func (digest64) Write([]byte) (int, error) { defer panic("Unimplemented"); return 0, nil }
func (digest64) Reset()                    { panic("Unimplemented") }
func (digest64) BlockSize() int            { defer panic("Unimplemented"); return 0 }
func (d digest64) Size() int               { return len(d) }
func (d digest64) Sum(in []byte) []byte    { return append(in, d.Bytes()...) }
func (d digest64) Sum64() uint64 {
	b := d.Bytes()
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << uint(8*i)
	}
	return v
}
func (d digest64) IsZero() bool   { return d == [len(d)]byte{} }
func (d digest64) String() string { return hex.EncodeToString(d[:]) }
func (d digest64) Base64() string { return base64.StdEncoding.EncodeToString(d[:]) }
func (d digest64) Bytes() []byte  { return d[:] }

func (digest128) Write([]byte) (int, error) { defer panic("Unimplemented"); return 0, nil }
func (digest128) Reset()                    { panic("Unimplemented") }
func (digest128) BlockSize() int            { defer panic("Unimplemented"); return 0 }
func (d digest128) Size() int               { return len(d) }
func (d digest128) Sum(in []byte) []byte    { return append(in, d.Bytes()...) }
func (d digest128) IsZero() bool            { return d == [len(d)]byte{} }
func (d digest128) String() string          { return hex.EncodeToString(d[:]) }
func (d digest128) Base64() string          { return base64.StdEncoding.EncodeToString(d[:]) }
func (d digest128) Bytes() []byte           { return d[:] }

func (digest160) Write([]byte) (int, error) { defer panic("Unimplemented"); return 0, nil }
func (digest160) Reset()                    { panic("Unimplemented") }
func (digest160) BlockSize() int            { defer panic("Unimplemented"); return 0 }
func (d digest160) Size() int               { return len(d) }
func (d digest160) Sum(in []byte) []byte    { return append(in, d.Bytes()...) }
func (d digest160) IsZero() bool            { return d == [len(d)]byte{} }
func (d digest160) String() string          { return hex.EncodeToString(d[:]) }
func (d digest160) Base64() string          { return base64.StdEncoding.EncodeToString(d[:]) }
func (d digest160) Bytes() []byte           { return d[:] }

func (digest256) Write([]byte) (int, error) { defer panic("Unimplemented"); return 0, nil }
func (digest256) Reset()                    { panic("Unimplemented") }
func (digest256) BlockSize() int            { defer panic("Unimplemented"); return 0 }
func (d digest256) Size() int               { return len(d) }
func (d digest256) Sum(in []byte) []byte    { return append(in, d.Bytes()...) }
func (d digest256) IsZero() bool            { return d == [len(d)]byte{} }
func (d digest256) String() string          { return hex.EncodeToString(d[:]) }
func (d digest256) Base64() string          { return base64.StdEncoding.EncodeToString(d[:]) }
func (d digest256) Bytes() []byte           { return d[:] }

func (digest384) Write([]byte) (int, error) { defer panic("Unimplemented"); return 0, nil }
func (digest384) Reset()                    { panic("Unimplemented") }
func (digest384) BlockSize() int            { defer panic("Unimplemented"); return 0 }
func (d digest384) Size() int               { return len(d) }
func (d digest384) Sum(in []byte) []byte    { return append(in, d.Bytes()...) }
func (d digest384) IsZero() bool            { return d == [len(d)]byte{} }
func (d digest384) String() string          { return hex.EncodeToString(d[:]) }
func (d digest384) Base64() string          { return base64.StdEncoding.EncodeToString(d[:]) }
func (d digest384) Bytes() []byte           { return d[:] }

func (digest512) Write([]byte) (int, error) { defer panic("Unimplemented"); return 0, nil }
func (digest512) Reset()                    { panic("Unimplemented") }
func (digest512) BlockSize() int            { defer panic("Unimplemented"); return 0 }
func (d digest512) Size() int               { return len(d) }
func (d digest512) Sum(in []byte) []byte    { return append(in, d.Bytes()...) }
func (d digest512) IsZero() bool            { return d == [len(d)]byte{} }
func (d digest512) String() string          { return hex.EncodeToString(d[:]) }
func (d digest512) Base64() string          { return base64.StdEncoding.EncodeToString(d[:]) }
func (d digest512) Bytes() []byte           { return d[:] }
