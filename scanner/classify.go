// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package scanner

import (
	"io"
	"os"
	"strings"

	"github.com/containerwarden/warden/hash"
)

// elfMagic is the four byte ELF header every native Linux executable and
// shared object begins with.
var elfMagic = [4]byte{0x7f, 0x45, 0x4c, 0x46}

// IsExecutable reports whether the file at path is an ELF binary. It guards
// against two hazards found walking a container's unpacked rootfs:
//
//   - device nodes under /dev, which would block forever (or worse) if
//     opened for reading
//   - symlinks whose target also resolves under /dev, which the original
//     path check alone would miss
//
// Any error opening or reading path (permission denied, dangling symlink,
// special file types os.Open refuses) is treated as "not executable" rather
// than propagated, since an unreadable file cannot be a classification
// target either way.
func IsExecutable(path string) bool {
	if strings.Contains(path, "/dev/") {
		return false
	}

	realPath := path
	if target, err := os.Readlink(path); err == nil {
		realPath = target
	}
	if strings.Contains(realPath, "/dev/") {
		return false
	}

	f, err := os.Open(realPath)
	if err != nil {
		return false
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}
	return magic == elfMagic
}

// HashFile returns the hex-encoded SHA-256 digest of the file at path, using
// the same hash.AsyncHash the `warden hash`/`warden self` diagnostics go
// through. This is the single algorithm the monitor's classification path
// relies on; the broader multi-algorithm record.Fingerprint is reserved for
// the diagnostics.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := hash.NewSHA256Hasher()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	if err := h.Close(); err != nil {
		return "", err
	}
	return (<-h.Done()).String(), nil
}
