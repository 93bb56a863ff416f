// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package record

import (
	"strings"
	"testing"
)

func TestFileIsMatchesSamePathAndContent(t *testing.T) {
	data := []byte("file contents")
	a := File{Path: "/bin/app", Fingerprint: fingerprintOf(t, data)}
	b := File{Path: "/bin/app", Fingerprint: fingerprintOf(t, data)}

	if !a.Is(b) {
		t.Error("two Files with the same path and content should match")
	}
}

func TestFileIsRejectsDifferentPath(t *testing.T) {
	data := []byte("file contents")
	a := File{Path: "/bin/app", Fingerprint: fingerprintOf(t, data)}
	b := File{Path: "/bin/other", Fingerprint: fingerprintOf(t, data)}

	if a.Is(b) {
		t.Error("Files at different paths should not match even with identical content")
	}
}

func TestFileIsAgainstFingerprint(t *testing.T) {
	data := []byte("file vs fingerprint")
	fp := fingerprintOf(t, data)
	f := File{Path: "/bin/app", Fingerprint: fingerprintOf(t, data)}

	if !f.Is(fp) {
		t.Error("File.Is should delegate to its Fingerprint when compared against a bare Fingerprint")
	}
}

func TestFileStringIncludesPathAndGitSha(t *testing.T) {
	f := File{Path: "/bin/app", Fingerprint: fingerprintOf(t, []byte("stringer"))}
	s := f.String()
	if !strings.HasPrefix(s, "/bin/app: ") {
		t.Errorf("String() = %q, want it to start with the path", s)
	}
	if !strings.Contains(s, f.Fingerprint.GitSHA.String()) {
		t.Errorf("String() = %q, want it to contain the gitsha", s)
	}
}

func TestFileSRIDelegatesToFingerprint(t *testing.T) {
	f := File{Path: "/bin/app", Fingerprint: fingerprintOf(t, []byte("sri"))}
	if f.SRI() != f.Fingerprint.SRI() {
		t.Error("File.SRI should delegate to its Fingerprint.SRI")
	}
}
