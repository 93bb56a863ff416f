// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package record

// File represents a fingerprinted file by mapping a Path string to a
// Fingerprint. The monitor's store-backed path uses FileFingerprint instead.
type File struct {
	Path        string
	Fingerprint *Fingerprint
}

// Is implements the FingerprintMatcher interface allowing a File to be
// compared to another object such as a Fingerprint or another File.
func (f File) Is(other interface{}) bool {
	var of *File
	switch o := other.(type) {
	case Fingerprint, *Fingerprint:
		return f.Fingerprint.Is(other)
	case File:
		of = &o
	case *File:
		of = o
	default:
		return false
	}

	return f.Fingerprint.Is(of.Fingerprint) && f.Path == of.Path
}

func (f File) String() string {
	return f.Path + ": " + f.Fingerprint.GitSHA.String()
}

// SRI returns a subresource integrity string for the file. See Fingerprint.SRI.
func (f File) SRI() string {
	return f.Fingerprint.SRI()
}
