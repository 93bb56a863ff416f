// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

/*
Package record contains the core domain types shared between the image
ingestor, the fingerprint store, and the monitor loop: the identity of an
image (ImageDigest), the durable record of having fully ingested one
(ImageRecord), the per-file fingerprint rows that ingestion produces
(FileFingerprint), and the transient result of inspecting a single live
process (LiveProcess).
*/
package record
