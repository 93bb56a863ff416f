// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package scanner

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotInContainer is returned by ContainerOf when a pid's cgroup does not
// name a container under the configured engine tag (e.g. a bare host
// process).
var ErrNotInContainer = errors.New("pid is not in a container")

// ErrProcessGone is returned by ContainerOf when the process's cgroup file
// can no longer be read, meaning it exited between enumeration and
// inspection. ExePathOf reports the same case as an empty string instead.
var ErrProcessGone = errors.New("process no longer exists")

// ProcessInspector resolves pid -> container id and pid -> on-disk
// executable path via the kernel's /proc pseudo-filesystem.
type ProcessInspector struct {
	// EngineTag is the first cgroup path segment that identifies a
	// container under the configured engine (e.g. "docker").
	EngineTag string

	// ProcRoot is the filesystem root read as /proc. Defaults to "/proc";
	// overridden in tests with a fixture directory.
	ProcRoot string
}

// NewProcessInspector returns a ProcessInspector that recognizes containers
// tagged with engineTag in their cgroup path.
func NewProcessInspector(engineTag string) *ProcessInspector {
	return &ProcessInspector{EngineTag: engineTag, ProcRoot: "/proc"}
}

// EnumeratePids lists every pid currently visible on the host by reading
// /proc.
func (p *ProcessInspector) EnumeratePids() ([]int, error) {
	entries, err := os.ReadDir(p.ProcRoot)
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// ContainerOf resolves pid to the id of the container it runs inside, by
// reading /proc/<pid>/cgroup and splitting its first line on "/". The
// segment immediately after the root must equal EngineTag; the next segment
// is the container id.
func (p *ProcessInspector) ContainerOf(pid int) (string, error) {
	data, err := os.ReadFile(p.cgroupPath(pid))
	if err != nil {
		return "", ErrProcessGone
	}

	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	parts := strings.Split(firstLine, "/")
	if len(parts) < 3 {
		return "", ErrNotInContainer
	}
	if parts[1] != p.EngineTag {
		return "", ErrNotInContainer
	}
	return parts[2], nil
}

// ExePathOf resolves the on-disk target of pid's executable by reading the
// kernel's exe symlink. An empty string (with no error) is returned if the
// process has exited or the link cannot be resolved; the caller treats this
// as an Unknown classification, not a hard failure.
func (p *ProcessInspector) ExePathOf(pid int) string {
	target, err := os.Readlink(p.exePath(pid))
	if err != nil {
		return ""
	}
	return target
}

func (p *ProcessInspector) cgroupPath(pid int) string {
	return filepath.Join(p.ProcRoot, strconv.Itoa(pid), "cgroup")
}

func (p *ProcessInspector) exePath(pid int) string {
	return filepath.Join(p.ProcRoot, strconv.Itoa(pid), "exe")
}

// HostExePath returns the /proc/<pid>/exe path itself (not its symlink
// target): opening it reads the live running binary's bytes directly,
// which is what the classifier hashes.
func (p *ProcessInspector) HostExePath(pid int) string {
	return p.exePath(pid)
}

// SelfContainerID resolves the monitor's own container id the same way
// ContainerOf does, by reading /proc/self/cgroup. Returns "" if the monitor
// itself is not running inside a container (e.g. during local development).
func (p *ProcessInspector) SelfContainerID() string {
	data, err := os.ReadFile(filepath.Join(p.ProcRoot, "self", "cgroup"))
	if err != nil {
		return ""
	}
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	parts := strings.Split(firstLine, "/")
	if len(parts) < 3 || parts[1] != p.EngineTag {
		return ""
	}
	return parts[2]
}
