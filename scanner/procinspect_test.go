// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func fakeProc(t *testing.T, pids map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for pid, cgroup := range pids {
		dir := filepath.Join(root, pid)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		if cgroup != "" {
			if err := os.WriteFile(filepath.Join(dir, "cgroup"), []byte(cgroup), 0644); err != nil {
				t.Fatalf("writing cgroup fixture: %v", err)
			}
		}
	}
	return root
}

func TestEnumeratePids(t *testing.T) {
	root := fakeProc(t, map[string]string{
		"1":    "0::/\n",
		"42":   "0::/\n",
		"self": "0::/\n",
	})
	p := &ProcessInspector{EngineTag: "docker", ProcRoot: root}

	pids, err := p.EnumeratePids()
	if err != nil {
		t.Fatalf("EnumeratePids returned error: %v", err)
	}
	if len(pids) != 2 {
		t.Fatalf("EnumeratePids() = %v, want 2 numeric pids", pids)
	}
}

func TestContainerOf(t *testing.T) {
	root := fakeProc(t, map[string]string{
		"10": "0::/docker/abc123\nignored second line\n",
		"11": "0::/user.slice/session.scope\n",
		"12": "0::/\n",
	})
	p := &ProcessInspector{EngineTag: "docker", ProcRoot: root}

	tests := []struct {
		name    string
		pid     int
		want    string
		wantErr error
	}{
		{"containerized process", 10, "abc123", nil},
		{"host process under a different cgroup root", 11, "", ErrNotInContainer},
		{"too few cgroup segments", 12, "", ErrNotInContainer},
		{"process gone before inspection", 999, "", ErrProcessGone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ContainerOf(tt.pid)
			if err != tt.wantErr {
				t.Fatalf("ContainerOf(%d) error = %v, want %v", tt.pid, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ContainerOf(%d) = %q, want %q", tt.pid, got, tt.want)
			}
		})
	}
}

func TestExePathOf(t *testing.T) {
	root := fakeProc(t, map[string]string{"20": ""})
	if err := os.Symlink("/usr/bin/hello", filepath.Join(root, "20", "exe")); err != nil {
		t.Fatalf("creating exe symlink: %v", err)
	}
	p := &ProcessInspector{EngineTag: "docker", ProcRoot: root}

	if got := p.ExePathOf(20); got != "/usr/bin/hello" {
		t.Errorf("ExePathOf(20) = %q, want /usr/bin/hello", got)
	}
	if got := p.ExePathOf(21); got != "" {
		t.Errorf("ExePathOf(21) = %q, want empty string for a gone process", got)
	}
}

func TestSelfContainerID(t *testing.T) {
	root := fakeProc(t, map[string]string{"self": "0::/docker/myself\n"})
	p := &ProcessInspector{EngineTag: "docker", ProcRoot: root}

	if got := p.SelfContainerID(); got != "myself" {
		t.Errorf("SelfContainerID() = %q, want myself", got)
	}

	noSelf := &ProcessInspector{EngineTag: "docker", ProcRoot: t.TempDir()}
	if got := noSelf.SelfContainerID(); got != "" {
		t.Errorf("SelfContainerID() = %q, want empty string when not containerized", got)
	}
}
