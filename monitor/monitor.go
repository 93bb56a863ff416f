// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

// Package monitor implements the driver loop: on every tick it ensures
// every running container's image has been ingested, then classifies every
// host process against the fingerprints recorded for its container's image,
// remediating any container that turns up a foreign process.
package monitor

import (
	"context"
	"time"

	"github.com/containerwarden/warden/config"
	"github.com/containerwarden/warden/record"
	"github.com/containerwarden/warden/scanner"
)

// MonitorLoop wires the container engine, the image ingestor, the process
// inspector and the fingerprint store into the single-threaded, cooperative
// driver described by the monitor's scheduling model: every call below is a
// suspension point, but only one is ever in flight at a time.
type MonitorLoop struct {
	engine    scanner.Engine
	ingestor  *scanner.Ingestor
	inspector *scanner.ProcessInspector
	store     record.Store

	tickInterval time.Duration
	selfID       string
}

// New builds a MonitorLoop from its dependencies and the resolved config.
// The monitor's own container id is resolved once at construction time, by
// reading /proc/self/cgroup, so every subsequent tick can cheaply skip it.
func New(engine scanner.Engine, ingestor *scanner.Ingestor, inspector *scanner.ProcessInspector, store record.Store, cfg config.Config) *MonitorLoop {
	return &MonitorLoop{
		engine:       engine,
		ingestor:     ingestor,
		inspector:    inspector,
		store:        store,
		tickInterval: cfg.TickInterval,
		selfID:       inspector.SelfContainerID(),
	}
}

// Run ticks forever, pausing tickInterval between ticks to bound CPU and
// container-engine load, until ctx is cancelled. Every per-container and
// per-pid failure within a tick is logged and the tick continues; nothing
// short of cancellation stops the loop.
func (m *MonitorLoop) Run(ctx context.Context) error {
	for {
		m.Tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.tickInterval):
		}
	}
}

// Tick runs one full pass: ingest every running container's image, then
// classify and (if necessary) remediate every host process.
func (m *MonitorLoop) Tick(ctx context.Context) {
	m.ingestRunningContainers(ctx)
	m.inspectProcesses(ctx)
}

func (m *MonitorLoop) ingestRunningContainers(ctx context.Context) {
	containers, err := m.engine.ListContainers(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to list containers")
		return
	}
	for _, c := range containers {
		if c.ID == m.selfID {
			continue
		}
		digest, err := m.resolveDigest(ctx, c)
		if err != nil {
			log.WithError(err).Warnf("failed to resolve image for container %s", c.ID)
			continue
		}
		if err := m.ingestor.Ingest(ctx, digest); err != nil {
			log.WithError(err).Warnf("failed to ingest image %s for container %s", digest, c.ID)
		}
	}
}

func (m *MonitorLoop) resolveDigest(ctx context.Context, c scanner.ContainerInfo) (record.ImageDigest, error) {
	if c.Image != "" {
		return c.Image, nil
	}
	return m.engine.InspectContainer(ctx, c.ID)
}

func (m *MonitorLoop) inspectProcesses(ctx context.Context) {
	pids, err := m.inspector.EnumeratePids()
	if err != nil {
		log.WithError(err).Warn("failed to enumerate host pids")
		return
	}

	// A container with several foreign processes must still be remediated
	// exactly once per tick: kill+remove+create is terminal for the
	// container, so a second pass would kill/remove an already-gone
	// container and create a spurious extra replacement.
	remediated := make(map[string]bool)

	for _, pid := range pids {
		containerID, err := m.inspector.ContainerOf(pid)
		if err != nil {
			// ErrNotInContainer (host process) and ErrProcessGone (exited
			// between enumeration and inspection) are both silently
			// ignored; they are different errors but the same outcome.
			continue
		}
		if containerID == m.selfID {
			continue
		}

		digest, err := m.engine.InspectContainer(ctx, containerID)
		if err != nil {
			log.WithError(err).Debugf("failed to resolve image for container %s", containerID)
			continue
		}

		// Opportunistically re-ingest to close the TOCTOU window where a
		// container started between the container-enumeration step and
		// this pid being inspected; a no-op if already hashed.
		if err := m.ingestor.Ingest(ctx, digest); err != nil {
			log.WithError(err).Warnf("failed to ingest image %s for container %s", digest, containerID)
			continue
		}

		class, err := m.classify(ctx, digest, pid)
		if err != nil {
			log.WithError(err).Warnf("failed to classify pid %d in container %s", pid, containerID)
			continue
		}

		if class == record.Foreign {
			log.Warnf("Container %s running image %s had a bad process with pid %d", containerID, digest, pid)
			if remediated[containerID] {
				continue
			}
			remediated[containerID] = true
			if err := m.remediate(ctx, containerID, digest); err != nil {
				log.WithError(err).Errorf("failed to remediate container %s", containerID)
			}
		}
	}
}

// classify resolves the verdict for pid's live executable against the
// fingerprints recorded for digest.
func (m *MonitorLoop) classify(ctx context.Context, digest record.ImageDigest, pid int) (record.Classification, error) {
	exePath := m.inspector.ExePathOf(pid)
	if exePath == "" {
		return record.Unknown, nil
	}

	expected, ok, err := m.store.GetFingerprint(ctx, digest, exePath)
	if err != nil {
		return record.Unknown, err
	}
	if !ok {
		return record.Foreign, nil
	}

	actual, err := scanner.HashFile(m.inspector.HostExePath(pid))
	if err != nil {
		return record.Unknown, nil
	}
	if actual == expected {
		return record.Legitimate, nil
	}
	return record.Foreign, nil
}

// remediate kills, removes, and recreates (but does not start) the
// container. This is terminal for the container: no retry is attempted
// within the tick, and the operator is left to decide whether and how the
// new container should run.
func (m *MonitorLoop) remediate(ctx context.Context, containerID string, digest record.ImageDigest) error {
	if err := m.engine.Kill(ctx, containerID); err != nil {
		return err
	}
	if err := m.engine.Remove(ctx, containerID); err != nil {
		return err
	}
	if _, err := m.engine.Create(ctx, digest); err != nil {
		return err
	}
	return nil
}
