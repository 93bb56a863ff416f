// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package scanner

import (
	"context"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/containerwarden/warden/record"
)

// ContainerInfo is the subset of container metadata the monitor needs:
// enough to identify the container and the image it was started from.
type ContainerInfo struct {
	ID    string
	Image record.ImageDigest
}

// Engine is the container-engine client the monitor consumes. It is kept
// deliberately narrow — list/inspect/export/kill/remove/create — mirroring
// conventional Docker-compatible semantics without leaking docker/docker's
// wider API surface into the rest of the module.
type Engine interface {
	// ListContainers returns every currently running container.
	ListContainers(ctx context.Context) ([]ContainerInfo, error)

	// InspectContainer returns the image a running container was started
	// from.
	InspectContainer(ctx context.Context, containerID string) (record.ImageDigest, error)

	// ExportImage streams the named image as an OCI/docker-save style tar
	// archive. The caller owns the returned ReadCloser and must Close it.
	ExportImage(ctx context.Context, digest record.ImageDigest) (io.ReadCloser, error)

	// Kill stops a running container with no particular signal preference.
	Kill(ctx context.Context, containerID string) error

	// Remove deletes a (stopped) container.
	Remove(ctx context.Context, containerID string) error

	// Create creates a fresh container from image but does not start it;
	// see the MonitorLoop remediation policy for why.
	Create(ctx context.Context, digest record.ImageDigest) (string, error)
}

// DockerEngine implements Engine against a local Docker-compatible daemon.
type DockerEngine struct {
	cli *client.Client
}

var _ Engine = (*DockerEngine)(nil)

// NewDockerEngine connects to the daemon configured by the standard Docker
// environment variables (DOCKER_HOST, DOCKER_CERT_PATH, ...).
func NewDockerEngine() (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &DockerEngine{cli: cli}, nil
}

// ListContainers returns every currently running container.
func (e *DockerEngine) ListContainers(ctx context.Context) ([]ContainerInfo, error) {
	containers, err := e.cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]ContainerInfo, len(containers))
	for i, c := range containers {
		out[i] = ContainerInfo{ID: c.ID, Image: record.ImageDigest(c.ImageID)}
	}
	return out, nil
}

// InspectContainer returns the image a running container was started from.
func (e *DockerEngine) InspectContainer(ctx context.Context, containerID string) (record.ImageDigest, error) {
	info, err := e.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return "", err
	}
	return record.ImageDigest(info.Image), nil
}

// ExportImage streams the image as a tar archive via `docker save` semantics.
func (e *DockerEngine) ExportImage(ctx context.Context, digest record.ImageDigest) (io.ReadCloser, error) {
	return e.cli.ImageSave(ctx, []string{string(digest)})
}

// Kill stops the container with the daemon's default signal (SIGKILL).
func (e *DockerEngine) Kill(ctx context.Context, containerID string) error {
	return e.cli.ContainerKill(ctx, containerID, "")
}

// Remove deletes the container with default options.
func (e *DockerEngine) Remove(ctx context.Context, containerID string) error {
	return e.cli.ContainerRemove(ctx, containerID, types.ContainerRemoveOptions{})
}

// Create creates a fresh container from image but, per the remediation
// policy, does not start it.
func (e *DockerEngine) Create(ctx context.Context, digest record.ImageDigest) (string, error) {
	resp, err := e.cli.ContainerCreate(ctx, &container.Config{Image: string(digest)}, nil, nil, nil, "")
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}
