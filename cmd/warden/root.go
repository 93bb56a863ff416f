// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/containerwarden/warden/config"
	"github.com/containerwarden/warden/monitor"
	"github.com/containerwarden/warden/scanner"
	"github.com/containerwarden/warden/store"
)

// rootCmd represents the base command when called without any subcommands.
// It takes no arguments: all configuration is the built-in default from
// config.Default, never from positional args, flags or the environment.
var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Container integrity monitor",
	Long: `warden watches the containers running on a single host, learns the
executables shipped in each container's image the first time it is seen,
and kills, removes, and recreates any container whose running processes
diverge from what its image actually contains.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		return err
	}
	return nil
}

// runMonitor wires up the store, container engine, and process inspector
// and starts the monitor loop. It returns only on cancellation or a
// construction failure.
func runMonitor(ctx context.Context) error {
	cfg := config.Default()

	backing, err := store.OpenSQLiteStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer backing.Close()

	fingerprints, err := store.NewCachingStore(ctx, backing)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer fingerprints.Close()

	engine, err := scanner.NewDockerEngine()
	if err != nil {
		return fmt.Errorf("connecting to container engine: %w", err)
	}

	ingestor := scanner.NewIngestor(engine, fingerprints, cfg.ScratchDir)
	inspector := scanner.NewProcessInspector(cfg.EngineTag)

	loop := monitor.New(engine, ingestor, inspector, fingerprints, cfg)
	return loop.Run(ctx)
}
