// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/containerwarden/warden/config"
	"github.com/containerwarden/warden/store"
)

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Export or import the fingerprint database",
}

var storeExportCmd = &cobra.Command{
	Use:   "export <FILE>",
	Short: "Write a snappy-compressed YAML snapshot of the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		s, err := store.OpenSQLiteStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer s.Close()

		snap, err := store.NewSnapshot(cmd.Context(), s)
		if err != nil {
			return err
		}
		if err := snap.WriteTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("wrote %d images, %d fingerprints to %s\n", len(snap.Images), len(snap.Fingerprints), args[0])
		return nil
	},
}

var storeImportCmd = &cobra.Command{
	Use:   "import <FILE>",
	Short: "Restore a snapshot written by `store export` into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		s, err := store.OpenSQLiteStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer s.Close()

		snap, err := store.ReadSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := snap.Restore(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Printf("restored %d images, %d fingerprints from %s\n", len(snap.Images), len(snap.Fingerprints), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeImportCmd)
}
