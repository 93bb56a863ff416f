// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/containerwarden/warden/config"
	"github.com/containerwarden/warden/record"
	"github.com/containerwarden/warden/store"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <DIGEST>",
	Short: "Dump the fingerprints recorded for an image digest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		s, err := store.OpenSQLiteStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer s.Close()

		digest := record.ImageDigest(args[0])
		ctx := cmd.Context()

		hashed, err := s.IsHashed(ctx, digest)
		if err != nil {
			return err
		}
		fmt.Printf("%s  hashed=%t\n", digest, hashed)

		fingerprints, err := s.AllFingerprints(ctx, digest)
		if err != nil {
			return err
		}
		for _, fp := range fingerprints {
			fmt.Printf("%s  %s\n", fp.Hash, fp.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
