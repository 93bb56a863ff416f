// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package main

import (
	_ "expvar"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
)

func realMain() error {
	logrus.SetOutput(os.Stderr)

	if os.Getenv("WARDEN_PROFILE") != "" {
		runtime.SetBlockProfileRate(100)
		go http.ListenAndServe(":8910", nil)
		defer profile.Start().Stop()
	}
	return Execute()
}

func main() {
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
