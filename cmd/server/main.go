// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Command server runs the in-memory papercloud API for local development and
// manual testing of the client. One-time login codes are written to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/server"
	"github.com/MKhiriev/go-paper-cloud/internal/testserver"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	listen := pflag.StringP("listen", "l", "localhost:8000", "Listen address")
	accessTTL := pflag.Duration("access-ttl", 15*time.Minute, "Access token lifetime")
	pflag.Parse()

	log := logger.NewLogger("papercloud-dev-server", os.Stderr)

	api := testserver.New(
		testserver.WithLogger(log),
		testserver.WithAccessTTL(*accessTTL),
		testserver.WithOTTDelivery(func(email, ott string) {
			fmt.Printf("one-time code for %s: %s\n", email, ott)
		}),
	)

	srv, err := server.NewServer(api.Handler(), *listen, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
