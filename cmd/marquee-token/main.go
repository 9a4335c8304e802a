// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Command marquee-token signs a bearer token for local testing. It reads
// JWT_SECRET and TOKEN_ISSUER through the same configuration layers as the
// server, so tokens it prints are accepted by a server sharing that config.
//
//	marquee-token -user alice -ttl 1h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
)

func main() {
	user := flag.String("user", "", "user id placed in the token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: marquee-token -user <id> [-ttl 1h]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	manager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	token, err := manager.GenerateToken(*user, *ttl)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to sign token")
	}
	fmt.Println(token)
}
