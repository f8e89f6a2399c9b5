// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/app"
	"github.com/UiASub/Topside/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (defaults are used when empty)")
	flag.Parse()

	if *configPath == "" {
		config.InitDefault()
	} else if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	level, _ := log.ParseLevel(config.Get().LogLevel)
	log.SetLevel(level)
	log.Info("starting mock rov")

	if err := app.RunMockROV(config.Get().Mock.Listen); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
