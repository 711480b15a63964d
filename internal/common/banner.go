package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	version := GetVersion()
	build := GetBuild()
	commit := GetGitCommit()
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
	storageAddr := config.Storage.Address
	if config.Storage.Backend == "memory" {
		storageAddr = "in-memory"
	}

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 64
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` ___ _   ___   _____ ___ _____ _____ ___    _   ___ _  __`,
		`|_ _| \ | \ \ / / __/ __|_   _|_   _| _ \  /_\ / __| |/ /`,
		` | ||  \| |\ V /| _|\__ \ | |   | | |   / / _ \ (__| ' < `,
		`|___|_|\__| \_/ |___|___/ |_|   |_| |_|_\/_/ \_\___|_|\_\`,
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s  Investment Ledger & Projection%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	kvPad := 14
	kvLines := [][2]string{
		{"Version", version},
		{"Build", build},
		{"Commit", commit},
		{"Environment", config.Environment},
		{"Service URL", serviceURL},
		{"Storage", storageAddr},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info().
		Str("version", version).
		Str("build", build).
		Str("commit", commit).
		Str("environment", config.Environment).
		Str("service_url", serviceURL).
		Str("storage_address", storageAddr).
		Msg("Application started")
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 40) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  INVESTTRACK - SHUTTING DOWN%s\n", banner.ColorBold+banner.ColorWhite, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
