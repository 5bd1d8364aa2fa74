package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 70
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` 8888888888 8888888 888b    888  .d88888b.`,
		` 888          888   8888b   888 d88P" "Y88b`,
		` 888          888   88888b  888 888     888`,
		` 8888888      888   888Y88b 888 888     888`,
		` 888          888   888 Y88b888 888     888`,
		` 888          888   888  Y88888 888 Y8b 888`,
		` 888          888   888   Y8888 Y88b.Y8b88P`,
		` 888        8888888 888    Y888  "Y888888"`,
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s  Financial Query Agent%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	kvPad := 16
	mode := "live"
	if config.MarketData.UseMock {
		mode = "mock"
	}
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Data mode", mode},
		{"Model", config.Clients.Gemini.Model},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n")
}
