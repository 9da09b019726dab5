package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

// nopMetrics satisfies the services metrics interface for the console, which
// has no scrape endpoint to expose counters on.
type nopMetrics struct{}

func (nopMetrics) IncrementCounter(name string, tags map[string]string)           {}
func (nopMetrics) RecordProcessingTime(name string, duration time.Duration)       {}
func (nopMetrics) RecordGauge(name string, value float64, tags map[string]string) {}

func main() {
	// .env is a dev convenience; a missing file is not an error.
	_ = godotenv.Load()

	baseURL := envOr("BANK_API_BASE_URL", "http://localhost:8000")
	timeout := envDurationOr("BANK_API_TIMEOUT", 30*time.Second)

	// The terminal belongs to the TUI, so log output goes to a file or
	// nowhere at all.
	logger := logging.Discard()
	if path := os.Getenv("BANK_CONSOLE_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewJSONHandler(f, nil))
	}

	deps := appDeps{
		client:  bankapi.NewClient(baseURL, timeout, logger, nopMetrics{}),
		logger:  logger,
		metrics: nopMetrics{},
	}

	program := tea.NewProgram(newAppModel(deps), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
