// Command spellbook runs and inspects Commander Spellbook variant
// generation jobs against an embedded Dolt catalog (or an in-memory one
// for local experimentation).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/commanderspellbook/variantengine/internal/telemetry"
)

// Global flags, bound in init below.
var (
	configPath string
	dbDSN      string
	jsonOutput bool
)

// telemetryShutdown flushes whichever exporter initTelemetry registered.
// It is a no-op until that runs, so commands that never touch the
// engine (e.g. --help) have nothing to flush on exit.
var telemetryShutdown telemetry.Shutdown = func(context.Context) error { return nil }

// initTelemetry registers the global OTel providers per
// SPELLBOOK_OTEL_EXPORTER (none, the default; stdout; or otlp, which
// pushes metrics via otlpmetrichttp to SPELLBOOK_OTEL_ENDPOINT).
func initTelemetry() error {
	exporter := telemetry.Exporter(os.Getenv("SPELLBOOK_OTEL_EXPORTER"))
	shutdown, err := telemetry.Init(context.Background(), exporter, os.Getenv("SPELLBOOK_OTEL_ENDPOINT"))
	if err != nil {
		return err
	}
	telemetryShutdown = shutdown
	return nil
}

// Styles for status output, matched to the adaptive light/dark palette
// the rest of the toolchain uses.
var (
	okStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	})
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	})
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	})
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	})
	boldStyle = lipgloss.NewStyle().Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "spellbook",
	Short: "Generate and inspect Commander Spellbook combo variants",
	Long: `spellbook runs the variant generation engine against a combo catalog
and reports on the jobs and variants it produces.

Examples:
  spellbook generate                  # run one generation pass
  spellbook job status                # check whether generate is running here
  spellbook variant show <fingerprint># render one variant's card text
  spellbook variant freeze <fingerprint> # lock a variant's text fields`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overridden by SPELLBOOK_* env vars)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "storage DSN, overrides SPELLBOOK_DB_DSN")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "no effect: every subcommand prints styled text")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(variantCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := initTelemetry(); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("telemetry init failed, continuing without it: "+err.Error()))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetryShutdown(ctx)
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}
