package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/commanderspellbook/variantengine/internal/engine"
	"github.com/commanderspellbook/variantengine/internal/jobdriver"
	"github.com/commanderspellbook/variantengine/internal/logging"
)

var generateStartedBy string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one variant generation pass",
	Long: `generate acquires the single-writer job lease, reads a consistent
snapshot of the combo catalog, solves every generator combo, reconciles
the result against what is already persisted, and commits.

Only one generate run may be active at a time; a second invocation while
one is already running reports ErrJobAlreadyRunning instead of blocking.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateStartedBy, "started-by", "cli", "actor recorded on the job record")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	lease, err := jobdriver.AcquireLocalLease(localLeasePath("generate"), "generate")
	if err != nil {
		if errors.Is(err, jobdriver.ErrJobAlreadyRunning) {
			fmt.Fprintln(os.Stderr, warnStyle.Render("generate is already running on this host"))
			return err
		}
		return fmt.Errorf("acquire local lease: %w", err)
	}
	defer lease.Release()

	driver := jobdriver.New(store)
	job, err := driver.Start(ctx, "generate", cfg.JobLease(), generateStartedBy, time.Now())
	if err != nil {
		if errors.Is(err, jobdriver.ErrJobAlreadyRunning) {
			fmt.Fprintln(os.Stderr, warnStyle.Render("a generate job is already running: "+err.Error()))
			return err
		}
		return fmt.Errorf("start job: %w", err)
	}

	cancel := jobdriver.NewCancelFlag()
	sigCtx, stop := signalCancelContext(ctx, cancel)
	defer stop()

	log := logging.New()
	defer log.Sync() //nolint:errcheck // stderr sync failures are not actionable on process exit

	report, runErr := engine.Run(sigCtx, store, driver, job, cancel, engine.Options{
		MaxCardsInCombo: cfg.MaxCardsInCombo(),
		Logger:          log,
	})

	finishedAt := time.Now()
	if runErr != nil {
		_ = driver.Finish(ctx, job, jobdriver.StatusFailure, finishedAt)
		return fmt.Errorf("generate: %w", runErr)
	}
	if err := driver.Finish(ctx, job, jobdriver.StatusSuccess, finishedAt); err != nil {
		return fmt.Errorf("finish job: %w", err)
	}

	fmt.Println(okStyle.Render(fmt.Sprintf(
		"generated: %d combos processed, +%d added, %d restored, %d deleted, %d total variants",
		report.GeneratorCombosProcessed, report.Added, report.Restored, report.Deleted, report.VariantsAfterCommit,
	)))
	return nil
}

// signalCancelContext derives a context that is cancelled on SIGINT/SIGTERM
// and arranges for cancel.Cancel() to fire at the same moment, so the
// engine's cooperative cancellation observes a ctrl-C the way it would a
// context deadline.
func signalCancelContext(parent context.Context, cancel *jobdriver.CancelFlag) (context.Context, func()) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		cancel.Cancel()
	}()
	return ctx, stop
}
