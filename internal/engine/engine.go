// Package engine wires the whole generation pipeline together: one
// consistent snapshot read, a per-generator-combo prune/solve/compose fan
// out, reconciliation against the persisted catalog, and a single durable
// commit. This is the spec §4 "generate_variants" operation end to end.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/commanderspellbook/variantengine/internal/compose"
	"github.com/commanderspellbook/variantengine/internal/graph"
	"github.com/commanderspellbook/variantengine/internal/jobdriver"
	"github.com/commanderspellbook/variantengine/internal/logging"
	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/prune"
	"github.com/commanderspellbook/variantengine/internal/reconcile"
	"github.com/commanderspellbook/variantengine/internal/snapshot"
	"github.com/commanderspellbook/variantengine/internal/solver"
	"github.com/commanderspellbook/variantengine/internal/storage"
)

// engineTracer is the OTel tracer for run-level spans. It uses the global
// provider, a no-op until the process wires up a real exporter.
var engineTracer = otel.Tracer("github.com/commanderspellbook/variantengine/internal/engine")

var engineMetrics struct {
	comboSolveCount metric.Int64Counter
	variantCount    metric.Int64UpDownCounter
}

func init() {
	m := otel.Meter("github.com/commanderspellbook/variantengine/internal/engine")
	engineMetrics.comboSolveCount, _ = m.Int64Counter("spellbook.engine.combo_solve_count",
		metric.WithDescription("Generator combos processed by one generation run"),
		metric.WithUnit("{combo}"),
	)
	engineMetrics.variantCount, _ = m.Int64UpDownCounter("spellbook.engine.variant_count",
		metric.WithDescription("Variants in the catalog after the most recent commit"),
		metric.WithUnit("{variant}"),
	)
}

// Options configures one generation run.
type Options struct {
	MaxCardsInCombo int
	Solver          solver.Solver
	Concurrency     int
	Logger          *zap.Logger
}

// Report summarizes one completed run for the caller (CLI, job log).
type Report struct {
	reconcile.Counters
	GeneratorCombosProcessed int
	VariantsAfterCommit      int
}

// Run performs one full generate_variants pass: read a
// snapshot, build the hypergraph, solve every generator combo
// (parallelized up to opts.Concurrency), reconcile the computed catalog
// against what is persisted, and commit the result. cancel is polled
// before each generator combo is scheduled and again before the commit,
// so a long run can stop early without leaving a half-applied commit —
// combos already being solved finish, and a run cancelled at any point
// before the commit discards what it computed and commits nothing.
func Run(ctx context.Context, store storage.Storage, driver *jobdriver.Driver, job *jobdriver.Job, cancel *jobdriver.CancelFlag, opts Options) (*Report, error) {
	ctx, span := engineTracer.Start(ctx, "engine.run")
	defer span.End()

	if opts.Solver == nil {
		opts.Solver = solver.NewBranchAndBound()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}

	snap, err := snapshot.Read(ctx, store)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("engine: read snapshot: %w", err)
	}
	log.Info("snapshot read",
		zap.String("job_id", job.ID),
		zap.Int("cards", len(snap.Cards)),
		zap.Int("templates", len(snap.Templates)),
		zap.Int("features", len(snap.Features)),
		zap.Int("combos", len(snap.Combos)),
		zap.Int("generator_combos", len(snap.GeneratorComboIDs)),
	)
	_ = driver.Log(ctx, job, "snapshot read: %d cards, %d templates, %d features, %d combos", len(snap.Cards), len(snap.Templates), len(snap.Features), len(snap.Combos))

	defByFingerprint := make(map[string]*compose.Definition)
	var defMu sync.Mutex

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(opts.Concurrency)

	processed := 0
	for _, target := range snap.GeneratorComboIDs {
		target := target
		select {
		case <-cancel.Done():
		default:
			grp.Go(func() error {
				select {
				case <-cancel.Done():
					return nil
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				outcomes, err := solveOne(gctx, snap, opts.Solver, target, opts.MaxCardsInCombo)
				if err != nil {
					if errors.Is(err, solver.ErrSolver) {
						// Locally recoverable (spec §7): this one root
						// combo contributes nothing, everything else
						// still runs and commits.
						log.Warn("solver error, skipping combo",
							zap.Int64("combo_id", int64(target)),
							zap.Error(err),
						)
						_ = driver.Log(gctx, job, "combo %d: solver error, skipped: %v", target, err)
						return nil
					}
					// GraphInvariant, Persistence and context errors are
					// hard failures: abort the whole run rather than
					// commit a partial catalog.
					return fmt.Errorf("solve combo %d: %w", target, err)
				}
				defMu.Lock()
				compose.Compose(outcomes.model, outcomes.outcomes, snap.BannedCardIDs, defByFingerprint)
				processed++
				defMu.Unlock()
				return nil
			})
		}
	}
	if err := grp.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("engine: solve phase: %w", err)
	}
	engineMetrics.comboSolveCount.Add(ctx, int64(processed))

	combosByID := snap.Combos
	result, counters := reconcile.Run(defByFingerprint, snap.ExistingVariantsByFingerprint, combosByID, snap.UtilityFeatureIDs, snap.NotWorkingCardSets)

	var deleteIDs []string
	for fingerprint, v := range snap.ExistingVariantsByFingerprint {
		if _, kept := result[fingerprint]; !kept && !v.IsFrozen() {
			deleteIDs = append(deleteIDs, fingerprint)
		}
	}

	if cancel.Cancelled() {
		log.Warn("cancelled before commit", zap.String("job_id", job.ID), zap.Int("discarded", len(result)))
		_ = driver.Log(ctx, job, "cancelled before commit; discarding %d computed variants", len(result))
		span.SetAttributes(attribute.Bool("spellbook.cancelled", true))
		return &Report{GeneratorCombosProcessed: processed}, nil
	}

	if err := store.CommitVariants(ctx, result, deleteIDs); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("engine: commit: %w", err)
	}
	engineMetrics.variantCount.Add(ctx, int64(len(result)))
	log.Info("committed",
		zap.String("job_id", job.ID),
		zap.Int("added", counters.Added),
		zap.Int("restored", counters.Restored),
		zap.Int("deleted", counters.Deleted),
		zap.Int("total", len(result)),
	)
	_ = driver.Log(ctx, job, "committed: +%d added, %d restored, %d deleted (%d total)", counters.Added, counters.Restored, counters.Deleted, len(result))

	return &Report{
		Counters:                 counters,
		GeneratorCombosProcessed: processed,
		VariantsAfterCommit:      len(result),
	}, nil
}

type soloResult struct {
	model    *solver.Model
	outcomes []*solver.Outcome
}

// solveOne builds a fresh graph and prunes/solves a single generator
// combo. A fresh graph.Build per target means every goroutine owns its
// own node scratch state, so concurrent calls never race on graph.Reset:
// graph.Build only reads snap, which is itself immutable for the life of
// the run (spec §4.B).
func solveOne(ctx context.Context, snap *snapshot.Snapshot, sv solver.Solver, target model.ComboID, maxBudget int) (soloResult, error) {
	g := graph.Build(snap)
	if _, ok := g.Combos[target]; !ok {
		return soloResult{}, fmt.Errorf("combo %d: %w", target, graph.ErrGraphInvariant)
	}
	sub := prune.For(g, target, maxBudget)
	m := solver.Build(sub, target, maxBudget)
	outcomes, err := solver.EnumerateAll(ctx, sv, m)
	if err != nil {
		return soloResult{}, err
	}
	return soloResult{model: m, outcomes: outcomes}, nil
}
