package engine

import (
	"context"
	"testing"
	"time"

	"github.com/commanderspellbook/variantengine/internal/jobdriver"
	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/storage/memory"
)

// seedTwoCardCombo builds a catalog with one two-card generator combo and
// no prior variants, the minimal case a full run must turn into one new
// variant.
func seedTwoCardCombo() *memory.Store {
	s := memory.New()
	s.Seed(
		[]*model.Card{
			{ID: 1, Name: "Card A", Identity: "U", Legal: true},
			{ID: 2, Name: "Card B", Identity: "B", Legal: true},
		},
		nil,
		nil,
		[]*model.Combo{
			{ID: 100, Generator: true, Uses: []model.CardID{1, 2}, Description: "A and B go infinite"},
		},
	)
	return s
}

func TestRunProducesOneVariantFromScratch(t *testing.T) {
	store := seedTwoCardCombo()
	driver := jobdriver.New(store)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	job, err := driver.Start(ctx, "generate", time.Hour, "test", now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel := jobdriver.NewCancelFlag()

	report, err := Run(ctx, store, driver, job, cancel, Options{MaxCardsInCombo: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Added != 1 {
		t.Fatalf("Added = %d, want 1", report.Added)
	}
	if report.VariantsAfterCommit != 1 {
		t.Fatalf("VariantsAfterCommit = %d, want 1", report.VariantsAfterCommit)
	}

	existing, err := store.ExistingVariants(ctx)
	if err != nil {
		t.Fatalf("ExistingVariants: %v", err)
	}
	if len(existing) != 1 {
		t.Fatalf("len(existing) = %d, want 1", len(existing))
	}
	for _, v := range existing {
		if v.Status != model.StatusNew {
			t.Errorf("Status = %v, want NEW", v.Status)
		}
		if len(v.Cards) != 2 {
			t.Errorf("Cards = %v, want both ingredient cards", v.Cards)
		}
	}
}

func TestRunIsIdempotentOnSecondPass(t *testing.T) {
	store := seedTwoCardCombo()
	driver := jobdriver.New(store)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	job, _ := driver.Start(ctx, "generate", time.Hour, "test", now)
	if _, err := Run(ctx, store, driver, job, jobdriver.NewCancelFlag(), Options{MaxCardsInCombo: 5}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	existing, _ := store.ExistingVariants(ctx)
	var fingerprint string
	for id := range existing {
		fingerprint = id
	}
	existing[fingerprint].Status = model.StatusOK
	if err := store.CommitVariants(ctx, existing, nil); err != nil {
		t.Fatalf("CommitVariants: %v", err)
	}

	job2, _ := driver.Start(ctx, "generate", time.Hour, "test", now.Add(time.Hour))
	report, err := Run(ctx, store, driver, job2, jobdriver.NewCancelFlag(), Options{MaxCardsInCombo: 5})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Added != 0 || report.Deleted != 0 {
		t.Fatalf("second pass should be a no-op on counters, got %+v", report.Counters)
	}

	existing2, _ := store.ExistingVariants(ctx)
	if existing2[fingerprint].Status != model.StatusOK {
		t.Fatalf("OK status must survive an unrelated reconcile pass, got %v", existing2[fingerprint].Status)
	}
}

func TestRunCancelledBeforeCommitLeavesStoreUntouched(t *testing.T) {
	store := seedTwoCardCombo()
	driver := jobdriver.New(store)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	job, _ := driver.Start(ctx, "generate", time.Hour, "test", now)
	cancel := jobdriver.NewCancelFlag()
	cancel.Cancel()

	report, err := Run(ctx, store, driver, job, cancel, Options{MaxCardsInCombo: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.VariantsAfterCommit != 0 {
		t.Fatalf("VariantsAfterCommit = %d, want 0 (nothing committed)", report.VariantsAfterCommit)
	}

	existing, err := store.ExistingVariants(ctx)
	if err != nil {
		t.Fatalf("ExistingVariants: %v", err)
	}
	if len(existing) != 0 {
		t.Fatalf("expected no variants committed after cancellation, got %d", len(existing))
	}
}
