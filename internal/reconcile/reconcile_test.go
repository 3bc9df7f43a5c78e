package reconcile

import (
	"testing"

	"github.com/commanderspellbook/variantengine/internal/compose"
	"github.com/commanderspellbook/variantengine/internal/model"
)

func baseCombo(id model.ComboID) *model.Combo {
	return &model.Combo{
		ID:                 id,
		ZoneLocations:      "battlefield",
		CardsState:         "untapped",
		OtherPrerequisites: "none",
		ManaNeeded:         "{U}",
		Description:        "do the thing",
	}
}

func TestRunInsertsNewVariant(t *testing.T) {
	combo := baseCombo(1)
	def := &compose.Definition{
		Fingerprint: "fp1",
		Cards:       []model.CardID{1, 2},
		Identity:    "U",
		Legal:       true,
		Produces:    map[model.FeatureID]bool{10: true},
		Of:          map[model.ComboID]bool{1: true},
		Includes:    map[model.ComboID]bool{1: true},
	}
	computed := map[string]*compose.Definition{"fp1": def}
	combosByID := map[model.ComboID]*model.Combo{1: combo}

	result, counters := Run(computed, map[string]*model.Variant{}, combosByID, nil, nil)
	if counters.Added != 1 || counters.Restored != 0 || counters.Deleted != 0 {
		t.Fatalf("counters = %+v, want {1 0 0}", counters)
	}
	v := result["fp1"]
	if v.Status != model.StatusNew {
		t.Fatalf("status = %v, want NEW", v.Status)
	}
	if v.Description != "do the thing" {
		t.Fatalf("description = %q", v.Description)
	}
}

func TestRunTaintsNewVariantUnderNotWorkingSuperset(t *testing.T) {
	def := &compose.Definition{
		Fingerprint: "fp1",
		Cards:       []model.CardID{1, 2, 3},
		Of:          map[model.ComboID]bool{1: true},
		Includes:    map[model.ComboID]bool{1: true},
		Produces:    map[model.FeatureID]bool{},
	}
	computed := map[string]*compose.Definition{"fp1": def}
	notWorking := []map[model.CardID]bool{{1: true, 2: true}}

	result, _ := Run(computed, map[string]*model.Variant{}, map[model.ComboID]*model.Combo{1: baseCombo(1)}, nil, notWorking)
	if result["fp1"].Status != model.StatusNotWorking {
		t.Fatalf("status = %v, want NOT_WORKING", result["fp1"].Status)
	}
}

func TestRunLeavesOKVariantUntaintedEvenUnderSuperset(t *testing.T) {
	existing := map[string]*model.Variant{
		"fp1": {UniqueID: "fp1", Cards: []model.CardID{1, 2, 3}, Status: model.StatusOK, Description: "original"},
	}
	def := &compose.Definition{
		Fingerprint: "fp1",
		Cards:       []model.CardID{1, 2, 3},
		Of:          map[model.ComboID]bool{1: true},
		Includes:    map[model.ComboID]bool{1: true},
		Produces:    map[model.FeatureID]bool{},
	}
	computed := map[string]*compose.Definition{"fp1": def}
	notWorking := []map[model.CardID]bool{{1: true, 2: true}}

	result, _ := Run(computed, existing, map[model.ComboID]*model.Combo{1: baseCombo(1)}, nil, notWorking)
	v := result["fp1"]
	if v.Status != model.StatusOK {
		t.Fatalf("status = %v, want OK (never re-tainted)", v.Status)
	}
	if v.Description != "original" {
		t.Fatalf("description mutated on a non-RESTORE existing variant: %q", v.Description)
	}
}

func TestRunRestoresTextFieldsAndResetsStatus(t *testing.T) {
	existing := map[string]*model.Variant{
		"fp1": {UniqueID: "fp1", Cards: []model.CardID{1}, Status: model.StatusRestore, Description: "stale"},
	}
	def := &compose.Definition{
		Fingerprint: "fp1",
		Cards:       []model.CardID{1},
		Of:          map[model.ComboID]bool{1: true},
		Includes:    map[model.ComboID]bool{1: true},
		Produces:    map[model.FeatureID]bool{},
	}
	computed := map[string]*compose.Definition{"fp1": def}

	result, counters := Run(computed, existing, map[model.ComboID]*model.Combo{1: baseCombo(1)}, nil, nil)
	if counters.Restored != 1 {
		t.Fatalf("restored = %d, want 1", counters.Restored)
	}
	v := result["fp1"]
	if v.Status != model.StatusNew {
		t.Fatalf("status = %v, want NEW after restore", v.Status)
	}
	if v.Description != "do the thing" {
		t.Fatalf("description = %q, want recomputed from combo", v.Description)
	}
}

func TestRunNeverMutatesFrozenVariant(t *testing.T) {
	existing := map[string]*model.Variant{
		"fp1": {UniqueID: "fp1", Cards: []model.CardID{1}, Status: model.StatusFrozen, Description: "locked", ManaNeeded: "locked too"},
	}
	def := &compose.Definition{
		Fingerprint: "fp1",
		Cards:       []model.CardID{1},
		Of:          map[model.ComboID]bool{2: true},
		Includes:    map[model.ComboID]bool{2: true},
		Produces:    map[model.FeatureID]bool{},
	}
	computed := map[string]*compose.Definition{"fp1": def}

	result, counters := Run(computed, existing, map[model.ComboID]*model.Combo{2: baseCombo(2)}, nil, nil)
	if counters.Added != 0 || counters.Restored != 0 {
		t.Fatalf("counters = %+v, want no added/restored for a frozen variant", counters)
	}
	v := result["fp1"]
	if v.Description != "locked" || v.ManaNeeded != "locked too" {
		t.Fatal("frozen variant's text fields were mutated")
	}
	if !v.Of[2] {
		t.Fatal("frozen variant's Of links should still refresh")
	}
}

func TestRunDeletesOrphanedNonFrozenVariant(t *testing.T) {
	existing := map[string]*model.Variant{
		"stale": {UniqueID: "stale", Status: model.StatusOK},
	}
	result, counters := Run(map[string]*compose.Definition{}, existing, nil, nil, nil)
	if counters.Deleted != 1 {
		t.Fatalf("deleted = %d, want 1", counters.Deleted)
	}
	if _, ok := result["stale"]; ok {
		t.Fatal("orphaned variant should not appear in the result set")
	}
}

func TestRunKeepsOrphanedFrozenVariant(t *testing.T) {
	existing := map[string]*model.Variant{
		"stale": {UniqueID: "stale", Status: model.StatusFrozen},
	}
	result, counters := Run(map[string]*compose.Definition{}, existing, nil, nil, nil)
	if counters.Deleted != 0 {
		t.Fatalf("deleted = %d, want 0 (frozen)", counters.Deleted)
	}
	if _, ok := result["stale"]; !ok {
		t.Fatal("frozen orphaned variant must survive reconciliation")
	}
}
