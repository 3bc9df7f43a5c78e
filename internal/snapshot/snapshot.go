// Package snapshot takes one read-only view of the combo
// catalog and exposes the indices the rest of the engine needs.
package snapshot

import (
	"context"

	"github.com/commanderspellbook/variantengine/internal/model"
)

// Port is the read-only surface the engine needs from the persistent store
// to build a Snapshot. It is implemented by storage.Storage backends.
type Port interface {
	AllCards(ctx context.Context) ([]*model.Card, error)
	AllTemplates(ctx context.Context) ([]*model.Template, error)
	AllFeatures(ctx context.Context) ([]*model.Feature, error)
	AllCombos(ctx context.Context) ([]*model.Combo, error)
	// NotWorkingCardSets returns the card-id sets of every variant currently
	// marked NOT_WORKING.
	NotWorkingCardSets(ctx context.Context) ([]map[model.CardID]bool, error)
	// ExistingVariants returns every persisted variant keyed by its
	// unique_id fingerprint.
	ExistingVariants(ctx context.Context) (map[string]*model.Variant, error)
}

// Snapshot is a single immutable read of the entire catalog. Read fills it
// from six separate Port calls, and neither the memory nor the dolt
// backend wraps those calls in one transaction, so the indices are
// mutually consistent only when nothing writes to the store while Read
// runs. Once built it is never mutated; every index below is a plain
// read-only map.
type Snapshot struct {
	Cards     map[model.CardID]*model.Card
	Templates map[model.TemplateID]*model.Template
	Features  map[model.FeatureID]*model.Feature
	Combos    map[model.ComboID]*model.Combo

	UtilityFeatureIDs  map[model.FeatureID]bool
	BannedCardIDs      map[model.CardID]bool
	GeneratorComboIDs  []model.ComboID
	NotWorkingCardSets []map[model.CardID]bool

	ExistingVariantsByFingerprint map[string]*model.Variant
}

// Read performs the single point-in-time read described in spec §4.B. The
// caller is responsible for opening port inside a repeatable-read (or
// stricter) transaction so the indices built here are mutually consistent.
func Read(ctx context.Context, port Port) (*Snapshot, error) {
	cards, err := port.AllCards(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := port.AllTemplates(ctx)
	if err != nil {
		return nil, err
	}
	features, err := port.AllFeatures(ctx)
	if err != nil {
		return nil, err
	}
	combos, err := port.AllCombos(ctx)
	if err != nil {
		return nil, err
	}
	notWorking, err := port.NotWorkingCardSets(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := port.ExistingVariants(ctx)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		Cards:                         make(map[model.CardID]*model.Card, len(cards)),
		Templates:                     make(map[model.TemplateID]*model.Template, len(templates)),
		Features:                      make(map[model.FeatureID]*model.Feature, len(features)),
		Combos:                        make(map[model.ComboID]*model.Combo, len(combos)),
		UtilityFeatureIDs:             make(map[model.FeatureID]bool),
		BannedCardIDs:                 make(map[model.CardID]bool),
		NotWorkingCardSets:            notWorking,
		ExistingVariantsByFingerprint: existing,
	}
	for _, c := range cards {
		s.Cards[c.ID] = c
		if !c.Legal {
			s.BannedCardIDs[c.ID] = true
		}
	}
	for _, t := range templates {
		s.Templates[t.ID] = t
	}
	for _, f := range features {
		s.Features[f.ID] = f
		if f.Utility {
			s.UtilityFeatureIDs[f.ID] = true
		}
	}
	for _, c := range combos {
		s.Combos[c.ID] = c
		if c.Generator {
			s.GeneratorComboIDs = append(s.GeneratorComboIDs, c.ID)
		}
	}
	return s, nil
}
