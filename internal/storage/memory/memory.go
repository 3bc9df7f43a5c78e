// Package memory implements storage.Storage with plain in-process maps. It
// backs unit and reconciliation tests and the SPELLBOOK_DB_DSN=memory://
// deployment mode; there is no persistence across process restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/commanderspellbook/variantengine/internal/model"
)

// Store is a single-process, mutex-guarded catalog. The zero value is not
// usable; construct with New.
type Store struct {
	mu sync.RWMutex

	cards     map[model.CardID]*model.Card
	templates map[model.TemplateID]*model.Template
	features  map[model.FeatureID]*model.Feature
	combos    map[model.ComboID]*model.Combo
	variants  map[string]*model.Variant
	jobs      jobTable
}

// New returns an empty store ready for Seed or direct mutation in tests.
func New() *Store {
	return &Store{
		cards:     map[model.CardID]*model.Card{},
		templates: map[model.TemplateID]*model.Template{},
		features:  map[model.FeatureID]*model.Feature{},
		combos:    map[model.ComboID]*model.Combo{},
		variants:  map[string]*model.Variant{},
	}
}

// Seed loads a catalog in one call, as tests and fixtures typically need.
func (s *Store) Seed(cards []*model.Card, templates []*model.Template, features []*model.Feature, combos []*model.Combo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	for _, t := range templates {
		s.templates[t.ID] = t
	}
	for _, f := range features {
		s.features[f.ID] = f
	}
	for _, c := range combos {
		s.combos[c.ID] = c
	}
}

func (s *Store) AllCards(ctx context.Context) ([]*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AllTemplates(ctx context.Context) ([]*model.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AllFeatures(ctx context.Context) ([]*model.Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Feature, 0, len(s.features))
	for _, f := range s.features {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AllCombos(ctx context.Context) ([]*model.Combo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Combo, 0, len(s.combos))
	for _, c := range s.combos {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) NotWorkingCardSets(ctx context.Context) ([]map[model.CardID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []map[model.CardID]bool
	for _, v := range s.variants {
		if v.Status != model.StatusNotWorking {
			continue
		}
		set := make(map[model.CardID]bool, len(v.Cards))
		for _, c := range v.Cards {
			set[c] = true
		}
		out = append(out, set)
	}
	return out, nil
}

func (s *Store) ExistingVariants(ctx context.Context) (map[string]*model.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*model.Variant, len(s.variants))
	for id, v := range s.variants {
		cp := *v
		out[id] = &cp
	}
	return out, nil
}

// CommitVariants applies the reconciler's output atomically under the
// store's single lock: every entry in variants is upserted, every id in
// deleteIDs is removed. Both happen under the same critical section so no
// reader observes a partial commit.
func (s *Store) CommitVariants(ctx context.Context, variants map[string]*model.Variant, deleteIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range variants {
		s.variants[id] = v
	}
	for _, id := range deleteIDs {
		delete(s.variants, id)
	}
	return nil
}
