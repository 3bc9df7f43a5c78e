// Package compose turns raw solver outcomes into variant definitions: the
// card/template sets, derived features and combo memberships the
// reconciler needs, keyed by the deterministic fingerprint spec §4.F
// defines.
package compose

import (
	"sort"

	"github.com/commanderspellbook/variantengine/internal/graph"
	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/solver"
)

// Definition is one not-yet-persisted variant, built purely from a solver
// Outcome and the Model it was solved against. Multiple generator combos
// can independently solve to the exact same card+template set; Compose
// merges those into a single Definition keyed by fingerprint.
type Definition struct {
	Fingerprint string
	Cards       []model.CardID
	Templates   []model.TemplateID
	Identity    string
	Legal       bool
	Produces    map[model.FeatureID]bool
	Of          map[model.ComboID]bool
	Includes    map[model.ComboID]bool
}

// FromOutcome builds one Definition from a single solver Outcome. Cards and
// templates are ordered by graph depth (shallowest/most-essential first)
// then by ID, matching the ordering the source data layer's variant
// ingredient listing uses.
func FromOutcome(m *solver.Model, out *solver.Outcome, banned map[model.CardID]bool) *Definition {
	cardNodes := make([]*graph.CardNode, len(out.CardIdx))
	for i, idx := range out.CardIdx {
		cardNodes[i] = m.Cards[idx]
	}
	sort.Slice(cardNodes, func(i, j int) bool {
		if cardNodes[i].Depth() != cardNodes[j].Depth() {
			return cardNodes[i].Depth() < cardNodes[j].Depth()
		}
		return cardNodes[i].Card.ID < cardNodes[j].Card.ID
	})

	templateNodes := make([]*graph.TemplateNode, len(out.TemplateIdx))
	for i, idx := range out.TemplateIdx {
		templateNodes[i] = m.Templates[idx]
	}
	sort.Slice(templateNodes, func(i, j int) bool {
		if templateNodes[i].Depth() != templateNodes[j].Depth() {
			return templateNodes[i].Depth() < templateNodes[j].Depth()
		}
		return templateNodes[i].Template.ID < templateNodes[j].Template.ID
	})

	cardIDs := make([]model.CardID, len(cardNodes))
	identities := make([]string, len(cardNodes))
	legal := true
	for i, c := range cardNodes {
		cardIDs[i] = c.Card.ID
		identities[i] = c.Card.Identity
		if banned[c.Card.ID] {
			legal = false
		}
	}
	templateIDs := make([]model.TemplateID, len(templateNodes))
	for i, t := range templateNodes {
		templateIDs[i] = t.Template.ID
	}

	produces := map[model.FeatureID]bool{}
	for _, fi := range out.FeatureIdx {
		produces[m.Features[fi].Feature.ID] = true
	}
	includes := map[model.ComboID]bool{}
	for _, ci := range out.ComboIdx {
		includes[m.Combos[ci].Combo.ID] = true
	}
	// The target combo always participates even when the closure (built
	// from the pruned subgraph) happens not to enumerate it explicitly.
	includes[m.Target] = true
	// of is always the singleton {target}: another Generator combo firing
	// as an intermediate producer inside this same solve is an includes,
	// never a root. Cross-generator rooting is merged later, in Merge,
	// when two different targets' solves collide on the same fingerprint.
	of := map[model.ComboID]bool{m.Target: true}

	fingerprint, err := model.VariantFingerprint(cardIDs, templateIDs)
	if err != nil {
		// Card/template IDs are plain int64s; json.Marshal of the
		// canonical struct cannot fail for them.
		panic(err)
	}

	return &Definition{
		Fingerprint: fingerprint,
		Cards:       cardIDs,
		Templates:   templateIDs,
		Identity:    model.MergeIdentity(identities),
		Legal:       legal,
		Produces:    produces,
		Of:          of,
		Includes:    includes,
	}
}

// Merge combines other into d in place: feature/combo membership sets are
// unioned. Cards, templates, identity and legality are identical by
// construction (they share a fingerprint) and are left untouched.
func (d *Definition) Merge(other *Definition) {
	for f := range other.Produces {
		d.Produces[f] = true
	}
	for c := range other.Of {
		d.Of[c] = true
	}
	for c := range other.Includes {
		d.Includes[c] = true
	}
}

// Compose folds every outcome produced across every target combo's solve
// into one fingerprint-keyed map of Definitions, merging duplicates.
func Compose(m *solver.Model, outcomes []*solver.Outcome, banned map[model.CardID]bool, into map[string]*Definition) {
	for _, out := range outcomes {
		def := FromOutcome(m, out, banned)
		if existing, ok := into[def.Fingerprint]; ok {
			existing.Merge(def)
			continue
		}
		into[def.Fingerprint] = def
	}
}
