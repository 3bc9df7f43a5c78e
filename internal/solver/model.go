// Package solver builds and solves the per-target-combo 0/1 ILP described
// in spec §4.E: minimise ingredients, then among ingredient-minimal
// solutions maximise derived combos/features, enumerating every
// Pareto-optimal card multiset via exclusion cuts.
package solver

import (
	"sort"

	"github.com/commanderspellbook/variantengine/internal/graph"
	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/prune"
)

// Model is the decision-variable universe for one target combo's solve: the
// pruned set of cards/templates/features/combos, plus the AND-lowering
// constraints every combo and feature impose on its neighbours.
type Model struct {
	Target model.ComboID

	Cards     []*graph.CardNode
	Templates []*graph.TemplateNode
	Features  []*graph.FeatureNode
	Combos    []*graph.ComboNode

	cardIndex     map[model.CardID]int
	templateIndex map[model.TemplateID]int
	featureIndex  map[model.FeatureID]int
	comboIndex    map[model.ComboID]int

	// comboIngredients[m] lists, for combo index m, the kind+index pairs
	// whose conjunction must hold for the combo to fire (constraint 2/3).
	comboIngredients [][]ref

	// featureProducers[k] lists the kind+index pairs that can satisfy
	// feature index k (constraint 4): direct cards and producing combos.
	featureProducers [][]ref

	// excludedCardSets holds one entry per already-emitted solution's
	// card index set, used to build the next solve's exclusion cut.
	excludedCardSets [][]int

	// maxBudget is the cards+templates budget (constraint 1).
	maxBudget int
}

type kind int

const (
	kindCard kind = iota
	kindTemplate
	kindFeature
	kindCombo
)

type ref struct {
	kind kind
	idx  int
}

// Outcome is the result of one lexicographic two-phase solve.
type Outcome struct {
	Feasible  bool
	CardIdx   []int // indices into Model.Cards, the chosen card set
	TemplateIdx []int
	FeatureIdx  []int
	ComboIdx    []int
}

// Build turns a pruned subgraph into a Model ready for the lexicographic
// solve loop.
func Build(sub *prune.Subgraph, target model.ComboID, max int) *Model {
	m := &Model{
		Target:        target,
		cardIndex:     map[model.CardID]int{},
		templateIndex: map[model.TemplateID]int{},
		featureIndex:  map[model.FeatureID]int{},
		comboIndex:    map[model.ComboID]int{},
		maxBudget:     max,
	}

	var cardNodes []*graph.CardNode
	var templateNodes []*graph.TemplateNode
	var featureNodes []*graph.FeatureNode
	var comboNodes []*graph.ComboNode
	for n := range sub.Nodes {
		switch typed := n.(type) {
		case *graph.CardNode:
			cardNodes = append(cardNodes, typed)
		case *graph.TemplateNode:
			templateNodes = append(templateNodes, typed)
		case *graph.FeatureNode:
			featureNodes = append(featureNodes, typed)
		case *graph.ComboNode:
			comboNodes = append(comboNodes, typed)
		}
	}

	sort.Slice(cardNodes, func(i, j int) bool { return cardNodes[i].Card.ID < cardNodes[j].Card.ID })
	sort.Slice(templateNodes, func(i, j int) bool { return templateNodes[i].Template.ID < templateNodes[j].Template.ID })
	sort.Slice(featureNodes, func(i, j int) bool { return featureNodes[i].Feature.ID < featureNodes[j].Feature.ID })
	sort.Slice(comboNodes, func(i, j int) bool { return comboNodes[i].Combo.ID < comboNodes[j].Combo.ID })

	m.Cards, m.Templates, m.Features, m.Combos = cardNodes, templateNodes, featureNodes, comboNodes
	for i, c := range cardNodes {
		m.cardIndex[c.Card.ID] = i
	}
	for i, t := range templateNodes {
		m.templateIndex[t.Template.ID] = i
	}
	for i, f := range featureNodes {
		m.featureIndex[f.Feature.ID] = i
	}
	for i, c := range comboNodes {
		m.comboIndex[c.Combo.ID] = i
	}

	m.comboIngredients = make([][]ref, len(comboNodes))
	for i, cn := range comboNodes {
		var refs []ref
		for _, c := range cn.Cards {
			if idx, ok := m.cardIndex[c.Card.ID]; ok {
				refs = append(refs, ref{kindCard, idx})
			}
		}
		for _, t := range cn.Templates {
			if idx, ok := m.templateIndex[t.Template.ID]; ok {
				refs = append(refs, ref{kindTemplate, idx})
			}
		}
		for _, f := range cn.FeaturesNeeded {
			if idx, ok := m.featureIndex[f.Feature.ID]; ok {
				refs = append(refs, ref{kindFeature, idx})
			}
		}
		m.comboIngredients[i] = refs
	}

	m.featureProducers = make([][]ref, len(featureNodes))
	for k, fn := range featureNodes {
		var refs []ref
		for _, c := range fn.Cards {
			if idx, ok := m.cardIndex[c.Card.ID]; ok {
				refs = append(refs, ref{kindCard, idx})
			}
		}
		for _, c := range fn.ProducedByCombos {
			if idx, ok := m.comboIndex[c.Combo.ID]; ok {
				refs = append(refs, ref{kindCombo, idx})
			}
		}
		m.featureProducers[k] = refs
	}

	return m
}

// TargetIndex returns the combo index of the model's root combo.
func (m *Model) TargetIndex() (int, bool) {
	i, ok := m.comboIndex[m.Target]
	return i, ok
}

// AddExclusion records an already-emitted card index set so the next solve
// excludes it via `sum(c_i for i in set) <= len(set) - 1`. Templates are
// deliberately not part of the cut: two solutions with the same cards but
// different templates are the same variant (spec §4.E, §9).
func (m *Model) AddExclusion(cardIdx []int) {
	cp := append([]int(nil), cardIdx...)
	sort.Ints(cp)
	m.excludedCardSets = append(m.excludedCardSets, cp)
}
