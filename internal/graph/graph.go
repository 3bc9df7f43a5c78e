package graph

import (
	"errors"

	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/snapshot"
)

// ErrGraphInvariant indicates the hypergraph built from a snapshot does not
// satisfy a structural invariant a caller depends on — for instance a
// generator combo ID with no corresponding ComboNode. This is a hard error
// (spec §7): the engine aborts the run rather than skipping past it.
var ErrGraphInvariant = errors.New("graph invariant violated")

// Graph is the mixed hypergraph built from a Snapshot. Node auxiliary
// state (visited/depth/down) is mutable and must be reset via Reset before
// one Graph is reused for another root combo.
type Graph struct {
	Cards     map[model.CardID]*CardNode
	Templates map[model.TemplateID]*TemplateNode
	Features  map[model.FeatureID]*FeatureNode
	Combos    map[model.ComboID]*ComboNode
}

// Build constructs the graph's nodes and edges from a snapshot. Feature
// reverse indices (ProducedByCombos/NeededByCombos) are populated while
// combos are wired in, mirroring how the source data layer prefetches
// both directions of each relation.
func Build(snap *snapshot.Snapshot) *Graph {
	g := &Graph{
		Cards:     make(map[model.CardID]*CardNode, len(snap.Cards)),
		Templates: make(map[model.TemplateID]*TemplateNode, len(snap.Templates)),
		Features:  make(map[model.FeatureID]*FeatureNode, len(snap.Features)),
		Combos:    make(map[model.ComboID]*ComboNode, len(snap.Combos)),
	}
	for id, c := range snap.Cards {
		g.Cards[id] = &CardNode{Card: c}
	}
	for id, t := range snap.Templates {
		g.Templates[id] = &TemplateNode{Template: t}
	}
	for id, f := range snap.Features {
		g.Features[id] = &FeatureNode{Feature: f}
	}
	for cardID, c := range snap.Cards {
		cn := g.Cards[cardID]
		for _, featureID := range c.Features {
			if fn, ok := g.Features[featureID]; ok {
				fn.Cards = append(fn.Cards, cn)
			}
		}
	}
	for id, combo := range snap.Combos {
		cn := &ComboNode{Combo: combo}
		for _, cardID := range combo.Uses {
			if n, ok := g.Cards[cardID]; ok {
				cn.Cards = append(cn.Cards, n)
			}
		}
		for _, templateID := range combo.Requires {
			if n, ok := g.Templates[templateID]; ok {
				cn.Templates = append(cn.Templates, n)
			}
		}
		for _, featureID := range combo.Needs {
			if n, ok := g.Features[featureID]; ok {
				cn.FeaturesNeeded = append(cn.FeaturesNeeded, n)
			}
		}
		for _, featureID := range combo.Produces {
			if n, ok := g.Features[featureID]; ok {
				cn.FeaturesProduced = append(cn.FeaturesProduced, n)
				n.ProducedByCombos = append(n.ProducedByCombos, cn)
			}
		}
		for _, featureID := range combo.Needs {
			if n, ok := g.Features[featureID]; ok {
				n.NeededByCombos = append(n.NeededByCombos, cn)
			}
		}
		g.Combos[id] = cn
	}
	return g
}

// Reset clears the pruning-pass scratch state on every node so the graph
// can be reused for the next root combo.
func (g *Graph) Reset() {
	for _, n := range g.Cards {
		n.header = header{}
	}
	for _, n := range g.Templates {
		n.header = header{}
	}
	for _, n := range g.Features {
		n.header = header{}
	}
	for _, n := range g.Combos {
		n.header = header{}
	}
}
